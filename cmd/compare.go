package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/tabular"
	"github.com/KaramelBytes/esgloom-cli/internal/utils"
)

var (
	compareTemplate string
	compareJSON     bool
	comparePropose  string
)

var compareCmd = &cobra.Command{
	Use:   "compare <file>",
	Short: "Compare an upload's columns against a report template",
	Example: `  esgloom compare upload.csv --template ADX_ESG
  esgloom compare upload.xlsx --template SME --propose-mapping mapping.yaml
  esgloom compare upload.csv --template MOCCAE --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := resolveTemplateFlag(compareTemplate)
		if err != nil {
			return err
		}
		tbl, err := tabular.ReadFile(args[0])
		if err != nil {
			return err
		}
		set := reconcile.Normalize(tbl.Columns)
		if set.Empty() {
			return fmt.Errorf("%w: %s", reconcile.ErrEmptyUpload, args[0])
		}
		report := reconcile.Match(set, tpl)

		if compareJSON {
			b, err := utils.PrettyJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			fmt.Printf("Upload: %s (%d columns, %d rows)\n", args[0], len(set.Columns), len(tbl.Rows))
			printMatchReport(report)
		}

		if comparePropose != "" {
			proposal := reconcile.ProposeMapping(tpl, set)
			if err := writeMappingFile(comparePropose, tpl.Name, proposal); err != nil {
				return err
			}
			if !compareJSON {
				fmt.Printf("✓ Proposed mapping written to %s (review before applying)\n", comparePropose)
			}
		}
		return nil
	},
}

func init() {
	compareCmd.Flags().StringVarP(&compareTemplate, "template", "t", "", "template name (see 'esgloom templates')")
	compareCmd.Flags().BoolVar(&compareJSON, "json", false, "emit the match report as JSON")
	compareCmd.Flags().StringVar(&comparePropose, "propose-mapping", "", "write a proposed mapping YAML to this path")
	rootCmd.AddCommand(compareCmd)
}
