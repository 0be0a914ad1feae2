package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/esgloom-cli/internal/change"
	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/tabular"
	"github.com/KaramelBytes/esgloom-cli/internal/utils"
)

var (
	applyTemplate string
	applyMapping  string
	applyOutput   string
	applyJSON     bool
)

// applyResult is the JSON payload for an apply run: the coverage report plus
// the reshaped, change-annotated rows.
type applyResult struct {
	Report reconcile.MatchReport `json:"report"`
	Rows   []change.AnnotatedRow `json:"rows"`
}

var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a column mapping and classify year-over-year changes",
	Example: `  esgloom apply upload.csv --template ADX_ESG --mapping mapping.yaml
  esgloom apply upload.xlsx -t SME -m mapping.yaml --output rows.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if applyMapping == "" {
			return fmt.Errorf("--mapping is required (generate one with 'esgloom compare --propose-mapping')")
		}
		tpl, err := resolveTemplateFlag(applyTemplate)
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
		mapping, err := readMappingFile(applyMapping, tpl)
		if err != nil {
			return err
		}
		if err := mapping.Validate(tpl, set); err != nil {
			return err
		}

		rows := mapping.Apply(tpl, tbl.Rows)
		annotated := change.NewClassifier(change.DefaultLowerIsBetter()).Annotate(tpl, rows)
		result := applyResult{Report: mapping.Report(tpl, set), Rows: annotated}

		if applyOutput != "" {
			b, err := utils.PrettyJSON(result)
			if err != nil {
				return err
			}
			if err := utils.SafeWriteFile(applyOutput, b); err != nil {
				return err
			}
			fmt.Printf("✓ Wrote %d canonical rows to %s\n", len(annotated), applyOutput)
		}
		if applyJSON {
			b, err := utils.PrettyJSON(result)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}

		printMatchReport(result.Report)
		counts := map[change.Status]int{}
		for _, ar := range annotated {
			counts[ar.Change.Status]++
		}
		fmt.Printf("Rows: %d (improved %d, worsened %d, slight %d, unknown %d)\n",
			len(annotated), counts[change.StatusImproved], counts[change.StatusWorsened],
			counts[change.StatusSlight], counts[change.StatusUnknown])
		return nil
	},
}

func init() {
	applyCmd.Flags().StringVarP(&applyTemplate, "template", "t", "", "template name (see 'esgloom templates')")
	applyCmd.Flags().StringVarP(&applyMapping, "mapping", "m", "", "mapping YAML file")
	applyCmd.Flags().StringVarP(&applyOutput, "output", "o", "", "write annotated rows as JSON to this path")
	applyCmd.Flags().BoolVar(&applyJSON, "json", false, "emit the result as JSON")
	rootCmd.AddCommand(applyCmd)
}
