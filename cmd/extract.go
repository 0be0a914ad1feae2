package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/tabular"
	"github.com/KaramelBytes/esgloom-cli/internal/utils"
)

var (
	extractTemplate string
	extractModel    string
	extractJSON     bool
	extractPropose  string
	extractTimeout  int
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.docx>",
	Short: "Discover column labels in an unstructured document, then compare",
	Long: `Extract pulls the text out of a DOCX upload, asks the model which
column/field labels it reports on, and runs the extracted labels through the
same normalization and template comparison as a structured upload.`,
	Example: `  esgloom extract report.docx --template DIFC_ESG
  esgloom extract report.docx -t SME --propose-mapping mapping.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := resolveTemplateFlag(extractTemplate)
		if err != nil {
			return err
		}
		text, err := tabular.ExtractText(args[0])
		if err != nil {
			return err
		}
		// Headers live early in the document; a generous cap keeps the
		// request well inside small-model context windows.
		text = utils.TruncateToTokenLimit(text, 6000)

		model := selectedModel(extractModel)
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(extractTimeout)*time.Second)
		defer cancel()
		if !extractJSON {
			fmt.Printf("⚙ Extracting columns with model=%s ...\n", model)
		}
		cols, err := newAIClient().ExtractColumns(ctx, model, text)
		if err != nil {
			return err
		}

		set := reconcile.Normalize(cols)
		if set.Empty() {
			return fmt.Errorf("%w: no usable columns extracted from %s", reconcile.ErrEmptyUpload, args[0])
		}
		report := reconcile.Match(set, tpl)
		if extractJSON {
			b, err := utils.PrettyJSON(report)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
		} else {
			fmt.Printf("Extracted %d column label(s) from %s\n", len(set.Columns), args[0])
			printMatchReport(report)
		}

		if extractPropose != "" {
			proposal := reconcile.ProposeMapping(tpl, set)
			if err := writeMappingFile(extractPropose, tpl.Name, proposal); err != nil {
				return err
			}
			if !extractJSON {
				fmt.Printf("✓ Proposed mapping written to %s (review before applying)\n", extractPropose)
			}
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractTemplate, "template", "t", "", "template name (see 'esgloom templates')")
	extractCmd.Flags().StringVar(&extractModel, "model", "", "model to use (overrides config default)")
	extractCmd.Flags().BoolVar(&extractJSON, "json", false, "emit the match report as JSON")
	extractCmd.Flags().StringVar(&extractPropose, "propose-mapping", "", "write a proposed mapping YAML to this path")
	extractCmd.Flags().IntVar(&extractTimeout, "timeout-sec", 120, "request timeout in seconds")
	rootCmd.AddCommand(extractCmd)
}
