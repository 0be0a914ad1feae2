package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/esgloom-cli/internal/ai"
	"github.com/KaramelBytes/esgloom-cli/internal/change"
	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/report"
	"github.com/KaramelBytes/esgloom-cli/internal/tabular"
	"github.com/KaramelBytes/esgloom-cli/internal/utils"
)

var (
	genTemplate   string
	genMapping    string
	genReportType string
	genModel      string
	genMaxTokens  int
	genTemp       float64
	genOutput     string
	genDryRun     bool
	genStream     bool
	genTimeoutSec int
)

var generateCmd = &cobra.Command{
	Use:   "generate <file>",
	Short: "Generate a narrative ESG report from a reconciled upload",
	Example: `  esgloom generate upload.csv --template ADX_ESG --mapping mapping.yaml
  esgloom generate upload.xlsx -t SME -m mapping.yaml --type executive --output report.md
  esgloom generate upload.csv -t MOCCAE --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tpl, err := resolveTemplateFlag(genTemplate)
		if err != nil {
			return err
		}
		reportType := genReportType
		if reportType == "" && cfg != nil {
			reportType = cfg.DefaultReportType
		}
		if reportType == "" {
			reportType = "comprehensive"
		}

		tbl, err := tabular.ReadFile(args[0])
		if err != nil {
			return err
		}
		set := reconcile.Normalize(tbl.Columns)
		if set.Empty() {
			return fmt.Errorf("%w: %s", reconcile.ErrEmptyUpload, args[0])
		}

		var mapping reconcile.Mapping
		if genMapping != "" {
			mapping, err = readMappingFile(genMapping, tpl)
			if err != nil {
				return err
			}
		} else {
			// No mapping declared: propose one automatically and report its
			// coverage so silent column drops are visible.
			mapping = reconcile.ProposeMapping(tpl, set)
			fmt.Println("⚠ No --mapping given, using automatic column mapping")
		}
		if err := mapping.Validate(tpl, set); err != nil {
			return err
		}
		printMatchReport(mapping.Report(tpl, set))

		rows := mapping.Apply(tpl, tbl.Rows)
		annotated := change.NewClassifier(change.DefaultLowerIsBetter()).Annotate(tpl, rows)

		messages, err := report.BuildMessages(tpl, annotated, reportType)
		if err != nil {
			return err
		}
		promptTokens := 0
		for _, m := range messages {
			promptTokens += utils.CountTokens(m.Content)
		}
		fmt.Printf("Tokens: prompt≈%d, %d rows, type=%s\n", promptTokens, len(annotated), reportType)

		if genDryRun {
			fmt.Println("\n--dry-run: no API call will be made. Prompt below --")
			for _, m := range messages {
				fmt.Printf("[%s]\n%s\n\n", m.Role, m.Content)
			}
			return nil
		}

		model := selectedModel(genModel)
		maxTokens := genMaxTokens
		if maxTokens == 0 && cfg != nil {
			maxTokens = cfg.MaxTokens
		}
		temp := genTemp
		if temp == 0 && cfg != nil {
			temp = cfg.Temperature
		}
		client := newAIClient()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(genTimeoutSec)*time.Second)
		defer cancel()
		fmt.Printf("⚙ Generating with model=%s ...\n", model)

		if genStream && genOutput == "" {
			err := client.GenerateStream(ctx, ai.GenerateRequest{
				Model:       model,
				Messages:    messages,
				MaxTokens:   maxTokens,
				Temperature: temp,
			}, func(delta string) { fmt.Print(delta) })
			if err != nil {
				return hintError(err, model)
			}
			fmt.Println()
			return nil
		}

		gen := &report.Generator{Client: client, Model: model, MaxTokens: maxTokens, Temperature: temp}
		rep, err := gen.Generate(ctx, tpl, annotated, reportType)
		if err != nil {
			return hintError(err, model)
		}

		if genOutput != "" {
			out := rep.Markdown
			if len(rep.Charts) > 0 {
				chartJSON, err := utils.PrettyJSON(rep.Charts)
				if err != nil {
					return err
				}
				out += "\n\n## Chart Data\n\n```json\n" + string(chartJSON) + "\n```\n"
			}
			if err := utils.SafeWriteFile(genOutput, []byte(out)); err != nil {
				return err
			}
			fmt.Printf("✓ Report %s written to %s (%d tokens used)\n", rep.ID, genOutput, rep.Usage.TotalTokens)
			return nil
		}
		fmt.Println(rep.Markdown)
		if len(rep.Charts) > 0 {
			fmt.Printf("\n%d chart spec(s) available; use --output to include them\n", len(rep.Charts))
		}
		return nil
	},
}

// hintError wraps classified AI errors with actionable guidance.
func hintError(err error, model string) error {
	var (
		authErr *ai.AuthError
		rlErr   *ai.RateLimitError
		nfErr   *ai.ModelNotFoundError
		brErr   *ai.BadRequestError
		qErr    *ai.QuotaExceededError
		sErr    *ai.ServerError
	)
	switch {
	case errors.As(err, &authErr):
		return fmt.Errorf("authentication failed: set OPENROUTER_API_KEY or add api_key in config (~/.esgloom/config.yaml): %w", err)
	case errors.As(err, &rlErr):
		if rlErr.RetryAfter > 0 {
			return fmt.Errorf("rate limited, try again in ~%ds: %w", int(rlErr.RetryAfter.Seconds()), err)
		}
		return fmt.Errorf("rate limited by provider, please retry: %w", err)
	case errors.As(err, &nfErr):
		return fmt.Errorf("model not found (%s). Verify the model name on openrouter.ai: %w", model, err)
	case errors.As(err, &brErr):
		return fmt.Errorf("request invalid. Try reducing rows or max-tokens: %w", err)
	case errors.As(err, &qErr):
		return fmt.Errorf("quota/billing issue. Check your provider account: %w", err)
	case errors.As(err, &sErr):
		return fmt.Errorf("provider appears unavailable (server error). Please retry later: %w", err)
	default:
		return fmt.Errorf("generation failed: %w", err)
	}
}

func init() {
	generateCmd.Flags().StringVarP(&genTemplate, "template", "t", "", "template name (see 'esgloom templates')")
	generateCmd.Flags().StringVarP(&genMapping, "mapping", "m", "", "mapping YAML file (omit for automatic mapping)")
	generateCmd.Flags().StringVar(&genReportType, "type", "", "report type (see config default_report_type)")
	generateCmd.Flags().StringVar(&genModel, "model", "", "model to use (overrides config default)")
	generateCmd.Flags().IntVar(&genMaxTokens, "max-tokens", 0, "max completion tokens (overrides config)")
	generateCmd.Flags().Float64Var(&genTemp, "temperature", 0, "sampling temperature (overrides config)")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "write the report markdown to this path")
	generateCmd.Flags().BoolVar(&genDryRun, "dry-run", false, "print the prompt without calling the API")
	generateCmd.Flags().BoolVar(&genStream, "stream", false, "stream the narrative to stdout")
	generateCmd.Flags().IntVar(&genTimeoutSec, "timeout-sec", 180, "request timeout in seconds")
	rootCmd.AddCommand(generateCmd)
}
