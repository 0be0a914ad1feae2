package cmd

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/template"
	"github.com/KaramelBytes/esgloom-cli/internal/utils"
)

// mappingFile is the YAML document the user edits between compare and apply.
type mappingFile struct {
	Template string            `yaml:"template"`
	Mapping  reconcile.Mapping `yaml:"mapping"`
}

func writeMappingFile(path, templateName string, m reconcile.Mapping) error {
	b, err := yaml.Marshal(mappingFile{Template: templateName, Mapping: m})
	if err != nil {
		return fmt.Errorf("marshal mapping: %w", err)
	}
	return utils.SafeWriteFile(path, b)
}

func readMappingFile(path string, tpl template.Template) (reconcile.Mapping, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mapping: %w", err)
	}
	var mf mappingFile
	if err := yaml.Unmarshal(b, &mf); err != nil {
		return nil, fmt.Errorf("parse mapping: %w", err)
	}
	if mf.Template != "" && mf.Template != tpl.Name {
		return nil, fmt.Errorf("mapping file is for template %s, not %s", mf.Template, tpl.Name)
	}
	return mf.Mapping, nil
}

// resolveTemplateFlag picks the template from --template or config default.
func resolveTemplateFlag(name string) (template.Template, error) {
	if name == "" && cfg != nil {
		name = cfg.DefaultTemplate
	}
	if name == "" {
		return template.Template{}, fmt.Errorf("--template is required (available: %s)",
			strings.Join(template.Names(), ", "))
	}
	return template.Resolve(name)
}

// printMatchReport writes the human-readable view of a match report.
func printMatchReport(r reconcile.MatchReport) {
	status := "✓"
	if r.HasAmbiguity {
		status = "⚠"
	}
	fmt.Printf("%s Template %s: %.2f%% match (%d/%d columns)\n",
		status, r.Template, r.MatchPercentage, len(r.Matched), r.TotalTemplate)
	if len(r.Missing) > 0 {
		fmt.Printf("  Missing (%d): %s\n", len(r.Missing), strings.Join(r.Missing, ", "))
	}
	if len(r.Extra) > 0 {
		fmt.Printf("  Extra (%d): %s\n", len(r.Extra), strings.Join(r.Extra, ", "))
	}
	if r.InvalidCount > 0 {
		fmt.Printf("  Filtered %d empty or unnamed column(s)\n", r.InvalidCount)
	}
	if r.HasAmbiguity {
		fmt.Printf("  %s\n", r.AmbiguityMessage)
	}
}
