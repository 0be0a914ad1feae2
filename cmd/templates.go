package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

var templatesVerbose bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the registered report templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range template.Names() {
			tpl, err := template.Resolve(name)
			if err != nil {
				return err
			}
			fmt.Printf("%-10s %d columns\n", tpl.Name, len(tpl.Columns))
			if templatesVerbose {
				for _, col := range tpl.Columns {
					fmt.Printf("    %s\n", col)
				}
			}
		}
		return nil
	},
}

func init() {
	templatesCmd.Flags().BoolVarP(&templatesVerbose, "verbose", "v", false, "show each template's columns")
	rootCmd.AddCommand(templatesCmd)
}
