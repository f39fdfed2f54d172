package main

import (
	"fmt"

	"movebot/internal/catalog"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the exercise catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadLocalConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		out := cmd.OutOrStdout()
		for _, d := range catalog.Difficulties {
			for _, c := range catalog.Categories {
				fmt.Fprintf(out, "%s %s\n", boldGreen(d), cyan(c))
				for _, e := range cat.ExercisesFor(d, c) {
					fmt.Fprintf(out, "  • %s: %s %s\n", e.Name, yellow(fmt.Sprintf("%d - %d", e.Min, e.Max)), e.Unit)
				}
				fmt.Fprintln(out)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
