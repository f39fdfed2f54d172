package main

import (
	"fmt"

	"movebot/internal/stats"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [user]",
	Short: "Print completion counts from the store",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadLocalConfig(cmd)
		if err != nil {
			return err
		}
		st, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		var user string
		if len(args) == 1 {
			user = args[0]
		}
		records, err := st.ReadAll(cmd.Context(), user)
		if err != nil {
			return fmt.Errorf("failed to read completions: %w", err)
		}

		cyanBold := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellowBold := color.New(color.FgYellow, color.Bold).SprintFunc()
		out := cmd.OutOrStdout()

		if user != "" {
			s := stats.AggregateUser(records, user)
			fmt.Fprintf(out, "%s: %s\n", cyanBold(s.UserName), yellowBold(s.Count))
			return nil
		}

		all := stats.AggregateAll(records)
		if len(all) == 0 {
			fmt.Fprintln(out, "No workouts recorded yet.")
			return nil
		}
		green := color.New(color.FgGreen).SprintFunc()
		magenta := color.New(color.FgMagenta).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		for _, name := range stats.Names(all) {
			c := all[name]
			fmt.Fprintf(out, "%s: easy %s, medium %s, hard %s, total %s\n",
				cyanBold(name), green(c.Easy), magenta(c.Medium), red(c.Hard), yellowBold(c.Total))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
