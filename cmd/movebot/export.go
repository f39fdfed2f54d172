package main

import (
	"fmt"

	"movebot/internal/export"

	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write all completions and per-user counts to an Excel workbook",
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

		records, err := st.ReadAll(cmd.Context(), "")
		if err != nil {
			return fmt.Errorf("failed to read completions: %w", err)
		}
		if err := export.WriteWorkbook(exportOut, records); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported %d completions to %s\n", len(records), exportOut)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output .xlsx path")
	exportCmd.MarkFlagRequired("out")
}
