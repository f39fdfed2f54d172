package main

import (
	"encoding/json"
	"fmt"
	"time"

	"movebot/internal/i18n"
	"movebot/internal/workout"

	"github.com/spf13/cobra"
)

var (
	generateSeed     uint64
	generateStrength int
	generateMobility int
	generateJSON     bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Print one generated workout without posting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadLocalConfig(cmd)
		if err != nil {
			return err
		}
		cat, err := loadCatalog(cfg)
		if err != nil {
			return err
		}

		counts := workout.Counts{Strength: cfg.Workout.StrengthCount, Mobility: cfg.Workout.MobilityCount}
		if cmd.Flags().Changed("strength") {
			counts.Strength = generateStrength
		}
		if cmd.Flags().Changed("mobility") {
			counts.Mobility = generateMobility
		}

		seed := generateSeed
		if !cmd.Flags().Changed("seed") {
			seed = uint64(time.Now().UnixNano())
		}

		set, err := workout.Generate(cat, counts, workout.NewSource(seed))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if generateJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(set)
		}
		fmt.Fprintln(out, workout.Render(i18n.T(i18n.KeyWorkoutHeader, i18n.ParseLanguage(cfg.Language)), set))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().Uint64Var(&generateSeed, "seed", 0, "random seed for a reproducible workout")
	generateCmd.Flags().IntVar(&generateStrength, "strength", 0, "strength exercises per difficulty (overrides config)")
	generateCmd.Flags().IntVar(&generateMobility, "mobility", 0, "mobility exercises per difficulty (overrides config)")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the workout as JSON")
}
