package main

import (
	"encoding/json"

	"github.com/lithictech/go-profiles/async"
	"github.com/lithictech/go-profiles/pathutils"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var statsOut string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print statistics for the profiles in a seed file",
	Long: `Loads the seed file into an empty store, skipping invalid profiles,
and prints the store statistics as json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.SeedFile == "" {
			return errors.New("a seed file is required, use --seed or PROFILES_SEED_FILE")
		}
		store, _, err := newStore(cmd.Context(), cfg, logger, async.Sync)
		if err != nil {
			return err
		}
		st := store.Statistics()
		if statsOut != "" {
			return pathutils.MarshalJsonFile(statsOut, st)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsOut, "out", "o", "", "write statistics to this file instead of stdout")
	rootCmd.AddCommand(statsCmd)
}
