package main

import (
	"github.com/spf13/cobra"

	"acsgen/internal/config"
	"acsgen/internal/logging"
)

var (
	cfgPath string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "acsgen",
	Short: "Generate detailed tables from the US Census ACS 5-Year Summary Files",
	Long: `acsgen reads the ACS 5-Year Summary File distribution (appendix metadata,
column-name templates, and per-state summary archives) and assembles one CSV
per state and table, with estimate and margin-of-error columns interleaved
and rows keyed by 12-character block group GEOID.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return err
		}
		logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to YAML config file (optional)")
}
