package main

import (
	"context"

	"github.com/spf13/cobra"

	"acsgen/internal/fetch"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download missing source files without building tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		return fetch.New(nil).FetchAll(context.Background(), cfg)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
