package main

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"acsgen/internal/acs/appendix"
	"acsgen/internal/acs/build"
	"acsgen/internal/acs/template"
	"acsgen/internal/config"
	"acsgen/internal/fetch"
	"acsgen/internal/logging"
	"acsgen/internal/report"
	"acsgen/internal/sink"
)

var skipFetch bool

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Assemble and write the configured tables for each state",
	Long: `Downloads any missing source files, parses the appendix metadata and
column templates, then builds every requested table for every configured
state. The exit status is non-zero if any state produced no tables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		rep := report.New()
		logger := logging.ForRun(rep.RunID)

		if !skipFetch {
			if err := fetch.New(logger).FetchAll(ctx, cfg); err != nil {
				return err
			}
		}

		appx, err := loadAppendix(cfg)
		if err != nil {
			return fmt.Errorf("appendix metadata: %w", err)
		}
		templates, err := loadTemplates(cfg)
		if err != nil {
			return fmt.Errorf("summary file templates: %w", err)
		}
		logger.Info("metadata loaded",
			"tables", len(appx.TableNames()),
			"templates", templates.Len(),
		)

		out, err := sink.Open(ctx, cfg.Output, rep.RunID.String())
		if err != nil {
			return fmt.Errorf("opening output sink: %w", err)
		}
		if pg, ok := out.(*sink.Postgres); ok {
			defer pg.Close()
		}

		runner := build.New(cfg, appx, templates, out, rep, logger)
		if err := runner.Run(ctx); err != nil {
			return err
		}

		for _, line := range rep.Lines() {
			fmt.Fprintln(os.Stderr, line)
		}
		if rep.Failed() {
			return fmt.Errorf("one or more states produced no tables")
		}
		return nil
	},
}

func init() {
	buildCmd.Flags().BoolVar(&skipFetch, "skip-fetch", false, "do not download missing source files")
	rootCmd.AddCommand(buildCmd)
}

// loadAppendix parses the appendix workbook from the source directory.
// Corrupt metadata is fatal to the whole run.
func loadAppendix(cfg *config.Config) (*appendix.Index, error) {
	f, err := os.Open(filepath.Join(cfg.SourceDir, cfg.AppendixFile()))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return appendix.Parse(f)
}

// loadTemplates parses the template archive from the source directory.
func loadTemplates(cfg *config.Config) (*template.Store, error) {
	zr, err := zip.OpenReader(filepath.Join(cfg.SourceDir, cfg.TemplatesFile()))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return template.Parse(&zr.Reader)
}
