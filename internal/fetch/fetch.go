// Package fetch downloads the source files a run needs: the appendix
// metadata workbook, the template archive, and one summary file archive
// per state. A single GET per file, no retries; a failed download is
// logged and the gap surfaces later as a missing source.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"acsgen/internal/config"
)

const baseURL = "https://www2.census.gov/programs-surveys/acs/summary_file/"

// Client downloads ACS source files into the configured source directory.
type Client struct {
	http *http.Client
	log  *slog.Logger
}

// New returns a fetch client. The timeout bounds the whole transfer; the
// per-state archives run to tens of megabytes.
func New(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		http: &http.Client{Timeout: 10 * time.Minute},
		log:  logger,
	}
}

// Sources lists every (URL, local path) pair the configured run needs.
func Sources(cfg *config.Config) map[string]string {
	year := cfg.Year
	out := map[string]string{
		baseURL + year + "/documentation/tech_docs/" + cfg.AppendixFile(): filepath.Join(cfg.SourceDir, cfg.AppendixFile()),
		baseURL + year + "/data/" + cfg.TemplatesFile():                   filepath.Join(cfg.SourceDir, cfg.TemplatesFile()),
	}
	for _, state := range cfg.States {
		name := state + config.SummaryFileSuffix
		out[baseURL+year+"/data/5_year_by_state/"+name] = cfg.StateArchivePath(state)
	}
	return out
}

// FetchAll downloads every missing source file. Files already on disk are
// left alone. Individual failures are logged and skipped so one bad URL
// does not stop the rest of the prefetch.
func (c *Client) FetchAll(ctx context.Context, cfg *config.Config) error {
	if err := os.MkdirAll(cfg.SourceDir, 0o755); err != nil {
		return fmt.Errorf("creating source directory: %w", err)
	}

	for url, dest := range Sources(cfg) {
		if _, err := os.Stat(dest); err == nil {
			continue
		}
		c.log.Info("requesting file", "url", url)
		if err := c.download(ctx, url, dest); err != nil {
			c.log.Error("download failed", "url", url, "error", err)
			continue
		}
		c.log.Info("file downloaded", "path", dest)
	}
	return nil
}

// download writes one URL to dest via a temp file so an interrupted
// transfer never leaves a partial source behind.
func (c *Client) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), ".download-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}
