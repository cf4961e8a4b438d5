// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/compress"
	"github.com/pdiddy/docpress/internal/convert"
	"github.com/pdiddy/docpress/internal/engine"
	"github.com/pdiddy/docpress/internal/history"
	"github.com/pdiddy/docpress/pkg/types"
)

const (
	defaultEngineTimeout = 3 * time.Minute
	defaultTimeoutPerMB  = 15 * time.Second
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert DOCX files to PDF",
	Long: `Convert turns DOCX files into PDFs. Each file is handed to the first
available engine in the configured priority order; if that engine fails,
times out, or produces an invalid PDF, the next engine is tried. The
outcome reports which engine won and what every attempt did.

By default the PDF lands next to its source with the extension swapped.
Use --out for a single explicit destination or --out-dir for batches.`,
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().String("out", "", "output PDF path (single input only)")
	convertCmd.Flags().String("out-dir", "", "directory for output PDFs (default: alongside each source)")
	convertCmd.Flags().StringSlice("engines", nil, "ordered engine list: unoconv, docx2pdf, pandoc, libreoffice (default all)")
	convertCmd.Flags().Duration("timeout", 0, "per-engine attempt timeout (default 3m)")
	convertCmd.Flags().Duration("timeout-per-mb", 0, "extra attempt time per MB of source (default 15s, 0 disables)")
	convertCmd.Flags().Bool("compress", false, "compress the resulting PDF with Ghostscript")
	convertCmd.Flags().String("report-dir", "", "write a YAML outcome report per file into this directory")
	convertCmd.Flags().String("history", "", "record outcomes in this SQLite journal (default: history.path from config)")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more DOCX files to convert")
	}

	out, _ := cmd.Flags().GetString("out")
	if out != "" && len(args) > 1 {
		return fmt.Errorf("--out takes a single input file; use --out-dir for batches")
	}

	cfg := mergedConfig(cmd)

	engines, err := engine.Chain(cfg.Convert)
	if err != nil {
		return err
	}

	var compressor convert.Compressor
	if cfg.Compression.Enabled {
		gs, err := compress.NewGhostscript(cfg.Compression)
		if err != nil {
			return err
		}
		compressor = gs
	}

	orch := convert.New(engines, compressor, cfg.Convert)

	outDir, _ := cmd.Flags().GetString("out-dir")
	reqs := convert.RequestsForPaths(args, outDir, cfg.Compression.Enabled)
	if out != "" {
		reqs[0].Dest = out
	}

	historyPath, _ := cmd.Flags().GetString("history")
	if historyPath == "" {
		historyPath = cfg.History.Path
	}
	var store *history.Store
	if historyPath != "" {
		store, err = history.NewStore(historyPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	reportDir, _ := cmd.Flags().GetString("report-dir")

	result := orch.ConvertBatch(context.Background(), reqs, os.Stdout, func(outcome *types.ConversionOutcome) {
		if reportDir != "" {
			if _, err := convert.WriteReport(outcome, reportDir); err != nil {
				fmt.Fprintf(os.Stderr, "warning: writing report: %v\n", err)
			}
		}
		if store != nil {
			if err := store.Record(context.Background(), outcome); err != nil {
				fmt.Fprintf(os.Stderr, "warning: recording history: %v\n", err)
			}
		}
	})

	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed conversion", result.Failed)
	}
	return nil
}

// mergedConfig resolves the effective configuration: explicit flags win,
// then config file and environment, then built-in defaults.
func mergedConfig(cmd *cobra.Command) types.Config {
	var cfg types.Config

	engines, _ := cmd.Flags().GetStringSlice("engines")
	if len(engines) == 0 {
		engines = viper.GetStringSlice("convert.engines")
	}
	cfg.Convert.Engines = engines

	timeout, _ := cmd.Flags().GetDuration("timeout")
	if timeout == 0 {
		timeout = viper.GetDuration("convert.timeout")
	}
	if timeout == 0 {
		timeout = defaultEngineTimeout
	}
	cfg.Convert.EngineTimeout = timeout

	// Zero is meaningful here (disables size scaling), so an explicit flag
	// or config key wins over the default even when set to 0.
	perMB := defaultTimeoutPerMB
	if cmd.Flags().Changed("timeout-per-mb") {
		perMB, _ = cmd.Flags().GetDuration("timeout-per-mb")
	} else if viper.IsSet("convert.timeout_per_mb") {
		perMB = viper.GetDuration("convert.timeout_per_mb")
	}
	cfg.Convert.TimeoutPerMB = perMB

	cfg.Convert.MinOutputBytes = viper.GetInt64("convert.min_output_bytes")
	cfg.Convert.SkipVerify = viper.GetBool("convert.skip_verify")

	compressFlag, _ := cmd.Flags().GetBool("compress")
	cfg.Compression.Enabled = compressFlag || viper.GetBool("compression.enabled")
	cfg.Compression.Quality = viper.GetString("compression.quality")
	cfg.Compression.Timeout = viper.GetDuration("compression.timeout")

	cfg.History.Path = viper.GetString("history.path")
	cfg.History.Limit = viper.GetInt("history.limit")

	return cfg
}
