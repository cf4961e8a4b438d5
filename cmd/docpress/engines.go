package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/engine"
	"github.com/pdiddy/docpress/pkg/types"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show conversion engine availability",
	Long: `Engines lists the configured conversion engines in priority order,
whether each is installed on this host, and the binary it resolves to.
Useful for diagnosing why a conversion picked (or skipped) an engine.`,
	RunE: runEngines,
}

func init() {
	enginesCmd.Flags().StringSlice("engines", nil, "ordered engine list to inspect (default: configured order)")
	enginesCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(enginesCmd)
}

func runEngines(cmd *cobra.Command, args []string) error {
	names, _ := cmd.Flags().GetStringSlice("engines")
	if len(names) == 0 {
		names = viper.GetStringSlice("convert.engines")
	}

	cfg := types.ConvertConfig{
		Engines:       names,
		EngineTimeout: viper.GetDuration("convert.timeout"),
	}

	infos, err := engine.Inspect(cfg)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	fmt.Fprintf(os.Stdout, "%-12s  %-9s  %-8s  %s\n", "Engine", "Available", "Timeout", "Path")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 60))

	available := 0
	for _, info := range infos {
		status := "no"
		if info.Available {
			status = "yes"
			available++
		}
		path := info.Path
		if path == "" {
			path = "-"
		}
		fmt.Fprintf(os.Stdout, "%-12s  %-9s  %-8s  %s\n", info.Name, status, info.Timeout, path)
	}

	fmt.Fprintf(os.Stdout, "\n%d of %d engines available\n", available, len(infos))
	if available == 0 {
		return fmt.Errorf("no conversion engines installed")
	}
	return nil
}
