package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docpress/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent conversions from the journal",
	Long: `History lists conversion outcomes recorded in the SQLite journal,
newest first. Nothing is recorded unless convert runs with --history or
history.path is configured.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("db", "", "journal database path (default: history.path from config)")
	historyCmd.Flags().Int("limit", 0, "maximum entries to show (0 = use default)")
	historyCmd.Flags().Bool("json", false, "output entries as JSON")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		dbPath = viper.GetString("history.path")
	}
	if dbPath == "" {
		return fmt.Errorf("history journal not configured: pass --db or set history.path")
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit == 0 {
		limit = viper.GetInt("history.limit")
	}

	store, err := history.NewStore(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(context.Background(), limit)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No conversions recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-19s  %-7s  %-12s  %-10s  %s\n",
		"When", "Status", "Engine", "Duration", "Source")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 80))

	for _, e := range entries {
		status := "failed"
		if e.Succeeded {
			status = "ok"
		}
		engineName := e.Engine
		if engineName == "" {
			engineName = "-"
		}
		fmt.Fprintf(os.Stdout, "%-19s  %-7s  %-12s  %-10s  %s\n",
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"), status, engineName,
			e.Duration.Round(time.Millisecond), e.Source)
	}

	fmt.Fprintf(os.Stdout, "\n%d conversions\n", len(entries))
	return nil
}
