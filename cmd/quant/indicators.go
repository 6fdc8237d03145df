package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/newthinker/quant/internal/logger"
	"github.com/spf13/cobra"
)

var indicatorsCmd = &cobra.Command{
	Use:   "indicators <ticker> [ticker...]",
	Short: "Compute indicator snapshots and print them as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndicators,
}

func init() {
	rootCmd.AddCommand(indicatorsCmd)
}

func runIndicators(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	svc, err := buildService(cfg, log, nil)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := svc.TechnicalBatch(ctx, args)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		if err := enc.Encode(results[0]); err != nil {
			return err
		}
	} else if err := enc.Encode(results); err != nil {
		return err
	}

	var failed []string
	for _, r := range results {
		if r.Err() != nil {
			failed = append(failed, r.Ticker)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("analysis failed for %s", strings.Join(failed, ", "))
	}
	return nil
}
