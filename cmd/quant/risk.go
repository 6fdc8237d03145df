package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/newthinker/quant/internal/core"
	"github.com/newthinker/quant/internal/logger"
	"github.com/spf13/cobra"
)

var (
	portfolioFile string
	portfolioID   string
)

var riskCmd = &cobra.Command{
	Use:   "risk",
	Short: "Compute portfolio risk metrics and print them as JSON",
	Example: `  quant risk --portfolio growth.json
  quant risk -p growth.json --id growth-2024`,
	RunE: runRisk,
}

func init() {
	riskCmd.Flags().StringVarP(&portfolioFile, "portfolio", "p", "", "portfolio snapshot JSON file")
	riskCmd.Flags().StringVar(&portfolioID, "id", "", "portfolio id (default: file name)")
	riskCmd.MarkFlagRequired("portfolio")
	rootCmd.AddCommand(riskCmd)
}

// readPortfolio decodes a {positions, total_value} snapshot.
func readPortfolio(path string) (core.Portfolio, error) {
	var p core.Portfolio
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("reading portfolio: %w", err)
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, core.WrapError(core.ErrInvalidInput, fmt.Errorf("parsing %s: %w", path, err))
	}
	return p, nil
}

func defaultPortfolioID(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func runRisk(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	p, err := readPortfolio(portfolioFile)
	if err != nil {
		return err
	}
	id := portfolioID
	if id == "" {
		id = defaultPortfolioID(portfolioFile)
	}

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

	res := svc.Risk(ctx, id, p)

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}
	return res.Err()
}
