package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang-stock-advisor/internal/advisor/config"
	"golang-stock-advisor/internal/advisor/dto"

	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	var (
		req    dto.StockAnalysisRequest
		risk   string
		period string
		userID string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Runs one analysis and prints the recommendation as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			app, err := newApplication(ctx, cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			req.UserProfile.RiskTolerance = dto.RiskTolerance(risk)
			req.UserProfile.TimeHorizon = dto.TimeHorizon(period)
			rec, err := app.orchestrator.Analyze(ctx, userID, req)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&req.Ticker, "ticker", "t", "", "Ticker symbol")
	flags.StringVar(&req.CompanyName, "company", "", "Company name")
	flags.Float64Var(&req.UserProfile.MonthlyIncome, "income", 0, "Monthly income")
	flags.Float64Var(&req.UserProfile.MonthlyExpenses, "expenses", 0, "Monthly expenses")
	flags.Float64Var(&req.UserProfile.Savings, "savings", 0, "Savings")
	flags.StringVar(&risk, "risk", string(dto.RiskMedium), "Risk tolerance (low, medium, high)")
	flags.StringVar(&period, "horizon", string(dto.HorizonMonths), "Time horizon (weeks, months, years)")
	flags.StringVar(&userID, "user", "", "User ID used for the financial-health prior and history")
	_ = cmd.MarkFlagRequired("ticker")
	_ = cmd.MarkFlagRequired("company")
	return cmd
}
