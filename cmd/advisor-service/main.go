package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

// @title Stock Advisor API
// @version 1.0
// @description Stock recommendations from news sentiment, market signals and a personal risk budget.
// @BasePath /api/v1
func main() {
	rootCmd := &cobra.Command{Use: "advisor-service"}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config-advisor.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd, newAnalyzeCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing advisor-service CLI: %s\n", err)
		os.Exit(1)
	}
}
