package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "stock-advisor",
	Short: "A CLI for the stock advisor services",
	Long: `Stock advisor combines news sentiment, market signals and a personal risk budget
into a BUY/HOLD/SELL recommendation. Run "advisor-service serve" for the API
and "migrate up" to prepare the history database.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI '%s'", err)
		os.Exit(1)
	}
}
