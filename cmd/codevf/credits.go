package main

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/pkg/codevf"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Inspect credits",
}

var creditsBalanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show credit balance",
	Long:  `Show available credits, credits held by open tasks and the total.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		c, err := getClient()
		if err != nil {
			handleError(err)
		}

		if err := runCreditsBalance(context.Background(), os.Stdout, c); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(creditsCmd)
	creditsCmd.AddCommand(creditsBalanceCmd)
}

func runCreditsBalance(ctx context.Context, w io.Writer, c *codevf.Client) error {
	balance, err := c.GetCreditBalance(ctx)
	if err != nil {
		return err
	}

	printBalance(w, balance, jsonOutput)
	return nil
}
