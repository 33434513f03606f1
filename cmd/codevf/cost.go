package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/codevf/codevf-go/pkg/codevf"
)

var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "Estimate task costs",
}

var costEstimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the credits a task will be charged",
	Long: `Estimate the final credit cost of a task:
ceil(max credits x tier multiplier x tag multiplier).

The tag multiplier comes from --multiplier, or from the service when --tag-id
is given. The estimate is advisory; the service bills authoritatively.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		maxCredits, _ := cmd.Flags().GetInt64("max-credits")
		tierFlag, _ := cmd.Flags().GetString("tier")
		multiplierFlag, _ := cmd.Flags().GetString("multiplier")

		tier, err := codevf.ParseTier(tierFlag)
		if err != nil {
			handleError(err)
		}

		multiplier, err := decimal.NewFromString(multiplierFlag)
		if err != nil {
			handleError(fmt.Errorf("invalid --multiplier %q: %w", multiplierFlag, err))
		}

		if cmd.Flags().Changed("tag-id") {
			tagID, _ := cmd.Flags().GetInt64("tag-id")
			c, err := getClient()
			if err != nil {
				handleError(err)
			}
			multiplier, err = tagMultiplier(context.Background(), c, tagID)
			if err != nil {
				handleError(err)
			}
		}

		if err := runCostEstimate(os.Stdout, maxCredits, tier, multiplier); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(costCmd)
	costCmd.AddCommand(costEstimateCmd)

	f := costEstimateCmd.Flags()
	f.Int64P("max-credits", "c", 0, "Maximum credits of the task (required)")
	f.StringP("tier", "t", string(codevf.TierStandard), "Service tier")
	f.String("multiplier", "1", "Tag cost multiplier")
	f.Int64("tag-id", 0, "Look up the multiplier of this tag")
	costEstimateCmd.MarkFlagRequired("max-credits")
	costEstimateCmd.MarkFlagsMutuallyExclusive("multiplier", "tag-id")
}

// tagMultiplier returns the cost multiplier of an active tag.
func tagMultiplier(ctx context.Context, c *codevf.Client, id int64) (decimal.Decimal, error) {
	tags, err := c.ListTags(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	for _, t := range tags {
		if t.ID == id {
			return t.CostMultiplier, nil
		}
	}
	return decimal.Zero, fmt.Errorf("tag %d not found", id)
}

func runCostEstimate(w io.Writer, maxCredits int64, tier codevf.Tier, multiplier decimal.Decimal) error {
	cost, err := codevf.CalculateFinalCreditCost(maxCredits, tier, multiplier)
	if err != nil {
		return err
	}

	printCost(w, costEstimate{
		MaxCredits:    maxCredits,
		Mode:          tier,
		SLAMultiplier: tier.SLAMultiplier(),
		TagMultiplier: multiplier,
		FinalCost:     cost,
	}, jsonOutput)
	return nil
}
