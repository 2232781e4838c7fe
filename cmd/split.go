package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split collateral into a full outcome token set",
	Long: `Lock collateral in the conditional tokens contract and mint one
unit of every outcome token per unit of collateral. The amount is given
in quote token units (e.g. "2.5") and converted using the token's
decimals.`,
	RunE: runSplit,
}

var (
	splitMarket int
	splitAmount string
)

func init() {
	rootCmd.AddCommand(splitCmd)

	splitCmd.Flags().IntVarP(&splitMarket, "market", "m", 0, "Market ID")
	splitCmd.Flags().StringVarP(&splitAmount, "amount", "a", "", "Collateral amount in quote token units")

	_ = splitCmd.MarkFlagRequired("market")
	_ = splitCmd.MarkFlagRequired("amount")
}

func runSplit(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	amount, err := settlementAmount(ctx, c, splitMarket, splitAmount)
	if err != nil {
		return err
	}

	result, err := c.Split(ctx, splitMarket, amount)
	if err != nil {
		return fmt.Errorf("split: %w", err)
	}

	fmt.Printf("Split confirmed: tx=%s gas=%d\n", result.TxHash, result.Receipt.GasUsed)

	return nil
}
