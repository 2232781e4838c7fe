package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge a full outcome token set back into collateral",
	Long: `Burn one unit of every outcome token per unit of collateral and
release the locked collateral. The amount is given in quote token units
and converted using the token's decimals.`,
	RunE: runMerge,
}

var (
	mergeMarket int
	mergeAmount string
)

func init() {
	rootCmd.AddCommand(mergeCmd)

	mergeCmd.Flags().IntVarP(&mergeMarket, "market", "m", 0, "Market ID")
	mergeCmd.Flags().StringVarP(&mergeAmount, "amount", "a", "", "Collateral amount in quote token units")

	_ = mergeCmd.MarkFlagRequired("market")
	_ = mergeCmd.MarkFlagRequired("amount")
}

func runMerge(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	amount, err := settlementAmount(ctx, c, mergeMarket, mergeAmount)
	if err != nil {
		return err
	}

	result, err := c.Merge(ctx, mergeMarket, amount)
	if err != nil {
		return fmt.Errorf("merge: %w", err)
	}

	fmt.Printf("Merge confirmed: tx=%s gas=%d\n", result.TxHash, result.Receipt.GasUsed)

	return nil
}
