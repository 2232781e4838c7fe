package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Show account balances and positions",
	Long: `Display the account's quote token balances held at the exchange,
and optionally its outcome token positions.`,
	RunE: runBalance,
}

var (
	balanceShowPositions bool
	balanceMarket        int
)

func init() {
	rootCmd.AddCommand(balanceCmd)

	balanceCmd.Flags().BoolVarP(&balanceShowPositions, "positions", "p", true, "Show positions")
	balanceCmd.Flags().IntVarP(&balanceMarket, "market", "m", 0, "Restrict positions to one market")
}

func runBalance(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(false)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	balances, err := c.GetMyBalances(ctx)
	if err != nil {
		return fmt.Errorf("get balances: %w", err)
	}

	fmt.Printf("Balances:\n")
	if len(balances) == 0 {
		fmt.Printf("  (none)\n")
	}
	for _, b := range balances {
		fmt.Printf("  %-8s %s\n", b.Symbol, b.Amount)
	}

	if !balanceShowPositions {
		return nil
	}

	positions, total, err := c.GetMyPositions(ctx, balanceMarket, 1, 100)
	if err != nil {
		return fmt.Errorf("get positions: %w", err)
	}

	fmt.Printf("\nPositions (%d total):\n", total)
	if len(positions) == 0 {
		fmt.Printf("  (none)\n")
	}
	for _, p := range positions {
		fmt.Printf("  market=%d %-10s size=%s avg=%s  %s\n",
			p.MarketID, p.Outcome, p.Size, p.AvgPrice, p.MarketTitle)
	}

	return nil
}
