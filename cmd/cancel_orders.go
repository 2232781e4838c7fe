package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opiniontrade/clob-go/pkg/types"
)

var cancelOrdersCmd = &cobra.Command{
	Use:   "cancel-orders [order-id...]",
	Short: "Cancel orders by ID, or sweep a whole market",
	Long: `Cancel the given order IDs one by one, reporting a per-order
outcome. With --all, sweep every open order on a market instead,
optionally restricted to one side.`,
	RunE: runCancelOrders,
}

var (
	cancelAll    bool
	cancelMarket int
	cancelSide   string
)

func init() {
	rootCmd.AddCommand(cancelOrdersCmd)

	cancelOrdersCmd.Flags().BoolVar(&cancelAll, "all", false, "Cancel all open orders on --market")
	cancelOrdersCmd.Flags().IntVarP(&cancelMarket, "market", "m", 0, "Market ID (required with --all)")
	cancelOrdersCmd.Flags().StringVarP(&cancelSide, "side", "s", "", "Restrict --all to one side (buy, sell)")
}

func runCancelOrders(cmd *cobra.Command, args []string) error {
	if !cancelAll && len(args) == 0 {
		return fmt.Errorf("no order IDs given (use --all to sweep a market)")
	}
	if cancelAll && cancelMarket <= 0 {
		return fmt.Errorf("--all requires --market")
	}

	var side *types.OrderSide
	switch cancelSide {
	case "":
	case "buy":
		s := types.OrderSideBuy
		side = &s
	case "sell":
		s := types.OrderSideSell
		side = &s
	default:
		return fmt.Errorf("invalid side %q, want buy or sell", cancelSide)
	}

	c, _, logger, err := buildClient(false)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	if cancelAll {
		result, err := c.CancelAllOrders(ctx, cancelMarket, side)
		if err != nil {
			return fmt.Errorf("cancel all orders: %w", err)
		}

		fmt.Printf("Cancelled %d/%d order(s), %d failed.\n",
			result.Cancelled, result.TotalOrders, result.Failed)
		for _, r := range result.Results {
			if !r.Success {
				fmt.Printf("  %s: %s\n", r.OrderID, r.Error)
			}
		}
		return nil
	}

	results, err := c.CancelOrdersBatch(ctx, args)
	if err != nil {
		return fmt.Errorf("cancel orders: %w", err)
	}

	for _, r := range results {
		if r.Success {
			fmt.Printf("  %s: cancelled\n", r.OrderID)
		} else {
			fmt.Printf("  %s: %s\n", r.OrderID, r.Error)
		}
	}

	return nil
}
