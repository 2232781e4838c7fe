package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List open orders and recent trades",
	RunE:  runOrders,
}

var (
	ordersMarket int
	ordersTrades bool
)

func init() {
	rootCmd.AddCommand(ordersCmd)

	ordersCmd.Flags().IntVarP(&ordersMarket, "market", "m", 0, "Restrict to one market")
	ordersCmd.Flags().BoolVar(&ordersTrades, "trades", false, "Also show recent trades")
}

func runOrders(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(false)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	orders, total, err := c.GetMyOrders(ctx, ordersMarket, "", 1, 100)
	if err != nil {
		return fmt.Errorf("get orders: %w", err)
	}

	fmt.Printf("Open orders (%d total):\n", total)
	if len(orders) == 0 {
		fmt.Printf("  (none)\n")
	}
	for _, o := range orders {
		fmt.Printf("  %s  market=%d token=%s side=%d price=%s status=%s\n",
			o.OrderID, o.MarketID, o.TokenID, o.Side, o.Price, o.Status)
	}

	if !ordersTrades {
		return nil
	}

	trades, total, err := c.GetMyTrades(ctx, ordersMarket, 1, 100)
	if err != nil {
		return fmt.Errorf("get trades: %w", err)
	}

	fmt.Printf("\nTrades (%d total):\n", total)
	if len(trades) == 0 {
		fmt.Printf("  (none)\n")
	}
	for _, t := range trades {
		fmt.Printf("  %s  market=%d token=%s side=%d price=%s amount=%s\n",
			t.TradeID, t.MarketID, t.TokenID, t.Side, t.Price, t.Amount)
	}

	return nil
}
