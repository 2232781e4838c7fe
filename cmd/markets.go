package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opiniontrade/clob-go/pkg/types"
)

var marketsCmd = &cobra.Command{
	Use:   "markets",
	Short: "List markets or show one market",
	Long: `List markets known to the exchange, or show a single market's
detail (condition ID, quote token, options) with --market.`,
	RunE: runMarkets,
}

var (
	marketsID     int
	marketsPage   int
	marketsLimit  int
	marketsStatus string
)

func init() {
	rootCmd.AddCommand(marketsCmd)

	marketsCmd.Flags().IntVarP(&marketsID, "market", "m", 0, "Show one market by ID")
	marketsCmd.Flags().IntVar(&marketsPage, "page", 1, "Page number")
	marketsCmd.Flags().IntVar(&marketsLimit, "limit", 20, "Page size")
	marketsCmd.Flags().StringVar(&marketsStatus, "status", "", "Filter by status (activated, resolved)")
}

func runMarkets(cmd *cobra.Command, args []string) error {
	c, _, logger, err := buildClient(false)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	ctx := context.Background()

	if marketsID > 0 {
		market, err := c.GetMarket(ctx, marketsID)
		if err != nil {
			return fmt.Errorf("get market: %w", err)
		}

		fmt.Printf("Market %d: %s\n", market.MarketID, market.Title)
		fmt.Printf("  Status:       %s\n", market.Status)
		fmt.Printf("  Chain:        %s\n", market.ChainID)
		fmt.Printf("  Condition ID: %s\n", market.ConditionID)
		fmt.Printf("  Quote token:  %s\n", market.QuoteToken)
		for _, opt := range market.Options {
			fmt.Printf("  Option %-12s token=%s price=%s\n", opt.Name, opt.TokenID, opt.Price)
		}
		return nil
	}

	markets, total, err := c.GetMarkets(ctx, marketsPage, marketsLimit, types.MarketStatusFilter(marketsStatus))
	if err != nil {
		return fmt.Errorf("list markets: %w", err)
	}

	fmt.Printf("Markets (page %d, %d total):\n\n", marketsPage, total)
	for _, m := range markets {
		fmt.Printf("  %6d  %-10s  %s\n", m.MarketID, m.Status, m.Title)
	}

	return nil
}
