package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/opiniontrade/clob-go/pkg/types"
)

var placeOrderCmd = &cobra.Command{
	Use:   "place-order",
	Short: "Place a signed order",
	Long: `Build, sign and submit one order.

Exactly one of --quote-amount and --base-amount must be given:
limit buys take --quote-amount, limit sells take either, market buys
take --quote-amount, market sells take --base-amount.`,
	RunE: runPlaceOrder,
}

var (
	orderMarket      int
	orderToken       string
	orderPrice       string
	orderSide        string
	orderType        string
	orderQuoteAmount string
	orderBaseAmount  string
)

func init() {
	rootCmd.AddCommand(placeOrderCmd)

	placeOrderCmd.Flags().IntVarP(&orderMarket, "market", "m", 0, "Market ID")
	placeOrderCmd.Flags().StringVarP(&orderToken, "token", "t", "", "Outcome token ID")
	placeOrderCmd.Flags().StringVarP(&orderPrice, "price", "p", "", "Limit price (0-1 exclusive)")
	placeOrderCmd.Flags().StringVarP(&orderSide, "side", "s", "buy", "Order side (buy, sell)")
	placeOrderCmd.Flags().StringVar(&orderType, "type", "limit", "Order type (limit, market)")
	placeOrderCmd.Flags().StringVar(&orderQuoteAmount, "quote-amount", "", "Amount in quote token")
	placeOrderCmd.Flags().StringVar(&orderBaseAmount, "base-amount", "", "Amount in outcome tokens")

	_ = placeOrderCmd.MarkFlagRequired("market")
	_ = placeOrderCmd.MarkFlagRequired("token")
}

func runPlaceOrder(cmd *cobra.Command, args []string) error {
	side := types.OrderSideBuy
	switch orderSide {
	case "buy":
	case "sell":
		side = types.OrderSideSell
	default:
		return fmt.Errorf("invalid side %q, want buy or sell", orderSide)
	}

	orderKind := types.OrderTypeLimit
	switch orderType {
	case "limit":
	case "market":
		orderKind = types.OrderTypeMarket
	default:
		return fmt.Errorf("invalid type %q, want limit or market", orderType)
	}

	c, _, logger, err := buildClient(false)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	input := &types.PlaceOrderInput{
		MarketID:                orderMarket,
		TokenID:                 orderToken,
		Price:                   orderPrice,
		Side:                    side,
		OrderType:               orderKind,
		MakerAmountInQuoteToken: orderQuoteAmount,
		MakerAmountInBaseToken:  orderBaseAmount,
	}

	resp, err := c.PlaceOrder(context.Background(), input)
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}

	fmt.Printf("Order placed: id=%s status=%s\n", resp.OrderID, resp.Status)

	return nil
}
