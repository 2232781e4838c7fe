package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/opiniontrade/clob-go/pkg/config"
	"github.com/opiniontrade/clob-go/pkg/stream"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live market events",
	Long: `Subscribe to a market's push feed and print depth changes, last
prices, trades and own-order updates as they arrive. Stop with Ctrl-C.`,
	RunE: runWatch,
}

var (
	watchMarket int64
	watchOrders bool
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Int64VarP(&watchMarket, "market", "m", 0, "Market ID")
	watchCmd.Flags().BoolVar(&watchOrders, "orders", false, "Include own-order updates")

	_ = watchCmd.MarkFlagRequired("market")
}

func runWatch(cmd *cobra.Command, args []string) error {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	client, err := stream.New(stream.Config{
		URL:    cfg.StreamURL,
		APIKey: cfg.APIKey,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("create stream client: %w", err)
	}

	if err := client.Start(); err != nil {
		return fmt.Errorf("start stream client: %w", err)
	}
	defer func() {
		_ = client.Close()
	}()

	channels := []string{
		stream.ChannelMarketDepthDiff,
		stream.ChannelMarketLastPrice,
		stream.ChannelMarketLastTrade,
	}
	if watchOrders {
		channels = append(channels, stream.ChannelOrderUpdate, stream.ChannelTradeRecord)
	}
	for _, ch := range channels {
		if err := client.Subscribe(ch, watchMarket); err != nil {
			return fmt.Errorf("subscribe %s: %w", ch, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching market %d (Ctrl-C to stop)...\n", watchMarket)

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-client.MessageChan():
			if !ok {
				return nil
			}
			printStreamMessage(msg)
		}
	}
}

func printStreamMessage(msg *stream.Message) {
	switch {
	case msg.Depth != nil:
		fmt.Printf("depth  token=%s %s %s x %s\n",
			msg.Depth.TokenID, msg.Depth.Side, msg.Depth.Price, msg.Depth.Size)
	case msg.LastPrice != nil:
		fmt.Printf("price  token=%s %s\n", msg.LastPrice.TokenID, msg.LastPrice.Price)
	case msg.LastTrade != nil:
		fmt.Printf("trade  token=%s %s %s x %s\n",
			msg.LastTrade.TokenID, msg.LastTrade.Side, msg.LastTrade.Price, msg.LastTrade.Shares)
	case msg.OrderUpdate != nil:
		fmt.Printf("order  %s status=%d filled=%s\n",
			msg.OrderUpdate.OrderID, msg.OrderUpdate.Status, msg.OrderUpdate.FilledShares)
	case msg.Trade != nil:
		fmt.Printf("fill   order=%s %s %s x %s fee=%s\n",
			msg.Trade.OrderID, msg.Trade.Side, msg.Trade.Price, msg.Trade.Shares, msg.Trade.Fee)
	}
}
