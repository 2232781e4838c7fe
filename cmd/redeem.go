package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/pkg/healthprobe"
	"github.com/opiniontrade/clob-go/pkg/httpserver"
)

var redeemCmd = &cobra.Command{
	Use:   "redeem",
	Short: "Redeem winning outcome tokens for collateral",
	Long: `Redeem the account's outcome tokens on a resolved market.

With --auto the command keeps polling the market and redeems as soon as
it resolves, exposing /metrics and /health while it waits. Stop it with
Ctrl-C.`,
	RunE: runRedeem,
}

var (
	redeemMarket   int
	redeemAuto     bool
	redeemInterval time.Duration
)

func init() {
	rootCmd.AddCommand(redeemCmd)

	redeemCmd.Flags().IntVarP(&redeemMarket, "market", "m", 0, "Market ID")
	redeemCmd.Flags().BoolVar(&redeemAuto, "auto", false, "Wait for resolution, then redeem")
	redeemCmd.Flags().DurationVar(&redeemInterval, "interval", time.Minute, "Poll interval for --auto")

	_ = redeemCmd.MarkFlagRequired("market")
}

func runRedeem(cmd *cobra.Command, args []string) error {
	c, cfg, logger, err := buildClient(true)
	if err != nil {
		return err
	}
	defer func() {
		_ = c.Close()
		_ = logger.Sync()
	}()

	if !redeemAuto {
		result, err := c.Redeem(context.Background(), redeemMarket)
		if err != nil {
			return fmt.Errorf("redeem: %w", err)
		}

		fmt.Printf("Redeem confirmed: tx=%s gas=%d\n", result.TxHash, result.Receipt.GasUsed)
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	health := healthprobe.New()
	srv := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: health,
	})
	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("http-server-failed", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	health.SetReady(true)

	logger.Info("auto-redeem-started",
		zap.Int("market-id", redeemMarket),
		zap.Duration("interval", redeemInterval))

	ticker := time.NewTicker(redeemInterval)
	defer ticker.Stop()

	for {
		market, err := c.GetMarket(ctx, redeemMarket)
		if err != nil {
			logger.Warn("market-poll-failed", zap.Error(err))
		} else if market.Status.RedeemAllowed() {
			result, err := c.Redeem(ctx, redeemMarket)
			if err != nil {
				return fmt.Errorf("redeem: %w", err)
			}

			fmt.Printf("Redeem confirmed: tx=%s gas=%d\n", result.TxHash, result.Receipt.GasUsed)
			return nil
		} else {
			logger.Info("market-not-resolved",
				zap.Int("market-id", redeemMarket),
				zap.String("status", market.Status.String()))
		}

		select {
		case <-ctx.Done():
			logger.Info("auto-redeem-stopped")
			return nil
		case <-ticker.C:
		}
	}
}
