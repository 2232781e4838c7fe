package journal

import (
	"context"

	"go.uber.org/zap"
)

// ConsoleJournal implements Journal by logging records. Useful for
// development and as the default when no database is configured.
type ConsoleJournal struct {
	logger *zap.Logger
}

// NewConsoleJournal creates a console journal.
func NewConsoleJournal(logger *zap.Logger) *ConsoleJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleJournal{logger: logger}
}

// RecordOrder logs an order record.
func (c *ConsoleJournal) RecordOrder(ctx context.Context, rec *OrderRecord) error {
	c.logger.Info("order-record",
		zap.String("order-id", rec.OrderID),
		zap.Int("market-id", rec.MarketID),
		zap.String("token-id", rec.TokenID),
		zap.String("side", rec.Side),
		zap.String("price", rec.Price),
		zap.String("amount", rec.Amount),
		zap.String("status", rec.Status))
	return nil
}

// RecordTransaction logs a transaction record.
func (c *ConsoleJournal) RecordTransaction(ctx context.Context, rec *TransactionRecord) error {
	c.logger.Info("transaction-record",
		zap.String("kind", rec.Kind),
		zap.Int("market-id", rec.MarketID),
		zap.String("tx-hash", rec.TxHash),
		zap.Uint64("gas-used", rec.GasUsed))
	return nil
}

// Close is a no-op for the console journal.
func (c *ConsoleJournal) Close() error {
	return nil
}
