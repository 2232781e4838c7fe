// Package journal records placed orders and confirmed transactions for
// later auditing.
package journal

import (
	"context"
	"time"
)

// OrderRecord is one placed (or rejected) order.
type OrderRecord struct {
	ID        string
	OrderID   string
	MarketID  int
	TokenID   string
	Side      string
	Price     string
	Maker     string
	Amount    string
	Status    string
	CreatedAt time.Time
}

// TransactionRecord is one confirmed on-chain action.
type TransactionRecord struct {
	ID        string
	Kind      string // approve, split, merge, redeem
	MarketID  int
	TxHash    string
	GasUsed   uint64
	CreatedAt time.Time
}

// Journal persists execution records.
type Journal interface {
	RecordOrder(ctx context.Context, rec *OrderRecord) error
	RecordTransaction(ctx context.Context, rec *TransactionRecord) error
	Close() error
}
