package journal

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// PostgresJournal implements Journal using PostgreSQL.
type PostgresJournal struct {
	db     *sql.DB
	logger *zap.Logger
}

// PostgresConfig holds PostgreSQL configuration.
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
	Logger   *zap.Logger
}

// NewPostgresJournal creates a journal backed by PostgreSQL.
func NewPostgresJournal(cfg *PostgresConfig) (*PostgresJournal, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	cfg.Logger.Info("postgres-journal-connected",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Database))

	return &PostgresJournal{db: db, logger: cfg.Logger}, nil
}

// newPostgresJournalWithDB is used by tests to inject a mock connection.
func newPostgresJournalWithDB(db *sql.DB, logger *zap.Logger) *PostgresJournal {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresJournal{db: db, logger: logger}
}

// RecordOrder stores an order record.
func (p *PostgresJournal) RecordOrder(ctx context.Context, rec *OrderRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO orders (
			id, order_id, market_id, token_id, side, price, maker, amount,
			status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.OrderID,
		rec.MarketID,
		rec.TokenID,
		rec.Side,
		rec.Price,
		rec.Maker,
		rec.Amount,
		rec.Status,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order record: %w", err)
	}

	p.logger.Debug("order-recorded",
		zap.String("record-id", rec.ID),
		zap.String("order-id", rec.OrderID))

	return nil
}

// RecordTransaction stores a transaction record.
func (p *PostgresJournal) RecordTransaction(ctx context.Context, rec *TransactionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO transactions (
			id, kind, market_id, tx_hash, gas_used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := p.db.ExecContext(ctx, query,
		rec.ID,
		rec.Kind,
		rec.MarketID,
		rec.TxHash,
		rec.GasUsed,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction record: %w", err)
	}

	p.logger.Debug("transaction-recorded",
		zap.String("record-id", rec.ID),
		zap.String("tx-hash", rec.TxHash))

	return nil
}

// Close closes the database connection.
func (p *PostgresJournal) Close() error {
	p.logger.Info("closing-postgres-journal")
	return p.db.Close()
}
