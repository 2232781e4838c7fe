package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/opiniontrade/clob-go/internal/chain"
	"github.com/opiniontrade/clob-go/internal/client"
	"github.com/opiniontrade/clob-go/internal/journal"
	"github.com/opiniontrade/clob-go/internal/numeric"
	"github.com/opiniontrade/clob-go/internal/restapi"
	"github.com/opiniontrade/clob-go/pkg/cache"
	"github.com/opiniontrade/clob-go/pkg/config"
)

// buildClient wires config, logger, exchange API, journal and (when
// needChain is set) the on-chain orchestrator into a trading client.
func buildClient(needChain bool) (*client.Client, *config.Config, *zap.Logger, error) {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: .env file not found\n")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create logger: %w", err)
	}

	api := restapi.NewClient(cfg.Host, cfg.APIKey, int(cfg.ChainID), logger)

	jrnl, err := buildJournal(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	if !needChain {
		c, err := client.New(cfg, api, nil, jrnl, logger)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create client: %w", err)
		}
		return c, cfg, logger, nil
	}

	if cfg.RPCURL == "" {
		return nil, nil, nil, fmt.Errorf("RPC_URL not set")
	}

	backend, err := chain.Dial(cfg.RPCURL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("dial rpc: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("parse private key: %w", err)
	}

	decimalsCache, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create decimals cache: %w", err)
	}

	orch := chain.NewOrchestrator(
		backend,
		key,
		common.HexToAddress(cfg.ConditionalTokensAddr),
		decimalsCache,
		logger,
	)

	c, err := client.New(cfg, api, orch, jrnl, logger)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("create client: %w", err)
	}
	return c, cfg, logger, nil
}

func buildJournal(cfg *config.Config, logger *zap.Logger) (journal.Journal, error) {
	if cfg.JournalMode != "postgres" {
		return journal.NewConsoleJournal(logger), nil
	}

	jrnl, err := journal.NewPostgresJournal(&journal.PostgresConfig{
		Host:     cfg.PostgresHost,
		Port:     cfg.PostgresPort,
		User:     cfg.PostgresUser,
		Password: cfg.PostgresPass,
		Database: cfg.PostgresDB,
		SSLMode:  cfg.PostgresSSL,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	return jrnl, nil
}

// settlementAmount converts a human-readable collateral amount into
// settlement units using the market's quote token decimals.
func settlementAmount(ctx context.Context, c *client.Client, marketID int, amount string) (*big.Int, error) {
	market, err := c.GetMarket(ctx, marketID)
	if err != nil {
		return nil, fmt.Errorf("get market: %w", err)
	}

	tokens, err := c.GetQuoteTokens(ctx)
	if err != nil {
		return nil, fmt.Errorf("get quote tokens: %w", err)
	}

	decimals := -1
	for _, tok := range tokens {
		if strings.EqualFold(tok.QuoteTokenAddress, market.QuoteToken) {
			decimals = tok.Decimals
			break
		}
	}
	if decimals < 0 {
		return nil, fmt.Errorf("quote token %s not supported", market.QuoteToken)
	}

	rat, err := numeric.ParseAmountRat(amount, "amount")
	if err != nil {
		return nil, err
	}

	return numeric.RatToSettlementUnits(rat, decimals)
}
