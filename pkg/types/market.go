package types

// MarketStatus is the lifecycle state reported by the exchange API.
type MarketStatus int

const (
	MarketStatusCreated MarketStatus = iota + 1
	MarketStatusActivated
	MarketStatusResolving
	MarketStatusResolved
	MarketStatusFailed
	MarketStatusDeleted
)

func (s MarketStatus) String() string {
	switch s {
	case MarketStatusCreated:
		return "created"
	case MarketStatusActivated:
		return "activated"
	case MarketStatusResolving:
		return "resolving"
	case MarketStatusResolved:
		return "resolved"
	case MarketStatusFailed:
		return "failed"
	case MarketStatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// SplitAllowed reports whether split/merge is permitted in this state.
func (s MarketStatus) SplitAllowed() bool {
	return s == MarketStatusActivated || s == MarketStatusResolving || s == MarketStatusResolved
}

// RedeemAllowed reports whether redemption is permitted in this state.
func (s MarketStatus) RedeemAllowed() bool {
	return s == MarketStatusResolved
}

// MarketStatusFilter narrows market list queries.
type MarketStatusFilter string

const (
	MarketStatusFilterAll       MarketStatusFilter = ""
	MarketStatusFilterActivated MarketStatusFilter = "activated"
	MarketStatusFilterResolved  MarketStatusFilter = "resolved"
)

// MarketOption is one tradeable outcome of a market.
type MarketOption struct {
	TokenID string `json:"tokenId"`
	Name    string `json:"optionName"`
	Price   string `json:"price"`
}

// Market is the market detail payload returned by the exchange API.
type Market struct {
	MarketID    int            `json:"marketId"`
	Title       string         `json:"marketTitle"`
	Status      MarketStatus   `json:"status"`
	ChainID     string         `json:"chainId"`
	ConditionID string         `json:"conditionId"`
	QuoteToken  string         `json:"quoteToken"`
	Options     []MarketOption `json:"options"`
	CutoffAt    int64          `json:"cutoffAt"`
	ResolvedAt  int64          `json:"resolvedAt"`
}

// QuoteToken describes a collateral token supported by the exchange,
// together with the exchange contract that settles orders in it.
type QuoteToken struct {
	Symbol             string `json:"symbol"`
	QuoteTokenAddress  string `json:"quoteTokenAddress"`
	CTFExchangeAddress string `json:"ctfExchangeAddress"`
	Decimals           int    `json:"decimal"`
}

// OrderbookLevel is a single price level.
type OrderbookLevel struct {
	Price string `json:"price"`
	Size  string `json:"size"`
}

// Orderbook is the book snapshot for one token.
type Orderbook struct {
	TokenID string           `json:"tokenId"`
	Bids    []OrderbookLevel `json:"bids"`
	Asks    []OrderbookLevel `json:"asks"`
}

// Balance is one entry of the user balance listing.
type Balance struct {
	TokenID string `json:"tokenId"`
	Symbol  string `json:"symbol"`
	Amount  string `json:"amount"`
}

// Position is one entry of the user position listing.
type Position struct {
	MarketID    int    `json:"marketId"`
	MarketTitle string `json:"marketTitle"`
	TokenID     string `json:"tokenId"`
	Outcome     string `json:"outcome"`
	Size        string `json:"size"`
	AvgPrice    string `json:"avgPrice"`
}

// Trade is one entry of the user trade history.
type Trade struct {
	TradeID   string `json:"tradeId"`
	MarketID  int    `json:"marketId"`
	TokenID   string `json:"tokenId"`
	Side      int    `json:"side"`
	Price     string `json:"price"`
	Amount    string `json:"amount"`
	Timestamp int64  `json:"timestamp"`
}
