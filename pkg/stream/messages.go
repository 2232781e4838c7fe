package stream

// WebSocket action verbs understood by the push gateway.
const (
	ActionHeartbeat   = "HEARTBEAT"
	ActionSubscribe   = "SUBSCRIBE"
	ActionUnsubscribe = "UNSUBSCRIBE"
)

// Channels the gateway publishes on.
const (
	ChannelOrderUpdate     = "trade.order.update"
	ChannelTradeRecord     = "trade.record.new"
	ChannelMarketDepthDiff = "market.depth.diff"
	ChannelMarketLastPrice = "market.last.price"
	ChannelMarketLastTrade = "market.last.trade"
)

// Push payload msgType discriminators.
const (
	msgTypeOrderUpdate = "orderUpdate"
	msgTypeTradeRecord = "tradeRecord"
	msgTypeDepthDiff   = "depthDiff"
	msgTypeLastPrice   = "lastPrice"
	msgTypeLastTrade   = "lastTrade"
)

type subscribeMessage struct {
	Action   string `json:"action"`
	Channel  string `json:"channel"`
	MarketID int64  `json:"marketId"`
}

type heartbeatMessage struct {
	Action string `json:"action"`
}

// OrderUpdate reports a state change on one of the account's orders.
type OrderUpdate struct {
	OrderUpdateType string `json:"orderUpdateType"`
	MarketID        int64  `json:"marketId"`
	OrderID         string `json:"orderId"`
	Side            int    `json:"side"`
	Price           string `json:"price"`
	Shares          string `json:"shares"`
	Amount          string `json:"amount"`
	Status          int    `json:"status"`
	TradingMethod   int    `json:"tradingMethod"`
	QuoteToken      string `json:"quoteToken"`
	FilledShares    string `json:"filledShares"`
	FilledAmount    string `json:"filledAmount"`
	CreatedAt       int64  `json:"createdAt"`
	ExpiresAt       int64  `json:"expiresAt"`
	ChainID         string `json:"chainId"`
	MsgType         string `json:"msgType"`
}

// TradeRecord reports an executed fill.
type TradeRecord struct {
	OrderID    string `json:"orderId"`
	TradeNo    string `json:"tradeNo"`
	MarketID   int64  `json:"marketId"`
	TxHash     string `json:"txHash"`
	Side       string `json:"side"`
	Price      string `json:"price"`
	Shares     string `json:"shares"`
	Amount     string `json:"amount"`
	Status     int    `json:"status"`
	QuoteToken string `json:"quoteToken"`
	Fee        string `json:"fee"`
	ChainID    string `json:"chainId"`
	CreatedAt  int64  `json:"createdAt"`
	MsgType    string `json:"msgType"`
}

// DepthDiff reports a single price-level change in an orderbook.
type DepthDiff struct {
	MarketID int64  `json:"marketId"`
	TokenID  string `json:"tokenId"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Size     string `json:"size"`
	MsgType  string `json:"msgType"`
}

// LastPrice reports a change to a token's last traded price.
type LastPrice struct {
	TokenID  string `json:"tokenId"`
	Price    string `json:"price"`
	MarketID int64  `json:"marketId"`
	MsgType  string `json:"msgType"`
}

// LastTrade reports the most recent trade on a market.
type LastTrade struct {
	TokenID  string `json:"tokenId"`
	Side     string `json:"side"`
	Price    string `json:"price"`
	Shares   string `json:"shares"`
	Amount   string `json:"amount"`
	MarketID int64  `json:"marketId"`
	MsgType  string `json:"msgType"`
}

// Message is one decoded push event. Exactly one of the payload
// pointers is set, matching MsgType.
type Message struct {
	MsgType     string
	OrderUpdate *OrderUpdate
	Trade       *TradeRecord
	Depth       *DepthDiff
	LastPrice   *LastPrice
	LastTrade   *LastTrade
}
