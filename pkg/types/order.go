package types

import (
	"github.com/ethereum/go-ethereum/core/types"
)

// OrderSide is the direction of an order.
type OrderSide int

const (
	OrderSideBuy OrderSide = iota
	OrderSideSell
)

func (s OrderSide) String() string {
	if s == OrderSideSell {
		return "SELL"
	}

	return "BUY"
}

// OrderType distinguishes market from limit orders. The numeric values
// match the exchange API's trading_method field.
type OrderType int

const (
	OrderTypeMarket OrderType = iota + 1
	OrderTypeLimit
)

// SignatureType tags how an order signature must be verified on-chain.
type SignatureType int

const (
	SignatureTypeEOA SignatureType = iota
	SignatureTypeGnosisSafe
	SignatureTypeProxy
)

// OpenOrder is one entry of the user's order listing.
type OpenOrder struct {
	OrderID  string `json:"order_id"`
	MarketID int    `json:"market_id"`
	TokenID  string `json:"token_id"`
	Side     int    `json:"side"`
	Price    string `json:"price"`
	Status   string `json:"status"`
}

// PlaceOrderInput is the caller-facing request for placing an order.
// Exactly one of MakerAmountInQuoteToken / MakerAmountInBaseToken must be
// set; which one is allowed depends on side and order type.
type PlaceOrderInput struct {
	MarketID                int
	TokenID                 string
	Price                   string
	Side                    OrderSide
	OrderType               OrderType
	MakerAmountInQuoteToken string
	MakerAmountInBaseToken  string
}

// OrderResponse is the submission acknowledgement from the exchange.
type OrderResponse struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// TransactionResult packages a confirmed on-chain action. It is created
// only after the receipt arrives and is immutable afterwards.
type TransactionResult struct {
	TxHash  string
	Receipt *types.Receipt
	// Event is the first log emitted by the transaction, best effort.
	Event *types.Log
}

// BatchOrderResult is the per-item outcome of a batch order placement.
type BatchOrderResult struct {
	Index   int
	Success bool
	Result  *OrderResponse
	Error   string
	Order   *PlaceOrderInput
}

// BatchCancelResult is the per-item outcome of a batch cancellation.
type BatchCancelResult struct {
	Index   int
	Success bool
	Error   string
	OrderID string
}

// CancelAllOrdersResult summarizes a cancel-all sweep.
type CancelAllOrdersResult struct {
	TotalOrders int
	Cancelled   int
	Failed      int
	Results     []BatchCancelResult
}
