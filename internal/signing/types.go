package signing

import "github.com/opiniontrade/clob-go/pkg/types"

// OrderData is the input for building an order. Amounts are decimal
// strings in settlement units.
type OrderData struct {
	Maker         string
	Taker         string
	TokenID       string
	MakerAmount   string
	TakerAmount   string
	Side          types.OrderSide
	FeeRateBps    string
	Nonce         string
	Signer        string
	Expiration    string
	SignatureType types.SignatureType
}

// Order is the typed order structure that is both signed and submitted.
// Every numeric field is a decimal string so the payload survives JSON
// transport without precision loss.
type Order struct {
	Salt          string `json:"salt"`
	Maker         string `json:"maker"`
	Signer        string `json:"signer"`
	Taker         string `json:"taker"`
	TokenID       string `json:"tokenId"`
	MakerAmount   string `json:"makerAmount"`
	TakerAmount   string `json:"takerAmount"`
	Expiration    string `json:"expiration"`
	Nonce         string `json:"nonce"`
	FeeRateBps    string `json:"feeRateBps"`
	Side          string `json:"side"`
	SignatureType string `json:"signatureType"`
}

// SignedOrder pairs an order with its signature. The order carried here is
// the exact struct that was hashed; callers must submit it unchanged.
type SignedOrder struct {
	Order     *Order
	Signature string
}
