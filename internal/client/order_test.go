package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opiniontrade/clob-go/pkg/types"
)

func limitBuyInput() *types.PlaceOrderInput {
	return &types.PlaceOrderInput{
		MarketID:                7,
		TokenID:                 "100",
		Price:                   "0.01",
		Side:                    types.OrderSideBuy,
		OrderType:               types.OrderTypeLimit,
		MakerAmountInQuoteToken: "6",
	}
}

func TestPlaceOrder_LimitBuy(t *testing.T) {
	api := &fakeAPI{market: activeMarket(), quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	resp, err := c.PlaceOrder(context.Background(), limitBuyInput())
	require.NoError(t, err)
	assert.Equal(t, "o-1", resp.OrderID)

	require.Len(t, api.placed, 1)
	req := api.placed[0]

	// 6 quote tokens at price 0.01 with 18 decimals: the maker/taker pair
	// reproduces the price as the exact fraction 1/100.
	assert.Equal(t, "6000000000000000000", req.MakerAmount)
	assert.Equal(t, "600000000000000000000", req.TakerAmount)
	assert.Equal(t, "0.01", req.Price)
	assert.Equal(t, int(types.OrderTypeLimit), req.TradingMethod)
	assert.Equal(t, 7, req.MarketID)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", req.CurrencyAddress)
	assert.Equal(t, "100", req.TokenID)
	assert.Equal(t, "0", req.Side)
	assert.NotEmpty(t, req.Salt)
	assert.NotEmpty(t, req.Signature)
	assert.NotZero(t, req.Timestamp)
	// Funder defaults to the signing address, so the order verifies as EOA.
	assert.Equal(t, req.Maker, req.Signer)
	assert.Equal(t, "0", req.SignatureType)
}

func TestPlaceOrder_LimitSellWithBaseAmount(t *testing.T) {
	api := &fakeAPI{market: activeMarket(), quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	input := &types.PlaceOrderInput{
		MarketID:               7,
		TokenID:                "101",
		Price:                  "0.5",
		Side:                   types.OrderSideSell,
		OrderType:              types.OrderTypeLimit,
		MakerAmountInBaseToken: "10",
	}
	_, err := c.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	req := api.placed[0]
	// SELL: maker is base tokens, taker is quote; price = taker/maker = 1/2.
	assert.Equal(t, "10000000000000000000", req.MakerAmount)
	assert.Equal(t, "5000000000000000000", req.TakerAmount)
	assert.Equal(t, "1", req.Side)
}

func TestPlaceOrder_MarketBuy(t *testing.T) {
	api := &fakeAPI{market: activeMarket(), quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	input := &types.PlaceOrderInput{
		MarketID:                7,
		TokenID:                 "100",
		Side:                    types.OrderSideBuy,
		OrderType:               types.OrderTypeMarket,
		MakerAmountInQuoteToken: "25",
	}
	_, err := c.PlaceOrder(context.Background(), input)
	require.NoError(t, err)

	req := api.placed[0]
	// Market orders submit price "0" and no taker leg.
	assert.Equal(t, "0", req.Price)
	assert.Equal(t, "25000000000000000000", req.MakerAmount)
	assert.Equal(t, "0", req.TakerAmount)
	assert.Equal(t, int(types.OrderTypeMarket), req.TradingMethod)
}

func TestPlaceOrder_InputRestrictions(t *testing.T) {
	api := &fakeAPI{market: activeMarket(), quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	cases := []struct {
		name  string
		input *types.PlaceOrderInput
	}{
		{
			name: "market buy rejects base amount",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeMarket,
				MakerAmountInBaseToken: "10",
			},
		},
		{
			name: "market sell rejects quote amount",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100",
				Side: types.OrderSideSell, OrderType: types.OrderTypeMarket,
				MakerAmountInQuoteToken: "10",
			},
		},
		{
			name: "both amounts set",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100", Price: "0.5",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeLimit,
				MakerAmountInQuoteToken: "10", MakerAmountInBaseToken: "10",
			},
		},
		{
			name: "neither amount set",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100", Price: "0.5",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeLimit,
			},
		},
		{
			name: "amount below minimum",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100", Price: "0.5",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeLimit,
				MakerAmountInQuoteToken: "0.5",
			},
		},
		{
			name: "price out of range",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100", Price: "1.5",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeLimit,
				MakerAmountInQuoteToken: "10",
			},
		},
		{
			name: "price too precise",
			input: &types.PlaceOrderInput{
				MarketID: 7, TokenID: "100", Price: "0.1234",
				Side: types.OrderSideBuy, OrderType: types.OrderTypeLimit,
				MakerAmountInQuoteToken: "10",
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := c.PlaceOrder(context.Background(), tc.input)
			var invalid *types.InvalidParamError
			require.ErrorAs(t, err, &invalid)
		})
	}
	assert.Empty(t, api.placed)
}

func TestPlaceOrder_WrongChain(t *testing.T) {
	market := activeMarket()
	market.ChainID = "8453"
	api := &fakeAPI{market: market, quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	_, err := c.PlaceOrder(context.Background(), limitBuyInput())
	var invalid *types.InvalidParamError
	require.ErrorAs(t, err, &invalid)
}

func TestPlaceOrdersBatch_SequentialWithFailures(t *testing.T) {
	api := &fakeAPI{market: activeMarket(), quoteTokens: []types.QuoteToken{usdtQuoteToken()}}
	c := newTestClient(t, api, newFakeOrchestrator())

	bad := limitBuyInput()
	bad.Price = "7" // out of range

	results, err := c.PlaceOrdersBatch(context.Background(), []*types.PlaceOrderInput{
		limitBuyInput(), bad, limitBuyInput(),
	})
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Error)
	assert.True(t, results[2].Success)
	// The failure in the middle did not stop the third submission.
	assert.Len(t, api.placed, 2)
}
