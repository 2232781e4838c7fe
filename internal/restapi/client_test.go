package restapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opiniontrade/clob-go/internal/signing"
	"github.com/opiniontrade/clob-go/pkg/types"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	return NewClient(server.URL, "test-key", 56, nil), server
}

func TestGetQuoteTokens(t *testing.T) {
	var gotPath, gotKey, gotRequestID string
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		gotRequestID = r.Header.Get("X-Request-Id")
		assert.Equal(t, "56", r.URL.Query().Get("chainId"))
		io.WriteString(w, `{"errno":0,"result":{"list":[
			{"symbol":"USDT","quoteTokenAddress":"0xaa","ctfExchangeAddress":"0xbb","decimal":18}
		],"total":1}}`)
	})
	defer server.Close()

	tokens, err := client.GetQuoteTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "USDT", tokens[0].Symbol)
	assert.Equal(t, 18, tokens[0].Decimals)
	assert.Equal(t, "/quoteToken", gotPath)
	assert.Equal(t, "test-key", gotKey)
	assert.NotEmpty(t, gotRequestID)
}

func TestNonZeroErrno(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errno":1001,"errmsg":"order not found"}`)
	})
	defer server.Close()

	_, err := client.GetOrder(context.Background(), "42")

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 1001, apiErr.Errno)
	assert.Equal(t, "order not found", apiErr.Message)
}

func TestMissingResult(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"errno":0}`)
	})
	defer server.Close()

	_, err := client.GetMyBalances(context.Background())

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Contains(t, apiErr.Message, "missing result")
}

func TestHTTPErrorStatus(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream down")
	})
	defer server.Close()

	_, err := client.GetQuoteTokens(context.Background())

	var apiErr *types.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Errno)
	assert.Contains(t, apiErr.Message, "upstream down")
}

func TestGetMarkets(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/market", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		assert.Equal(t, "activated", r.URL.Query().Get("status"))
		io.WriteString(w, `{"errno":0,"result":{"list":[
			{"marketId":7,"marketTitle":"Example","status":2,"chainId":"56","conditionId":"0x01"}
		],"total":41}}`)
	})
	defer server.Close()

	markets, total, err := client.GetMarkets(context.Background(), 2, 20, types.MarketStatusFilterActivated)
	require.NoError(t, err)
	require.Len(t, markets, 1)
	assert.Equal(t, 7, markets[0].MarketID)
	assert.Equal(t, types.MarketStatusActivated, markets[0].Status)
	assert.Equal(t, 41, total)
}

func TestPlaceOrder_PayloadShape(t *testing.T) {
	var body map[string]interface{}
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/order", r.URL.Path)
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &body))
		io.WriteString(w, `{"errno":0,"result":{"data":{"order_id":"o-1","status":"open"}}}`)
	})
	defer server.Close()

	req := &PlaceOrderRequest{
		Order: &signing.Order{
			Salt:          "12345",
			Maker:         "0xmaker",
			Signer:        "0xmaker",
			Taker:         "0x0000000000000000000000000000000000000000",
			TokenID:       "99",
			MakerAmount:   "6000000000000000000",
			TakerAmount:   "600000000000000000000",
			Expiration:    "0",
			Nonce:         "0",
			FeeRateBps:    "0",
			Side:          "0",
			SignatureType: "2",
		},
		Signature:       "0xsig",
		MarketID:        7,
		CurrencyAddress: "0xaa",
		Price:           "0.01",
		TradingMethod:   int(types.OrderTypeLimit),
		Timestamp:       1700000000,
	}

	resp, err := client.PlaceOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "o-1", resp.OrderID)

	// Order fields flatten into the top-level payload, all as strings.
	assert.Equal(t, "12345", body["salt"])
	assert.Equal(t, "6000000000000000000", body["makerAmount"])
	assert.Equal(t, "600000000000000000000", body["takerAmount"])
	assert.Equal(t, "2", body["signatureType"])
	assert.Equal(t, "0xsig", body["signature"])
	assert.Equal(t, float64(7), body["marketId"])
	assert.Equal(t, "0.01", body["price"])
	assert.Equal(t, float64(2), body["tradingMethod"])
}

func TestCancelOrder(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]string
		require.NoError(t, json.Unmarshal(raw, &body))
		assert.Equal(t, "o-9", body["orderId"])
		io.WriteString(w, `{"errno":0,"result":{}}`)
	})
	defer server.Close()

	assert.NoError(t, client.CancelOrder(context.Background(), "o-9"))
}

func TestGetLatestPrice(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "77", r.URL.Query().Get("tokenId"))
		io.WriteString(w, `{"errno":0,"result":{"data":{"price":"0.123"}}}`)
	})
	defer server.Close()

	price, err := client.GetLatestPrice(context.Background(), "77")
	require.NoError(t, err)
	assert.Equal(t, "0.123", price)
}
