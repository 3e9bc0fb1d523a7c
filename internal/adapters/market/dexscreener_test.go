package market

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/domain"
)

func TestTokenSnapshotPicksDeepestPool(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/tokens/0xabc", r.URL.Path)
		fmt.Fprint(w, `{"pairs":[
			{"baseToken":{"symbol":"RST","name":"Roost"},"priceUsd":"0.40","liquidity":{"usd":500},"volume":{"h24":100},"marketCap":40000},
			{"baseToken":{"symbol":"RST","name":"Roost"},"priceUsd":"0.50","liquidity":{"usd":9000},"volume":{"h24":2000},"marketCap":50000}
		]}`)
	}))
	t.Cleanup(server.Close)

	ds := NewDexScreener(server.URL, nil)

	snapshot, err := ds.TokenSnapshot(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, "RST", snapshot.Symbol)
	assert.Equal(t, 0.50, snapshot.PriceUSD)
	assert.Equal(t, 9000.0, snapshot.LiquidityUSD)
	assert.Equal(t, 50000.0, snapshot.MarketCapUSD)
}

func TestTokenSnapshotNoPairsIsNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"pairs":[]}`)
	}))
	t.Cleanup(server.Close)

	ds := NewDexScreener(server.URL, nil)

	_, err := ds.TokenSnapshot(context.Background(), "0xdead")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTokenSnapshotUpstreamFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	ds := NewDexScreener(server.URL, nil)

	_, err := ds.TokenSnapshot(context.Background(), "0xabc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
