package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const (
	// DefaultBaseURL is the public DexScreener API root.
	DefaultBaseURL = "https://api.dexscreener.com"

	defaultRequestTimeout = 15 * time.Second
)

// DexScreener fetches token market snapshots from the DexScreener pair API.
// No authentication is required.
type DexScreener struct {
	baseURL string
	http    *http.Client
}

var _ ports.MarketData = (*DexScreener)(nil)

func NewDexScreener(baseURL string, httpClient *http.Client) *DexScreener {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	return &DexScreener{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

type pairPayload struct {
	BaseToken struct {
		Symbol string `json:"symbol"`
		Name   string `json:"name"`
	} `json:"baseToken"`
	PriceUSD  string `json:"priceUsd"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Volume struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	MarketCap float64 `json:"marketCap"`
}

type tokensPayload struct {
	Pairs []pairPayload `json:"pairs"`
}

func (d *DexScreener) TokenSnapshot(ctx context.Context, address string) (domain.TokenSnapshot, error) {
	endpoint := d.baseURL + "/latest/dex/tokens/" + address
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.TokenSnapshot{}, fmt.Errorf("create request: %w", err)
	}

	response, err := d.http.Do(request)
	if err != nil {
		return domain.TokenSnapshot{}, fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return domain.TokenSnapshot{}, fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return domain.TokenSnapshot{}, fmt.Errorf("status %d: %s", response.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload tokensPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.TokenSnapshot{}, fmt.Errorf("decode payload: %w", err)
	}
	if len(payload.Pairs) == 0 {
		return domain.TokenSnapshot{}, fmt.Errorf("token %s: %w", address, domain.ErrNotFound)
	}

	// The same token trades on multiple pools; the deepest one is the most
	// representative.
	best := payload.Pairs[0]
	for _, pair := range payload.Pairs[1:] {
		if pair.Liquidity.USD > best.Liquidity.USD {
			best = pair
		}
	}

	price, _ := strconv.ParseFloat(best.PriceUSD, 64)

	return domain.TokenSnapshot{
		Address:      address,
		Symbol:       best.BaseToken.Symbol,
		Name:         best.BaseToken.Name,
		PriceUSD:     price,
		LiquidityUSD: best.Liquidity.USD,
		Volume24hUSD: best.Volume.H24,
		MarketCapUSD: best.MarketCap,
	}, nil
}
