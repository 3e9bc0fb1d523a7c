package domain

// InsufficientDataNotice is returned verbatim when there is nothing to
// analyze. It is never written to the cache.
const InsufficientDataNotice = "insufficient data: no recent posts found for this query"

// AnalysisReport is the bilingual summary produced by the analysis
// collaborator.
type AnalysisReport struct {
	Summary   string `json:"summary"`
	SummaryZH string `json:"summary_zh,omitempty"`
	Model     string `json:"model,omitempty"`
}

// AnalysisBundle is the aggregated input handed to the analysis collaborator.
type AnalysisBundle struct {
	Address       string         `json:"address,omitempty"`
	Username      string         `json:"username,omitempty"`
	Profile       *Profile       `json:"profile,omitempty"`
	SearchResults []Tweet        `json:"search_results"`
	UserTweets    []Tweet        `json:"user_tweets,omitempty"`
	Market        *TokenSnapshot `json:"market,omitempty"`
}

// TokenSnapshot is a best-effort market view of the token under analysis.
// A missing snapshot never fails an analysis.
type TokenSnapshot struct {
	Address      string  `json:"address"`
	Symbol       string  `json:"symbol,omitempty"`
	Name         string  `json:"name,omitempty"`
	PriceUSD     float64 `json:"price_usd,omitempty"`
	LiquidityUSD float64 `json:"liquidity_usd,omitempty"`
	Volume24hUSD float64 `json:"volume_24h_usd,omitempty"`
	MarketCapUSD float64 `json:"market_cap_usd,omitempty"`
}
