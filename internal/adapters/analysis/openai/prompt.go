package openai

import (
	"fmt"
	"strings"

	"github.com/kvasern/roost/internal/domain"
)

const systemPrompt = `You are a crypto-social analyst. You receive a token address, an optional ` +
	`linked account profile, recent posts mentioning the token, and market figures. ` +
	`Assess community sentiment, account credibility, and notable risk signals. ` +
	`Respond with a JSON object containing exactly two fields: "summary" (English, ` +
	`3-6 sentences) and "summary_zh" (the same analysis in Simplified Chinese). ` +
	`Do not include any other text.`

const maxPromptTweets = 30

// buildPrompt flattens the bundle into a plain-text briefing. Tweet volume is
// capped so oversized timelines do not blow the context window.
func buildPrompt(bundle domain.AnalysisBundle) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Token address: %s\n", bundle.Address)
	if bundle.Username != "" {
		fmt.Fprintf(&b, "Linked account: @%s\n", bundle.Username)
	}

	if bundle.Market != nil {
		m := bundle.Market
		fmt.Fprintf(&b, "\nMarket data for %s (%s):\n", m.Symbol, m.Name)
		fmt.Fprintf(&b, "  price: $%.8f\n  liquidity: $%.0f\n  24h volume: $%.0f\n  market cap: $%.0f\n",
			m.PriceUSD, m.LiquidityUSD, m.Volume24hUSD, m.MarketCapUSD)
	}

	if bundle.Profile != nil {
		p := bundle.Profile
		fmt.Fprintf(&b, "\nAccount profile @%s (%s):\n", p.Username, p.Name)
		fmt.Fprintf(&b, "  followers: %d, following: %d, posts: %d, verified: %t\n",
			p.FollowersCount, p.FollowingCount, p.TweetsCount, p.Verified)
		if p.Biography != "" {
			fmt.Fprintf(&b, "  bio: %s\n", p.Biography)
		}
	}

	writeTweets(&b, "Recent posts mentioning the token", bundle.SearchResults)
	writeTweets(&b, "Recent posts from the linked account", bundle.UserTweets)

	return b.String()
}

func writeTweets(b *strings.Builder, heading string, tweets []domain.Tweet) {
	if len(tweets) == 0 {
		return
	}
	if len(tweets) > maxPromptTweets {
		tweets = tweets[:maxPromptTweets]
	}

	fmt.Fprintf(b, "\n%s (%d):\n", heading, len(tweets))
	for _, t := range tweets {
		fmt.Fprintf(b, "- @%s (%d likes, %d reposts): %s\n",
			t.Username, t.Likes, t.Retweets, sanitizeLine(t.Text))
		if t.Quoted != nil {
			fmt.Fprintf(b, "  quoting @%s: %s\n", t.Quoted.Username, sanitizeLine(t.Quoted.Text))
		}
	}
}

func sanitizeLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
