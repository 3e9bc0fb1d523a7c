package application

import (
	"strings"
	"time"
)

// Cache key namespaces. These prefixes are stable; entries written by earlier
// deployments must stay addressable.
const (
	searchKeyPrefix   = "search-results-by-query:"
	profileKeyPrefix  = "user-profile:"
	timelineKeyPrefix = "user-timeline:"
	tweetKeyPrefix    = "single-item:"
	authorKeyPrefix   = "item-author-profile:"
	analysisKeyPrefix = "analysis-result:"
)

func searchKey(query string) string {
	return searchKeyPrefix + strings.ToLower(strings.TrimSpace(query))
}

func profileKey(username string) string {
	return profileKeyPrefix + username
}

func timelineKey(username string) string {
	return timelineKeyPrefix + username
}

func tweetKey(id string) string {
	return tweetKeyPrefix + strings.TrimSpace(id)
}

// Author profiles are keyed by the resolved username so two items by the same
// author share one cached profile.
func authorKey(username string) string {
	return authorKeyPrefix + username
}

func analysisKey(address, username string) string {
	switch {
	case strings.TrimSpace(address) != "":
		return analysisKeyPrefix + strings.TrimSpace(address)
	case strings.TrimSpace(username) != "":
		return analysisKeyPrefix + strings.TrimSpace(username)
	default:
		return analysisKeyPrefix + "unknown"
	}
}

// TTLPolicy picks an expiry from the size of a result set: full results are
// trusted long, thin results briefly, and confirmed-empty results shortest of
// all so a failing query cannot hammer the platform.
type TTLPolicy struct {
	Threshold int
	Full      time.Duration
	Partial   time.Duration
	Negative  time.Duration
}

func (p TTLPolicy) ForCount(count int) time.Duration {
	switch {
	case count >= p.Threshold:
		return p.Full
	case count > 0:
		return p.Partial
	default:
		return p.Negative
	}
}

// CacheTTLs bundles the expiry policy per entry kind.
type CacheTTLs struct {
	Search          TTLPolicy
	Timeline        TTLPolicy
	Profile         time.Duration
	ProfileNegative time.Duration
	Tweet           time.Duration
	TweetNegative   time.Duration
	Analysis        time.Duration
}

func DefaultCacheTTLs() CacheTTLs {
	return CacheTTLs{
		Search: TTLPolicy{
			Threshold: 30,
			Full:      6 * time.Hour,
			Partial:   10 * time.Minute,
			Negative:  3 * time.Minute,
		},
		Timeline: TTLPolicy{
			Threshold: 10,
			Full:      time.Hour,
			Partial:   10 * time.Minute,
			Negative:  3 * time.Minute,
		},
		Profile:         24 * time.Hour,
		ProfileNegative: 3 * time.Minute,
		Tweet:           7 * 24 * time.Hour,
		TweetNegative:   3 * time.Minute,
		Analysis:        12 * time.Hour,
	}
}
