package domain

import "time"

// Tweet is the normalized projection of a raw platform item: identity, display
// text, author, engagement counters, timestamp, and at most one level of
// quoted content.
type Tweet struct {
	ID       string       `json:"id"`
	Text     string       `json:"text"`
	Name     string       `json:"name"`
	Username string       `json:"username"`
	Likes    int          `json:"likes"`
	Retweets int          `json:"retweets"`
	Replies  int          `json:"replies"`
	Views    int          `json:"views"`
	PostedAt time.Time    `json:"posted_at"`
	Quoted   *QuotedTweet `json:"quoted,omitempty"`
}

// QuotedTweet keeps only text and author of the quoted item; quotes are never
// expanded recursively.
type QuotedTweet struct {
	Text     string `json:"text"`
	Name     string `json:"name"`
	Username string `json:"username"`
}

type Profile struct {
	UserID         string     `json:"user_id"`
	Username       string     `json:"username"`
	Name           string     `json:"name"`
	Biography      string     `json:"biography,omitempty"`
	Location       string     `json:"location,omitempty"`
	Website        string     `json:"website,omitempty"`
	Avatar         string     `json:"avatar,omitempty"`
	FollowersCount int        `json:"followers_count"`
	FollowingCount int        `json:"following_count"`
	TweetsCount    int        `json:"tweets_count"`
	Verified       bool       `json:"verified"`
	Joined         *time.Time `json:"joined,omitempty"`
}
