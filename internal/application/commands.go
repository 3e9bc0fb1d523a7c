package application

import "github.com/kvasern/roost/internal/domain"

type SearchQuery struct {
	Query       string
	ForceUpdate bool
	Preferred   domain.IdentityRef
}

type UserQuery struct {
	Username    string
	ForceUpdate bool
	SkipTweets  bool
	Preferred   domain.IdentityRef
}

type TweetQuery struct {
	ID        string
	Preferred domain.IdentityRef
}

type AnalyzeCommand struct {
	Address       string
	Username      string
	ForceUpdate   bool
	Profile       *domain.Profile
	SearchResults []domain.Tweet
	UserTweets    []domain.Tweet
}
