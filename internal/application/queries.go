package application

import "github.com/kvasern/roost/internal/domain"

type SearchResult struct {
	Query     string         `json:"query"`
	Items     []domain.Tweet `json:"items"`
	FromCache bool           `json:"from_cache,omitempty"`
}

// UserDataResult carries the two independently cached sub-results of a user
// fetch. A missing user is data, not an error: UserNotFound is set and both
// sub-results stay empty.
type UserDataResult struct {
	UserInfo     *domain.Profile `json:"user_info"`
	Tweets       []domain.Tweet  `json:"tweets"`
	UserNotFound bool            `json:"user_not_found,omitempty"`
}

type TweetFetchResult struct {
	Items    []domain.Tweet  `json:"items"`
	Author   *domain.Profile `json:"author,omitempty"`
	NotFound bool            `json:"not_found,omitempty"`
}

type AnalysisResult struct {
	Report    domain.AnalysisReport `json:"report"`
	FromCache bool                  `json:"from_cache,omitempty"`
}
