package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

type fakeQuarantine struct {
	mu      sync.Mutex
	flags   map[domain.IdentityName]bool
	flagErr error
	downErr error
}

func newFakeQuarantine() *fakeQuarantine {
	return &fakeQuarantine{flags: map[domain.IdentityName]bool{}}
}

func (q *fakeQuarantine) Flag(_ context.Context, name domain.IdentityName, _ time.Duration) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.flagErr != nil {
		return q.flagErr
	}
	q.flags[name] = true
	return nil
}

func (q *fakeQuarantine) Flagged(_ context.Context, name domain.IdentityName) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.downErr != nil {
		return false, q.downErr
	}
	return q.flags[name], nil
}

func (q *fakeQuarantine) isFlagged(name domain.IdentityName) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flags[name]
}

type fakeProvisioner struct {
	mu       sync.Mutex
	sessions map[domain.IdentityName]*fakeSession
	failing  map[domain.IdentityName]error
	calls    int
}

func newFakeProvisioner() *fakeProvisioner {
	return &fakeProvisioner{
		sessions: map[domain.IdentityName]*fakeSession{},
		failing:  map[domain.IdentityName]error{},
	}
}

func (p *fakeProvisioner) Provision(_ context.Context, identity domain.Identity) (ports.Session, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++

	if err := p.failing[identity.Name]; err != nil {
		return nil, err
	}

	session, ok := p.sessions[identity.Name]
	if !ok {
		session = &fakeSession{}
		p.sessions[identity.Name] = session
	}
	return session, nil
}

func (p *fakeProvisioner) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

type fakeSession struct {
	mu sync.Mutex

	searchTweets []domain.Tweet
	searchErr    error

	timelineTweets []domain.Tweet
	timelineErr    error

	profile    domain.Profile
	profileErr error

	tweet    *domain.Tweet
	tweetErr error

	delay time.Duration
}

func (s *fakeSession) Search(ctx context.Context, _ string, _ int) <-chan ports.TweetResult {
	s.mu.Lock()
	tweets, err, delay := s.searchTweets, s.searchErr, s.delay
	s.mu.Unlock()
	return streamTweets(ctx, tweets, err, delay)
}

func (s *fakeSession) Timeline(ctx context.Context, _ string, _ int) <-chan ports.TweetResult {
	s.mu.Lock()
	tweets, err, delay := s.timelineTweets, s.timelineErr, s.delay
	s.mu.Unlock()
	return streamTweets(ctx, tweets, err, delay)
}

func (s *fakeSession) GetProfile(ctx context.Context, _ string) (domain.Profile, error) {
	s.mu.Lock()
	profile, err, delay := s.profile, s.profileErr, s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.Profile{}, ctx.Err()
		}
	}
	return profile, err
}

func (s *fakeSession) GetTweet(_ context.Context, _ string) (*domain.Tweet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tweet, s.tweetErr
}

func streamTweets(ctx context.Context, tweets []domain.Tweet, failure error, delay time.Duration) <-chan ports.TweetResult {
	out := make(chan ports.TweetResult)
	go func() {
		defer close(out)
		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
		}
		for _, tweet := range tweets {
			select {
			case out <- ports.TweetResult{Tweet: tweet}:
			case <-ctx.Done():
				return
			}
		}
		if failure != nil {
			select {
			case out <- ports.TweetResult{Err: failure}:
			case <-ctx.Done():
			}
		}
	}()
	return out
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	ttls    map[string]time.Duration
	getErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: map[string][]byte{},
		ttls:    map[string]time.Duration{},
	}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, c.getErr
	}
	value, ok := c.entries[key]
	if !ok {
		return nil, fmt.Errorf("%q: %w", key, domain.ErrCacheMiss)
	}
	return value, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	c.ttls[key] = ttl
	c.sets++
	return nil
}

func (c *fakeCache) ttlOf(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

func (c *fakeCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

func identities(names ...string) []domain.Identity {
	out := make([]domain.Identity, 0, len(names))
	for _, name := range names {
		out = append(out, domain.Identity{Name: domain.IdentityName(name), Password: "pw-" + name})
	}
	return out
}

func fastPool(ids []domain.Identity, provisioner ports.SessionProvisioner, quarantine ports.Quarantine) *AccountPool {
	return NewAccountPool(ids, provisioner, quarantine, nil, PoolConfig{
		PacePerSec: 10_000,
		PaceBurst:  10_000,
	})
}

func tweetsN(n int) []domain.Tweet {
	out := make([]domain.Tweet, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Tweet{
			ID:       fmt.Sprintf("id-%d", i),
			Text:     fmt.Sprintf("post %d", i),
			Username: "poster",
		})
	}
	return out
}
