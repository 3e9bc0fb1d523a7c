package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	twitterscraper "github.com/imperatrona/twitter-scraper"
	"go.uber.org/zap"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

// Provisioner builds authenticated scraping sessions. Saved cookies are tried
// first; a fresh login replaces them when they have gone stale.
type Provisioner struct {
	store  ports.CredentialStore
	logger *zap.Logger
}

var _ ports.SessionProvisioner = (*Provisioner)(nil)

func NewProvisioner(store ports.CredentialStore, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Provisioner{store: store, logger: logger}
}

func (p *Provisioner) Provision(ctx context.Context, identity domain.Identity) (ports.Session, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrLoginFailed, err)
	}

	if sess := p.resumeSaved(ctx, identity); sess != nil {
		return sess, nil
	}

	sc := twitterscraper.New()

	credentials := []string{string(identity.Name), identity.Password}
	switch {
	case identity.TwoFactor != "":
		credentials = append(credentials, identity.TwoFactor)
	case identity.Email != "":
		credentials = append(credentials, identity.Email)
	}

	if err := sc.Login(credentials...); err != nil {
		return nil, fmt.Errorf("login account %q: %w: %v", identity.Name, domain.ErrLoginFailed, err)
	}

	p.saveCookies(ctx, identity.Name, sc)

	p.logger.Info("fresh login completed", zap.String("account", string(identity.Name)))

	return &session{scraper: sc, account: identity.Name}, nil
}

// resumeSaved returns a session restored from persisted cookies, or nil when
// no usable cookies exist.
func (p *Provisioner) resumeSaved(ctx context.Context, identity domain.Identity) ports.Session {
	raw, err := p.store.Get(ctx, string(identity.Name))
	if err != nil {
		return nil
	}

	var saved []*http.Cookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil || len(saved) == 0 {
		p.logger.Debug("ignoring unreadable saved cookies", zap.String("account", string(identity.Name)))
		return nil
	}

	sc := twitterscraper.New()
	sc.SetCookies(saved)
	if !sc.IsLoggedIn() {
		p.logger.Debug("saved cookies expired", zap.String("account", string(identity.Name)))
		return nil
	}

	p.logger.Debug("session restored from saved cookies", zap.String("account", string(identity.Name)))

	return &session{scraper: sc, account: identity.Name}
}

func (p *Provisioner) saveCookies(ctx context.Context, name domain.IdentityName, sc *twitterscraper.Scraper) {
	raw, err := json.Marshal(sc.GetCookies())
	if err != nil {
		p.logger.Warn("encoding cookies failed", zap.String("account", string(name)), zap.Error(err))
		return
	}

	if err := p.store.Put(ctx, string(name), string(raw)); err != nil {
		p.logger.Warn("persisting cookies failed", zap.String("account", string(name)), zap.Error(err))
	}
}
