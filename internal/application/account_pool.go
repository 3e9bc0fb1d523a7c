package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kvasern/roost/internal/domain"
	"github.com/kvasern/roost/internal/ports"
)

const DefaultQuarantineTTL = 24 * time.Hour

// Lease binds an identity to an authenticated session for one logical
// operation. It is owned exclusively by the caller that acquired it and is
// never shared across concurrent operations.
type Lease struct {
	ID        string
	Identity  domain.Identity
	Session   ports.Session
	preferred bool
}

func (l *Lease) Preferred() bool {
	return l != nil && l.preferred
}

type PoolConfig struct {
	QuarantineTTL time.Duration
	// PacePerSec throttles how often a single identity can be handed out.
	PacePerSec float64
	PaceBurst  int
}

func (c *PoolConfig) applyDefaults() {
	if c.QuarantineTTL <= 0 {
		c.QuarantineTTL = DefaultQuarantineTTL
	}
	if c.PacePerSec <= 0 {
		c.PacePerSec = 0.5
	}
	if c.PaceBurst <= 0 {
		c.PaceBurst = 2
	}
}

// AccountPool owns the set of known identities, partitioned into available and
// busy. The two sets stay disjoint; an identity found quarantined at selection
// time is removed from the in-memory view for the rest of the process run.
type AccountPool struct {
	provisioner ports.SessionProvisioner
	quarantine  ports.Quarantine
	logger      *zap.Logger
	cfg         PoolConfig

	known map[domain.IdentityName]domain.Identity

	mu        sync.Mutex
	available map[domain.IdentityName]domain.Identity
	busy      map[domain.IdentityName]domain.Identity
	limiters  map[domain.IdentityName]*rate.Limiter
}

func NewAccountPool(identities []domain.Identity, provisioner ports.SessionProvisioner, quarantine ports.Quarantine, logger *zap.Logger, cfg PoolConfig) *AccountPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.applyDefaults()

	pool := &AccountPool{
		provisioner: provisioner,
		quarantine:  quarantine,
		logger:      logger,
		cfg:         cfg,
		known:       make(map[domain.IdentityName]domain.Identity, len(identities)),
		available:   make(map[domain.IdentityName]domain.Identity, len(identities)),
		busy:        make(map[domain.IdentityName]domain.Identity),
		limiters:    make(map[domain.IdentityName]*rate.Limiter, len(identities)),
	}

	for _, identity := range identities {
		if _, ok := pool.known[identity.Name]; ok {
			continue
		}
		pool.known[identity.Name] = identity
		pool.available[identity.Name] = identity
		pool.limiters[identity.Name] = rate.NewLimiter(rate.Limit(cfg.PacePerSec), cfg.PaceBurst)
	}

	return pool
}

// Acquire hands out a session for one logical operation. A non-zero preferred
// reference is provisioned directly, bypassing the available/busy sets; if
// that fails the pool falls back to regular selection without marking the
// preferred identity as failed.
//
// Selection is a bounded loop over the finite identity set: a quarantined
// candidate is dropped from the in-memory view, a candidate whose provisioning
// fails is quarantined and dropped, and the loop ends with
// domain.ErrNoAccountsAvailable once no candidates remain.
func (p *AccountPool) Acquire(ctx context.Context, preferred domain.IdentityRef) (*Lease, error) {
	if !preferred.IsZero() {
		lease, err := p.acquirePreferred(ctx, preferred)
		if err == nil {
			return lease, nil
		}
		p.logger.Warn("preferred identity unusable, falling back to pool",
			zap.String("account", string(preferred.Name())),
			zap.Error(err),
		)
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		identity, ok := p.takeCandidate()
		if !ok {
			return nil, domain.ErrNoAccountsAvailable
		}

		flagged, err := p.quarantine.Flagged(ctx, identity.Name)
		if err != nil {
			// A quarantine-store outage must not brick the pool.
			p.logger.Warn("quarantine check failed",
				zap.String("account", string(identity.Name)),
				zap.Error(err),
			)
		}
		if flagged {
			p.dropBusy(identity.Name)
			p.logger.Info("dropping quarantined account from rotation",
				zap.String("account", string(identity.Name)),
			)
			continue
		}

		session, err := p.provisioner.Provision(ctx, identity)
		if err != nil {
			p.logger.Warn("provisioning failed, quarantining account",
				zap.String("account", string(identity.Name)),
				zap.Error(err),
			)
			p.QuarantineAndDemote(ctx, identity.Name)
			continue
		}

		lease := &Lease{ID: uuid.NewString(), Identity: identity, Session: session}

		if err := p.pace(ctx, identity.Name); err != nil {
			p.Release(lease)
			return nil, err
		}

		p.logger.Debug("acquired account",
			zap.String("lease", lease.ID),
			zap.String("account", string(identity.Name)),
		)

		return lease, nil
	}
}

// Release moves the lease's identity from busy back to available. Releasing
// twice, or releasing a lease whose identity was demoted in the meantime, is a
// no-op. Preferred leases never touch the sets.
func (p *AccountPool) Release(lease *Lease) {
	if lease == nil || lease.preferred {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	identity, ok := p.busy[lease.Identity.Name]
	if !ok {
		return
	}

	delete(p.busy, lease.Identity.Name)
	p.available[lease.Identity.Name] = identity
}

// QuarantineAndDemote removes the identity from busy and sets the external
// quarantine flag. The identity is not re-added to available; the flag expires
// on its own after the configured TTL.
func (p *AccountPool) QuarantineAndDemote(ctx context.Context, name domain.IdentityName) {
	p.dropBusy(name)

	// The triggering operation's context may already be expired.
	flagCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if err := p.quarantine.Flag(flagCtx, name, p.cfg.QuarantineTTL); err != nil {
		p.logger.Error("setting quarantine flag failed",
			zap.String("account", string(name)),
			zap.Error(err),
		)
	}

	p.logger.Warn("account quarantined",
		zap.String("account", string(name)),
		zap.Duration("ttl", p.cfg.QuarantineTTL),
	)
}

// AccountStatus describes one known identity for status reporting.
type AccountStatus struct {
	Name        domain.IdentityName `json:"name"`
	State       string              `json:"state"`
	Quarantined bool                `json:"quarantined"`
}

// Status reports every identity of the starting roster, including ones that
// were dropped from rotation, with its current membership and quarantine flag.
func (p *AccountPool) Status(ctx context.Context) []AccountStatus {
	p.mu.Lock()
	statuses := make([]AccountStatus, 0, len(p.known))
	for name := range p.known {
		state := "removed"
		if _, ok := p.available[name]; ok {
			state = "available"
		} else if _, ok := p.busy[name]; ok {
			state = "busy"
		}
		statuses = append(statuses, AccountStatus{Name: name, State: state})
	}
	p.mu.Unlock()

	for i := range statuses {
		flagged, err := p.quarantine.Flagged(ctx, statuses[i].Name)
		if err != nil {
			continue
		}
		statuses[i].Quarantined = flagged
	}

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })

	return statuses
}

func (p *AccountPool) acquirePreferred(ctx context.Context, ref domain.IdentityRef) (*Lease, error) {
	identity, ok := ref.Resolve(p.known)
	if !ok {
		return nil, fmt.Errorf("%q: %w", ref.Name(), domain.ErrIdentityNotKnown)
	}

	session, err := p.provisioner.Provision(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("provision preferred account %q: %w", identity.Name, err)
	}

	return &Lease{ID: uuid.NewString(), Identity: identity, Session: session, preferred: true}, nil
}

// takeCandidate picks one available identity (no ordering guarantee) and moves
// it to busy in a single critical section.
func (p *AccountPool) takeCandidate() (domain.Identity, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for name, identity := range p.available {
		delete(p.available, name)
		p.busy[name] = identity
		return identity, true
	}

	return domain.Identity{}, false
}

func (p *AccountPool) dropBusy(name domain.IdentityName) {
	p.mu.Lock()
	delete(p.busy, name)
	p.mu.Unlock()
}

func (p *AccountPool) pace(ctx context.Context, name domain.IdentityName) error {
	p.mu.Lock()
	limiter := p.limiters[name]
	p.mu.Unlock()

	if limiter == nil {
		// Identities supplied as full preferred records have no limiter.
		return nil
	}

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pace account %q: %w", name, err)
	}

	return nil
}
