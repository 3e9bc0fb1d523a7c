package domain

import (
	"fmt"
	"strings"
)

type IdentityName string

// Identity is one platform account usable for read operations. Identities are
// defined at process start from the accounts roster and stay immutable for the
// process lifetime; only pool membership and the quarantine flag change.
type Identity struct {
	Name      IdentityName
	Password  string
	Email     string
	TwoFactor string
}

func (i Identity) Validate() error {
	if strings.TrimSpace(string(i.Name)) == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(i.Password) == "" {
		return fmt.Errorf("password is required for %q", i.Name)
	}

	return nil
}

// IdentityRef names a preferred identity either by name alone or by a full
// credential record carried by the caller. It is resolved once at the
// acquisition boundary instead of branching on shape inside the pool.
type IdentityRef struct {
	name IdentityName
	full *Identity
}

func RefByName(name IdentityName) IdentityRef {
	return IdentityRef{name: IdentityName(strings.TrimSpace(string(name)))}
}

func RefFull(identity Identity) IdentityRef {
	return IdentityRef{name: identity.Name, full: &identity}
}

func (r IdentityRef) Name() IdentityName {
	return r.name
}

func (r IdentityRef) IsZero() bool {
	return r.name == "" && r.full == nil
}

// Resolve returns the credential record the reference points at. By-name
// references resolve against the known roster; full records pass through.
func (r IdentityRef) Resolve(known map[IdentityName]Identity) (Identity, bool) {
	if r.full != nil {
		return *r.full, true
	}
	if r.name == "" {
		return Identity{}, false
	}

	identity, ok := known[r.name]
	return identity, ok
}
