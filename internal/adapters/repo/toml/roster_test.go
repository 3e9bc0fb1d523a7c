package toml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/domain"
)

func writeRosterFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "accounts.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRosterListParsesAccounts(t *testing.T) {
	t.Parallel()

	path := writeRosterFile(t, `version = 1

[[accounts]]
name = "alpha"
password = "pw-alpha"
email = "alpha@example.com"

[[accounts]]
name = "beta"
password = "pw-beta"
two_factor = "OTPSECRET"
`)

	roster, err := NewRosterAt(path)
	require.NoError(t, err)

	identities, err := roster.List(context.Background())
	require.NoError(t, err)
	require.Len(t, identities, 2)

	assert.Equal(t, domain.IdentityName("alpha"), identities[0].Name)
	assert.Equal(t, "pw-alpha", identities[0].Password)
	assert.Equal(t, "alpha@example.com", identities[0].Email)
	assert.Equal(t, "OTPSECRET", identities[1].TwoFactor)
}

func TestRosterListMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	roster, err := NewRosterAt(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	identities, err := roster.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, identities)
}

func TestRosterListRejectsIncompleteEntry(t *testing.T) {
	t.Parallel()

	path := writeRosterFile(t, `version = 1

[[accounts]]
name = "nopassword"
`)

	roster, err := NewRosterAt(path)
	require.NoError(t, err)

	_, err = roster.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nopassword")
}

func TestRosterListRejectsNewerSchemaVersion(t *testing.T) {
	t.Parallel()

	path := writeRosterFile(t, `version = 99

[[accounts]]
name = "alpha"
password = "pw"
`)

	roster, err := NewRosterAt(path)
	require.NoError(t, err)

	_, err = roster.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported accounts schema version")
}

func TestRosterListRejectsMalformedFile(t *testing.T) {
	t.Parallel()

	path := writeRosterFile(t, "this is not toml {{{")

	roster, err := NewRosterAt(path)
	require.NoError(t, err)

	_, err = roster.List(context.Background())
	require.Error(t, err)
}
