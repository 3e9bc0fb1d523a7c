package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasern/roost/internal/application"
)

func TestRenderShowsAccountsAndStates(t *testing.T) {
	statuses := []application.AccountStatus{
		{Name: "alpha", State: "available"},
		{Name: "beta", State: "busy"},
		{Name: "gamma", State: "removed", Quarantined: true},
	}

	output, err := Render(statuses)
	require.NoError(t, err)

	assert.Contains(t, output, "Account Pool")
	assert.Contains(t, output, "accounts: 3, available: 1")
	assert.Contains(t, output, "alpha")
	assert.Contains(t, output, "busy")
	assert.Contains(t, output, "[quarantined]")
}

func TestRenderEmptyPool(t *testing.T) {
	output, err := Render(nil)
	require.NoError(t, err)

	assert.Contains(t, output, "accounts: 0")
	assert.Contains(t, output, "No accounts configured.")
}
