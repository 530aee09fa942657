package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIKeyIssue(t *testing.T) {
	k := &APIKey{UserID: 1}

	raw, err := k.Issue()
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	assert.True(t, strings.HasPrefix(raw, "smk_"))
	assert.NotEmpty(t, k.KeyPrefix)
	assert.Nil(t, k.LastUsedAt)
	assert.True(t, k.IsActive())
	assert.Equal(t, HashAPIKey(raw), k.KeyHash)
}

func TestAPIKeyRevoke(t *testing.T) {
	k := &APIKey{UserID: 99}
	_, err := k.Issue()
	require.NoError(t, err)

	k.Revoke()

	assert.False(t, k.IsActive())
	assert.Equal(t, "", k.KeyHash)
	assert.Equal(t, "", k.KeyPrefix)
	assert.NotNil(t, k.RevokedAt)
}

func TestHashAPIKeyTrimsWhitespace(t *testing.T) {
	assert.Equal(t, HashAPIKey("smk_abc"), HashAPIKey("  smk_abc\n"))
}
