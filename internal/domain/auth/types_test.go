package auth

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession_DefaultsEmailFromDomain(t *testing.T) {
	sess, err := NewSession(NewSessionInput{UID: "alice"}, "example.org")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.org", sess.Email)
	assert.False(t, sess.LastUsedAt.IsZero())
}

func TestNewSession_KeepsProvidedEmail(t *testing.T) {
	sess, err := NewSession(NewSessionInput{UID: "alice", Email: "alice@corp.test"}, "example.org")
	require.NoError(t, err)
	assert.Equal(t, "alice@corp.test", sess.Email)
}

func TestNewSession_EmptyUID(t *testing.T) {
	_, err := NewSession(NewSessionInput{Email: "who@example.org"}, "example.org")
	assert.ErrorIs(t, err, ErrEmptyUID)
}

func TestSession_JSONFieldNames(t *testing.T) {
	sess, err := NewSession(NewSessionInput{
		UID:         "alice",
		MFAVerified: true,
		Projects:    []string{"widgets"},
	}, "example.org")
	require.NoError(t, err)

	raw, err := json.Marshal(sess)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	assert.Contains(t, m, "uid")
	assert.Contains(t, m, "mfa")
	assert.Contains(t, m, "uts")
	assert.Contains(t, m, "roleaccount")
	assert.NotContains(t, m, "dn")
}
