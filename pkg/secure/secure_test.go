package secure

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)

	sealed, err := s.Seal("uber-access-token")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "uber-access-token")

	again, err := s.Seal("uber-access-token")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonce must differ per seal")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "uber-access-token", opened)
}

func TestSealerRejectsTampering(t *testing.T) {
	s, err := NewSealer(bytes.Repeat([]byte("k"), 32))
	require.NoError(t, err)
	other, err := NewSealer(bytes.Repeat([]byte("x"), 32))
	require.NoError(t, err)

	sealed, err := s.Seal("secret")
	require.NoError(t, err)

	_, err = other.Open(sealed)
	assert.Error(t, err)
	_, err = s.Open("%%%")
	assert.Error(t, err)
}

func TestNewSealerKeySize(t *testing.T) {
	_, err := NewSealer([]byte("short"))
	assert.ErrorIs(t, err, ErrKeySize)
}

func TestAPIToken(t *testing.T) {
	signer := NewSigner("top-secret")

	token, err := signer.IssueAPIToken("user-1", time.Hour)
	require.NoError(t, err)

	userID, err := signer.ParseAPIToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = NewSigner("other-secret").ParseAPIToken(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

func TestExpiredAPIToken(t *testing.T) {
	signer := NewSigner("top-secret")
	signer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

	token, err := signer.IssueAPIToken("user-1", time.Hour)
	require.NoError(t, err)

	signer.now = time.Now
	_, err = signer.ParseAPIToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestStateIsNotAnAPIToken(t *testing.T) {
	signer := NewSigner("top-secret")

	state, err := signer.IssueState("user-1", "uber")
	require.NoError(t, err)

	userID, platform, err := signer.ParseState(state)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
	assert.Equal(t, "uber", platform)

	_, err = signer.ParseAPIToken(state)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
