package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNonceRoundTrip(t *testing.T) {
	svc := NewNonceService("secret", time.Hour)

	token, err := svc.Issue(NonceActionPublic, 0)
	require.NoError(t, err)
	assert.NoError(t, svc.Verify(token, NonceActionPublic, 0))

	userToken, err := svc.Issue(NonceActionDebugLog, 7)
	require.NoError(t, err)
	assert.NoError(t, svc.Verify(userToken, NonceActionDebugLog, 7))
}

func TestNonceRejectsMismatches(t *testing.T) {
	svc := NewNonceService("secret", time.Hour)
	token, err := svc.Issue(NonceActionDebugLog, 7)
	require.NoError(t, err)

	cases := map[string]error{
		"wrong action": svc.Verify(token, NonceActionPublic, 7),
		"wrong user":   svc.Verify(token, NonceActionDebugLog, 8),
		"anonymous":    svc.Verify(token, NonceActionDebugLog, 0),
		"empty":        svc.Verify("  ", NonceActionDebugLog, 7),
		"garbage":      svc.Verify("not-a-token", NonceActionDebugLog, 7),
		"other secret": NewNonceService("different", time.Hour).Verify(token, NonceActionDebugLog, 7),
		"tampered":     svc.Verify(token+"x", NonceActionDebugLog, 7),
	}
	for name, err := range cases {
		assert.Truef(t, errors.Is(err, ErrNonceInvalid), "%s: expected ErrNonceInvalid, got %v", name, err)
	}
}

func TestNonceExpires(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	current := issued
	svc := NewNonceService("secret", time.Hour).WithClock(func() time.Time { return current })

	token, err := svc.Issue(NonceActionPublic, 0)
	require.NoError(t, err)

	current = issued.Add(59 * time.Minute)
	assert.NoError(t, svc.Verify(token, NonceActionPublic, 0))

	current = issued.Add(61 * time.Minute)
	assert.ErrorIs(t, svc.Verify(token, NonceActionPublic, 0), ErrNonceInvalid)
}

func TestNonceDefaultTTL(t *testing.T) {
	svc := NewNonceService("secret", 0)
	assert.Equal(t, 12*time.Hour, svc.ttl)
}
