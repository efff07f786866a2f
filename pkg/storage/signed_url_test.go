package storage

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignedURLSignerGenerateAndParse(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("alert-1", "alert_20240101T000000Z_ab12cd34.enc")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	subject, name, parsedExpiry, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "alert-1", subject)
	require.Equal(t, "alert_20240101T000000Z_ab12cd34.enc", name)
	require.WithinDuration(t, expiresAt, parsedExpiry, time.Second)
}

func TestSignedURLSignerExpired(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("alert-1", "a.enc")
	require.NoError(t, err)

	signer.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, _, err = signer.Parse(token)
	require.True(t, errors.Is(err, ErrTokenExpired))
}

func TestSignedURLSignerRejectsTampering(t *testing.T) {
	signer := NewSignedURLSigner("secret", time.Hour)
	token, _, err := signer.Generate("alert-1", "a.enc")
	require.NoError(t, err)

	other := NewSignedURLSigner("other-secret", time.Hour)
	_, _, _, err = other.Parse(token)
	require.True(t, errors.Is(err, ErrTokenInvalid))

	_, _, _, err = signer.Parse("alert-2" + token[len("alert-1"):])
	require.True(t, errors.Is(err, ErrTokenInvalid))
}
