package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/twilight-hud/pkg/errors"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestIssueAndValidate(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret", TokenTTL: time.Hour}, newTestLogger())
	require.True(t, svc.Enabled())

	tok, err := svc.Issue(" kiosk ", 0)
	require.NoError(t, err)
	require.Equal(t, "kiosk", tok.Subject)
	require.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, time.Minute)

	claims, err := svc.ValidateToken(context.Background(), tok.Token)
	require.NoError(t, err)
	require.Equal(t, "kiosk", claims.Subject)
	require.NotEmpty(t, claims.TokenID)
}

func TestValidateRejectsBadTokens(t *testing.T) {
	svc := NewService(Config{Secret: "test-secret"}, newTestLogger())
	other := NewService(Config{Secret: "other-secret"}, newTestLogger())

	foreign, err := other.Issue("kiosk", time.Hour)
	require.NoError(t, err)

	expiredSvc := NewService(Config{Secret: "test-secret"}, newTestLogger()).(*service)
	expiredSvc.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, err := expiredSvc.Issue("kiosk", time.Hour)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: issuer, Subject: "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": foreign.Token,
		"expired":      expired.Token,
		"alg none":     none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(context.Background(), token)
			require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidToken), "got %v", err)
		})
	}
}

func TestIssueRequiresSecretAndSubject(t *testing.T) {
	disabled := NewService(Config{}, newTestLogger())
	require.False(t, disabled.Enabled())
	_, err := disabled.Issue("kiosk", time.Hour)
	require.True(t, apperrors.IsCode(err, apperrors.CodeConfig))

	svc := NewService(Config{Secret: "s"}, newTestLogger())
	_, err = svc.Issue("  ", time.Hour)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
