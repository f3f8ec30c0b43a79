package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenRoundTrip(t *testing.T) {
	svc := NewAuthService(testSecret)

	token, err := svc.GenerateToken(42)
	require.NoError(t, err)

	accountID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), accountID)
}

func TestValidateTokenRejects(t *testing.T) {
	svc := NewAuthService(testSecret)
	good, err := svc.GenerateToken(7)
	require.NoError(t, err)

	expired := NewAuthService(testSecret)
	expired.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }
	old, err := expired.GenerateToken(7)
	require.NoError(t, err)

	other, err := NewAuthService("another-secret-another-secret-xx").GenerateToken(7)
	require.NoError(t, err)

	forged, err := svc.GenerateToken(8)
	require.NoError(t, err)
	goodParts := strings.Split(good, ".")
	forgedParts := strings.Split(forged, ".")
	swapped := forgedParts[0] + "." + forgedParts[1] + "." + goodParts[2]

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "7", Issuer: tokenIssuer})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":        "not-a-token",
		"expired":        old,
		"wrong secret":   other,
		"alg none":       unsigned,
		"swapped claims": swapped,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.ValidateToken(token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestGenerateTokenRequiresAccount(t *testing.T) {
	_, err := NewAuthService(testSecret).GenerateToken(0)
	assert.Error(t, err)
	assert.False(t, SecretStrongEnough("short"))
	assert.True(t, SecretStrongEnough(testSecret))
}
