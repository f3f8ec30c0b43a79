// backend/src/security/auth.go
package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	tokenIssuer       = "walletpulse"
	defaultAccessTTL  = 24 * time.Hour
	minimumSecretSize = 32
)

var ErrInvalidToken = errors.New("invalid or expired token")

// AuthService issues and verifies the HS256 access tokens that carry the account id.
type AuthService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{secret: []byte(secret), ttl: defaultAccessTTL, now: time.Now}
}

// SecretStrongEnough reports whether secret is long enough to sign tokens with.
func SecretStrongEnough(secret string) bool {
	return len(secret) >= minimumSecretSize
}

// GenerateToken returns a signed access token for the account.
func (s *AuthService) GenerateToken(accountID int64) (string, error) {
	if accountID <= 0 {
		return "", fmt.Errorf("cannot issue token for account %d", accountID)
	}
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(accountID, 10),
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies the signature and expiry and returns the account id.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || accountID <= 0 {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	return accountID, nil
}
