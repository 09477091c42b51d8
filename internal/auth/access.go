package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/apisada-prim/pawbook/internal/domain"
)

const accessIssuer = "pawbook"

// ErrInvalidToken indicates an access token failed validation.
var ErrInvalidToken = errors.New("invalid token")

// AccessClaims are the claims carried by bearer access tokens.
type AccessClaims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

// AccessTokens signs and parses HS256 bearer tokens.
type AccessTokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewAccessTokens returns a signer using secret and token lifetime ttl.
func NewAccessTokens(secret string, ttl time.Duration) *AccessTokens {
	return &AccessTokens{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue signs a token for p and returns it with its expiry.
func (a *AccessTokens) Issue(p Principal) (string, time.Time, error) {
	if p.Anonymous() {
		return "", time.Time{}, errors.New("user id is required")
	}
	now := a.now().UTC()
	exp := now.Add(a.ttl)
	claims := AccessClaims{
		Email: p.Email,
		Role:  p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    accessIssuer,
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies token and returns the principal it names.
func (a *AccessTokens) Parse(token string) (Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Principal{}, ErrInvalidToken
	}
	claims := &AccessClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(accessIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid || strings.TrimSpace(claims.Subject) == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{UserID: claims.Subject, Email: claims.Email, Role: claims.Role}, nil
}
