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

// ErrInvalidSignature is returned for QR tokens that are malformed, signed
// with another key, or not vaccine access tokens.
var ErrInvalidSignature = errors.New("invalid qr token signature")

// QrClaims is the payload of a vaccine QR token. There is no exp claim:
// validity is decided by the stored session, never by the token itself.
type QrClaims struct {
	OwnerID  string `json:"ownerId"`
	PetID    string `json:"petId"`
	Type     string `json:"type"`
	IssuedAt int64  `json:"issuedAtMillis"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// QrSigner mints and checks vaccine QR tokens.
type QrSigner struct {
	secret []byte
}

// NewQrSigner returns a signer keyed by secret.
func NewQrSigner(secret string) *QrSigner {
	return &QrSigner{secret: []byte(secret)}
}

// Sign returns a token bound to ownerID and petID. The random nonce makes
// every token distinct even when issued in the same millisecond.
func (s *QrSigner) Sign(ownerID, petID string, issuedAt time.Time) (string, error) {
	claims := QrClaims{
		OwnerID:  ownerID,
		PetID:    petID,
		Type:     domain.QrTokenType,
		IssuedAt: issuedAt.UnixMilli(),
		Nonce:    uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign qr token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature and shape of token. It does not consult the
// session store.
func (s *QrSigner) Verify(token string) (*QrClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSignature
	}
	claims := &QrClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidSignature
	}
	if claims.Type != domain.QrTokenType || claims.PetID == "" || claims.OwnerID == "" {
		return nil, ErrInvalidSignature
	}
	return claims, nil
}
