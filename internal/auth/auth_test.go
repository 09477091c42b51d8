package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisada-prim/pawbook/internal/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestAccessTokens_RoundTrip(t *testing.T) {
	at := NewAccessTokens(testSecret, time.Hour)
	p := Principal{UserID: "u-1", Email: "a@example.com", Role: domain.RoleVet}

	tok, exp, err := at.Issue(p)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	got, err := at.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestAccessTokens_Rejects(t *testing.T) {
	at := NewAccessTokens(testSecret, time.Hour)
	tok, _, err := at.Issue(Principal{UserID: "u-1"})
	require.NoError(t, err)

	other := NewAccessTokens("another-secret-another-secret!!", time.Hour)
	_, err = other.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken, "foreign key")

	_, err = at.Parse("")
	assert.ErrorIs(t, err, ErrInvalidToken, "empty")

	_, err = at.Parse(tok + "x")
	assert.ErrorIs(t, err, ErrInvalidToken, "tampered")

	_, _, err = at.Issue(Principal{})
	assert.Error(t, err, "anonymous principal cannot be issued")
}

func TestAccessTokens_Expired(t *testing.T) {
	at := NewAccessTokens(testSecret, time.Minute)
	base := time.Now()
	at.now = func() time.Time { return base }
	tok, _, err := at.Issue(Principal{UserID: "u-1"})
	require.NoError(t, err)

	at.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = at.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokens_RejectsOtherAlgorithms(t *testing.T) {
	at := NewAccessTokens(testSecret, time.Hour)
	claims := AccessClaims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    accessIssuer,
		Subject:   "u-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = at.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestQrSigner_SignVerify(t *testing.T) {
	s := NewQrSigner(testSecret)
	at := time.UnixMilli(1_760_000_000_000)

	tok, err := s.Sign("owner-1", "pet-1", at)
	require.NoError(t, err)

	c, err := s.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "owner-1", c.OwnerID)
	assert.Equal(t, "pet-1", c.PetID)
	assert.Equal(t, domain.QrTokenType, c.Type)
	assert.Equal(t, at.UnixMilli(), c.IssuedAt)
	assert.NotEmpty(t, c.Nonce)
	assert.Nil(t, c.ExpiresAt, "qr tokens carry no exp claim")
}

func TestQrSigner_TokensAreDistinct(t *testing.T) {
	s := NewQrSigner(testSecret)
	at := time.Now()
	a, err := s.Sign("o", "p", at)
	require.NoError(t, err)
	b, err := s.Sign("o", "p", at)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestQrSigner_InvalidSignature(t *testing.T) {
	s := NewQrSigner(testSecret)
	tok, err := s.Sign("o", "p", time.Now())
	require.NoError(t, err)

	cases := map[string]string{
		"empty":     "",
		"garbage":   "not-a-token",
		"tampered":  tok[:len(tok)-2] + "xx",
		"other key": mustSign(t, NewQrSigner("a-completely-different-secret"), "o", "p"),
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Verify(in)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
}

func TestQrSigner_RejectsAccessTokens(t *testing.T) {
	// An access token signed with the same key is not a vaccine token.
	at := NewAccessTokens(testSecret, time.Hour)
	tok, _, err := at.Issue(Principal{UserID: "u-1"})
	require.NoError(t, err)

	_, err = NewQrSigner(testSecret).Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestPassword_HashAndVerify(t *testing.T) {
	h, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(h, "$2"))
	assert.NoError(t, VerifyPassword(h, "s3cret!"))
	assert.Error(t, VerifyPassword(h, "wrong"))
	assert.Error(t, VerifyPassword("", "s3cret!"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestPrincipalContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithPrincipal(context.Background(), Principal{UserID: "u-1", Role: domain.RoleOwner})
	p, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "u-1", p.UserID)

	_, ok = FromContext(WithPrincipal(context.Background(), Principal{}))
	assert.False(t, ok, "anonymous principal is not authenticated")
}

func mustSign(t *testing.T, s *QrSigner, owner, pet string) string {
	t.Helper()
	tok, err := s.Sign(owner, pet, time.Now())
	require.NoError(t, err)
	return tok
}
