// Package services – QrService
//
// This file implements the vaccine QR session workflow: an owner issues a
// short-lived signed token for one pet, a vet presents it to read the pet's
// history, and the owner's client polls its status until a record write
// consumes it (see VaccineService.CreateRecord) or it expires.
//
// Every check reads the durable store; nothing about session state is cached.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/observability"
	"github.com/apisada-prim/pawbook/internal/repo"
)

// DefaultQrSessionTTL is how long an issued QR session stays redeemable.
const DefaultQrSessionTTL = 15 * time.Minute

// QrIssue is what the owner's client renders as a QR image.
type QrIssue struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// QrService issues, verifies, and reports on vaccine QR sessions.
type QrService struct {
	DB     *gorm.DB
	Signer *auth.QrSigner
	TTL    time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *QrService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *QrService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return DefaultQrSessionTTL
}

// Generate returns a QR session for petID. The caller must own the pet. An
// active session for the same pet and owner is returned as is, so repeated
// calls within the TTL yield the identical token.
func (s *QrService) Generate(ctx context.Context, p auth.Principal, petID string) (*QrIssue, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowQR, "generate", petID)
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if RequireOwner(p, pet) != nil {
		return nil, forbidden("You do not have permission to generate a QR for this pet")
	}

	now := s.now()
	active, err := repo.FindActiveQrSession(ctx, s.DB, pet.ID, p.UserID, now)
	switch {
	case err == nil:
		observability.RecordHandoff(observability.FlowQR, "reused")
		span.SetAttributes(attribute.Bool("qr.reused", true))
		return &QrIssue{Token: active.Token, ExpiresAt: active.ExpiresAt}, nil
	case !errors.Is(err, repo.ErrNotFound):
		return nil, fmt.Errorf("find active qr session: %w", err)
	}

	token, err := s.Signer.Sign(p.UserID, pet.ID, now)
	if err != nil {
		return nil, fmt.Errorf("sign qr token: %w", err)
	}
	sess, err := repo.CreateQrSession(ctx, s.DB, pet.ID, p.UserID, token, now, s.ttl())
	if err != nil {
		return nil, fmt.Errorf("create qr session: %w", err)
	}
	observability.RecordHandoff(observability.FlowQR, "issued")
	log.Ctx(ctx).Debug().Str("pet_id", pet.ID).Str("session_id", sess.ID).Msg("qr session issued")
	return &QrIssue{Token: sess.Token, ExpiresAt: sess.ExpiresAt}, nil
}

// Verify checks token and returns the pet it unlocks, with vaccinations
// newest-administered-first. It never consumes the session.
func (s *QrService) Verify(ctx context.Context, token string) (*domain.Pet, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowQR, "verify", "")
	defer span.End()

	sess, err := lookupQrSession(ctx, s.DB, s.Signer, token)
	if err != nil {
		recordQrFailure(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("pawbook.pet_id", sess.PetID))
	if err := qrStatusErr(domain.ClassifyQrSession(sess, s.now())); err != nil {
		recordQrFailure(err)
		return nil, err
	}

	pet, err := repo.GetPetWithHistory(ctx, s.DB, sess.PetID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pet history: %w", err)
	}
	observability.RecordHandoff(observability.FlowQR, "verified")
	return pet, nil
}

// Status reports "ACTIVE", "USED", "EXPIRED", or "INVALID" for token. Unknown
// and tampered tokens are "INVALID" rather than errors; only store failures
// return an error.
func (s *QrService) Status(ctx context.Context, token string) (string, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowQR, "status", "")
	defer span.End()

	sess, err := lookupQrSession(ctx, s.DB, s.Signer, token)
	if errors.Is(err, ErrInvalidSignature) || errors.Is(err, ErrNotFound) {
		return domain.QrNotFound.Public(), nil
	}
	if err != nil {
		return "", err
	}
	st := domain.ClassifyQrSession(sess, s.now()).Public()
	span.SetAttributes(attribute.String("qr.status", st))
	return st, nil
}

// lookupQrSession checks the token signature, then loads the stored session.
func lookupQrSession(ctx context.Context, db *gorm.DB, signer *auth.QrSigner, token string) (*domain.VaccineQrSession, error) {
	if _, err := signer.Verify(token); err != nil {
		return nil, ErrInvalidSignature
	}
	sess, err := repo.FindQrSessionByToken(ctx, db, token)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find qr session: %w", err)
	}
	return sess, nil
}

// qrStatusErr maps a non-active classification to its error.
func qrStatusErr(st domain.QrStatus) error {
	switch st {
	case domain.QrActive:
		return nil
	case domain.QrUsed:
		return ErrAlreadyUsed
	case domain.QrExpired:
		return ErrExpired
	default:
		return ErrNotFound
	}
}

func recordQrFailure(err error) {
	switch {
	case errors.Is(err, ErrInvalidSignature):
		observability.RecordHandoff(observability.FlowQR, "invalid_signature")
	case errors.Is(err, ErrNotFound):
		observability.RecordHandoff(observability.FlowQR, "not_found")
	case errors.Is(err, ErrAlreadyUsed):
		observability.RecordHandoff(observability.FlowQR, "already_used")
	case errors.Is(err, ErrExpired):
		observability.RecordHandoff(observability.FlowQR, "expired")
	case errors.Is(err, ErrPetMismatch):
		observability.RecordHandoff(observability.FlowQR, "pet_mismatch")
	}
}
