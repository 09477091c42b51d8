// Vaccine QR sessions. Nothing here is cached: every check reads the store
// so a consumption committed by one request is visible to the next.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// CreateQrSession stores a new unconsumed session for token that expires
// ttl after now.
func CreateQrSession(ctx context.Context, db *gorm.DB, petID, ownerID, token string, now time.Time, ttl time.Duration) (*domain.VaccineQrSession, error) {
	now = now.UTC()
	s := &domain.VaccineQrSession{
		ID:        uuid.NewString(),
		Token:     token,
		PetID:     petID,
		OwnerID:   ownerID,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return s, nil
}

// FindActiveQrSession returns the newest session for (petID, ownerID) that is
// unconsumed and unexpired at now, or ErrNotFound.
func FindActiveQrSession(ctx context.Context, db *gorm.DB, petID, ownerID string, now time.Time) (*domain.VaccineQrSession, error) {
	var s domain.VaccineQrSession
	err := db.WithContext(ctx).
		Where("pet_id = ? AND owner_id = ? AND consumed = ? AND expires_at > ?", petID, ownerID, false, now.UTC()).
		Order("created_at DESC").
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindQrSessionByToken returns the session for token in any state, or ErrNotFound.
func FindQrSessionByToken(ctx context.Context, db *gorm.DB, token string) (*domain.VaccineQrSession, error) {
	var s domain.VaccineQrSession
	if err := db.WithContext(ctx).First(&s, "token = ?", token).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// MarkQrSessionConsumed flips the session to consumed. The update is
// conditional on the session being unconsumed and unexpired at now, so
// concurrent callers cannot both succeed: the loser gets ErrConflict.
func MarkQrSessionConsumed(ctx context.Context, db *gorm.DB, id string, now time.Time) error {
	now = now.UTC()
	res := db.WithContext(ctx).Model(&domain.VaccineQrSession{}).
		Where("id = ? AND consumed = ? AND expires_at > ?", id, false, now).
		Updates(map[string]any{"consumed": true, "consumed_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
