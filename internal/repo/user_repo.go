package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// CreateUser inserts u, assigning an ID and timestamps when missing.
// A taken email yields ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	if err := db.WithContext(ctx).Omit("VetProfile").Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetUser fetches a user by id with vet profile and clinic.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("VetProfile").
		Preload("VetProfile.Clinic").
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks a user up by (case-insensitive) email.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Preload("VetProfile").
		First(&u, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SetDefaultFamily points the user's default family at familyID.
func SetDefaultFamily(ctx context.Context, db *gorm.DB, userID, familyID string) error {
	res := db.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{"default_family_id": familyID, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateClinic inserts a clinic.
func CreateClinic(ctx context.Context, db *gorm.DB, c *domain.Clinic) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	c.CreatedAt, c.UpdatedAt = now, now
	return db.WithContext(ctx).Create(c).Error
}

// GetClinic fetches a clinic by id.
func GetClinic(ctx context.Context, db *gorm.DB, id string) (*domain.Clinic, error) {
	var c domain.Clinic
	if err := db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateVetProfile inserts a vet profile. A second profile for the same user
// yields ErrDuplicate.
func CreateVetProfile(ctx context.Context, db *gorm.DB, vp *domain.VetProfile) error {
	if vp.ID == "" {
		vp.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	vp.CreatedAt, vp.UpdatedAt = now, now
	if err := db.WithContext(ctx).Omit("Clinic").Create(vp).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetVetProfileByUser returns the vet profile of userID, or ErrNotFound.
func GetVetProfileByUser(ctx context.Context, db *gorm.DB, userID string) (*domain.VetProfile, error) {
	var vp domain.VetProfile
	if err := db.WithContext(ctx).Preload("Clinic").First(&vp, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &vp, nil
}
