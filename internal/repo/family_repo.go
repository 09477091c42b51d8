package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// CreateFamily inserts a family owned by ownerID. The owner is not added as a
// member here; callers do that in the same transaction. A user can own at most
// one family, so a second call yields ErrDuplicate.
func CreateFamily(ctx context.Context, db *gorm.DB, ownerID, name string) (*domain.Family, error) {
	now := time.Now().UTC()
	f := &domain.Family{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(f).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return f, nil
}

// GetFamily fetches a family by id with owner and members.
func GetFamily(ctx context.Context, db *gorm.DB, id string) (*domain.Family, error) {
	var f domain.Family
	if err := db.WithContext(ctx).Preload("Owner").First(&f, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &f, loadMembers(ctx, db, &f)
}

// GetFamilyByOwner fetches the family owned by ownerID with owner and members.
func GetFamilyByOwner(ctx context.Context, db *gorm.DB, ownerID string) (*domain.Family, error) {
	var f domain.Family
	if err := db.WithContext(ctx).Preload("Owner").First(&f, "owner_id = ?", ownerID).Error; err != nil {
		return nil, err
	}
	return &f, loadMembers(ctx, db, &f)
}

// ListJoinedFamilies returns families userID belongs to but does not own.
func ListJoinedFamilies(ctx context.Context, db *gorm.DB, userID string) ([]domain.Family, error) {
	var out []domain.Family
	err := db.WithContext(ctx).
		Preload("Owner").
		Joins("JOIN family_members fm ON fm.family_id = families.id").
		Where("fm.user_id = ? AND families.owner_id <> ?", userID, userID).
		Order("families.created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i := range out {
		if err := loadMembers(ctx, db, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RenameFamily sets the family's name.
func RenameFamily(ctx context.Context, db *gorm.DB, id, name string) error {
	res := db.WithContext(ctx).Model(&domain.Family{}).
		Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// AddFamilyMember adds userID to familyID. Adding an existing member is a no-op.
func AddFamilyMember(ctx context.Context, db *gorm.DB, familyID, userID string) error {
	m := &domain.FamilyMember{FamilyID: familyID, UserID: userID, CreatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}

// RemoveFamilyMember deletes the membership row; ErrNotFound if absent.
func RemoveFamilyMember(ctx context.Context, db *gorm.DB, familyID, userID string) error {
	res := db.WithContext(ctx).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Delete(&domain.FamilyMember{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// IsFamilyMember reports whether userID belongs to familyID.
func IsFamilyMember(ctx context.Context, db *gorm.DB, familyID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.FamilyMember{}).
		Where("family_id = ? AND user_id = ?", familyID, userID).
		Count(&n).Error
	return n > 0, err
}

// InOwnersFamily reports whether userID is a member of the family owned by ownerID.
func InOwnersFamily(ctx context.Context, db *gorm.DB, ownerID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.FamilyMember{}).
		Joins("JOIN families f ON f.id = family_members.family_id").
		Where("f.owner_id = ? AND family_members.user_id = ?", ownerID, userID).
		Count(&n).Error
	return n > 0, err
}

func loadMembers(ctx context.Context, db *gorm.DB, f *domain.Family) error {
	var members []domain.User
	err := db.WithContext(ctx).
		Joins("JOIN family_members fm ON fm.user_id = users.id").
		Where("fm.family_id = ?", f.ID).
		Order("fm.created_at ASC").
		Find(&members).Error
	if err != nil {
		return err
	}
	f.Members = members
	return nil
}
