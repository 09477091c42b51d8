// Pets, their co-owner and past-owner links, and transfer codes.
// Missing pets yield ErrNotFound; a conditional update whose precondition
// no longer holds yields ErrConflict.

package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// CreatePet inserts p, assigning an ID and timestamps when missing.
func CreatePet(ctx context.Context, db *gorm.DB, p *domain.Pet) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	p.BirthDate = p.BirthDate.UTC()
	return db.WithContext(ctx).Omit(clause.Associations).Create(p).Error
}

// GetPet fetches a pet by id without relations.
func GetPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	if err := db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPetWithHistory fetches a pet with owner, co-owners, and vaccination
// records ordered newest-administered-first.
func GetPetWithHistory(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).
		Preload("Owner").
		Preload("Vaccinations", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("date_administered DESC").Order("created_at DESC")
		}).
		Preload("Vaccinations.Vaccine").
		Preload("Vaccinations.Vet").
		Preload("Vaccinations.Clinic").
		First(&p, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	co, err := ListCoOwners(ctx, db, id)
	if err != nil {
		return nil, err
	}
	p.CoOwners = co
	return &p, nil
}

// UpdatePet applies the given column updates to pet id.
func UpdatePet(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).Model(&domain.Pet{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeletePet removes a pet together with its records, QR sessions, and
// relation rows.
func DeletePet(ctx context.Context, db *gorm.DB, id string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pet_id = ?", id).Delete(&domain.PetCoOwner{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pet_id = ?", id).Delete(&domain.PetPastOwner{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pet_id = ?", id).Delete(&domain.VaccineQrSession{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pet_id = ?", id).Delete(&domain.VaccinationRecord{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Pet{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ListPetsForUser returns pets userID owns or co-owns, newest first.
func ListPetsForUser(ctx context.Context, db *gorm.DB, userID string) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Or("id IN (?)", db.Model(&domain.PetCoOwner{}).Select("pet_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

// ListPetsByOwner returns pets currently owned by ownerID, newest first.
func ListPetsByOwner(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error
	return out, err
}

// ListAlumniPets returns pets userID used to own and no longer does, most
// recently transferred first.
func ListAlumniPets(ctx context.Context, db *gorm.DB, userID string) ([]domain.Pet, error) {
	var out []domain.Pet
	err := db.WithContext(ctx).
		Joins("JOIN pet_past_owners po ON po.pet_id = pets.id").
		Where("po.user_id = ? AND pets.owner_id <> ?", userID, userID).
		Order("po.transferred_at DESC").
		Find(&out).Error
	return out, err
}

// AddCoOwner grants userID co-ownership of petID. Re-adding is a no-op.
func AddCoOwner(ctx context.Context, db *gorm.DB, petID, userID string) error {
	row := &domain.PetCoOwner{PetID: petID, UserID: userID, CreatedAt: time.Now().UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// RemoveCoOwner revokes co-ownership. Removing a non-co-owner is a no-op.
func RemoveCoOwner(ctx context.Context, db *gorm.DB, petID, userID string) error {
	return db.WithContext(ctx).
		Where("pet_id = ? AND user_id = ?", petID, userID).
		Delete(&domain.PetCoOwner{}).Error
}

// IsCoOwner reports whether userID co-owns petID.
func IsCoOwner(ctx context.Context, db *gorm.DB, petID, userID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.PetCoOwner{}).
		Where("pet_id = ? AND user_id = ?", petID, userID).
		Count(&n).Error
	return n > 0, err
}

// ListCoOwners returns the co-owners of petID.
func ListCoOwners(ctx context.Context, db *gorm.DB, petID string) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Joins("JOIN pet_co_owners co ON co.user_id = users.id").
		Where("co.pet_id = ?", petID).
		Order("co.created_at ASC").
		Find(&out).Error
	return out, err
}

// ListPastOwners returns the previous owners of petID, oldest transfer first.
func ListPastOwners(ctx context.Context, db *gorm.DB, petID string) ([]domain.User, error) {
	var out []domain.User
	err := db.WithContext(ctx).
		Joins("JOIN pet_past_owners po ON po.user_id = users.id").
		Where("po.pet_id = ?", petID).
		Order("po.transferred_at ASC").
		Find(&out).Error
	return out, err
}

// AddPastOwner appends userID to the pet's past owners. The relation is a
// set: appending an existing entry is a no-op.
func AddPastOwner(ctx context.Context, db *gorm.DB, petID, userID string, at time.Time) error {
	row := &domain.PetPastOwner{PetID: petID, UserID: userID, TransferredAt: at.UTC()}
	return db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

// SetPetTransferCode stores code as the pet's single transfer code,
// replacing any previous one. A code already held by another pet yields
// ErrDuplicate.
func SetPetTransferCode(ctx context.Context, db *gorm.DB, petID, code string, expiresAt time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Pet{}).
		Where("id = ?", petID).
		Updates(map[string]any{
			"transfer_code":       code,
			"transfer_expires_at": expiresAt.UTC(),
			"updated_at":          time.Now().UTC(),
		})
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClearPetTransferCode removes the pet's transfer code, if any.
func ClearPetTransferCode(ctx context.Context, db *gorm.DB, petID string) error {
	return db.WithContext(ctx).Model(&domain.Pet{}).
		Where("id = ?", petID).
		Updates(map[string]any{"transfer_code": nil, "transfer_expires_at": nil}).Error
}

// FindPetByTransferCode returns the pet holding code while it is live at now.
func FindPetByTransferCode(ctx context.Context, db *gorm.DB, code string, now time.Time) (*domain.Pet, error) {
	var p domain.Pet
	err := db.WithContext(ctx).
		Where("transfer_code = ? AND transfer_expires_at > ?", code, now.UTC()).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ClaimPetTransfer moves petID to newOwnerID and clears its transfer code in
// one conditional update. It matches only while the pet still holds code and
// the code is unexpired at now; otherwise it returns ErrConflict and changes
// nothing. Of several concurrent claims for the same code, exactly one wins.
func ClaimPetTransfer(ctx context.Context, db *gorm.DB, petID, code, newOwnerID string, now time.Time) error {
	res := db.WithContext(ctx).Model(&domain.Pet{}).
		Where("id = ? AND transfer_code = ? AND transfer_expires_at > ?", petID, code, now.UTC()).
		Updates(map[string]any{
			"owner_id":            newOwnerID,
			"transfer_code":       nil,
			"transfer_expires_at": nil,
			"updated_at":          now.UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
