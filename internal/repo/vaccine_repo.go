package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// ListVaccines returns the catalog, optionally filtered by species, core
// vaccines first.
func ListVaccines(ctx context.Context, db *gorm.DB, species domain.Species) ([]domain.VaccineMaster, error) {
	q := db.WithContext(ctx).Model(&domain.VaccineMaster{})
	if species != "" {
		q = q.Where("species = ?", species)
	}
	var out []domain.VaccineMaster
	err := q.Order("is_core DESC").Order("type ASC").Order("name ASC").Find(&out).Error
	return out, err
}

// GetVaccine fetches a catalog entry by id.
func GetVaccine(ctx context.Context, db *gorm.DB, id string) (*domain.VaccineMaster, error) {
	var v domain.VaccineMaster
	if err := db.WithContext(ctx).First(&v, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &v, nil
}

// CreateVaccine inserts a catalog entry.
func CreateVaccine(ctx context.Context, db *gorm.DB, v *domain.VaccineMaster) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(v).Error
}

// CreateRecord inserts a vaccination record. A record that reuses a QR
// session already tied to another record yields ErrDuplicate.
func CreateRecord(ctx context.Context, db *gorm.DB, r *domain.VaccinationRecord) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	// Stored times are compared as text by SQLite, so keep them all in UTC.
	r.DateAdministered = r.DateAdministered.UTC()
	if r.NextDueDate != nil {
		due := r.NextDueDate.UTC()
		r.NextDueDate = &due
	}
	if err := db.WithContext(ctx).Omit(clause.Associations).Create(r).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// GetRecord fetches a record with its catalog entry, vet, and clinic.
func GetRecord(ctx context.Context, db *gorm.DB, id string) (*domain.VaccinationRecord, error) {
	var r domain.VaccinationRecord
	err := db.WithContext(ctx).
		Preload("Vaccine").Preload("Vet").Preload("Clinic").
		First(&r, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// ListRecordsForPet returns a pet's records newest-administered-first.
func ListRecordsForPet(ctx context.Context, db *gorm.DB, petID string) ([]domain.VaccinationRecord, error) {
	var out []domain.VaccinationRecord
	err := db.WithContext(ctx).
		Preload("Vaccine").
		Where("pet_id = ?", petID).
		Order("date_administered DESC").Order("created_at DESC").
		Find(&out).Error
	return out, err
}
