// Aggregates behind list ETags and the public pet card.

package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// PetsStats returns aggregate metadata for the pets visible in a user's list
// (owned or co-owned): the number of rows and the greatest UpdatedAt.
//
// When the user has no pets, the returned count is 0 and maxUpdatedAt is nil.
func PetsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Pet{}).
		Where("owner_id = ?", userID).
		Or("id IN (?)", db.Model(&domain.PetCoOwner{}).Select("pet_id").Where("user_id = ?", userID))

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// RecordSummary aggregates a pet's vaccination history.
type RecordSummary struct {
	Total          int64
	Verified       int64
	LastGiven      *time.Time
	LastVaccine    string
	NextDue        *time.Time
	LastRecordedAt *time.Time
}

// VaccinationSummary computes a RecordSummary for petID. NextDue is the
// earliest next-due date on or after now.
func VaccinationSummary(ctx context.Context, db *gorm.DB, petID string, now time.Time) (RecordSummary, error) {
	var s RecordSummary
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.VaccinationRecord{}).Where("pet_id = ?", petID)
	}
	if err := base().Count(&s.Total).Error; err != nil {
		return s, err
	}
	if s.Total == 0 {
		return s, nil
	}
	if err := base().Where("is_verified = ?", true).Count(&s.Verified).Error; err != nil {
		return s, err
	}

	var last domain.VaccinationRecord
	if err := base().Preload("Vaccine").Order("date_administered DESC").First(&last).Error; err != nil {
		return s, err
	}
	s.LastGiven = &last.DateAdministered
	s.LastRecordedAt = &last.CreatedAt
	if last.Vaccine != nil {
		s.LastVaccine = last.Vaccine.Name
	}

	var due struct {
		NextDueDate *time.Time
	}
	err := base().
		Select("next_due_date").
		Where("next_due_date IS NOT NULL AND next_due_date >= ?", now.UTC()).
		Order("next_due_date ASC").
		Limit(1).
		Scan(&due).Error
	if err != nil {
		return s, err
	}
	s.NextDue = due.NextDueDate
	return s, nil
}
