package domain

import "time"

// VaccineMaster is a catalog entry describing a vaccine product.
type VaccineMaster struct {
	ID          string    `json:"id"                    gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"                  gorm:"type:varchar(128);not null"`
	Brand       string    `json:"brand"                 gorm:"type:varchar(128);not null"`
	Type        string    `json:"type"                  gorm:"type:varchar(64);not null"`
	Species     Species   `json:"species"               gorm:"type:varchar(16);not null;index"`
	IsCore      bool      `json:"is_core"               gorm:"not null;default:false"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for VaccineMaster.
func (VaccineMaster) TableName() string { return "vaccine_masters" }

// VaccinationRecord is one administered (or owner-claimed) vaccination.
//
// IsVerified is true iff the record was written through the vet path, either
// by consuming a QR session or by direct vet entry. Owner uploads are always
// unverified and carry no vet or clinic.
type VaccinationRecord struct {
	ID               string     `json:"id"                       gorm:"type:char(36);primaryKey"`
	PetID            string     `json:"pet_id"                   gorm:"type:char(36);not null;index:idx_records_pet_date,priority:1"`
	VaccineMasterID  string     `json:"vaccine_master_id"        gorm:"type:char(36);not null;index"`
	DateAdministered time.Time  `json:"date_administered"        gorm:"not null;index:idx_records_pet_date,priority:2"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	StickerImage     *string    `json:"sticker_image,omitempty"  gorm:"type:text"`
	LotNumber        *string    `json:"lot_number,omitempty"     gorm:"type:varchar(64)"`
	IsVerified       bool       `json:"is_verified"              gorm:"not null;default:false"`
	VetID            *string    `json:"vet_id,omitempty"         gorm:"type:char(36);index"`
	ClinicID         *string    `json:"clinic_id,omitempty"      gorm:"type:char(36)"`
	QrSessionID      *string    `json:"qr_session_id,omitempty"  gorm:"type:char(36);uniqueIndex:ux_records_qr_session"`
	CreatedAt        time.Time  `json:"created_at"`

	Vaccine *VaccineMaster `json:"vaccine,omitempty" gorm:"foreignKey:VaccineMasterID;references:ID"`
	Vet     *VetProfile    `json:"vet,omitempty"     gorm:"foreignKey:VetID;references:ID"`
	Clinic  *Clinic        `json:"clinic,omitempty"  gorm:"foreignKey:ClinicID;references:ID"`
}

// TableName returns the database table name for VaccinationRecord.
func (VaccinationRecord) TableName() string { return "vaccination_records" }
