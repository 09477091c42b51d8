package domain

import (
	"time"
)

// Species enumerates the animals the catalog knows about.
type Species string

const (
	SpeciesDog   Species = "dog"
	SpeciesCat   Species = "cat"
	SpeciesOther Species = "other"
)

// Valid reports whether s is a known species.
func (s Species) Valid() bool {
	switch s {
	case SpeciesDog, SpeciesCat, SpeciesOther:
		return true
	}
	return false
}

// Gender of a pet.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Valid reports whether g is a known gender.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Pet is an animal record with exactly one current owner.
//
// Fields:
//   - OwnerID: the current owner; mutated only by a transfer redemption.
//   - TransferCode / TransferExpiresAt: the single active transfer code, if
//     any. Issuing a new code overwrites both; redemption clears both in the
//     same update that changes OwnerID.
//   - Vaccinations, PastOwners, CoOwners: loaded on demand by the repository.
type Pet struct {
	ID                string     `json:"id"                            gorm:"type:char(36);primaryKey"`
	OwnerID           string     `json:"owner_id"                      gorm:"type:char(36);not null;index:idx_pets_owner"`
	Name              string     `json:"name"                          gorm:"type:varchar(128);not null"`
	Species           Species    `json:"species"                       gorm:"type:varchar(16);not null"`
	Breed             *string    `json:"breed,omitempty"               gorm:"type:varchar(128)"`
	BirthDate         time.Time  `json:"birth_date"                    gorm:"not null"`
	Gender            Gender     `json:"gender"                        gorm:"type:varchar(16);not null;default:'unknown'"`
	MicrochipNo       *string    `json:"microchip_no,omitempty"        gorm:"type:varchar(64)"`
	Image             *string    `json:"image,omitempty"               gorm:"type:text"`
	IsSterilized      bool       `json:"is_sterilized"                 gorm:"not null;default:false"`
	ChronicDiseases   *string    `json:"chronic_diseases,omitempty"    gorm:"type:text"`
	TransferCode      *string    `json:"transfer_code,omitempty"       gorm:"type:varchar(16);uniqueIndex:ux_pets_transfer_code"`
	TransferExpiresAt *time.Time `json:"transfer_expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	Owner        *User               `json:"owner,omitempty"        gorm:"foreignKey:OwnerID;references:ID"`
	Vaccinations []VaccinationRecord `json:"vaccinations,omitempty" gorm:"foreignKey:PetID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	PastOwners   []User              `json:"past_owners,omitempty"  gorm:"-"`
	CoOwners     []User              `json:"co_owners,omitempty"    gorm:"-"`
}

// TableName returns the database table name for Pet.
func (Pet) TableName() string { return "pets" }

// TransferCodeLive reports whether the pet carries a transfer code that can
// still be redeemed at now.
func (p *Pet) TransferCodeLive(now time.Time) bool {
	if p == nil || p.TransferCode == nil || *p.TransferCode == "" || p.TransferExpiresAt == nil {
		return false
	}
	return p.TransferExpiresAt.After(now)
}

// PetPastOwner records a previous owner of a pet. The set is append-only:
// re-adding the same (pet, user) pair is a no-op.
type PetPastOwner struct {
	PetID         string    `json:"pet_id"         gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:char(36);primaryKey;index"`
	TransferredAt time.Time `json:"transferred_at" gorm:"not null"`
}

// TableName returns the database table name for PetPastOwner.
func (PetPastOwner) TableName() string { return "pet_past_owners" }

// PetCoOwner grants another user shared access to a pet.
type PetCoOwner struct {
	PetID     string    `json:"pet_id"  gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for PetCoOwner.
func (PetCoOwner) TableName() string { return "pet_co_owners" }
