// Package domain defines the persistence models for users, households,
// pets, and vaccinations. These types are mapped with GORM and form the core
// data layer of the PawBook service.
package domain

import (
	"time"
)

// Role is the account role carried in access tokens.
type Role string

const (
	RoleOwner Role = "owner"
	RoleVet   Role = "vet"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleVet, RoleAdmin:
		return true
	}
	return false
}

// User is an account holder. Owners manage pets; vets additionally carry a
// VetProfile that allows them to write verified vaccination records.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: unique login identifier.
//   - PasswordHash: bcrypt hash, never serialized.
//   - DefaultFamilyID: the household created alongside the account.
type User struct {
	ID              string    `json:"id"                          gorm:"type:char(36);primaryKey"`
	Email           string    `json:"email"                       gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	PasswordHash    string    `json:"-"                           gorm:"type:varchar(255);not null"`
	FullName        string    `json:"full_name"                   gorm:"type:varchar(255);not null"`
	Role            Role      `json:"role"                        gorm:"type:varchar(16);not null;default:'owner'"`
	Image           *string   `json:"image,omitempty"             gorm:"type:text"`
	Address         *string   `json:"address,omitempty"           gorm:"type:text"`
	PhoneNumber     *string   `json:"phone_number,omitempty"      gorm:"type:varchar(32)"`
	DefaultFamilyID *string   `json:"default_family_id,omitempty" gorm:"type:char(36)"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	VetProfile *VetProfile `json:"vet_profile,omitempty" gorm:"foreignKey:UserID;references:ID"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Clinic is a veterinary practice a vet may be attached to.
type Clinic struct {
	ID          string    `json:"id"                     gorm:"type:char(36);primaryKey"`
	Name        string    `json:"name"                   gorm:"type:varchar(255);not null"`
	Address     string    `json:"address"                gorm:"type:text;not null;default:''"`
	PhoneNumber *string   `json:"phone_number,omitempty" gorm:"type:varchar(32)"`
	IsVerified  bool      `json:"is_verified"            gorm:"not null;default:false"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName returns the database table name for Clinic.
func (Clinic) TableName() string { return "clinics" }

// VetProfile marks a user as a veterinarian. A user "has a vet profile" iff a
// row exists for their user id.
type VetProfile struct {
	ID            string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"             gorm:"type:char(36);not null;uniqueIndex:ux_vet_profiles_user"`
	LicenseNumber string    `json:"license_number"      gorm:"type:varchar(64);not null"`
	IsVerified    bool      `json:"is_verified"         gorm:"not null;default:false"`
	ClinicID      *string   `json:"clinic_id,omitempty" gorm:"type:char(36);index"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	Clinic *Clinic `json:"clinic,omitempty" gorm:"foreignKey:ClinicID;references:ID"`
}

// TableName returns the database table name for VetProfile.
func (VetProfile) TableName() string { return "vet_profiles" }

// Family is a household that shares visibility of the owner's pets. Each user
// owns at most one family and may be a member of many.
type Family struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(64);not null;default:'My Pets'"`
	OwnerID   string    `json:"owner_id"   gorm:"type:char(36);not null;uniqueIndex:ux_families_owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner   *User  `json:"owner,omitempty"   gorm:"foreignKey:OwnerID;references:ID"`
	// Members is loaded from family_members by the repository.
	Members []User `json:"members,omitempty" gorm:"-"`
}

// TableName returns the database table name for Family.
func (Family) TableName() string { return "families" }

// FamilyMember is the explicit membership relation between families and users.
// Membership changes are plain inserts/deletes against this table.
type FamilyMember struct {
	FamilyID  string    `json:"family_id" gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:char(36);primaryKey;index"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for FamilyMember.
func (FamilyMember) TableName() string { return "family_members" }
