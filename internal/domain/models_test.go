package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Enforce FKs so cascades actually execute.
	db.Exec("PRAGMA foreign_keys=ON;")
	return db
}

func allModels() []any {
	return []any{
		&User{}, &Clinic{}, &VetProfile{}, &Family{}, &FamilyMember{},
		&VaccineMaster{}, &Pet{}, &PetPastOwner{}, &PetCoOwner{},
		&VaccinationRecord{}, &VaccineQrSession{}, &Idempotency{},
	}
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(User{}).TableName():              "users",
		(Clinic{}).TableName():            "clinics",
		(VetProfile{}).TableName():        "vet_profiles",
		(Family{}).TableName():            "families",
		(FamilyMember{}).TableName():      "family_members",
		(Pet{}).TableName():               "pets",
		(PetPastOwner{}).TableName():      "pet_past_owners",
		(PetCoOwner{}).TableName():        "pet_co_owners",
		(VaccineMaster{}).TableName():     "vaccine_masters",
		(VaccinationRecord{}).TableName(): "vaccination_records",
		(VaccineQrSession{}).TableName():  "vaccine_qr_sessions",
		(Idempotency{}).TableName():       "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_Indexes_AndCascades(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	m := db.Migrator()

	for _, tbl := range allModels() {
		if !m.HasTable(tbl) {
			t.Fatalf("expected table for %T to exist", tbl)
		}
	}
	if !m.HasIndex(&User{}, "ux_users_email") {
		t.Fatalf("expected unique index ux_users_email")
	}
	if !m.HasIndex(&Pet{}, "ux_pets_transfer_code") {
		t.Fatalf("expected unique index ux_pets_transfer_code")
	}
	if !m.HasIndex(&VaccineQrSession{}, "ux_qr_sessions_token") {
		t.Fatalf("expected unique index ux_qr_sessions_token")
	}
	if !m.HasIndex(&VaccinationRecord{}, "idx_records_pet_date") {
		t.Fatalf("expected index idx_records_pet_date")
	}

	now := time.Now().UTC()
	owner := &User{ID: "u1", Email: "a@example.com", PasswordHash: "x", FullName: "A", Role: RoleOwner}
	vac := &VaccineMaster{ID: "v1", Name: "Rabisin", Brand: "BI", Type: "Rabies", Species: SpeciesDog, IsCore: true}
	pet := &Pet{ID: "p1", OwnerID: owner.ID, Name: "Mochi", Species: SpeciesDog, BirthDate: now.AddDate(-2, 0, 0), Gender: GenderFemale}
	rec := &VaccinationRecord{ID: "r1", PetID: pet.ID, VaccineMasterID: vac.ID, DateAdministered: now}
	for _, row := range []any{owner, vac, pet, rec} {
		if err := db.Create(row).Error; err != nil {
			t.Fatalf("seed %T: %v", row, err)
		}
	}

	// Deleting a pet removes its vaccination history.
	if err := db.Delete(&Pet{}, "id = ?", pet.ID).Error; err != nil {
		t.Fatalf("delete pet: %v", err)
	}
	var n int64
	db.Model(&VaccinationRecord{}).Where("pet_id = ?", pet.ID).Count(&n)
	if n != 0 {
		t.Fatalf("expected cascade delete of records, found %d", n)
	}
}

func TestTransferCode_Unique(t *testing.T) {
	db := newDomainDB(t)
	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	owner := &User{ID: "u1", Email: "a@example.com", PasswordHash: "x", FullName: "A"}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	code := "AB12CD34"
	exp := time.Now().Add(time.Hour)
	p1 := &Pet{ID: "p1", OwnerID: "u1", Name: "A", Species: SpeciesCat, BirthDate: time.Now(), TransferCode: &code, TransferExpiresAt: &exp}
	p2 := &Pet{ID: "p2", OwnerID: "u1", Name: "B", Species: SpeciesCat, BirthDate: time.Now(), TransferCode: &code, TransferExpiresAt: &exp}
	if err := db.Create(p1).Error; err != nil {
		t.Fatalf("create p1: %v", err)
	}
	if err := db.Create(p2).Error; err == nil {
		t.Fatalf("expected unique violation for duplicate transfer code")
	}

	// NULL codes do not collide.
	p3 := &Pet{ID: "p3", OwnerID: "u1", Name: "C", Species: SpeciesCat, BirthDate: time.Now()}
	p4 := &Pet{ID: "p4", OwnerID: "u1", Name: "D", Species: SpeciesCat, BirthDate: time.Now()}
	if err := db.Create(p3).Error; err != nil {
		t.Fatalf("create p3: %v", err)
	}
	if err := db.Create(p4).Error; err != nil {
		t.Fatalf("create p4: %v", err)
	}
}

func TestEnums_Valid(t *testing.T) {
	if !RoleVet.Valid() || Role("root").Valid() {
		t.Fatalf("role validation wrong")
	}
	if !SpeciesDog.Valid() || Species("dragon").Valid() {
		t.Fatalf("species validation wrong")
	}
	if !GenderUnknown.Valid() || Gender("x").Valid() {
		t.Fatalf("gender validation wrong")
	}
}
