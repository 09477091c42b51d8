package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apisada-prim/pawbook/internal/domain"
)

func TestListVaccines_FilterAndOrder(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	seedVaccine(t, db, "Bronchicine", domain.SpeciesDog, false)
	seedVaccine(t, db, "Rabisin", domain.SpeciesDog, true)
	seedVaccine(t, db, "Felocell", domain.SpeciesCat, true)

	all, err := ListVaccines(ctx, db, "")
	if err != nil || len(all) != 3 {
		t.Fatalf("ListVaccines(all): %d err=%v", len(all), err)
	}
	dogs, err := ListVaccines(ctx, db, domain.SpeciesDog)
	if err != nil || len(dogs) != 2 {
		t.Fatalf("ListVaccines(dog): %d err=%v", len(dogs), err)
	}
	if !dogs[0].IsCore || dogs[0].Name != "Rabisin" {
		t.Fatalf("core vaccines should sort first: %+v", dogs)
	}
}

func TestCreateRecord_QrSessionUsedOnce(t *testing.T) {
	db := newMigratedDB(t)
	ctx := context.Background()
	owner := seedUser(t, db, "o@example.com")
	pet := seedPet(t, db, owner.ID, "Mochi")
	vac := seedVaccine(t, db, "Rabisin", domain.SpeciesDog, true)
	s, err := CreateQrSession(ctx, db, pet.ID, owner.ID, "tok", time.Now(), time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	r1 := &domain.VaccinationRecord{PetID: pet.ID, VaccineMasterID: vac.ID, DateAdministered: time.Now(), IsVerified: true, QrSessionID: &s.ID}
	if err := CreateRecord(ctx, db, r1); err != nil {
		t.Fatalf("CreateRecord: %v", err)
	}
	r2 := &domain.VaccinationRecord{PetID: pet.ID, VaccineMasterID: vac.ID, DateAdministered: time.Now(), IsVerified: true, QrSessionID: &s.ID}
	if err := CreateRecord(ctx, db, r2); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for a reused session, got %v", err)
	}

	got, err := GetRecord(ctx, db, r1.ID)
	if err != nil || got.Vaccine == nil || !got.IsVerified {
		t.Fatalf("GetRecord: %+v err=%v", got, err)
	}
	list, err := ListRecordsForPet(ctx, db, pet.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListRecordsForPet: %d err=%v", len(list), err)
	}
}

func TestCreateRecord_UnknownPetViolatesForeignKey(t *testing.T) {
	db := newMigratedDB(t)
	vac := seedVaccine(t, db, "Rabisin", domain.SpeciesDog, true)
	r := &domain.VaccinationRecord{PetID: "missing", VaccineMasterID: vac.ID, DateAdministered: time.Now()}
	if err := CreateRecord(context.Background(), db, r); err == nil {
		t.Fatalf("expected foreign key error for unknown pet")
	}
}
