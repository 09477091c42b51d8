package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"
)

// RequireOwner fails with ErrForbidden unless p currently owns pet.
func RequireOwner(p auth.Principal, pet *domain.Pet) error {
	if p.Anonymous() || pet == nil || pet.OwnerID != p.UserID {
		return ErrForbidden
	}
	return nil
}

// CanView reports whether p may read pet: its owner, a co-owner, or a member
// of the owner's family.
func CanView(ctx context.Context, db *gorm.DB, p auth.Principal, pet *domain.Pet) (bool, error) {
	if p.Anonymous() || pet == nil {
		return false, nil
	}
	if pet.OwnerID == p.UserID {
		return true, nil
	}
	co, err := repo.IsCoOwner(ctx, db, pet.ID, p.UserID)
	if err != nil {
		return false, fmt.Errorf("check co-owner: %w", err)
	}
	if co {
		return true, nil
	}
	fam, err := repo.InOwnersFamily(ctx, db, pet.OwnerID, p.UserID)
	if err != nil {
		return false, fmt.Errorf("check family: %w", err)
	}
	return fam, nil
}

// RequireViewer is CanView that fails with ErrForbidden.
func RequireViewer(ctx context.Context, db *gorm.DB, p auth.Principal, pet *domain.Pet) error {
	ok, err := CanView(ctx, db, p, pet)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

// RequireVet returns the caller's vet profile, or ErrForbidden when they have
// none.
func RequireVet(ctx context.Context, db *gorm.DB, p auth.Principal) (*domain.VetProfile, error) {
	if p.Anonymous() {
		return nil, ErrForbidden
	}
	vp, err := repo.GetVetProfileByUser(ctx, db, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, forbidden("Only veterinarians can create verified vaccination records")
	}
	if err != nil {
		return nil, fmt.Errorf("load vet profile: %w", err)
	}
	return vp, nil
}

// loadPet fetches a pet, translating a missing row into ErrNotFound.
func loadPet(ctx context.Context, db *gorm.DB, id string) (*domain.Pet, error) {
	pet, err := repo.GetPet(ctx, db, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pet: %w", err)
	}
	return pet, nil
}
