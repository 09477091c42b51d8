// Package services – FamilyService
//
// A family is a household: its owner's pets are visible to every member.
// Each user owns exactly one family (created at registration) and may join
// any number of others by invitation.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultFamilyName is given to the family created with each account.
	DefaultFamilyName = "My Pets"

	maxFamilyNameRunes = 10
)

// MyFamilies is the caller's own family plus those they joined.
type MyFamilies struct {
	Owned  *domain.Family  `json:"owned"`
	Joined []domain.Family `json:"joined"`
}

// FamilyService manages household membership.
type FamilyService struct {
	DB *gorm.DB
}

// Mine returns the family the caller owns and the families they joined.
func (s *FamilyService) Mine(ctx context.Context, p auth.Principal) (*MyFamilies, error) {
	tr := otel.Tracer("services/FamilyService")
	ctx, span := tr.Start(ctx, "Mine", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	owned, err := s.owned(ctx, p)
	if err != nil {
		return nil, err
	}
	joined, err := repo.ListJoinedFamilies(ctx, s.DB, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list joined families: %w", err)
	}
	if joined == nil {
		joined = []domain.Family{}
	}
	return &MyFamilies{Owned: owned, Joined: joined}, nil
}

// Rename sets the name of the caller's family. Names are 1 to 10 runes.
func (s *FamilyService) Rename(ctx context.Context, p auth.Principal, name string) (*domain.Family, error) {
	tr := otel.Tracer("services/FamilyService")
	ctx, span := tr.Start(ctx, "Rename", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	if utf8.RuneCountInString(name) > maxFamilyNameRunes {
		return nil, invalidInput(fmt.Sprintf("name must be at most %d characters", maxFamilyNameRunes))
	}
	fam, err := s.owned(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := repo.RenameFamily(ctx, s.DB, fam.ID, name); err != nil {
		return nil, fmt.Errorf("rename family: %w", err)
	}
	return s.owned(ctx, p)
}

// Invite adds the user registered as email to the caller's family.
func (s *FamilyService) Invite(ctx context.Context, p auth.Principal, email string) (*domain.Family, error) {
	tr := otel.Tracer("services/FamilyService")
	ctx, span := tr.Start(ctx, "Invite", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	user, err := findUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if user.ID == p.UserID {
		return nil, invalidInput("you cannot invite yourself")
	}
	fam, err := s.owned(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := repo.AddFamilyMember(ctx, s.DB, fam.ID, user.ID); err != nil {
		return nil, fmt.Errorf("add family member: %w", err)
	}
	return s.owned(ctx, p)
}

// RemoveMember removes userID from the caller's family. The owner cannot be
// removed from their own family.
func (s *FamilyService) RemoveMember(ctx context.Context, p auth.Principal, userID string) (*domain.Family, error) {
	tr := otel.Tracer("services/FamilyService")
	ctx, span := tr.Start(ctx, "RemoveMember",
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("member.id", userID),
		),
	)
	defer span.End()

	if userID == p.UserID {
		return nil, invalidInput("the owner cannot be removed")
	}
	fam, err := s.owned(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := repo.RemoveFamilyMember(ctx, s.DB, fam.ID, userID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("remove family member: %w", err)
	}
	return s.owned(ctx, p)
}

// Leave removes the caller from familyID. Owners cannot leave their own
// family.
func (s *FamilyService) Leave(ctx context.Context, p auth.Principal, familyID string) error {
	tr := otel.Tracer("services/FamilyService")
	ctx, span := tr.Start(ctx, "Leave",
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("family.id", familyID),
		),
	)
	defer span.End()

	fam, err := repo.GetFamily(ctx, s.DB, familyID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load family: %w", err)
	}
	if fam.OwnerID == p.UserID {
		return invalidInput("you cannot leave your own family")
	}
	if err := repo.RemoveFamilyMember(ctx, s.DB, fam.ID, p.UserID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("leave family: %w", err)
	}
	return nil
}

func (s *FamilyService) owned(ctx context.Context, p auth.Principal) (*domain.Family, error) {
	fam, err := repo.GetFamilyByOwner(ctx, s.DB, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	return fam, nil
}
