// Package services – PetService
//
// This file implements pet management and the ownership transfer workflow.
// An owner issues a short uppercase code with a TTL; any other user may
// redeem it once to become the owner. Redemption is a single conditional
// update (owner change plus code clear) followed by the past-owner append, in
// one transaction, so concurrent claims of the same code have one winner.
package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/width"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/observability"
	"github.com/apisada-prim/pawbook/internal/repo"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultTransferCodeTTL is how long a transfer code stays redeemable.
	DefaultTransferCodeTTL = 24 * time.Hour

	transferCodeBytes    = 4
	transferCodeAttempts = 5
	maxPetNameRunes      = 128
)

// PetInput carries the fields of a new pet.
type PetInput struct {
	Name            string         `json:"name"`
	Species         domain.Species `json:"species"`
	Breed           *string        `json:"breed,omitempty"`
	BirthDate       time.Time      `json:"birth_date"`
	Gender          domain.Gender  `json:"gender,omitempty"`
	MicrochipNo     *string        `json:"microchip_no,omitempty"`
	Image           *string        `json:"image,omitempty"`
	IsSterilized    bool           `json:"is_sterilized"`
	ChronicDiseases *string        `json:"chronic_diseases,omitempty"`
}

// PetPatch carries optional updates; nil fields are left untouched.
type PetPatch struct {
	Name            *string         `json:"name,omitempty"`
	Species         *domain.Species `json:"species,omitempty"`
	Breed           *string         `json:"breed,omitempty"`
	BirthDate       *time.Time      `json:"birth_date,omitempty"`
	Gender          *domain.Gender  `json:"gender,omitempty"`
	MicrochipNo     *string         `json:"microchip_no,omitempty"`
	Image           *string         `json:"image,omitempty"`
	IsSterilized    *bool           `json:"is_sterilized,omitempty"`
	ChronicDiseases *string         `json:"chronic_diseases,omitempty"`
}

// PetCard is the public, unauthenticated summary of a pet.
type PetCard struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Species      domain.Species `json:"species"`
	Breed        *string        `json:"breed,omitempty"`
	BirthDate    time.Time      `json:"birth_date"`
	Gender       domain.Gender  `json:"gender"`
	Image        *string        `json:"image,omitempty"`
	IsSterilized bool           `json:"is_sterilized"`
	Vaccinations CardSummary    `json:"vaccinations"`
}

// CardSummary condenses a pet's vaccination history.
type CardSummary struct {
	Total       int64      `json:"total"`
	Verified    int64      `json:"verified"`
	LastVaccine string     `json:"last_vaccine,omitempty"`
	LastGiven   *time.Time `json:"last_given,omitempty"`
	NextDue     *time.Time `json:"next_due,omitempty"`
}

// PetService manages pets, co-owners, and ownership transfers.
type PetService struct {
	DB          *gorm.DB
	TransferTTL time.Duration

	// Now is the clock; nil means time.Now.
	Now func() time.Time
	// NewCode mints transfer codes; nil means newTransferCode.
	NewCode func() (string, error)
}

func (s *PetService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *PetService) transferTTL() time.Duration {
	if s.TransferTTL > 0 {
		return s.TransferTTL
	}
	return DefaultTransferCodeTTL
}

// Create registers a pet owned by the caller.
func (s *PetService) Create(ctx context.Context, p auth.Principal, in PetInput) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	if p.Anonymous() {
		return nil, ErrForbidden
	}
	name, err := cleanPetName(in.Name)
	if err != nil {
		return nil, err
	}
	if !in.Species.Valid() {
		return nil, invalidInput("species must be dog, cat, or other")
	}
	if in.Gender == "" {
		in.Gender = domain.GenderUnknown
	}
	if !in.Gender.Valid() {
		return nil, invalidInput("gender must be male, female, or unknown")
	}
	if in.BirthDate.IsZero() {
		return nil, invalidInput("birth_date is required")
	}
	if in.BirthDate.After(s.now()) {
		return nil, invalidInput("birth_date is in the future")
	}

	pet := &domain.Pet{
		OwnerID:         p.UserID,
		Name:            name,
		Species:         in.Species,
		Breed:           trimmedOrNil(in.Breed),
		BirthDate:       in.BirthDate,
		Gender:          in.Gender,
		MicrochipNo:     trimmedOrNil(in.MicrochipNo),
		Image:           trimmedOrNil(in.Image),
		IsSterilized:    in.IsSterilized,
		ChronicDiseases: trimmedOrNil(in.ChronicDiseases),
	}
	if err := repo.CreatePet(ctx, s.DB, pet); err != nil {
		return nil, fmt.Errorf("create pet: %w", err)
	}
	span.SetAttributes(attribute.String("pet.id", pet.ID))
	return pet, nil
}

// ListMine returns pets the caller owns or co-owns. With familyID set it
// returns the pets of that family's owner instead; the caller must own or
// belong to the family.
func (s *PetService) ListMine(ctx context.Context, p auth.Principal, familyID string) ([]domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "ListMine",
		trace.WithAttributes(
			attribute.String("user.id", p.UserID),
			attribute.String("family.id", familyID),
		),
	)
	defer span.End()

	if familyID == "" {
		out, err := repo.ListPetsForUser(ctx, s.DB, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("list pets: %w", err)
		}
		return s.forViewer(p, out...), nil
	}

	fam, err := repo.GetFamily(ctx, s.DB, familyID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load family: %w", err)
	}
	if fam.OwnerID != p.UserID {
		member, err := repo.IsFamilyMember(ctx, s.DB, fam.ID, p.UserID)
		if err != nil {
			return nil, fmt.Errorf("check family: %w", err)
		}
		if !member {
			return nil, ErrForbidden
		}
	}
	out, err := repo.ListPetsByOwner(ctx, s.DB, fam.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("list family pets: %w", err)
	}
	return s.forViewer(p, out...), nil
}

// ListAlumni returns pets the caller used to own.
func (s *PetService) ListAlumni(ctx context.Context, p auth.Principal) ([]domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "ListAlumni", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	out, err := repo.ListAlumniPets(ctx, s.DB, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list alumni pets: %w", err)
	}
	return s.forViewer(p, out...), nil
}

// Get returns a pet with owner, co-owners, past owners, and vaccinations
// newest-administered-first. The caller must be able to view it.
func (s *PetService) Get(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(
			attribute.String("pet.id", petID),
			attribute.String("user.id", p.UserID),
		),
	)
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireViewer(ctx, s.DB, p, pet); err != nil {
		return nil, err
	}
	return s.detailFor(ctx, p, petID)
}

// Redeemed returns the pet a caller once claimed, for replaying the claim's
// response. The caller may have passed the pet on since, so being its owner
// or one of its past owners is enough.
func (s *PetService) Redeemed(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error) {
	out, err := s.detailFor(ctx, p, petID)
	if err != nil {
		return nil, err
	}
	if out.OwnerID == p.UserID || slices.ContainsFunc(out.PastOwners, func(u domain.User) bool { return u.ID == p.UserID }) {
		return out, nil
	}
	return nil, ErrForbidden
}

// detailFor is detail as seen by p.
func (s *PetService) detailFor(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error) {
	out, err := s.detail(ctx, petID)
	if err != nil {
		return nil, err
	}
	hideTransferCode(p.UserID, out, s.now())
	return out, nil
}

// forViewer hides transfer codes p may not see in pets, in place.
func (s *PetService) forViewer(p auth.Principal, pets ...domain.Pet) []domain.Pet {
	now := s.now()
	for i := range pets {
		hideTransferCode(p.UserID, &pets[i], now)
	}
	return pets
}

// hideTransferCode clears pet's transfer code unless viewerID owns the pet
// and the code can still be claimed at now.
func hideTransferCode(viewerID string, pet *domain.Pet, now time.Time) {
	if pet.OwnerID != viewerID || !pet.TransferCodeLive(now) {
		pet.TransferCode, pet.TransferExpiresAt = nil, nil
	}
}

func (s *PetService) detail(ctx context.Context, petID string) (*domain.Pet, error) {
	pet, err := repo.GetPetWithHistory(ctx, s.DB, petID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load pet history: %w", err)
	}
	past, err := repo.ListPastOwners(ctx, s.DB, petID)
	if err != nil {
		return nil, fmt.Errorf("list past owners: %w", err)
	}
	pet.PastOwners = past
	return pet, nil
}

// Update applies patch to a pet the caller owns.
func (s *PetService) Update(ctx context.Context, p auth.Principal, petID string, patch PetPatch) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(p, pet); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if patch.Name != nil {
		name, err := cleanPetName(*patch.Name)
		if err != nil {
			return nil, err
		}
		fields["name"] = name
	}
	if patch.Species != nil {
		if !patch.Species.Valid() {
			return nil, invalidInput("species must be dog, cat, or other")
		}
		fields["species"] = *patch.Species
	}
	if patch.Gender != nil {
		if !patch.Gender.Valid() {
			return nil, invalidInput("gender must be male, female, or unknown")
		}
		fields["gender"] = *patch.Gender
	}
	if patch.BirthDate != nil {
		if patch.BirthDate.After(s.now()) {
			return nil, invalidInput("birth_date is in the future")
		}
		fields["birth_date"] = patch.BirthDate.UTC()
	}
	if patch.IsSterilized != nil {
		fields["is_sterilized"] = *patch.IsSterilized
	}
	for col, v := range map[string]*string{
		"breed":            patch.Breed,
		"microchip_no":     patch.MicrochipNo,
		"image":            patch.Image,
		"chronic_diseases": patch.ChronicDiseases,
	} {
		if v != nil {
			fields[col] = trimmedOrNil(v)
		}
	}

	if len(fields) > 0 {
		if err := repo.UpdatePet(ctx, s.DB, petID, fields); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("update pet: %w", err)
		}
	}
	out, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	hideTransferCode(p.UserID, out, s.now())
	return out, nil
}

// Delete removes a pet the caller owns, with its history.
func (s *PetService) Delete(ctx context.Context, p auth.Principal, petID string) error {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return err
	}
	if err := RequireOwner(p, pet); err != nil {
		return err
	}
	if err := repo.DeletePet(ctx, s.DB, petID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete pet: %w", err)
	}
	return nil
}

// AddCoOwner shares a pet the caller owns with the user registered as email.
func (s *PetService) AddCoOwner(ctx context.Context, p auth.Principal, petID, email string) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "AddCoOwner", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(p, pet); err != nil {
		return nil, err
	}
	user, err := findUserByEmail(ctx, s.DB, email)
	if err != nil {
		return nil, err
	}
	if user.ID == pet.OwnerID {
		return nil, invalidInput("the owner cannot be a co-owner")
	}
	if err := repo.AddCoOwner(ctx, s.DB, petID, user.ID); err != nil {
		return nil, fmt.Errorf("add co-owner: %w", err)
	}
	return s.detailFor(ctx, p, petID)
}

// RemoveCoOwner revokes userID's co-ownership of a pet the caller owns.
func (s *PetService) RemoveCoOwner(ctx context.Context, p auth.Principal, petID, userID string) (*domain.Pet, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "RemoveCoOwner", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(p, pet); err != nil {
		return nil, err
	}
	if err := repo.RemoveCoOwner(ctx, s.DB, petID, userID); err != nil {
		return nil, fmt.Errorf("remove co-owner: %w", err)
	}
	return s.detailFor(ctx, p, petID)
}

// GenerateTransferCode issues a fresh transfer code for a pet the caller
// owns, replacing any previous one.
func (s *PetService) GenerateTransferCode(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowTransfer, "issue", petID)
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireOwner(p, pet); err != nil {
		return nil, err
	}

	mint := s.NewCode
	if mint == nil {
		mint = newTransferCode
	}
	expires := s.now().Add(s.transferTTL())
	for attempt := 1; ; attempt++ {
		code, err := mint()
		if err != nil {
			return nil, fmt.Errorf("mint transfer code: %w", err)
		}
		err = repo.SetPetTransferCode(ctx, s.DB, petID, code, expires)
		if err == nil {
			break
		}
		if errors.Is(err, repo.ErrDuplicate) && attempt < transferCodeAttempts {
			continue
		}
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("set transfer code: %w", err)
	}
	observability.RecordHandoff(observability.FlowTransfer, "issued")
	return loadPet(ctx, s.DB, petID)
}

// CancelTransferCode withdraws the pet's pending transfer code. Cancelling
// when no code is pending is not an error.
func (s *PetService) CancelTransferCode(ctx context.Context, p auth.Principal, petID string) error {
	ctx, span := observability.StartHandoff(ctx, observability.FlowTransfer, "cancel", petID)
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return err
	}
	if err := RequireOwner(p, pet); err != nil {
		return err
	}
	if pet.TransferCode == nil {
		return nil
	}
	if err := repo.ClearPetTransferCode(ctx, s.DB, petID); err != nil {
		return fmt.Errorf("clear transfer code: %w", err)
	}
	observability.RecordHandoff(observability.FlowTransfer, "cancelled")
	return nil
}

// ClaimPet redeems code and makes the caller the pet's owner. The previous
// owner joins the pet's past owners and the caller stops being a co-owner.
// Unknown, replaced, redeemed, and expired codes all yield
// ErrInvalidOrExpired.
func (s *PetService) ClaimPet(ctx context.Context, p auth.Principal, code string) (*domain.Pet, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowTransfer, "claim", "")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", p.UserID))

	if p.Anonymous() {
		return nil, ErrForbidden
	}
	code = NormalizeTransferCode(code)
	if code == "" {
		observability.RecordHandoff(observability.FlowTransfer, "invalid_code")
		return nil, ErrInvalidOrExpired
	}

	now := s.now()
	pet, err := repo.FindPetByTransferCode(ctx, s.DB, code, now)
	if errors.Is(err, repo.ErrNotFound) {
		observability.RecordHandoff(observability.FlowTransfer, "invalid_code")
		return nil, ErrInvalidOrExpired
	}
	if err != nil {
		return nil, fmt.Errorf("find transfer code: %w", err)
	}
	span.SetAttributes(attribute.String("pet.id", pet.ID))
	if pet.OwnerID == p.UserID {
		observability.RecordHandoff(observability.FlowTransfer, "already_owner")
		return nil, ErrAlreadyOwner
	}

	previous := pet.OwnerID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.ClaimPetTransfer(ctx, tx, pet.ID, code, p.UserID, now); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return ErrInvalidOrExpired
			}
			return fmt.Errorf("claim pet: %w", err)
		}
		if err := repo.AddPastOwner(ctx, tx, pet.ID, previous, now); err != nil {
			return fmt.Errorf("add past owner: %w", err)
		}
		if err := repo.RemoveCoOwner(ctx, tx, pet.ID, p.UserID); err != nil {
			return fmt.Errorf("drop co-owner: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrInvalidOrExpired) {
			observability.RecordHandoff(observability.FlowTransfer, "invalid_code")
		}
		return nil, err
	}
	observability.RecordHandoff(observability.FlowTransfer, "claimed")
	return s.detail(ctx, pet.ID)
}

// PublicCard returns the shareable summary of a pet. It needs no caller.
func (s *PetService) PublicCard(ctx context.Context, petID string) (*PetCard, error) {
	tr := otel.Tracer("services/PetService")
	ctx, span := tr.Start(ctx, "PublicCard", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	sum, err := repo.VaccinationSummary(ctx, s.DB, petID, s.now())
	if err != nil {
		return nil, fmt.Errorf("summarize vaccinations: %w", err)
	}
	return &PetCard{
		ID:           pet.ID,
		Name:         pet.Name,
		Species:      pet.Species,
		Breed:        pet.Breed,
		BirthDate:    pet.BirthDate,
		Gender:       pet.Gender,
		Image:        pet.Image,
		IsSterilized: pet.IsSterilized,
		Vaccinations: CardSummary{
			Total:       sum.Total,
			Verified:    sum.Verified,
			LastVaccine: sum.LastVaccine,
			LastGiven:   sum.LastGiven,
			NextDue:     sum.NextDue,
		},
	}, nil
}

// NormalizeTransferCode trims code, narrows full-width characters, and
// upper-cases it, so "  ab12cd34 " and "ＡＢ12ＣＤ34" both become "AB12CD34".
func NormalizeTransferCode(code string) string {
	code = width.Narrow.String(strings.TrimSpace(code))
	return cases.Upper(language.Und).String(code)
}

// newTransferCode returns 8 uppercase hex characters from 4 random bytes.
func newTransferCode() (string, error) {
	b := make([]byte, transferCodeBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}

func cleanPetName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalidInput("name is required")
	}
	if utf8.RuneCountInString(name) > maxPetNameRunes {
		return "", invalidInput("name is too long")
	}
	return name, nil
}

func findUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, invalidInput("email is required")
	}
	u, err := repo.GetUserByEmail(ctx, db, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}
