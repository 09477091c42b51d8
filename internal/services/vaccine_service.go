// Package services – VaccineService
//
// This file implements vaccination record writes and the vaccine catalog.
// A vet's record write optionally carries a QR token; when it does, the
// session is consumed and the record inserted in one transaction, so a record
// never exists against a session left active and a session is never consumed
// without its record. Owner uploads go through CreateLegacyRecord and are
// never verified.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/observability"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/search"

	// OpenTelemetry
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordInput describes a vaccination to record.
type RecordInput struct {
	PetID            string     `json:"pet_id"`
	VaccineMasterID  string     `json:"vaccine_master_id"`
	DateAdministered *time.Time `json:"date_administered,omitempty"`
	NextDueDate      *time.Time `json:"next_due_date,omitempty"`
	LotNumber        *string    `json:"lot_number,omitempty"`
	StickerImage     *string    `json:"sticker_image,omitempty"`
	QrToken          string     `json:"qr_token,omitempty"`
}

// VaccineService writes vaccination records and serves the catalog.
type VaccineService struct {
	DB     *gorm.DB
	Signer *auth.QrSigner

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *VaccineService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// CreateRecord writes a verified record on behalf of a vet. With a QR token
// the token must target in.PetID and be active; the session is consumed in
// the same transaction as the insert, and a lost race reports ErrAlreadyUsed.
// Without a token the pet only has to exist.
func (s *VaccineService) CreateRecord(ctx context.Context, p auth.Principal, in RecordInput) (*domain.VaccinationRecord, error) {
	ctx, span := observability.StartHandoff(ctx, observability.FlowQR, "record", in.PetID)
	defer span.End()
	span.SetAttributes(
		attribute.String("user.id", p.UserID),
		attribute.Bool("qr", in.QrToken != ""),
	)

	vet, err := RequireVet(ctx, s.DB, p)
	if err != nil {
		return nil, err
	}
	now := s.now()
	rec, err := s.buildRecord(ctx, in, now)
	if err != nil {
		return nil, err
	}
	rec.IsVerified = true
	rec.VetID = &vet.ID
	rec.ClinicID = vet.ClinicID

	if in.QrToken == "" {
		if _, err := loadPet(ctx, s.DB, in.PetID); err != nil {
			return nil, err
		}
		if err := repo.CreateRecord(ctx, s.DB, rec); err != nil {
			return nil, fmt.Errorf("create record: %w", err)
		}
		return s.reload(ctx, rec.ID)
	}

	sess, err := lookupQrSession(ctx, s.DB, s.Signer, in.QrToken)
	if err != nil {
		recordQrFailure(err)
		return nil, err
	}
	if sess.PetID != in.PetID {
		recordQrFailure(ErrPetMismatch)
		return nil, ErrPetMismatch
	}
	if err := qrStatusErr(domain.ClassifyQrSession(sess, now)); err != nil {
		recordQrFailure(err)
		return nil, err
	}

	rec.QrSessionID = &sess.ID
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.MarkQrSessionConsumed(ctx, tx, sess.ID, now); err != nil {
			if errors.Is(err, repo.ErrConflict) {
				return ErrAlreadyUsed
			}
			return fmt.Errorf("consume qr session: %w", err)
		}
		if err := repo.CreateRecord(ctx, tx, rec); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrAlreadyUsed
			}
			return fmt.Errorf("create record: %w", err)
		}
		return nil
	})
	if err != nil {
		recordQrFailure(err)
		return nil, err
	}
	observability.RecordHandoff(observability.FlowQR, "consumed")
	return s.reload(ctx, rec.ID)
}

// CreateLegacyRecord stores an owner-supplied record for petID. The caller
// must be able to view the pet and must attach a sticker image. Such records
// are never verified.
func (s *VaccineService) CreateLegacyRecord(ctx context.Context, p auth.Principal, in RecordInput) (*domain.VaccinationRecord, error) {
	tr := otel.Tracer("services/VaccineService")
	ctx, span := tr.Start(ctx, "CreateLegacyRecord",
		trace.WithAttributes(
			attribute.String("pet.id", in.PetID),
			attribute.String("user.id", p.UserID),
		),
	)
	defer span.End()

	pet, err := loadPet(ctx, s.DB, in.PetID)
	if err != nil {
		return nil, err
	}
	if err := RequireViewer(ctx, s.DB, p, pet); err != nil {
		return nil, err
	}
	if in.StickerImage == nil || strings.TrimSpace(*in.StickerImage) == "" {
		return nil, invalidInput("sticker_image is required")
	}
	rec, err := s.buildRecord(ctx, in, s.now())
	if err != nil {
		return nil, err
	}
	if err := repo.CreateRecord(ctx, s.DB, rec); err != nil {
		return nil, fmt.Errorf("create record: %w", err)
	}
	return s.reload(ctx, rec.ID)
}

// ListRecords returns a pet's vaccination records, newest administered
// first. The caller must be able to view the pet.
func (s *VaccineService) ListRecords(ctx context.Context, p auth.Principal, petID string) ([]domain.VaccinationRecord, error) {
	tr := otel.Tracer("services/VaccineService")
	ctx, span := tr.Start(ctx, "ListRecords", trace.WithAttributes(attribute.String("pet.id", petID)))
	defer span.End()

	pet, err := loadPet(ctx, s.DB, petID)
	if err != nil {
		return nil, err
	}
	if err := RequireViewer(ctx, s.DB, p, pet); err != nil {
		return nil, err
	}
	out, err := repo.ListRecordsForPet(ctx, s.DB, petID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// buildRecord validates in and returns an unverified record for it.
func (s *VaccineService) buildRecord(ctx context.Context, in RecordInput, now time.Time) (*domain.VaccinationRecord, error) {
	if strings.TrimSpace(in.PetID) == "" {
		return nil, invalidInput("pet_id is required")
	}
	if strings.TrimSpace(in.VaccineMasterID) == "" {
		return nil, invalidInput("vaccine_master_id is required")
	}
	if _, err := repo.GetVaccine(ctx, s.DB, in.VaccineMasterID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, invalidInput("unknown vaccine_master_id")
		}
		return nil, fmt.Errorf("load vaccine: %w", err)
	}

	given := now
	if in.DateAdministered != nil {
		given = in.DateAdministered.UTC()
	}
	if in.NextDueDate != nil && in.NextDueDate.Before(given) {
		return nil, invalidInput("next_due_date must not precede date_administered")
	}
	return &domain.VaccinationRecord{
		PetID:            in.PetID,
		VaccineMasterID:  in.VaccineMasterID,
		DateAdministered: given,
		NextDueDate:      in.NextDueDate,
		LotNumber:        trimmedOrNil(in.LotNumber),
		StickerImage:     trimmedOrNil(in.StickerImage),
	}, nil
}

func (s *VaccineService) reload(ctx context.Context, id string) (*domain.VaccinationRecord, error) {
	rec, err := repo.GetRecord(ctx, s.DB, id)
	if err != nil {
		return nil, fmt.Errorf("reload record: %w", err)
	}
	return rec, nil
}

// ListCatalog returns the vaccine catalog, optionally for one species.
func (s *VaccineService) ListCatalog(ctx context.Context, species domain.Species) ([]domain.VaccineMaster, error) {
	tr := otel.Tracer("services/VaccineService")
	ctx, span := tr.Start(ctx, "ListCatalog",
		trace.WithAttributes(attribute.String("species", string(species))),
	)
	defer span.End()

	if species != "" && !species.Valid() {
		return nil, invalidInput("unknown species")
	}
	out, err := repo.ListVaccines(ctx, s.DB, species)
	if err != nil {
		return nil, fmt.Errorf("list vaccines: %w", err)
	}
	return out, nil
}

// SearchCatalog ranks catalog entries (optionally for one species) against a
// free-text query by name, brand, and type. It returns at most k entries.
func (s *VaccineService) SearchCatalog(ctx context.Context, species domain.Species, query string, k int) ([]domain.VaccineMaster, error) {
	tr := otel.Tracer("services/VaccineService")
	ctx, span := tr.Start(ctx, "SearchCatalog",
		trace.WithAttributes(
			attribute.String("species", string(species)),
			attribute.String("query", query),
			attribute.Int("k", k),
		),
	)
	defer span.End()

	all, err := s.ListCatalog(ctx, species)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return all, nil
	}

	byID := make(map[string]domain.VaccineMaster, len(all))
	docs := make([]search.Doc, 0, len(all))
	for _, v := range all {
		byID[v.ID] = v
		docs = append(docs, search.Doc{ID: v.ID, Text: strings.Join([]string{v.Name, v.Brand, v.Type}, " ")})
	}
	hits := search.NewIndex(docs, search.WithStopwords(catalogStopwords...)).TopK(query, k)
	out := make([]domain.VaccineMaster, 0, len(hits))
	for _, h := range hits {
		out = append(out, byID[h.ID])
	}
	return out, nil
}

// catalogStopwords appear in many catalog names and would otherwise rank
// every entry as a partial match.
var catalogStopwords = []string{"vaccine", "vaccination", "for", "and", "the"}

func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
