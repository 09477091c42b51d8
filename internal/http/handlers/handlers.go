// Package handlers provides HTTP handler implementations for the public API.
//
// This file declares the service contracts the handlers depend on, the
// Handlers type that groups every endpoint, and the shared helpers for
// reading the caller and serving idempotent replays.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/http/middleware"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/services"
	"github.com/apisada-prim/pawbook/internal/storage"
)

//
// Service contracts (context-aware)
//

// AuthService registers and signs in users.
type AuthService interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
	Login(ctx context.Context, email, password string) (*services.Session, error)
	Me(ctx context.Context, p auth.Principal) (*domain.User, error)
}

// PetService manages pets, co-owners, and transfer codes.
type PetService interface {
	Create(ctx context.Context, p auth.Principal, in services.PetInput) (*domain.Pet, error)
	ListMine(ctx context.Context, p auth.Principal, familyID string) ([]domain.Pet, error)
	ListAlumni(ctx context.Context, p auth.Principal) ([]domain.Pet, error)
	Get(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error)
	Update(ctx context.Context, p auth.Principal, petID string, patch services.PetPatch) (*domain.Pet, error)
	Delete(ctx context.Context, p auth.Principal, petID string) error
	AddCoOwner(ctx context.Context, p auth.Principal, petID, email string) (*domain.Pet, error)
	RemoveCoOwner(ctx context.Context, p auth.Principal, petID, userID string) (*domain.Pet, error)
	GenerateTransferCode(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error)
	CancelTransferCode(ctx context.Context, p auth.Principal, petID string) error
	ClaimPet(ctx context.Context, p auth.Principal, code string) (*domain.Pet, error)
	Redeemed(ctx context.Context, p auth.Principal, petID string) (*domain.Pet, error)
	PublicCard(ctx context.Context, petID string) (*services.PetCard, error)
}

// QrService issues and checks vaccine QR sessions.
type QrService interface {
	Generate(ctx context.Context, p auth.Principal, petID string) (*services.QrIssue, error)
	Verify(ctx context.Context, token string) (*domain.Pet, error)
	Status(ctx context.Context, token string) (string, error)
}

// VaccineService writes vaccination records and serves the catalog.
type VaccineService interface {
	CreateRecord(ctx context.Context, p auth.Principal, in services.RecordInput) (*domain.VaccinationRecord, error)
	CreateLegacyRecord(ctx context.Context, p auth.Principal, in services.RecordInput) (*domain.VaccinationRecord, error)
	ListRecords(ctx context.Context, p auth.Principal, petID string) ([]domain.VaccinationRecord, error)
	ListCatalog(ctx context.Context, species domain.Species) ([]domain.VaccineMaster, error)
	SearchCatalog(ctx context.Context, species domain.Species, query string, k int) ([]domain.VaccineMaster, error)
}

// FamilyService manages households.
type FamilyService interface {
	Mine(ctx context.Context, p auth.Principal) (*services.MyFamilies, error)
	Rename(ctx context.Context, p auth.Principal, name string) (*domain.Family, error)
	Invite(ctx context.Context, p auth.Principal, email string) (*domain.Family, error)
	RemoveMember(ctx context.Context, p auth.Principal, userID string) (*domain.Family, error)
	Leave(ctx context.Context, p auth.Principal, familyID string) error
}

//
// Handler wiring
//

// Deps are the collaborators of Handlers. DB is used directly only for
// idempotency records and list statistics (ETags).
type Deps struct {
	Auth     AuthService
	Pets     PetService
	Qr       QrService
	Vaccines VaccineService
	Families FamilyService

	DB    *gorm.DB
	Files storage.FileStore

	UploadMaxBytes int64         // per-file cap; 10 MiB when zero
	PublicBaseURL  string        // prefix for returned upload URLs
	FilesPath      string        // route prefix files are served under
	IdempotencyTTL time.Duration // 24h when zero
}

// Handlers groups all HTTP endpoints.
type Handlers struct {
	Deps
}

// New constructs a Handlers bound to d.
func New(d Deps) *Handlers {
	if d.UploadMaxBytes <= 0 {
		d.UploadMaxBytes = 10 << 20
	}
	if d.IdempotencyTTL <= 0 {
		d.IdempotencyTTL = 24 * time.Hour
	}
	return &Handlers{Deps: d}
}

// principal returns the authenticated caller. Routes that call it sit behind
// middleware.RequireAuth, so a missing caller only happens when the router is
// misconfigured; it is answered with 401 all the same.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, has := middleware.PrincipalFrom(c)
	if !has {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "authentication required")
	}
	return p, has
}

// replay serves a stored result when the request carries an Idempotency-Key
// already recorded for this caller and route. load fetches the resource the
// original request produced. It reports whether a response was written.
func (h *Handlers) replay(c *gin.Context, p auth.Principal, load func(ctx context.Context, id string) (any, error)) bool {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || !middleware.IsReplay(c) || h.DB == nil {
		return false
	}
	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, h.DB, p.UserID, middleware.IdempotencyScope(c), key, time.Now().UTC())
	if err != nil {
		return false
	}
	body, err := load(ctx, rec.ResourceID)
	if err != nil {
		middleware.LoggerFrom(c).Warn().Err(err).Str("resource_id", rec.ResourceID).Msg("idempotent replay target unavailable")
		return false
	}
	c.Header("Idempotency-Replayed", "true")
	ok(c, rec.Status, body)
	return true
}

// remember records the outcome of a successful request under its
// Idempotency-Key. Best effort: failures are logged and otherwise ignored.
func (h *Handlers) remember(c *gin.Context, p auth.Principal, resourceID string, status int) {
	key, has := middleware.GetIdempotencyKey(c)
	if !has || h.DB == nil {
		return
	}
	_, err := repo.CreateIdempotency(c.Request.Context(), h.DB, p.UserID, middleware.IdempotencyScope(c), key, resourceID, status, h.IdempotencyTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("store idempotency record")
	}
}
