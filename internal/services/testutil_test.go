package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/apisada-prim/pawbook/internal/auth"
	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"
)

const testSecret = "services-test-secret-0123456789"

var t0 = time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

// fakeClock is a settable clock shared by the services under test.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type env struct {
	db    *gorm.DB
	clock *fakeClock

	qr     *QrService
	vax    *VaccineService
	pets   *PetService
	family *FamilyService
	auth   *AuthService
}

// newEnv opens a migrated file-backed SQLite database so concurrent tests
// exercise real locking, and wires every service to one fake clock.
func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repo.OpenSQLite(filepath.Join(t.TempDir(), "pawbook.db"))
	require.NoError(t, err)
	require.NoError(t, repo.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	clk := &fakeClock{now: t0}
	signer := auth.NewQrSigner(testSecret)
	return &env{
		db:     db,
		clock:  clk,
		qr:     &QrService{DB: db, Signer: signer, TTL: DefaultQrSessionTTL, Now: clk.Now},
		vax:    &VaccineService{DB: db, Signer: signer, Now: clk.Now},
		pets:   &PetService{DB: db, TransferTTL: DefaultTransferCodeTTL, Now: clk.Now},
		family: &FamilyService{DB: db},
		auth:   &AuthService{DB: db, Tokens: auth.NewAccessTokens(testSecret, time.Hour)},
	}
}

// owner creates an account with its default family, skipping bcrypt.
func (e *env) owner(t *testing.T, email string) auth.Principal {
	t.Helper()
	ctx := context.Background()
	u := &domain.User{Email: email, PasswordHash: "x", FullName: email, Role: domain.RoleOwner}
	require.NoError(t, repo.CreateUser(ctx, e.db, u))
	fam, err := repo.CreateFamily(ctx, e.db, u.ID, DefaultFamilyName)
	require.NoError(t, err)
	require.NoError(t, repo.AddFamilyMember(ctx, e.db, fam.ID, u.ID))
	require.NoError(t, repo.SetDefaultFamily(ctx, e.db, u.ID, fam.ID))
	return auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role}
}

// vet creates a vet account attached to a fresh clinic.
func (e *env) vet(t *testing.T, email string) (auth.Principal, *domain.VetProfile) {
	t.Helper()
	ctx := context.Background()
	p := e.owner(t, email)
	require.NoError(t, e.db.Model(&domain.User{}).Where("id = ?", p.UserID).Update("role", domain.RoleVet).Error)
	p.Role = domain.RoleVet
	c := &domain.Clinic{Name: "Happy Paws"}
	require.NoError(t, repo.CreateClinic(ctx, e.db, c))
	vp := &domain.VetProfile{UserID: p.UserID, LicenseNumber: "VET-001", ClinicID: &c.ID}
	require.NoError(t, repo.CreateVetProfile(ctx, e.db, vp))
	return p, vp
}

func (e *env) pet(t *testing.T, owner auth.Principal, name string) *domain.Pet {
	t.Helper()
	p, err := e.pets.Create(context.Background(), owner, PetInput{
		Name:      name,
		Species:   domain.SpeciesDog,
		BirthDate: t0.AddDate(-3, 0, 0),
	})
	require.NoError(t, err)
	return p
}

func (e *env) vaccine(t *testing.T) *domain.VaccineMaster {
	t.Helper()
	v := &domain.VaccineMaster{Name: "Rabisin", Brand: "Boehringer Ingelheim", Type: "Rabies", Species: domain.SpeciesDog, IsCore: true}
	require.NoError(t, repo.CreateVaccine(context.Background(), e.db, v))
	return v
}

func strPtr(s string) *string { return &s }
