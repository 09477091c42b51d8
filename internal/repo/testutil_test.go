package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/apisada-prim/pawbook/internal/domain"
)

// newTestDB opens a unique in-memory database per test so schema and rows
// never leak across tests. Pass models to migrate only those tables.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

// newMigratedDB is newTestDB with the full schema.
func newMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

// newFileDB opens a migrated on-disk database through OpenSQLite, for tests
// that exercise concurrent writers.
func newFileDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		t.Cleanup(func() { _ = sqlDB.Close() })
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "x", FullName: email, Role: domain.RoleOwner}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u
}

func seedPet(t *testing.T, db *gorm.DB, ownerID, name string) *domain.Pet {
	t.Helper()
	p := &domain.Pet{
		OwnerID:   ownerID,
		Name:      name,
		Species:   domain.SpeciesDog,
		BirthDate: time.Date(2022, 5, 1, 0, 0, 0, 0, time.UTC),
		Gender:    domain.GenderFemale,
	}
	if err := CreatePet(context.Background(), db, p); err != nil {
		t.Fatalf("seed pet %s: %v", name, err)
	}
	return p
}

func seedVaccine(t *testing.T, db *gorm.DB, name string, species domain.Species, core bool) *domain.VaccineMaster {
	t.Helper()
	v := &domain.VaccineMaster{ID: uuid.NewString(), Name: name, Brand: "B", Type: "T", Species: species, IsCore: core}
	if err := CreateVaccine(context.Background(), db, v); err != nil {
		t.Fatalf("seed vaccine %s: %v", name, err)
	}
	return v
}
