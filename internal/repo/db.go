// Package repo is the GORM persistence layer. Functions take the *gorm.DB
// (or transaction) to run against, so services decide transaction scope.
package repo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo/migrations"
)

// pool sizes the database/sql connection pool behind a *gorm.DB.
type pool struct {
	maxOpen, maxIdle int
}

var (
	sqlitePool   = pool{maxOpen: 10, maxIdle: 10}
	postgresPool = pool{maxOpen: 25, maxIdle: 10}
)

// Open connects using the named driver ("sqlite" or "postgres"). For sqlite,
// dsn is a file path.
func Open(driver, dsn string) (*gorm.DB, error) {
	switch strings.ToLower(driver) {
	case "sqlite", "":
		return OpenSQLite(dsn)
	case "postgres", "postgresql":
		return OpenPostgres(dsn)
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}

// OpenSQLite opens or creates the database file at path. The parent
// directory must exist.
func OpenSQLite(path string) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, fmt.Errorf("sqlite dir: %w", err)
		}
	}
	return open(sqlite.Open(sqliteDSN(path)), sqlitePool)
}

// OpenPostgres opens a PostgreSQL database through the pgx-backed driver.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	return open(postgres.Open(dsn), postgresPool)
}

func open(d gorm.Dialector, p pool) (*gorm.DB, error) {
	db, err := gorm.Open(d, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(p.maxOpen)
	sqlDB.SetMaxIdleConns(p.maxIdle)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

// sqliteDSN puts the PRAGMAs in the DSN so every pooled connection gets
// them. IMMEDIATE transactions take the write lock up front, so a
// read-then-write transaction waits on busy_timeout rather than failing
// with SQLITE_BUSY at its first write.
func sqliteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(NORMAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_pragma=busy_timeout(5000)" +
		"&_txlock=immediate"
}

// Instrument registers the OpenTelemetry plugin so every query gets a span.
func Instrument(db *gorm.DB) error {
	return db.Use(tracing.NewPlugin())
}

// AutoMigrate creates or updates the schema for every persisted model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Clinic{},
		&domain.VetProfile{},
		&domain.Family{},
		&domain.FamilyMember{},
		&domain.VaccineMaster{},
		&domain.Pet{},
		&domain.PetPastOwner{},
		&domain.PetCoOwner{},
		&domain.VaccinationRecord{},
		&domain.VaccineQrSession{},
		&domain.Idempotency{},
	)
}

// RunSeeds applies the embedded goose data migrations. The schema must
// already exist (see AutoMigrate). Applied versions are tracked by goose, so
// repeated calls are no-ops.
func RunSeeds(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect(gooseDialect(db)); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, sqlDB, "."); err != nil {
		return fmt.Errorf("seed migrations: %w", err)
	}
	return nil
}

func gooseDialect(db *gorm.DB) string {
	if db.Dialector.Name() == "postgres" {
		return "postgres"
	}
	return "sqlite3"
}

// gooseLogger routes goose output through zerolog.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	log.Info().Str("component", "goose").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (gooseLogger) Fatalf(format string, v ...any) {
	log.Fatal().Str("component", "goose").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
