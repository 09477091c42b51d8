// Package services – AuthService
//
// Accounts: registration, password login, and the current-user lookup.
// Registration writes the user, their default family, their own membership in
// it, and (for vets) the vet profile in one transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
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

const minPasswordRunes = 8

// RegisterInput carries a new account. Vets must supply a license number and
// may name an existing clinic by id or a new one by name.
type RegisterInput struct {
	Email         string      `json:"email"`
	Password      string      `json:"password"`
	FullName      string      `json:"full_name"`
	Role          domain.Role `json:"role,omitempty"`
	PhoneNumber   *string     `json:"phone_number,omitempty"`
	Address       *string     `json:"address,omitempty"`
	LicenseNumber string      `json:"license_number,omitempty"`
	ClinicID      *string     `json:"clinic_id,omitempty"`
	ClinicName    string      `json:"clinic_name,omitempty"`
}

// Session is a signed-in user with their bearer token.
type Session struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *domain.User `json:"user"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	DB     *gorm.DB
	Tokens *auth.AccessTokens
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Register", trace.WithAttributes(attribute.String("role", string(in.Role))))
	defer span.End()

	if in.Role == "" {
		in.Role = domain.RoleOwner
	}
	if in.Role != domain.RoleOwner && in.Role != domain.RoleVet {
		return nil, invalidInput("role must be owner or vet")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, invalidInput("email is invalid")
	}
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, invalidInput("full_name is required")
	}
	if utf8.RuneCountInString(in.Password) < minPasswordRunes {
		return nil, invalidInput(fmt.Sprintf("password must be at least %d characters", minPasswordRunes))
	}
	license := strings.TrimSpace(in.LicenseNumber)
	if in.Role == domain.RoleVet && license == "" {
		return nil, invalidInput("license_number is required for vets")
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        addr.Address,
		PasswordHash: hash,
		FullName:     name,
		Role:         in.Role,
		PhoneNumber:  trimmedOrNil(in.PhoneNumber),
		Address:      trimmedOrNil(in.Address),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreateUser(ctx, tx, user); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrEmailTaken
			}
			return fmt.Errorf("create user: %w", err)
		}
		fam, err := repo.CreateFamily(ctx, tx, user.ID, DefaultFamilyName)
		if err != nil {
			return fmt.Errorf("create family: %w", err)
		}
		if err := repo.AddFamilyMember(ctx, tx, fam.ID, user.ID); err != nil {
			return fmt.Errorf("add owner to family: %w", err)
		}
		if err := repo.SetDefaultFamily(ctx, tx, user.ID, fam.ID); err != nil {
			return fmt.Errorf("set default family: %w", err)
		}
		if in.Role == domain.RoleVet {
			return createVetProfile(ctx, tx, user.ID, license, in)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	return s.issue(ctx, user.ID)
}

func createVetProfile(ctx context.Context, tx *gorm.DB, userID, license string, in RegisterInput) error {
	vp := &domain.VetProfile{UserID: userID, LicenseNumber: license}
	switch {
	case in.ClinicID != nil && strings.TrimSpace(*in.ClinicID) != "":
		c, err := repo.GetClinic(ctx, tx, strings.TrimSpace(*in.ClinicID))
		if errors.Is(err, repo.ErrNotFound) {
			return invalidInput("unknown clinic_id")
		}
		if err != nil {
			return fmt.Errorf("load clinic: %w", err)
		}
		vp.ClinicID = &c.ID
	case strings.TrimSpace(in.ClinicName) != "":
		c := &domain.Clinic{Name: strings.TrimSpace(in.ClinicName)}
		if err := repo.CreateClinic(ctx, tx, c); err != nil {
			return fmt.Errorf("create clinic: %w", err)
		}
		vp.ClinicID = &c.ID
	}
	if err := repo.CreateVetProfile(ctx, tx, vp); err != nil {
		return fmt.Errorf("create vet profile: %w", err)
	}
	return nil
}

// Login checks email and password and signs the user in. Unknown emails and
// wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Login")
	defer span.End()

	u, err := repo.GetUserByEmail(ctx, s.DB, email)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	span.SetAttributes(attribute.String("user.id", u.ID))
	return s.issue(ctx, u.ID)
}

// Me returns the caller with their vet profile and clinic, if any.
func (s *AuthService) Me(ctx context.Context, p auth.Principal) (*domain.User, error) {
	tr := otel.Tracer("services/AuthService")
	ctx, span := tr.Start(ctx, "Me", trace.WithAttributes(attribute.String("user.id", p.UserID)))
	defer span.End()

	u, err := repo.GetUser(ctx, s.DB, p.UserID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, userID string) (*Session, error) {
	u, err := repo.GetUser(ctx, s.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	token, exp, err := s.Tokens.Issue(auth.Principal{UserID: u.ID, Email: u.Email, Role: u.Role})
	if err != nil {
		return nil, err
	}
	return &Session{AccessToken: token, ExpiresAt: exp, User: u}, nil
}
