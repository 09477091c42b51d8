package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"
)

func TestRegister_OwnerGetsDefaultFamily(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.auth.Register(ctx, RegisterInput{
		Email: " Alice@Example.com ", Password: "correct horse", FullName: "Alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sess.AccessToken)
	assert.Equal(t, "alice@example.com", sess.User.Email)
	assert.Equal(t, domain.RoleOwner, sess.User.Role)
	require.NotNil(t, sess.User.DefaultFamilyID)

	p, err := e.auth.Tokens.Parse(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, p.UserID)
	assert.Equal(t, domain.RoleOwner, p.Role)

	fam, err := repo.GetFamilyByOwner(ctx, e.db, sess.User.ID)
	require.NoError(t, err)
	assert.Equal(t, *sess.User.DefaultFamilyID, fam.ID)
	assert.Equal(t, "My Pets", fam.Name)
	assert.Equal(t, []string{sess.User.ID}, memberIDs(fam))

	_, err = e.auth.Register(ctx, RegisterInput{Email: "ALICE@example.com", Password: "another-pass", FullName: "A2"})
	assert.ErrorIs(t, err, ErrEmailTaken)

	// The failed registration left nothing behind.
	var families int64
	require.NoError(t, e.db.Model(&domain.Family{}).Count(&families).Error)
	assert.EqualValues(t, 1, families)
}

func TestRegister_Vet(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	sess, err := e.auth.Register(ctx, RegisterInput{
		Email: "kim@clinic.example", Password: "stethoscope", FullName: "Dr Kim",
		Role: domain.RoleVet, LicenseNumber: "TH-1234", ClinicName: "Happy Paws",
	})
	require.NoError(t, err)
	require.NotNil(t, sess.User.VetProfile)
	assert.Equal(t, "TH-1234", sess.User.VetProfile.LicenseNumber)
	require.NotNil(t, sess.User.VetProfile.Clinic)
	assert.Equal(t, "Happy Paws", sess.User.VetProfile.Clinic.Name)

	clinicID := sess.User.VetProfile.Clinic.ID
	second, err := e.auth.Register(ctx, RegisterInput{
		Email: "lee@clinic.example", Password: "stethoscope", FullName: "Dr Lee",
		Role: domain.RoleVet, LicenseNumber: "TH-5678", ClinicID: &clinicID,
	})
	require.NoError(t, err)
	assert.Equal(t, clinicID, *second.User.VetProfile.ClinicID)

	bogus := "nope"
	_, err = e.auth.Register(ctx, RegisterInput{
		Email: "x@clinic.example", Password: "stethoscope", FullName: "X",
		Role: domain.RoleVet, LicenseNumber: "TH-0", ClinicID: &bogus,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = repo.GetUserByEmail(ctx, e.db, "x@clinic.example")
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	cases := map[string]RegisterInput{
		"bad email":      {Email: "not-an-email", Password: "longenough", FullName: "A"},
		"no name":        {Email: "a@example.com", Password: "longenough", FullName: " "},
		"short password": {Email: "a@example.com", Password: "short", FullName: "A"},
		"admin":          {Email: "a@example.com", Password: "longenough", FullName: "A", Role: domain.RoleAdmin},
		"vet no license": {Email: "a@example.com", Password: "longenough", FullName: "A", Role: domain.RoleVet},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.auth.Register(ctx, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestLoginAndMe(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	reg, err := e.auth.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "correct horse", FullName: "Alice"})
	require.NoError(t, err)

	sess, err := e.auth.Login(ctx, "ALICE@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.User.ID)

	_, err = e.auth.Login(ctx, "alice@example.com", "wrong horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = e.auth.Login(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	p, err := e.auth.Tokens.Parse(sess.AccessToken)
	require.NoError(t, err)
	me, err := e.auth.Me(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Alice", me.FullName)
	assert.Nil(t, me.VetProfile)

	p.UserID = "gone"
	_, err = e.auth.Me(ctx, p)
	assert.ErrorIs(t, err, ErrNotFound)
}
