// Package services defines the business logic for accounts, households,
// pets, vaccinations, and the two handoff workflows: vaccine QR sessions and
// pet transfer codes.
//
// This file centralizes the service-level error values so that they can be
// consistently returned by service methods and checked by callers with
// errors.Is. Translation into HTTP status codes happens in the handler layer.
// All of them are terminal; none is worth retrying.
package services

import "errors"

// Handoff errors.
var (
	// ErrNotFound indicates that the pet, session, user, or family does not
	// exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyUsed is returned when a QR session has been consumed,
	// including when a concurrent request consumed it first.
	ErrAlreadyUsed = errors.New("qr code has already been used")

	// ErrExpired is returned when a QR session outlived its TTL.
	ErrExpired = errors.New("qr code has expired")

	// ErrInvalidSignature is returned for tampered or malformed QR tokens.
	ErrInvalidSignature = errors.New("invalid qr token")

	// ErrPetMismatch is returned when a QR token targets a different pet than
	// the record being written.
	ErrPetMismatch = errors.New("qr code does not belong to this pet")

	// ErrAlreadyOwner is returned when a user tries to claim a pet they own.
	ErrAlreadyOwner = errors.New("you already own this pet")

	// ErrInvalidOrExpired is returned for transfer codes that were never
	// issued, were replaced, were redeemed, or expired. The cases are
	// deliberately indistinguishable.
	ErrInvalidOrExpired = errors.New("invalid or expired transfer code")
)

// Authorization and input errors.
var (
	// ErrForbidden indicates the caller lacks ownership or role for the action.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput is returned when a request fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrEmailTaken is returned by registration when the email is in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned by login for an unknown email or a
	// wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// detailError carries a caller-facing message while still matching its
// sentinel through errors.Is.
type detailError struct {
	kind error
	msg  string
}

func (e *detailError) Error() string { return e.msg }
func (e *detailError) Unwrap() error { return e.kind }

func forbidden(msg string) error    { return &detailError{kind: ErrForbidden, msg: msg} }
func invalidInput(msg string) error { return &detailError{kind: ErrInvalidInput, msg: msg} }
