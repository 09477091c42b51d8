// Pet HTTP handlers.
//
// This file exposes REST endpoints for pets and the ownership transfer flow:
//   - POST   /pets                          (create, idempotent)
//   - GET    /pets                          (owned or co-owned, ETag support)
//   - GET    /pets/alumni                   (previously owned)
//   - GET    /pets/{id}                     (detail with vaccination history)
//   - PUT    /pets/{id}                     (update, owner only)
//   - DELETE /pets/{id}                     (delete, owner only)
//   - POST   /pets/{id}/co-owners           (grant by email)
//   - DELETE /pets/{id}/co-owners/{userId}  (revoke)
//   - POST   /pets/{id}/transfer-code       (issue a transfer code)
//   - DELETE /pets/{id}/transfer-code       (withdraw a pending code)
//   - POST   /pets/claim                    (redeem a transfer code, idempotent)
//   - GET    /public/pets/{id}/card         (unauthenticated summary)
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/services"
)

//
// DTOs
//

// ListPetsResponse wraps the caller's pets.
type ListPetsResponse struct {
	Pets []domain.Pet `json:"pets"`
}

// AddCoOwnerRequest names the user to grant co-ownership.
type AddCoOwnerRequest struct {
	Email string `json:"email" binding:"required" example:"malee@example.com"`
}

// ClaimPetRequest carries a transfer code.
type ClaimPetRequest struct {
	Code string `json:"code" binding:"required" example:"AB12CD34"`
}

// TransferCodeResponse is returned when an owner issues a transfer code.
type TransferCodeResponse struct {
	Code      string    `json:"code"       example:"AB12CD34"`
	ExpiresAt time.Time `json:"expires_at"`
}

//
// Handlers
//

// CreatePet godoc
// @ID          createPet
// @Summary     Register a pet
// @Description Creates a pet owned by the caller. Supports idempotency via the Idempotency-Key header.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string             false  "Idempotency key for safe retries"
// @Param       body             body    services.PetInput  true   "Pet details"
// @Success     201  {object}  domain.Pet
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /pets [post]
func (h *Handlers) CreatePet(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req services.PetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if h.replay(c, p, func(ctx context.Context, id string) (any, error) { return h.Pets.Get(ctx, p, id) }) {
		return
	}

	pet, err := h.Pets.Create(c.Request.Context(), p, req)
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, p, pet.ID, http.StatusCreated)
	ok(c, http.StatusCreated, pet)
}

// ListPets godoc
// @ID          listPets
// @Summary     List my pets
// @Description Returns pets the caller owns or co-owns. With family_id, returns the pets of that
// @Description family's owner (the caller must own or belong to the family). The unfiltered list
// @Description supports a weak ETag via If-None-Match and may return 304.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
// @Param       If-None-Match  header  string  false  "Return 304 if ETag matches"
// @Param       family_id      query   string  false  "Family id"
// @Success     200  {object}  handlers.ListPetsResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string  "Not Modified"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a member of the family"
// @Router      /pets [get]
func (h *Handlers) ListPets(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	ctx := c.Request.Context()
	familyID := strings.TrimSpace(c.Query("family_id"))

	// ETag pre-check (best effort, unfiltered list only).
	if familyID == "" && h.DB != nil {
		count, maxTS, err := repo.PetsStats(ctx, h.DB, p.UserID)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.UnixNano()
			}
			if notModified(c, fmt.Sprintf(`W/"pets:%s:%d:%d"`, p.UserID, count, ts)) {
				return
			}
		}
	}

	pets, err := h.Pets.ListMine(ctx, p, familyID)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListPetsResponse{Pets: nonNil(pets)})
}

// ListAlumniPets godoc
// @ID          listAlumniPets
// @Summary     List pets I used to own
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  handlers.ListPetsResponse
// @Router      /pets/alumni [get]
func (h *Handlers) ListAlumniPets(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	pets, err := h.Pets.ListAlumni(c.Request.Context(), p)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListPetsResponse{Pets: nonNil(pets)})
}

// GetPet godoc
// @ID          getPet
// @Summary     Pet detail
// @Description Returns the pet with owner, co-owners, past owners, and vaccinations newest first.
// @Description Visible to the owner, co-owners, and members of the owner's family.
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pet ID"  format(uuid)
// @Success     200  {object}  domain.Pet
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id} [get]
func (h *Handlers) GetPet(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	pet, err := h.Pets.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// UpdatePet godoc
// @ID          updatePet
// @Summary     Update a pet
// @Description Applies the fields present in the body. Owner only.
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string             true  "Pet ID"  format(uuid)
// @Param       body  body      services.PetPatch  true  "Fields to change"
// @Success     200   {object}  domain.Pet
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404   {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id} [put]
func (h *Handlers) UpdatePet(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req services.PetPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	pet, err := h.Pets.Update(c.Request.Context(), p, c.Param("id"), req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// DeletePet godoc
// @ID          deletePet
// @Summary     Delete a pet
// @Tags        Pets
// @Security    BearerAuth
// @Param       id   path  string  true  "Pet ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id} [delete]
func (h *Handlers) DeletePet(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	if err := h.Pets.Delete(c.Request.Context(), p, c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// AddCoOwner godoc
// @ID          addCoOwner
// @Summary     Grant co-ownership
// @Tags        Pets
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                      true  "Pet ID"  format(uuid)
// @Param       body  body      handlers.AddCoOwnerRequest  true  "Co-owner email"
// @Success     200   {object}  domain.Pet
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404   {object}  handlers.ErrorResponse  "Pet or user not found"
// @Router      /pets/{id}/co-owners [post]
func (h *Handlers) AddCoOwner(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req AddCoOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}
	pet, err := h.Pets.AddCoOwner(c.Request.Context(), p, c.Param("id"), req.Email)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// RemoveCoOwner godoc
// @ID          removeCoOwner
// @Summary     Revoke co-ownership
// @Tags        Pets
// @Produce     json
// @Security    BearerAuth
// @Param       id      path      string  true  "Pet ID"   format(uuid)
// @Param       userId  path      string  true  "User ID"  format(uuid)
// @Success     200     {object}  domain.Pet
// @Failure     403     {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404     {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/co-owners/{userId} [delete]
func (h *Handlers) RemoveCoOwner(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	pet, err := h.Pets.RemoveCoOwner(c.Request.Context(), p, c.Param("id"), c.Param("userId"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// GenerateTransferCode godoc
// @ID          generateTransferCode
// @Summary     Issue a transfer code
// @Description Issues an 8-character code another user can redeem to become the owner. Any
// @Description previously issued code for the pet stops working.
// @Tags        Transfers
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pet ID"  format(uuid)
// @Success     201  {object}  handlers.TransferCodeResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/transfer-code [post]
func (h *Handlers) GenerateTransferCode(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	pet, err := h.Pets.GenerateTransferCode(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	resp := TransferCodeResponse{}
	if pet.TransferCode != nil {
		resp.Code = *pet.TransferCode
	}
	if pet.TransferExpiresAt != nil {
		resp.ExpiresAt = *pet.TransferExpiresAt
	}
	ok(c, http.StatusCreated, resp)
}

// CancelTransferCode godoc
// @ID          cancelTransferCode
// @Summary     Withdraw a transfer code
// @Description Invalidates the pet's pending transfer code. Succeeds when none is pending.
// @Tags        Transfers
// @Security    BearerAuth
// @Param       id   path  string  true  "Pet ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/transfer-code [delete]
func (h *Handlers) CancelTransferCode(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	if err := h.Pets.CancelTransferCode(c.Request.Context(), p, c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// ClaimPet godoc
// @ID          claimPet
// @Summary     Redeem a transfer code
// @Description Makes the caller the pet's owner. Codes are case-insensitive. Unknown, replaced,
// @Description redeemed, and expired codes are all reported as invalid_or_expired_code.
// @Description Supports idempotency via the Idempotency-Key header.
// @Tags        Transfers
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                    false  "Idempotency key for safe retries"
// @Param       body             body    handlers.ClaimPetRequest  true   "Transfer code"
// @Success     200  {object}  domain.Pet
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Invalid or expired code"
// @Failure     409  {object}  handlers.ErrorResponse  "Already the owner"
// @Failure     429  {object}  handlers.ErrorResponse  "Too many attempts"
// @Router      /pets/claim [post]
func (h *Handlers) ClaimPet(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req ClaimPetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "code required")
		return
	}
	// the claimer may have passed the pet on since; replay still answers 200
	if h.replay(c, p, func(ctx context.Context, id string) (any, error) { return h.Pets.Redeemed(ctx, p, id) }) {
		return
	}

	pet, err := h.Pets.ClaimPet(c.Request.Context(), p, req.Code)
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, p, pet.ID, http.StatusOK)
	ok(c, http.StatusOK, pet)
}

// PublicPetCard godoc
// @ID          publicPetCard
// @Summary     Public pet card
// @Description Unauthenticated summary of a pet and its vaccination status.
// @Tags        Public
// @Produce     json
// @Param       id   path      string  true  "Pet ID"  format(uuid)
// @Success     200  {object}  services.PetCard
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /public/pets/{id}/card [get]
func (h *Handlers) PublicPetCard(c *gin.Context) {
	card, err := h.Pets.PublicCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	ok(c, http.StatusOK, card)
}

// nonNil keeps empty lists serialized as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
