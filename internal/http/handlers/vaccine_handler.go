// Vaccination HTTP handlers.
//
// This file exposes the vaccine catalog and the QR handoff between an owner
// and a vet:
//   - GET  /vaccines                        (catalog, optional species and search)
//   - POST /pets/{id}/vaccine-qr            (owner issues or reuses a QR session)
//   - POST /vaccine-qr/verify               (vet reads the pet behind a token)
//   - GET  /vaccine-qr/status               (owner's client polls the session)
//   - POST /vaccinations                    (vet writes a verified record, idempotent)
//   - GET  /pets/{id}/vaccinations          (a pet's records, newest first)
//   - POST /pets/{id}/vaccinations/legacy   (owner uploads an unverified record)
//
// Verify never consumes a session; only a successful record write does.
package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/domain"
	"github.com/apisada-prim/pawbook/internal/repo"
	"github.com/apisada-prim/pawbook/internal/services"
	"github.com/apisada-prim/pawbook/internal/utils"
)

//
// DTOs
//

// ListVaccinesResponse wraps catalog entries.
type ListVaccinesResponse struct {
	Vaccines []domain.VaccineMaster `json:"vaccines"`
}

// ListRecordsResponse wraps a pet's vaccination records.
type ListRecordsResponse struct {
	Records []domain.VaccinationRecord `json:"records"`
}

// VerifyQrRequest carries a scanned QR token.
type VerifyQrRequest struct {
	Token string `json:"token" binding:"required"`
}

// QrStatusResponse reports a session state: ACTIVE, USED, EXPIRED, or INVALID.
type QrStatusResponse struct {
	Status string `json:"status" example:"ACTIVE"`
}

// LegacyRecordRequest is an owner-supplied record. The pet comes from the path.
type LegacyRecordRequest struct {
	VaccineMasterID  string  `json:"vaccine_master_id"           binding:"required"`
	DateAdministered *string `json:"date_administered,omitempty" example:"2026-01-10T00:00:00Z"`
	NextDueDate      *string `json:"next_due_date,omitempty"     example:"2027-01-10T00:00:00Z"`
	LotNumber        *string `json:"lot_number,omitempty"`
	StickerImage     string  `json:"sticker_image"               binding:"required"`
}

//
// Handlers
//

// ListVaccines godoc
// @ID          listVaccines
// @Summary     Vaccine catalog
// @Description Lists catalog entries, core vaccines first. With q, returns the best matches by
// @Description name, brand, and type (accent- and case-insensitive, prefix aware).
// @Tags        Vaccines
// @Produce     json
// @Param       species  query     string  false  "dog, cat, or other"
// @Param       q        query     string  false  "Search text"
// @Param       limit    query     int     false  "Max search results"  minimum(1) maximum(50) default(10)
// @Success     200      {object}  handlers.ListVaccinesResponse
// @Failure     400      {object}  handlers.ErrorResponse  "Unknown species"
// @Router      /vaccines [get]
func (h *Handlers) ListVaccines(c *gin.Context) {
	species := domain.Species(strings.ToLower(strings.TrimSpace(c.Query("species"))))
	q := strings.TrimSpace(c.Query("q"))

	var (
		items []domain.VaccineMaster
		err   error
	)
	if q == "" {
		items, err = h.Vaccines.ListCatalog(c.Request.Context(), species)
	} else {
		limit := utils.IntInRange(c.Query("limit"), 10, 1, 50)
		items, err = h.Vaccines.SearchCatalog(c.Request.Context(), species, q, limit)
	}
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListVaccinesResponse{Vaccines: nonNil(items)})
}

// GenerateVaccineQr godoc
// @ID          generateVaccineQr
// @Summary     Issue a vaccine QR token
// @Description Returns the pet's active QR session for the caller if one exists, otherwise starts
// @Description a new one. Owner only.
// @Tags        Vaccine QR
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pet ID"  format(uuid)
// @Success     200  {object}  services.QrIssue
// @Failure     403  {object}  handlers.ErrorResponse  "Not the owner"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/vaccine-qr [post]
func (h *Handlers) GenerateVaccineQr(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	issued, err := h.Qr.Generate(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, issued)
}

// VerifyVaccineQr godoc
// @ID          verifyVaccineQr
// @Summary     Read the pet behind a QR token
// @Description Checks the token and its session and returns the pet with its vaccination history.
// @Description Does not consume the session.
// @Tags        Vaccine QR
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.VerifyQrRequest  true  "Scanned token"
// @Success     200   {object}  domain.Pet
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid signature"
// @Failure     404   {object}  handlers.ErrorResponse  "Unknown session"
// @Failure     409   {object}  handlers.ErrorResponse  "Already used"
// @Failure     410   {object}  handlers.ErrorResponse  "Expired"
// @Failure     429   {object}  handlers.ErrorResponse  "Too many attempts"
// @Router      /vaccine-qr/verify [post]
func (h *Handlers) VerifyVaccineQr(c *gin.Context) {
	if _, has := principal(c); !has {
		return
	}
	var req VerifyQrRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token required")
		return
	}
	pet, err := h.Qr.Verify(c.Request.Context(), req.Token)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, pet)
}

// VaccineQrStatus godoc
// @ID          checkVaccineQrStatus
// @Summary     Poll a QR session
// @Description Reports ACTIVE, USED, EXPIRED, or INVALID. A used session stays USED after expiry.
// @Tags        Vaccine QR
// @Produce     json
// @Security    BearerAuth
// @Param       token  query     string  true  "QR token"
// @Success     200    {object}  handlers.QrStatusResponse
// @Failure     400    {object}  handlers.ErrorResponse  "Missing token"
// @Router      /vaccine-qr/status [get]
func (h *Handlers) VaccineQrStatus(c *gin.Context) {
	if _, has := principal(c); !has {
		return
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "token required")
		return
	}
	st, err := h.Qr.Status(c.Request.Context(), token)
	if err != nil {
		failService(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	ok(c, http.StatusOK, QrStatusResponse{Status: st})
}

// CreateVaccineRecord godoc
// @ID          createVaccineRecord
// @Summary     Write a verified vaccination record
// @Description Vets only. With qr_token, the QR session is consumed in the same transaction as
// @Description the insert, so a token yields at most one record. Without it, the vet records
// @Description directly. Supports idempotency via the Idempotency-Key header.
// @Tags        Vaccinations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       Idempotency-Key  header  string                false "Idempotency key for safe retries"
// @Param       body             body    services.RecordInput  true  "Record"
// @Success     201  {object}  domain.VaccinationRecord
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request or invalid signature"
// @Failure     403  {object}  handlers.ErrorResponse  "Not a vet"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet, vaccine, or session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "QR already used"
// @Failure     410  {object}  handlers.ErrorResponse  "QR expired"
// @Failure     422  {object}  handlers.ErrorResponse  "QR belongs to another pet"
// @Router      /vaccinations [post]
func (h *Handlers) CreateVaccineRecord(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req services.RecordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if h.replay(c, p, func(ctx context.Context, id string) (any, error) { return repo.GetRecord(ctx, h.DB, id) }) {
		return
	}

	rec, err := h.Vaccines.CreateRecord(c.Request.Context(), p, req)
	if err != nil {
		failService(c, err)
		return
	}
	h.remember(c, p, rec.ID, http.StatusCreated)
	ok(c, http.StatusCreated, rec)
}

// ListPetVaccinations godoc
// @ID          listPetVaccinations
// @Summary     A pet's vaccination records
// @Tags        Vaccinations
// @Produce     json
// @Security    BearerAuth
// @Param       id   path      string  true  "Pet ID"  format(uuid)
// @Success     200  {object}  handlers.ListRecordsResponse
// @Failure     403  {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404  {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/vaccinations [get]
func (h *Handlers) ListPetVaccinations(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	recs, err := h.Vaccines.ListRecords(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, ListRecordsResponse{Records: nonNil(recs)})
}

// CreateLegacyRecord godoc
// @ID          createLegacyRecord
// @Summary     Upload an owner-supplied record
// @Description Records a vaccination from a sticker photo. Such records are never verified.
// @Tags        Vaccinations
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id    path      string                        true  "Pet ID"  format(uuid)
// @Param       body  body      handlers.LegacyRecordRequest  true  "Record"
// @Success     201   {object}  domain.VaccinationRecord
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     403   {object}  handlers.ErrorResponse  "Forbidden"
// @Failure     404   {object}  handlers.ErrorResponse  "Pet not found"
// @Router      /pets/{id}/vaccinations/legacy [post]
func (h *Handlers) CreateLegacyRecord(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req LegacyRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "vaccine_master_id and sticker_image required")
		return
	}
	in := services.RecordInput{
		PetID:           c.Param("id"),
		VaccineMasterID: req.VaccineMasterID,
		LotNumber:       req.LotNumber,
		StickerImage:    &req.StickerImage,
	}
	var err error
	if in.DateAdministered, err = parseOptionalTime(req.DateAdministered); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "date_administered must be RFC 3339 or YYYY-MM-DD")
		return
	}
	if in.NextDueDate, err = parseOptionalTime(req.NextDueDate); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "next_due_date must be RFC 3339 or YYYY-MM-DD")
		return
	}

	rec, err := h.Vaccines.CreateLegacyRecord(c.Request.Context(), p, in)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, rec)
}

// parseOptionalTime accepts RFC 3339 timestamps and plain calendar dates,
// which owner apps send for stickers. Dates are taken as UTC midnight.
func parseOptionalTime(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	v := strings.TrimSpace(*s)
	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	_, err := time.Parse(time.RFC3339, v)
	return nil, err
}
