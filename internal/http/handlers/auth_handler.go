// Account HTTP handlers.
//
//   - POST /auth/register
//   - POST /auth/login
//   - GET  /auth/me
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/apisada-prim/pawbook/internal/services"
)

// LoginRequest is the JSON payload for signing in.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required" example:"somchai@example.com"`
	Password string `json:"password" binding:"required" example:"correct horse"`
}

// Register godoc
// @ID          register
// @Summary     Create an account
// @Description Creates a user with a default "My Pets" family. Vets supply a license
// @Description number and either an existing clinic id or a new clinic name.
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      services.RegisterInput  true  "Account details"
// @Success     201   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse  "Invalid input"
// @Failure     409   {object}  handlers.ErrorResponse  "Email already registered"
// @Failure     500   {object}  handlers.ErrorResponse  "Internal error"
// @Router      /auth/register [post]
func (h *Handlers) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	sess, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusCreated, sess)
}

// Login godoc
// @ID          login
// @Summary     Sign in
// @Tags        Auth
// @Accept      json
// @Produce     json
// @Param       body  body      handlers.LoginRequest  true  "Credentials"
// @Success     200   {object}  services.Session
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     401   {object}  handlers.ErrorResponse  "Invalid email or password"
// @Router      /auth/login [post]
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email and password required")
		return
	}
	sess, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, sess)
}

// Me godoc
// @ID          me
// @Summary     Current user
// @Tags        Auth
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  domain.User
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /auth/me [get]
func (h *Handlers) Me(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	u, err := h.Auth.Me(c.Request.Context(), p)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}
