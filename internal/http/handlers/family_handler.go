// Family HTTP handlers.
//
//   - GET    /families/mine
//   - PUT    /families/mine/name
//   - POST   /families/mine/members
//   - DELETE /families/mine/members/{userId}
//   - POST   /families/{id}/leave
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RenameFamilyRequest is the JSON payload for renaming the caller's family.
type RenameFamilyRequest struct {
	// Name is 1–10 characters after trimming.
	Name string `json:"name" binding:"required" example:"Cat House"`
}

// InviteMemberRequest names the user to add to the caller's family.
type InviteMemberRequest struct {
	Email string `json:"email" binding:"required" example:"malee@example.com"`
}

// MyFamilies godoc
// @ID          myFamilies
// @Summary     Families I own and belong to
// @Tags        Families
// @Produce     json
// @Security    BearerAuth
// @Success     200  {object}  services.MyFamilies
// @Router      /families/mine [get]
func (h *Handlers) MyFamilies(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	out, err := h.Families.Mine(c.Request.Context(), p)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// RenameFamily godoc
// @ID          renameFamily
// @Summary     Rename my family
// @Tags        Families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.RenameFamilyRequest  true  "New name"
// @Success     200   {object}  domain.Family
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Router      /families/mine/name [put]
func (h *Handlers) RenameFamily(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req RenameFamilyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}
	f, err := h.Families.Rename(c.Request.Context(), p, req.Name)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, f)
}

// InviteFamilyMember godoc
// @ID          inviteFamilyMember
// @Summary     Add a member to my family
// @Tags        Families
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       body  body      handlers.InviteMemberRequest  true  "Member email"
// @Success     200   {object}  domain.Family
// @Failure     400   {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404   {object}  handlers.ErrorResponse  "User not found"
// @Router      /families/mine/members [post]
func (h *Handlers) InviteFamilyMember(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "email required")
		return
	}
	f, err := h.Families.Invite(c.Request.Context(), p, req.Email)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, f)
}

// RemoveFamilyMember godoc
// @ID          removeFamilyMember
// @Summary     Remove a member from my family
// @Tags        Families
// @Produce     json
// @Security    BearerAuth
// @Param       userId  path      string  true  "User ID"  format(uuid)
// @Success     200     {object}  domain.Family
// @Failure     400     {object}  handlers.ErrorResponse  "Cannot remove the owner"
// @Failure     404     {object}  handlers.ErrorResponse  "Not a member"
// @Router      /families/mine/members/{userId} [delete]
func (h *Handlers) RemoveFamilyMember(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	f, err := h.Families.RemoveMember(c.Request.Context(), p, c.Param("userId"))
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, f)
}

// LeaveFamily godoc
// @ID          leaveFamily
// @Summary     Leave a family
// @Tags        Families
// @Security    BearerAuth
// @Param       id   path  string  true  "Family ID"  format(uuid)
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Owners cannot leave their own family"
// @Failure     404  {object}  handlers.ErrorResponse  "Family not found"
// @Router      /families/{id}/leave [post]
func (h *Handlers) LeaveFamily(c *gin.Context) {
	p, has := principal(c)
	if !has {
		return
	}
	if err := h.Families.Leave(c.Request.Context(), p, c.Param("id")); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}
