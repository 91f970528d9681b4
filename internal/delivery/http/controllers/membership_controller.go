package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	h "tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/domain"
)

// CreateInvitationRequest is the request body for POST /trips/{tripID}/invitations.
type CreateInvitationRequest struct {
	Email string `json:"email"`
	// Role is participant (default) or guest.
	Role string `json:"role"`
}

// Validate implements Validator.
func (c CreateInvitationRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Email) == "" {
		errs = append(errs, "email is required")
	}
	return errs
}

// UpdateRoleRequest is the request body for PATCH /participants/{participantID}/role.
type UpdateRoleRequest struct {
	Role string `json:"role"`
}

// Validate implements Validator.
func (u UpdateRoleRequest) Validate() []string {
	if u.Role == "" {
		return []string{"role is required"}
	}
	return nil
}

type MembershipController struct {
	Logger  *slog.Logger
	Service domain.MembershipService
}

func NewMembershipController(logger *slog.Logger, svc domain.MembershipService) *MembershipController {
	return &MembershipController{Logger: logger, Service: svc}
}

// CreateInvitation godoc
// @Summary Invite someone to a trip
// @Description Owners and organizers invite an email address as participant or guest. At most one pending invitation per email and trip. The invitee is notified in-app (when registered) and by email.
// @Tags invitations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Param body body CreateInvitationRequest true "Invitee"
// @Success 201 {object} helpers.APIResponse "data contains the invitation"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a member or pending invitation)"
// @Router /trips/{tripID}/invitations [post]
func (c *MembershipController) CreateInvitation(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var req CreateInvitationRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	inv, err := c.Service.CreateInvitation(r.Context(), tripID, caller, req.Email, domain.ParticipantRole(strings.ToLower(req.Role)))
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, inv)
}

// ListTripInvitations godoc
// @Summary List a trip's open invitations
// @Description Unaccepted invitations of the trip, including expired ones. Optional search filters by email. Owners and organizers only.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Param search query string false "Email substring"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse "data contains items and pagination"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/invitations [get]
func (c *MembershipController) ListTripInvitations(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	params := h.ParsePagination(r)
	invs, total, err := c.Service.ListTripInvitations(r.Context(), tripID, caller.UserID, r.URL.Query().Get("search"), params)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, h.NewPage(invs, params, total))
}

// ListMyInvitations godoc
// @Summary List my pending invitations
// @Description Unaccepted, unexpired invitations addressed to the caller's email, with trip title and destination.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the invitations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /invitations/me [get]
func (c *MembershipController) ListMyInvitations(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	invs, err := c.Service.ListMyInvitations(r.Context(), caller)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, invs)
}

// AcceptInvitation godoc
// @Summary Accept an invitation
// @Description Joins the trip with the invited role. The caller's email must match the invitation.
// @Tags invitations
// @Produce json
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the new participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already accepted or already a member)"
// @Failure 410 {object} helpers.APIResponse "error.code: expired"
// @Router /invitations/{invitationID}/accept [post]
func (c *MembershipController) AcceptInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := h.PathUUID(w, r, "invitationID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	p, err := c.Service.AcceptInvitation(r.Context(), invitationID, caller)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, p)
}

// DeleteInvitation godoc
// @Summary Delete an invitation
// @Description Withdraws an invitation so the email can be invited again. Owners and organizers only.
// @Tags invitations
// @Security BearerAuth
// @Param invitationID path string true "Invitation ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /invitations/{invitationID} [delete]
func (c *MembershipController) DeleteInvitation(w http.ResponseWriter, r *http.Request) {
	invitationID, ok := h.PathUUID(w, r, "invitationID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteInvitation(r.Context(), invitationID, caller.UserID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListParticipants godoc
// @Summary List trip participants
// @Tags participants
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the participants"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/participants [get]
func (c *MembershipController) ListParticipants(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	participants, err := c.Service.ListParticipants(r.Context(), tripID, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, participants)
}

// RemoveParticipant godoc
// @Summary Remove a participant
// @Description Owners and organizers remove a member. The owner cannot be removed; the member's past splits stay.
// @Tags participants
// @Security BearerAuth
// @Param participantID path string true "Participant ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /participants/{participantID} [delete]
func (c *MembershipController) RemoveParticipant(w http.ResponseWriter, r *http.Request) {
	participantID, ok := h.PathUUID(w, r, "participantID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.RemoveParticipant(r.Context(), participantID, caller.UserID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateParticipantRole godoc
// @Summary Change a participant's role
// @Description Owner only. Role is organizer, participant or guest.
// @Tags participants
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param participantID path string true "Participant ID (UUID)"
// @Param body body UpdateRoleRequest true "New role"
// @Success 200 {object} helpers.APIResponse "data contains the updated participant"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /participants/{participantID}/role [patch]
func (c *MembershipController) UpdateParticipantRole(w http.ResponseWriter, r *http.Request) {
	participantID, ok := h.PathUUID(w, r, "participantID")
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	p, err := c.Service.UpdateParticipantRole(r.Context(), participantID, domain.ParticipantRole(strings.ToLower(req.Role)), caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, p)
}
