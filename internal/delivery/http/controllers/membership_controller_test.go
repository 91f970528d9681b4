package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/domain"
)

type fakeMembershipService struct {
	invitation   *domain.Invitation
	invitations  []*domain.Invitation
	total        int
	participant  *domain.Participant
	participants []*domain.Participant
	err          error

	gotEmail  string
	gotRole   domain.ParticipantRole
	gotActor  domain.Identity
	gotSearch string
	gotParams domain.PaginationParams
	gotID     string
}

func (f *fakeMembershipService) CreateInvitation(_ context.Context, _ string, inviter domain.Identity, email string, role domain.ParticipantRole) (*domain.Invitation, error) {
	f.gotActor, f.gotEmail, f.gotRole = inviter, email, role
	return f.invitation, f.err
}

func (f *fakeMembershipService) AcceptInvitation(_ context.Context, invitationID string, actor domain.Identity) (*domain.Participant, error) {
	f.gotID, f.gotActor = invitationID, actor
	return f.participant, f.err
}

func (f *fakeMembershipService) DeleteInvitation(_ context.Context, invitationID, _ string) error {
	f.gotID = invitationID
	return f.err
}

func (f *fakeMembershipService) ListTripInvitations(_ context.Context, _, _, search string, params domain.PaginationParams) ([]*domain.Invitation, int, error) {
	f.gotSearch, f.gotParams = search, params
	return f.invitations, f.total, f.err
}

func (f *fakeMembershipService) ListMyInvitations(_ context.Context, actor domain.Identity) ([]*domain.Invitation, error) {
	f.gotActor = actor
	return f.invitations, f.err
}

func (f *fakeMembershipService) ListParticipants(_ context.Context, _, _ string) ([]*domain.Participant, error) {
	return f.participants, f.err
}

func (f *fakeMembershipService) RemoveParticipant(_ context.Context, participantID, _ string) error {
	f.gotID = participantID
	return f.err
}

func (f *fakeMembershipService) UpdateParticipantRole(_ context.Context, participantID string, role domain.ParticipantRole, _ string) (*domain.Participant, error) {
	f.gotID, f.gotRole = participantID, role
	return f.participant, f.err
}

func TestMembershipController_CreateInvitation(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{name: "created", body: `{"email":"bob@example.com","role":"Guest"}`, wantStatus: http.StatusCreated},
		{name: "missing email", body: `{"role":"guest"}`, wantStatus: http.StatusBadRequest, wantCode: "bad_request"},
		{name: "already member", body: `{"email":"bob@example.com"}`, err: domain.ErrAlreadyMember, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "pending invitation", body: `{"email":"bob@example.com"}`, err: fmt.Errorf("create invitation: %w", domain.ErrDuplicateInvitation), wantStatus: http.StatusConflict, wantCode: "conflict"},
		{
			name:        "guest inviting",
			body:        `{"email":"bob@example.com"}`,
			err:         domain.ErrCannotInvite,
			wantStatus:  http.StatusForbidden,
			wantCode:    "forbidden",
			wantMessage: "only the trip owner or an organizer can invite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeMembershipService{invitation: &domain.Invitation{ID: otherID, TripID: tripID, Email: "bob@example.com"}, err: tt.err}
			ctrl := NewMembershipController(testLogger, svc)

			w, env := serve(t, "POST /trips/{tripID}/invitations", ctrl.CreateInvitation, http.MethodPost, "/trips/"+tripID+"/invitations", tt.body, alice)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Equal(t, tt.wantCode, errorCode(env))
			if tt.wantMessage != "" {
				assert.Equal(t, tt.wantMessage, env.Error.Message)
			}
			if tt.wantStatus == http.StatusCreated {
				assert.Equal(t, *alice, svc.gotActor)
				assert.Equal(t, domain.RoleGuest, svc.gotRole)
			}
		})
	}
}

func TestMembershipController_AcceptInvitation(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "joined", wantStatus: http.StatusOK},
		{name: "expired", err: fmt.Errorf("accept invitation: %w", domain.ErrInvitationExpired), wantStatus: http.StatusGone, wantCode: "expired"},
		{name: "accepted twice", err: domain.ErrAlreadyAccepted, wantStatus: http.StatusConflict, wantCode: "conflict"},
		{name: "someone else's", err: domain.ErrNotFound, wantStatus: http.StatusNotFound, wantCode: "not_found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeMembershipService{participant: &domain.Participant{ID: otherID, TripID: tripID, UserID: aliceID, Role: domain.RoleParticipant}, err: tt.err}
			ctrl := NewMembershipController(testLogger, svc)

			w, env := serve(t, "POST /invitations/{invitationID}/accept", ctrl.AcceptInvitation, http.MethodPost, "/invitations/"+otherID+"/accept", "", alice)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, errorCode(env))
			assert.Equal(t, otherID, svc.gotID)
			assert.Equal(t, "alice@example.com", svc.gotActor.Email)
		})
	}
}

func TestMembershipController_ListTripInvitations(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	svc := &fakeMembershipService{
		invitations: []*domain.Invitation{{ID: otherID, Email: "bob@example.com", ExpiresAt: now}},
		total:       7,
	}
	ctrl := NewMembershipController(testLogger, svc)

	w, env := serve(t, "GET /trips/{tripID}/invitations", ctrl.ListTripInvitations, http.MethodGet,
		"/trips/"+tripID+"/invitations?search=bob&page=2&page_size=5", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "bob", svc.gotSearch)
	assert.Equal(t, domain.PaginationParams{Page: 2, PageSize: 5}, svc.gotParams)

	var page helpers.Page[domain.Invitation]
	require.NoError(t, json.Unmarshal(env.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob@example.com", page.Items[0].Email)
	assert.Equal(t, 7, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
}

func TestMembershipController_ListMyInvitations(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	svc := &fakeMembershipService{invitations: []*domain.Invitation{{
		ID:            otherID,
		TripTitle:     "Lisbon",
		TripStartDate: &start,
		Inviter:       &domain.Inviter{ID: tripID, Email: "olive@example.com", FullName: "Olive Owner"},
	}}}
	ctrl := NewMembershipController(testLogger, svc)

	w, _ := serve(t, "GET /invitations/me", ctrl.ListMyInvitations, http.MethodGet, "/invitations/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, env := serve(t, "GET /invitations/me", ctrl.ListMyInvitations, http.MethodGet, "/invitations/me", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, *alice, svc.gotActor)
	assert.Contains(t, string(env.Data), "Lisbon")
	assert.Contains(t, string(env.Data), `"trip_start_date":"2025-06-01T00:00:00Z"`)
	assert.Contains(t, string(env.Data), `"inviter":{"id":"`+tripID+`","email":"olive@example.com","full_name":"Olive Owner"}`)
}

func TestMembershipController_Participants(t *testing.T) {
	svc := &fakeMembershipService{
		participants: []*domain.Participant{{ID: otherID, UserID: aliceID, Role: domain.RoleOrganizer}},
		participant:  &domain.Participant{ID: otherID, Role: domain.RoleOrganizer},
	}
	ctrl := NewMembershipController(testLogger, svc)

	w, env := serve(t, "GET /trips/{tripID}/participants", ctrl.ListParticipants, http.MethodGet, "/trips/"+tripID+"/participants", "", alice)
	require.Equal(t, http.StatusOK, w.Code)
	var list []domain.Participant
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Len(t, list, 1)

	w, _ = serve(t, "PATCH /participants/{participantID}/role", ctrl.UpdateParticipantRole, http.MethodPatch, "/participants/"+otherID+"/role", `{"role":"ORGANIZER"}`, alice)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RoleOrganizer, svc.gotRole)

	w, _ = serve(t, "PATCH /participants/{participantID}/role", ctrl.UpdateParticipantRole, http.MethodPatch, "/participants/"+otherID+"/role", `{}`, alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = serve(t, "DELETE /participants/{participantID}", ctrl.RemoveParticipant, http.MethodDelete, "/participants/"+otherID, "", alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, otherID, svc.gotID)

	svc.err = domain.ErrCannotManageParticipants
	w, env = serve(t, "DELETE /participants/{participantID}", ctrl.RemoveParticipant, http.MethodDelete, "/participants/"+otherID, "", alice)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "only the trip owner or an organizer can remove participants", env.Error.Message)
}

func TestMembershipController_DeleteInvitation(t *testing.T) {
	svc := &fakeMembershipService{}
	ctrl := NewMembershipController(testLogger, svc)

	w, _ := serve(t, "DELETE /invitations/{invitationID}", ctrl.DeleteInvitation, http.MethodDelete, "/invitations/"+otherID, "", alice)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, otherID, svc.gotID)

	w, _ = serve(t, "DELETE /invitations/{invitationID}", ctrl.DeleteInvitation, http.MethodDelete, "/invitations/"+notAUUID, "", alice)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
