package controllers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	h "tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/domain"
)

// CreateTripRequest is the request body for POST /trips. Dates are YYYY-MM-DD.
type CreateTripRequest struct {
	Title         string           `json:"title"`
	Description   *string          `json:"description"`
	Destination   string           `json:"destination"`
	StartDate     string           `json:"start_date"`
	EndDate       string           `json:"end_date"`
	Budget        *decimal.Decimal `json:"budget"`
	Currency      string           `json:"currency"`
	CoverPhotoURL *string          `json:"cover_photo_url"`
	Status        string           `json:"status"`
}

// Validate implements Validator.
func (c CreateTripRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(c.Title) == "" {
		errs = append(errs, "title is required")
	}
	if _, err := parseDate(c.StartDate); err != nil {
		errs = append(errs, "start_date must be a date (YYYY-MM-DD)")
	}
	if _, err := parseDate(c.EndDate); err != nil {
		errs = append(errs, "end_date must be a date (YYYY-MM-DD)")
	}
	return errs
}

// UpdateTripRequest is the request body for PATCH /trips/{tripID}. Omitted fields are unchanged.
type UpdateTripRequest struct {
	Title         *string          `json:"title"`
	Description   *string          `json:"description"`
	Destination   *string          `json:"destination"`
	StartDate     *string          `json:"start_date"`
	EndDate       *string          `json:"end_date"`
	Budget        *decimal.Decimal `json:"budget"`
	Currency      *string          `json:"currency"`
	CoverPhotoURL *string          `json:"cover_photo_url"`
	Status        *string          `json:"status"`
}

// Validate implements Validator.
func (u UpdateTripRequest) Validate() []string {
	var errs []string
	if u.StartDate != nil {
		if _, err := parseDate(*u.StartDate); err != nil {
			errs = append(errs, "start_date must be a date (YYYY-MM-DD)")
		}
	}
	if u.EndDate != nil {
		if _, err := parseDate(*u.EndDate); err != nil {
			errs = append(errs, "end_date must be a date (YYYY-MM-DD)")
		}
	}
	return errs
}

func (u UpdateTripRequest) toDomain() domain.TripUpdate {
	update := domain.TripUpdate{
		Title:         u.Title,
		Description:   u.Description,
		Destination:   u.Destination,
		Budget:        u.Budget,
		Currency:      u.Currency,
		CoverPhotoURL: u.CoverPhotoURL,
	}
	if u.StartDate != nil {
		d, _ := parseDate(*u.StartDate)
		update.StartDate = &d
	}
	if u.EndDate != nil {
		d, _ := parseDate(*u.EndDate)
		update.EndDate = &d
	}
	if u.Status != nil {
		s := domain.TripStatus(*u.Status)
		update.Status = &s
	}
	return update
}

type TripController struct {
	Logger  *slog.Logger
	Service domain.TripService
}

func NewTripController(logger *slog.Logger, svc domain.TripService) *TripController {
	return &TripController{Logger: logger, Service: svc}
}

// ListMyTrips godoc
// @Summary List my trips
// @Description Returns every trip the caller owns or participates in, newest first.
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the trips"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /trips/me [get]
func (c *TripController) ListMyTrips(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	trips, err := c.Service.ListMyTrips(r.Context(), caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, trips)
}

// CreateTrip godoc
// @Summary Create a trip
// @Description Creates a trip owned by the caller, who also becomes its first organizer. Currency defaults to USD and status to planning.
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body CreateTripRequest true "Trip data"
// @Success 201 {object} helpers.APIResponse "data contains the created trip"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /trips [post]
func (c *TripController) CreateTrip(w http.ResponseWriter, r *http.Request) {
	var req CreateTripRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	start, _ := parseDate(req.StartDate)
	end, _ := parseDate(req.EndDate)
	trip := &domain.Trip{
		Title:         req.Title,
		Description:   req.Description,
		Destination:   req.Destination,
		StartDate:     start,
		EndDate:       end,
		Budget:        req.Budget,
		Currency:      req.Currency,
		CoverPhotoURL: req.CoverPhotoURL,
		Status:        domain.TripStatus(req.Status),
		OwnerID:       caller.UserID,
	}
	if err := c.Service.CreateTrip(r.Context(), trip); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, trip)
}

// GetTrip godoc
// @Summary Get a trip
// @Description Returns the trip. Any member may view it.
// @Tags trips
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the trip"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID} [get]
func (c *TripController) GetTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	trip, err := c.Service.GetTrip(r.Context(), tripID, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, trip)
}

// UpdateTrip godoc
// @Summary Update a trip
// @Description Owners and organizers edit details; only the owner changes cover_photo_url and status. Any status may follow any other.
// @Tags trips
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Param body body UpdateTripRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated trip"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID} [patch]
func (c *TripController) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	var req UpdateTripRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	trip, err := c.Service.UpdateTrip(r.Context(), tripID, caller.UserID, req.toDomain())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, trip)
}

// DeleteTrip godoc
// @Summary Delete a trip
// @Description Deletes the trip with its participants, invitations and expenses. Owner only.
// @Tags trips
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 204 "No Content"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID} [delete]
func (c *TripController) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	if err := c.Service.DeleteTrip(r.Context(), tripID, caller.UserID); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
