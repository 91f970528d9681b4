package controllers

import (
	"log/slog"
	"net/http"

	h "tripsplit/internal/delivery/http/helpers"
	"tripsplit/internal/domain"
)

type StatsController struct {
	Logger  *slog.Logger
	Service domain.StatsService
}

func NewStatsController(logger *slog.Logger, svc domain.StatsService) *StatsController {
	return &StatsController{Logger: logger, Service: svc}
}

// MyStats godoc
// @Summary Dashboard statistics
// @Description Totals across every trip the caller owns or joined. Figures that could not be computed are zero and listed in degraded; the request itself never fails.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data contains the stats"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /stats/me [get]
func (c *StatsController) MyStats(w http.ResponseWriter, r *http.Request) {
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, c.Service.TripStats(r.Context(), caller.UserID))
}

// TripSummary godoc
// @Summary Trip cost summary
// @Description Total spent on the trip and the equal share per current member.
// @Tags stats
// @Produce json
// @Security BearerAuth
// @Param tripID path string true "Trip ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the summary"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /trips/{tripID}/summary [get]
func (c *StatsController) TripSummary(w http.ResponseWriter, r *http.Request) {
	tripID, ok := h.PathUUID(w, r, "tripID")
	if !ok {
		return
	}
	caller, ok := callerIdentity(w, r)
	if !ok {
		return
	}
	summary, err := c.Service.TripSummary(r.Context(), tripID, caller.UserID)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, summary)
}
