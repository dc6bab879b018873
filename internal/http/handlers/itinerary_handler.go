// README: Itinerary generation and day regeneration handlers (quota-guarded).
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/http/middleware"
	"tripplanner/internal/itinerary"
	"tripplanner/internal/modules/aiusage"
)

// Planner is the itinerary service as seen by HTTP. The Validate methods run
// before any quota is charged.
type Planner interface {
	Validate(req itinerary.TripRequest) error
	Generate(ctx context.Context, req itinerary.TripRequest) (*itinerary.Itinerary, error)
	ValidateRegenerate(req itinerary.RegenerateRequest) error
	Regenerate(ctx context.Context, req itinerary.RegenerateRequest) (*itinerary.RegenerateResult, error)
}

// Quota meters model calls per caller. A nil Quota means unmetered.
type Quota interface {
	UseToken(ctx context.Context, uid, operation string) error
	Usage(ctx context.Context, uid string) (aiusage.Usage, error)
}

type ItineraryHandler struct {
	planner Planner
	quota   Quota
	timeout time.Duration
}

func NewItineraryHandler(planner Planner, quota Quota, timeout time.Duration) *ItineraryHandler {
	return &ItineraryHandler{planner: planner, quota: quota, timeout: timeout}
}

func (h *ItineraryHandler) requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(c.Request.Context())
	}
	return context.WithTimeout(c.Request.Context(), h.timeout)
}

func (h *ItineraryHandler) charge(ctx context.Context, c *gin.Context, op string) error {
	if h.quota == nil {
		return nil
	}
	return h.quota.UseToken(ctx, middleware.CallerKey(c), op)
}

// Generate handles POST /api/itineraries.
func (h *ItineraryHandler) Generate(c *gin.Context) {
	var req itinerary.TripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := h.planner.Validate(req); err != nil {
		writeItineraryError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.charge(ctx, c, aiusage.OpGenerate); err != nil {
		writeItineraryError(c, err)
		return
	}
	it, err := h.planner.Generate(ctx, req)
	if err != nil {
		writeItineraryError(c, err)
		return
	}
	writeOK(c, "Itinerary generated successfully.", it)
}

// Regenerate handles POST /api/itineraries/regenerate.
func (h *ItineraryHandler) Regenerate(c *gin.Context) {
	var req itinerary.RegenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}
	if err := h.planner.ValidateRegenerate(req); err != nil {
		writeItineraryError(c, err)
		return
	}

	ctx, cancel := h.requestContext(c)
	defer cancel()

	if err := h.charge(ctx, c, aiusage.OpRegenerate); err != nil {
		writeItineraryError(c, err)
		return
	}
	res, err := h.planner.Regenerate(ctx, req)
	if err != nil {
		writeItineraryError(c, err)
		return
	}
	msg := "Day plan regenerated successfully."
	if res.Mode == itinerary.ModeSearch {
		msg = "Suggestions generated successfully."
	}
	writeOK(c, msg, res)
}

// Usage handles GET /api/usage.
func (h *ItineraryHandler) Usage(c *gin.Context) {
	if h.quota == nil {
		writeError(c, http.StatusNotFound, "usage metering is disabled")
		return
	}
	u, err := h.quota.Usage(c.Request.Context(), middleware.CallerKey(c))
	if err != nil {
		writeItineraryError(c, err)
		return
	}
	writeOK(c, "ok", u)
}
