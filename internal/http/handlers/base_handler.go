// README: Base handler utilities (envelope helpers, error mapping).
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripplanner/internal/itinerary"
	"tripplanner/internal/modules/aiusage"
)

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeOK(c *gin.Context, msg string, data any) {
	writeJSON(c, http.StatusOK, itinerary.Envelope{Success: true, Message: msg, Data: data})
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, itinerary.Envelope{Success: false, Message: msg})
}

func writeItineraryError(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, itinerary.ErrValidation):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, aiusage.ErrInsufficientTokens):
		writeError(c, http.StatusTooManyRequests, "monthly itinerary quota exhausted")
	case errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusGatewayTimeout, "itinerary generation timed out")
	case errors.Is(err, itinerary.ErrUpstream):
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
