package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health reports liveness and the configured model.
type Health struct {
	Service string
	Version string
	Model   string
}

func (h Health) Root(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"message": "Welcome to " + h.Service,
		"status":  "healthy",
		"version": h.Version,
	})
}

func (h Health) Check(c *gin.Context) {
	writeJSON(c, http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.Service,
		"model":   h.Model,
	})
}
