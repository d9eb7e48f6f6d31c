package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

// GetDatalogger handles the GET /api/dataloggers/{id} request.
func (h *Handler) GetDatalogger(c *gin.Context) {
	id := c.Param("id")

	dl, err := h.store.FindDatalogger(c.Request.Context(), id)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve datalogger"})
		return
	}
	if dl == nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Datalogger not found"})
		return
	}
	c.JSON(http.StatusOK, dl)
}

// GetDataloggerLogs handles the GET /api/dataloggers/{id}/logs request.
// The optional "limit" query parameter caps the number of entries returned.
func (h *Handler) GetDataloggerLogs(c *gin.Context) {
	id := c.Param("id")

	limit := defaultLogLimit
	if limitParam := c.Query("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = parsed
	}
	if limit > maxLogLimit {
		limit = maxLogLimit
	}

	entries, err := h.store.ListActivity(c.Request.Context(), id, limit)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve activity log"})
		return
	}
	c.JSON(http.StatusOK, entries)
}
