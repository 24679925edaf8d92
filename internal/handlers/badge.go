package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"condo-portal/internal/repositories"
	"condo-portal/internal/unread"
)

// BadgeHandler serves the polled unread counter.
type BadgeHandler struct {
	unread *unread.Engine
}

// NewBadgeHandler builds a BadgeHandler.
func NewBadgeHandler(unreadEngine *unread.Engine) *BadgeHandler {
	return &BadgeHandler{unread: unreadEngine}
}

// UnreadCount returns the caller's clamped unread counter. The service
// worker polls this endpoint to refresh the app badge, so identity arrives
// via query parameters rather than headers.
func (h *BadgeHandler) UnreadCount(c *gin.Context) {
	v := viewerFromContext(c)
	if v.ID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing caller identity"})
		return
	}

	count, err := h.unread.Current(c.Request.Context(), v.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load unread count"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":   unread.ClampBadge(count),
		"role":    v.Role,
		"unit_id": v.UnitID,
	})
}
