package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Context keys set by Identity.
const (
	KeyUserID   = "userID"
	KeyUserRole = "userRole"
	KeyUserName = "userName"
	KeyUnitID   = "unitID"
)

// Identity extracts the caller identity forwarded by the gateway layer.
// Session validation happens upstream; this middleware only surfaces the
// already-authenticated identity to handlers. Query parameters are
// accepted as a fallback for the badge-polling service worker, which
// cannot set headers on its fetches.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			userID = c.Query("userId")
		}
		if id, err := strconv.Atoi(userID); err == nil {
			c.Set(KeyUserID, id)
		}

		role := c.GetHeader("X-User-Role")
		if role == "" {
			role = c.Query("userRole")
		}
		c.Set(KeyUserRole, role)

		name := c.GetHeader("X-User-Name")
		if name == "" {
			name = c.Query("userName")
		}
		c.Set(KeyUserName, name)

		unitID := c.GetHeader("X-User-Unit-Id")
		if unitID == "" {
			unitID = c.Query("unitId")
		}
		if id, err := strconv.Atoi(unitID); err == nil {
			c.Set(KeyUnitID, id)
		}

		c.Next()
	}
}
