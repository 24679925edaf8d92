package handlers

import (
	"context"
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"condo-portal/internal/middleware"
	"condo-portal/internal/observability"
	"condo-portal/internal/telemetry"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

// viewer is the authenticated caller identity forwarded by the gateway.
type viewer struct {
	ID     int
	Role   string
	Name   string
	UnitID int
}

func viewerFromContext(c *gin.Context) viewer {
	return viewer{
		ID:     c.GetInt(middleware.KeyUserID),
		Role:   c.GetString(middleware.KeyUserRole),
		Name:   c.GetString(middleware.KeyUserName),
		UnitID: c.GetInt(middleware.KeyUnitID),
	}
}

func emitAudit(c *gin.Context, audit *telemetry.AuditEmitter, eventType, level, text string) {
	if audit == nil {
		return
	}
	var userID *string
	if id := c.GetInt(middleware.KeyUserID); id != 0 {
		s := strconv.Itoa(id)
		userID = &s
	}
	audit.Emit(context.WithoutCancel(c.Request.Context()), eventType, level, text, requestIDFromContext(c), userID)
}

const tokenAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newResetToken returns a short uppercase code suitable for typing from an
// email on a phone.
func newResetToken() string {
	buf := make([]byte, 6)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(tokenAlphabet))))
		if err != nil {
			// crypto/rand only fails when the platform source is broken
			buf[i] = tokenAlphabet[0]
			continue
		}
		buf[i] = tokenAlphabet[n.Int64()]
	}
	return string(buf)
}
