package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"condo-portal/internal/models"
	"condo-portal/internal/push"
	"condo-portal/internal/repositories"
)

// PushHandler manages device registrations for web push.
type PushHandler struct {
	pushRepo repositories.PushRepository
	keys     push.KeyPair
}

// NewPushHandler builds a PushHandler.
func NewPushHandler(pushRepo repositories.PushRepository, keys push.KeyPair) *PushHandler {
	return &PushHandler{pushRepo: pushRepo, keys: keys}
}

// PublicKey returns the VAPID public key browsers subscribe with.
func (h *PushHandler) PublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"public_key": h.keys.Public})
}

// Subscribe stores or replaces the caller's device registration. One
// registration per user: a new device silently evicts the previous one.
func (h *PushHandler) Subscribe(c *gin.Context) {
	var req struct {
		UserID       int    `json:"user_id" binding:"required"`
		Role         string `json:"role"`
		Block        string `json:"block"`
		Unit         string `json:"unit"`
		Subscription struct {
			Endpoint string `json:"endpoint"`
			Keys     struct {
				P256dh string `json:"p256dh"`
				Auth   string `json:"auth"`
			} `json:"keys"`
		} `json:"subscription" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subscription requires endpoint, p256dh and auth"})
		return
	}

	err := h.pushRepo.Upsert(c.Request.Context(), models.PushSubscription{
		UserID:   req.UserID,
		Role:     req.Role,
		Block:    req.Block,
		Unit:     req.Unit,
		Endpoint: sub.Endpoint,
		P256dh:   sub.Keys.P256dh,
		Auth:     sub.Keys.Auth,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store subscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"subscribed": true})
}

// Unsubscribe removes the caller's device registration.
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	var req struct {
		UserID int `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.pushRepo.DeleteByUser(c.Request.Context(), req.UserID); err != nil {
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no subscription for user"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove subscription"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"unsubscribed": true})
}
