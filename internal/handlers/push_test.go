package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"condo-portal/internal/mocks"
	"condo-portal/internal/models"
	"condo-portal/internal/push"
	"condo-portal/internal/repositories"
)

func setupPushRouter(handler *PushHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/push/public-key", handler.PublicKey)
	r.POST("/push/subscribe", handler.Subscribe)
	r.POST("/push/unsubscribe", handler.Unsubscribe)
	return r
}

func TestPublicKey(t *testing.T) {
	handler := NewPushHandler(new(mocks.PushRepositoryMock), push.KeyPair{Public: "pub", Private: "priv"})
	router := setupPushRouter(handler)

	req := httptest.NewRequest(http.MethodGet, "/push/public-key", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "pub", resp["public_key"])
	assert.NotContains(t, resp, "private_key")
}

func TestSubscribeStoresRegistration(t *testing.T) {
	pushRepo := new(mocks.PushRepositoryMock)
	handler := NewPushHandler(pushRepo, push.KeyPair{})
	router := setupPushRouter(handler)

	pushRepo.On("Upsert", mock.Anything, models.PushSubscription{
		UserID:   7,
		Role:     models.RoleResident,
		Block:    "A",
		Unit:     "A-101",
		Endpoint: "https://push.example/ep",
		P256dh:   "p256dh-key",
		Auth:     "auth-secret",
	}).Return(nil).Once()

	body := bytes.NewBufferString(`{
		"user_id": 7,
		"role": "resident",
		"block": "A",
		"unit": "A-101",
		"subscription": {
			"endpoint": "https://push.example/ep",
			"keys": {"p256dh": "p256dh-key", "auth": "auth-secret"}
		}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/push/subscribe", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	pushRepo.AssertExpectations(t)
}

func TestSubscribeRejectsIncompleteSubscription(t *testing.T) {
	pushRepo := new(mocks.PushRepositoryMock)
	handler := NewPushHandler(pushRepo, push.KeyPair{})
	router := setupPushRouter(handler)

	body := bytes.NewBufferString(`{
		"user_id": 7,
		"subscription": {"endpoint": "https://push.example/ep", "keys": {"p256dh": "", "auth": "auth-secret"}}
	}`)
	req := httptest.NewRequest(http.MethodPost, "/push/subscribe", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	pushRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestUnsubscribeRemovesRegistration(t *testing.T) {
	pushRepo := new(mocks.PushRepositoryMock)
	handler := NewPushHandler(pushRepo, push.KeyPair{})
	router := setupPushRouter(handler)

	pushRepo.On("DeleteByUser", mock.Anything, 7).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/push/unsubscribe", bytes.NewBufferString(`{"user_id":7}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	pushRepo.AssertExpectations(t)
}

func TestUnsubscribeWithoutRegistration(t *testing.T) {
	pushRepo := new(mocks.PushRepositoryMock)
	handler := NewPushHandler(pushRepo, push.KeyPair{})
	router := setupPushRouter(handler)

	pushRepo.On("DeleteByUser", mock.Anything, 7).Return(repositories.ErrSubscriptionNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/push/unsubscribe", bytes.NewBufferString(`{"user_id":7}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
