package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"condo-portal/internal/mocks"
	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
	"condo-portal/internal/telemetry"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", handler.Login)
	r.POST("/register-manager", handler.RegisterManager)
	r.GET("/pending-managers", handler.PendingManagers)
	r.POST("/approve-manager/:id", handler.ApproveManager)
	r.POST("/forgot-password", handler.ForgotPassword)
	r.POST("/validate-token", handler.ValidateToken)
	r.POST("/new-password", handler.NewPassword)
	r.GET("/users/:id", handler.GetUser)
	return r
}

func hashOf(t *testing.T, password string) sql.NullString {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return sql.NullString{String: string(hash), Valid: true}
}

func TestLoginSuccess(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "admin@example.com")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{
		ID:           7,
		Username:     "bob",
		PasswordHash: hashOf(t, "hunter22"),
		Role:         models.RoleResident,
		Approved:     true,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"bob","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		User        models.User `json:"user"`
		FirstAccess bool        `json:"first_access"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 7, resp.User.ID)
	assert.False(t, resp.FirstAccess)
	assert.NotContains(t, rec.Body.String(), "password_hash")

	userRepo.AssertExpectations(t)
}

func TestLoginWrongPassword(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{
		ID:           7,
		PasswordHash: hashOf(t, "hunter22"),
		Role:         models.RoleResident,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"bob","password":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "ghost").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"ghost","password":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnapprovedManager(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "newmanager").Return(models.User{
		ID:           3,
		PasswordHash: hashOf(t, "hunter22"),
		Role:         models.RoleManager,
		Approved:     false,
	}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"newmanager","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginDuplicateManagerAppRefused(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	// Even the correct password is refused while the duplicate exists.
	userRepo.On("GetUserByUsername", mock.Anything, "portal").Return(models.User{
		ID:           1,
		PasswordHash: hashOf(t, "hunter22"),
		Role:         models.RoleManagerApp,
		Approved:     true,
	}, nil).Once()
	userRepo.On("CountByRole", mock.Anything, models.RoleManagerApp).Return(2, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"portal","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestLoginAdminConflictPublishesAuditEvent(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	publisher := new(mocks.PublisherMock)
	audit := telemetry.NewAuditEmitter(publisher, "condo.audit", "condo-portal", "test")
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), audit, "admin@example.com")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "portal").Return(models.User{
		ID:           1,
		PasswordHash: hashOf(t, "hunter22"),
		Role:         models.RoleManagerApp,
		Approved:     true,
	}, nil).Once()
	userRepo.On("CountByRole", mock.Anything, models.RoleManagerApp).Return(2, nil).Once()
	publisher.On("Publish", mock.Anything, "condo.audit", mock.MatchedBy(func(event any) bool {
		envelope, ok := event.(telemetry.AuditEnvelope)
		return ok && envelope.EventType == telemetry.EventAdminConflict &&
			envelope.Service == "condo-portal" && envelope.SchemaVersion == 1
	})).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"portal","password":"hunter22"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	publisher.AssertExpectations(t)
}

func TestRegisterManagerCreatesUnapprovedAccount(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	mailerMock := new(mocks.MailerMock)
	handler := NewAuthHandler(userRepo, mailerMock, nil, "admin@example.com")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "newmanager").Return(models.User{}, repositories.ErrUserNotFound).Once()
	userRepo.On("GetUserByEmail", mock.Anything, "new@example.com").Return(models.User{}, repositories.ErrUserNotFound).Once()
	userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleManager && !u.Approved && u.PasswordHash.Valid
	})).Return(models.User{ID: 9, Username: "newmanager", Name: "New Manager", Email: "new@example.com"}, nil).Once()
	mailerMock.On("Send", mock.Anything, "admin@example.com", mock.Anything, mock.Anything).Return(true).Once()

	body := bytes.NewBufferString(`{"name":"New Manager","username":"newmanager","email":"new@example.com","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/register-manager", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestRegisterManagerDuplicateUsername(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "taken").Return(models.User{ID: 2}, nil).Once()

	body := bytes.NewBufferString(`{"name":"X","username":"taken","email":"x@example.com","password":"hunter22"}`)
	req := httptest.NewRequest(http.MethodPost, "/register-manager", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestApproveManager(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("ApproveUser", mock.Anything, 9).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/approve-manager/9", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestForgotPasswordIssuesToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	mailerMock := new(mocks.MailerMock)
	handler := NewAuthHandler(userRepo, mailerMock, nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(models.User{ID: 7, Email: "bob@example.com"}, nil).Once()
	userRepo.On("SetResetToken", mock.Anything, 7, mock.MatchedBy(func(token string) bool {
		return len(token) == 6
	}), mock.Anything).Return(nil).Once()
	mailerMock.On("Send", mock.Anything, "bob@example.com", mock.Anything, mock.Anything).Return(true).Once()

	req := httptest.NewRequest(http.MethodPost, "/forgot-password", bytes.NewBufferString(`{"email":"bob@example.com"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	mailerMock.AssertExpectations(t)
}

func TestValidateTokenExpired(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserForReset", mock.Anything, "bob@example.com", "ABC123").Return(models.User{}, repositories.ErrUserNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/validate-token", bytes.NewBufferString(`{"email":"bob@example.com","token":"ABC123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestNewPasswordConsumesToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUserForReset", mock.Anything, "bob@example.com", "ABC123").Return(models.User{ID: 7, Email: "bob@example.com"}, nil).Once()
	userRepo.On("SetPassword", mock.Anything, "bob@example.com", mock.Anything, true).Return(nil).Once()

	body := bytes.NewBufferString(`{"email":"bob@example.com","token":"ABC123","password":"newsecret"}`)
	req := httptest.NewRequest(http.MethodPost, "/new-password", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestNewPasswordFirstAccessKeepsNoToken(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetFirstAccessUser", mock.Anything, "new@example.com").Return(models.User{ID: 8, Email: "new@example.com", FirstAccess: true}, nil).Once()
	userRepo.On("SetPassword", mock.Anything, "new@example.com", mock.Anything, false).Return(nil).Once()

	body := bytes.NewBufferString(`{"email":"new@example.com","token":"DIRECT","password":"newsecret"}`)
	req := httptest.NewRequest(http.MethodPost, "/new-password", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	userRepo.AssertNotCalled(t, "GetUserForReset", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetUserHidesUnapproved(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewAuthHandler(userRepo, new(mocks.MailerMock), nil, "")
	router := setupAuthRouter(handler)

	userRepo.On("GetUser", mock.Anything, 3).Return(models.User{ID: 3, Approved: false}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/users/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
