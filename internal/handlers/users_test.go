package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"condo-portal/internal/mocks"
	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
)

func setupUserRouter(handler *UserHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/staff-users", handler.ListStaffUsers)
	r.POST("/staff-users", handler.CreateStaffUser)
	r.DELETE("/staff-users/:id", handler.DeleteStaffUser)
	return r
}

func TestListStaffUsers(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PushRepositoryMock), new(mocks.MailerMock))
	router := setupUserRouter(handler)

	userRepo.On("ListUsersByRoles", mock.Anything, models.RoleResident, models.RoleMessenger).
		Return([]models.User{{ID: 7, Role: models.RoleResident}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/staff-users", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
}

func TestCreateStaffUserMailsCredentials(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	mailerMock := new(mocks.MailerMock)
	handler := NewUserHandler(userRepo, new(mocks.PushRepositoryMock), mailerMock)
	router := setupUserRouter(handler)

	userRepo.On("GetUserByUsername", mock.Anything, "bob").Return(models.User{}, repositories.ErrUserNotFound).Once()
	userRepo.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(models.User{}, repositories.ErrUserNotFound).Once()
	userRepo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u models.User) bool {
		return u.Role == models.RoleResident && u.Approved && u.FirstAccess &&
			u.PasswordHash.Valid && u.UnitID.Valid && u.UnitID.Int64 == 4
	})).Return(models.User{ID: 21, Username: "bob", Email: "bob@example.com"}, nil).Once()
	mailerMock.On("Send", mock.Anything, "bob@example.com", mock.Anything, mock.Anything).Return(true).Once()

	body := bytes.NewBufferString(`{"name":"Bob","username":"bob","email":"bob@example.com","unit_id":4,"role":"resident"}`)
	req := httptest.NewRequest(http.MethodPost, "/staff-users", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	userRepo.AssertExpectations(t)
	mailerMock.AssertExpectations(t)
}

func TestCreateStaffUserRejectsResidentWithoutUnit(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	handler := NewUserHandler(userRepo, new(mocks.PushRepositoryMock), new(mocks.MailerMock))
	router := setupUserRouter(handler)

	body := bytes.NewBufferString(`{"name":"Bob","username":"bob","email":"bob@example.com","role":"resident"}`)
	req := httptest.NewRequest(http.MethodPost, "/staff-users", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	userRepo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestCreateStaffUserRejectsManagerRole(t *testing.T) {
	handler := NewUserHandler(new(mocks.UserRepositoryMock), new(mocks.PushRepositoryMock), new(mocks.MailerMock))
	router := setupUserRouter(handler)

	body := bytes.NewBufferString(`{"name":"Eve","username":"eve","email":"eve@example.com","role":"manager"}`)
	req := httptest.NewRequest(http.MethodPost, "/staff-users", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteStaffUserRemovesRegistration(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	pushRepo := new(mocks.PushRepositoryMock)
	handler := NewUserHandler(userRepo, pushRepo, new(mocks.MailerMock))
	router := setupUserRouter(handler)

	pushRepo.On("DeleteByUser", mock.Anything, 21).Return(repositories.ErrSubscriptionNotFound).Once()
	userRepo.On("DeleteUser", mock.Anything, 21).Return(nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/staff-users/21", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	userRepo.AssertExpectations(t)
	pushRepo.AssertExpectations(t)
}
