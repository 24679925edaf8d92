package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"condo-portal/internal/mocks"
	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
)

func setupDirectoryRouter(handler *DirectoryHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/units", handler.CreateUnit)
	r.DELETE("/units/:id", handler.DeleteUnit)
	r.POST("/groups", handler.CreateGroup)
	r.GET("/groups/:id/units", handler.GroupUnits)
	r.DELETE("/blocks/:id", handler.DeleteBlock)
	return r
}

func TestCreateUnitWarnsOnDuplicateName(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), unitRepo, new(mocks.GroupRepositoryMock))
	router := setupDirectoryRouter(handler)

	unitRepo.On("CountUnitsNamed", mock.Anything, "A-101").Return(1, nil).Once()
	unitRepo.On("CreateUnit", mock.Anything, "A-101").Return(models.Unit{ID: 12, Name: "A-101"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/units", bytes.NewBufferString(`{"name":"A-101"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp, "warning")

	unitRepo.AssertExpectations(t)
}

func TestCreateUnitUniqueNameHasNoWarning(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), unitRepo, new(mocks.GroupRepositoryMock))
	router := setupDirectoryRouter(handler)

	unitRepo.On("CountUnitsNamed", mock.Anything, "B-202").Return(0, nil).Once()
	unitRepo.On("CreateUnit", mock.Anything, "B-202").Return(models.Unit{ID: 13, Name: "B-202"}, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/units", bytes.NewBufferString(`{"name":"B-202"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotContains(t, resp, "warning")
}

func TestDeleteUnitReferencedByGroup(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), unitRepo, new(mocks.GroupRepositoryMock))
	router := setupDirectoryRouter(handler)

	unitRepo.On("DeleteUnit", mock.Anything, 4).Return(repositories.ErrUnitInUse).Once()

	req := httptest.NewRequest(http.MethodDelete, "/units/4", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateGroupRejectsUnknownUnits(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), new(mocks.UnitRepositoryMock), groupRepo)
	router := setupDirectoryRouter(handler)

	groupRepo.On("CreateGroup", mock.Anything, 1, 2, []int{4, 99}).
		Return(models.Group{}, &repositories.UnknownUnitsError{IDs: []int{99}}).Once()

	body := bytes.NewBufferString(`{"block_id":1,"subblock_id":2,"unit_ids":[4,99]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp, "unknown_unit_ids")
}

func TestCreateGroupSuccess(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), new(mocks.UnitRepositoryMock), groupRepo)
	router := setupDirectoryRouter(handler)

	groupRepo.On("CreateGroup", mock.Anything, 1, 2, []int{4, 5}).
		Return(models.Group{ID: 7, UnitIDs: pq.Int64Array{4, 5}}, nil).Once()

	body := bytes.NewBufferString(`{"block_id":1,"subblock_id":2,"unit_ids":[4,5]}`)
	req := httptest.NewRequest(http.MethodPost, "/groups", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	groupRepo.AssertExpectations(t)
}

func TestGroupUnitsNotFound(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	unitRepo := new(mocks.UnitRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), unitRepo, groupRepo)
	router := setupDirectoryRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 42).Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/42/units", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	unitRepo.AssertNotCalled(t, "ListUnitsByIDs", mock.Anything, mock.Anything)
}

func TestGroupUnitsListsMembers(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	unitRepo := new(mocks.UnitRepositoryMock)
	handler := NewDirectoryHandler(new(mocks.BlockRepositoryMock), unitRepo, groupRepo)
	router := setupDirectoryRouter(handler)

	groupRepo.On("GetGroup", mock.Anything, 7).Return(models.Group{ID: 7, UnitIDs: pq.Int64Array{4, 5}}, nil).Once()
	unitRepo.On("ListUnitsByIDs", mock.Anything, []int{4, 5}).Return([]models.Unit{
		{ID: 4, Name: "A-101"},
		{ID: 5, Name: "A-102"},
	}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/groups/7/units", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Units []models.Unit `json:"units"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Len(t, resp.Units, 2)
	assert.Equal(t, "A-101", resp.Units[0].Name)

	groupRepo.AssertExpectations(t)
	unitRepo.AssertExpectations(t)
}

func TestDeleteBlockInUse(t *testing.T) {
	blockRepo := new(mocks.BlockRepositoryMock)
	handler := NewDirectoryHandler(blockRepo, new(mocks.UnitRepositoryMock), new(mocks.GroupRepositoryMock))
	router := setupDirectoryRouter(handler)

	blockRepo.On("DeleteBlock", mock.Anything, 3).Return(repositories.ErrBlockInUse).Once()

	req := httptest.NewRequest(http.MethodDelete, "/blocks/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}
