package targeting

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"condo-portal/internal/mocks"
	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
)

func TestResolveUnit(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	resolver := NewResolver(unitRepo, new(mocks.GroupRepositoryMock), userRepo)

	unitRepo.On("GetUnit", mock.Anything, 4).Return(models.Unit{ID: 4, Name: "A-101"}, nil).Once()
	userRepo.On("ListReachableByUnits", mock.Anything, []int{4}).Return([]models.User{
		{ID: 1, Role: models.RoleManager},
		{ID: 2, Role: models.RoleMessenger},
		{ID: 3, Role: models.RoleResident},
	}, nil).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestUnit, ID: 4})
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, UserIDs(users))

	unitRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestResolveUnknownUnitFailsClosed(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	resolver := NewResolver(unitRepo, new(mocks.GroupRepositoryMock), userRepo)

	unitRepo.On("GetUnit", mock.Anything, 99).Return(models.Unit{}, repositories.ErrUnitNotFound).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestUnit, ID: 99})
	require.NoError(t, err)
	require.Empty(t, users)

	unitRepo.AssertExpectations(t)
	userRepo.AssertNotCalled(t, "ListReachableByUnits", mock.Anything, mock.Anything)
}

func TestResolveGroupExpandsUnits(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	resolver := NewResolver(new(mocks.UnitRepositoryMock), groupRepo, userRepo)

	groupRepo.On("GetGroup", mock.Anything, 7).Return(models.Group{ID: 7, UnitIDs: pq.Int64Array{4, 5}}, nil).Once()
	userRepo.On("ListReachableByUnits", mock.Anything, []int{4, 5}).Return([]models.User{{ID: 8}}, nil).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestGroup, ID: 7})
	require.NoError(t, err)
	require.Equal(t, []int{8}, UserIDs(users))

	groupRepo.AssertExpectations(t)
	userRepo.AssertExpectations(t)
}

func TestResolveUnknownGroupFailsClosed(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	resolver := NewResolver(new(mocks.UnitRepositoryMock), groupRepo, new(mocks.UserRepositoryMock))

	groupRepo.On("GetGroup", mock.Anything, 12).Return(models.Group{}, repositories.ErrGroupNotFound).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestGroup, ID: 12})
	require.NoError(t, err)
	require.Empty(t, users)

	groupRepo.AssertExpectations(t)
}

func TestResolveEmptyGroupStillReachesStaff(t *testing.T) {
	groupRepo := new(mocks.GroupRepositoryMock)
	userRepo := new(mocks.UserRepositoryMock)
	resolver := NewResolver(new(mocks.UnitRepositoryMock), groupRepo, userRepo)

	groupRepo.On("GetGroup", mock.Anything, 2).Return(models.Group{ID: 2}, nil).Once()
	userRepo.On("ListReachableByUnits", mock.Anything, []int{}).Return([]models.User{
		{ID: 1, Role: models.RoleManager},
		{ID: 3, Role: models.RoleMessenger},
	}, nil).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestGroup, ID: 2})
	require.NoError(t, err)
	require.Len(t, users, 2)

	userRepo.AssertExpectations(t)
}

func TestResolveManagerRole(t *testing.T) {
	userRepo := new(mocks.UserRepositoryMock)
	resolver := NewResolver(new(mocks.UnitRepositoryMock), new(mocks.GroupRepositoryMock), userRepo)

	userRepo.On("ListManagers", mock.Anything).Return([]models.User{
		{ID: 1, Role: models.RoleManager, Approved: true},
		{ID: 2, Role: models.RoleManager, Approved: false},
	}, nil).Once()

	users, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestManagerRole, ID: models.ManagerRoleSentinel})
	require.NoError(t, err)
	require.Len(t, users, 2)

	userRepo.AssertExpectations(t)
}

func TestResolveUnknownKind(t *testing.T) {
	resolver := NewResolver(new(mocks.UnitRepositoryMock), new(mocks.GroupRepositoryMock), new(mocks.UserRepositoryMock))

	_, err := resolver.Resolve(context.Background(), models.Destination{Kind: "broadcast"})
	assert.Error(t, err)
}

func TestResolveRepoError(t *testing.T) {
	unitRepo := new(mocks.UnitRepositoryMock)
	resolver := NewResolver(unitRepo, new(mocks.GroupRepositoryMock), new(mocks.UserRepositoryMock))

	unitRepo.On("GetUnit", mock.Anything, 3).Return(models.Unit{}, assert.AnError).Once()

	_, err := resolver.Resolve(context.Background(), models.Destination{Kind: models.DestUnit, ID: 3})
	assert.Error(t, err)
}
