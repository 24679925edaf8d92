package targeting

import (
	"context"
	"errors"
	"fmt"
	"log"

	"condo-portal/internal/models"
	"condo-portal/internal/repositories"
)

// Resolver expands a message destination into the set of user accounts
// that must count and receive it. Resolution is deterministic and performs
// no writes; it is invoked once by the unread counter path and once by the
// notification dispatcher.
type Resolver struct {
	unitRepo  repositories.UnitRepository
	groupRepo repositories.GroupRepository
	userRepo  repositories.UserRepository
}

// NewResolver constructs a Resolver.
func NewResolver(unitRepo repositories.UnitRepository, groupRepo repositories.GroupRepository, userRepo repositories.UserRepository) *Resolver {
	return &Resolver{
		unitRepo:  unitRepo,
		groupRepo: groupRepo,
		userRepo:  userRepo,
	}
}

// Resolve returns the target accounts for a destination.
//
// Unit and group destinations reach every manager and messenger plus the
// residents of the addressed units. Manager-role destinations reach every
// manager regardless of approval state. Unknown unit or group ids fail
// closed: an empty set, logged, no error.
func (r *Resolver) Resolve(ctx context.Context, dest models.Destination) ([]models.User, error) {
	switch dest.Kind {
	case models.DestUnit:
		if _, err := r.unitRepo.GetUnit(ctx, dest.ID); err != nil {
			if errors.Is(err, repositories.ErrUnitNotFound) {
				log.Printf("targeting: unit %d not found, resolving to empty set", dest.ID)
				return nil, nil
			}
			return nil, err
		}
		return r.userRepo.ListReachableByUnits(ctx, []int{dest.ID})

	case models.DestGroup:
		group, err := r.groupRepo.GetGroup(ctx, dest.ID)
		if err != nil {
			if errors.Is(err, repositories.ErrGroupNotFound) {
				log.Printf("targeting: group %d not found, resolving to empty set", dest.ID)
				return nil, nil
			}
			return nil, err
		}
		unitIDs := make([]int, 0, len(group.UnitIDs))
		for _, id := range group.UnitIDs {
			unitIDs = append(unitIDs, int(id))
		}
		// An empty group still reaches managers and messengers; the
		// reachability query handles the empty unit list.
		return r.userRepo.ListReachableByUnits(ctx, unitIDs)

	case models.DestManagerRole:
		return r.userRepo.ListManagers(ctx)

	default:
		return nil, fmt.Errorf("unknown destination kind %q", dest.Kind)
	}
}

// UserIDs extracts the account ids from a resolved target set.
func UserIDs(users []models.User) []int {
	ids := make([]int, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
