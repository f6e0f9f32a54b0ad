package reservation

import (
	"context"
	"time"

	"campus_fleet/internal/models"
)

// ResourceKind selects which bookable resource an availability check
// reasons about.
type ResourceKind string

const (
	ResourceVehicle ResourceKind = "VEHICLE"
	ResourceDriver  ResourceKind = "DRIVER"
)

// ListFilter narrows and pages reservation listings.
type ListFilter struct {
	RequesterID uint
	VehicleID   uint
	State       models.ReservationState
	Page        int
	PageSize    int
}

// Repository is the storage contract the engine is built against. The
// gorm implementation lives in gorm_repository.go; tests substitute an
// in-memory fake.
//
// Methods called inside a WithTx closure run in that transaction; the
// *ForUpdate variants additionally take a row lock so that concurrent
// creations for the same vehicle or driver serialize.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	GetUser(ctx context.Context, id uint) (*models.User, error)
	GetDriver(ctx context.Context, id uint) (*models.Driver, error)
	GetDriverForUpdate(ctx context.Context, id uint) (*models.Driver, error)
	GetVehicleForUpdate(ctx context.Context, id uint) (*models.Vehicle, error)
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)

	// CountOverlapping counts reservations for the resource on the date,
	// in an active state, whose window overlaps [start, end] under the
	// inclusive boundary rule. excludeID, when non-zero, leaves that
	// reservation out of the count (window updates re-checking
	// themselves).
	CountOverlapping(ctx context.Context, kind ResourceKind, resourceID uint, date time.Time, start, end string, excludeID uint) (int64, error)

	Create(ctx context.Context, r *models.Reservation) error

	// UpdateGuarded applies updates to the reservation only while its
	// state is one of allowed, returning the number of rows changed.
	// Zero rows means the guard failed (state moved concurrently or the
	// id is unknown).
	UpdateGuarded(ctx context.Context, id uint, allowed []models.ReservationState, updates map[string]interface{}) (int64, error)

	ListBetween(ctx context.Context, from, to time.Time, vehicleID uint) ([]models.Reservation, error)
	List(ctx context.Context, f ListFilter) ([]models.Reservation, int64, error)
}
