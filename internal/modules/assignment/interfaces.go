package assignment

import (
	"context"
	"time"

	"innkeeper/internal/domain"
)

type bookingRepo interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	ReplaceRoomAssignments(ctx context.Context, b *domain.Booking, roomIDs []int64) error
}

type roomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
}

type availabilityChecker interface {
	IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error)
}

// roomLocker serializes concurrent assignment attempts on the same
// rooms. A nil locker falls back to the database-level guard alone.
type roomLocker interface {
	AcquireRooms(ctx context.Context, roomIDs []int64) (func(), error)
}
