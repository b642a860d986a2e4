package availability

import (
	"context"
	"time"

	"innkeeper/internal/domain"
)

// RoomReader provides room and room-type lookups.
type RoomReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetType(ctx context.Context, id int64) (*domain.RoomType, error)
	ListActiveByType(ctx context.Context, roomTypeID int64) ([]domain.Room, error)
}

// ConflictReader answers booking-conflict queries.
type ConflictReader interface {
	HasRoomConflict(ctx context.Context, roomID int64, from, to time.Time, excludeID int64) (bool, error)
	BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) ([]int64, error)
	CountUnassignedBlocking(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) (int64, error)
}

// MaintenanceReader answers maintenance-window queries.
type MaintenanceReader interface {
	HasBlockingWindow(ctx context.Context, roomID int64, from, to time.Time) (bool, error)
	BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time) ([]int64, error)
}
