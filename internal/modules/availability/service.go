package availability

import (
	"context"
	"time"

	"innkeeper/internal/domain"
)

// Service answers availability questions. It never mutates anything:
// conflicts are read from blocking bookings (confirmed or checked-in)
// and open blocking maintenance windows, under half-open date-range
// semantics.
type Service struct {
	rooms       RoomReader
	conflicts   ConflictReader
	maintenance MaintenanceReader
}

func NewService(rooms RoomReader, conflicts ConflictReader, maintenance MaintenanceReader) *Service {
	return &Service{rooms: rooms, conflicts: conflicts, maintenance: maintenance}
}

func validateRange(checkIn, checkOut time.Time) error {
	if !checkOut.After(checkIn) {
		return &domain.ValidationError{Field: "check_out", Reason: "must be after check-in"}
	}
	return nil
}

// IsRoomAvailable reports whether the concrete room can host a stay of
// [checkIn, checkOut). excludeBookingID lets an edit re-validate a
// booking against all other bookings; pass 0 for none.
func (s *Service) IsRoomAvailable(ctx context.Context, roomID int64, checkIn, checkOut time.Time, excludeBookingID int64) (bool, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return false, err
	}
	if !room.IsActive {
		return false, &domain.NotFoundError{Entity: "room", ID: room.RoomNumber}
	}

	blocked, err := s.maintenance.HasBlockingWindow(ctx, roomID, checkIn, checkOut)
	if err != nil {
		return false, err
	}
	if blocked {
		return false, nil
	}

	conflict, err := s.conflicts.HasRoomConflict(ctx, roomID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// IsTypeAvailable reports whether the room type still has roomsWanted
// rooms free for [checkIn, checkOut). Blocking bookings that are not
// yet bound to concrete rooms also consume type inventory.
func (s *Service) IsTypeAvailable(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, roomsWanted int, excludeBookingID int64) (bool, error) {
	if err := validateRange(checkIn, checkOut); err != nil {
		return false, err
	}
	if roomsWanted < 1 {
		return false, &domain.ValidationError{Field: "rooms", Reason: "at least one room must be requested"}
	}

	rt, err := s.rooms.GetType(ctx, roomTypeID)
	if err != nil {
		return false, err
	}
	if !rt.IsActive {
		return false, &domain.NotFoundError{Entity: "room type", ID: rt.Code}
	}

	rooms, err := s.rooms.ListActiveByType(ctx, roomTypeID)
	if err != nil {
		return false, err
	}

	byBooking, err := s.conflicts.BlockedRoomIDs(ctx, roomTypeID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}
	byMaintenance, err := s.maintenance.BlockedRoomIDs(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return false, err
	}

	blocked := make(map[int64]struct{}, len(byBooking)+len(byMaintenance))
	for _, id := range byBooking {
		blocked[id] = struct{}{}
	}
	for _, id := range byMaintenance {
		blocked[id] = struct{}{}
	}

	free := 0
	for _, room := range rooms {
		if _, ok := blocked[room.ID]; !ok {
			free++
		}
	}

	unassigned, err := s.conflicts.CountUnassignedBlocking(ctx, roomTypeID, checkIn, checkOut, excludeBookingID)
	if err != nil {
		return false, err
	}

	return int64(free)-unassigned >= int64(roomsWanted), nil
}
