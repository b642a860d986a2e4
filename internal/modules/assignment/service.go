package assignment

import (
	"context"
	"errors"
	"sort"

	"github.com/rs/zerolog"

	"innkeeper/internal/domain"
	"innkeeper/internal/metrics"
)

// maxAttempts bounds the retry loop when two operators race for the
// same rooms.
const maxAttempts = 3

// Service reassigns physical rooms to a booking. The swap is atomic:
// either the booking holds exactly the requested set of rooms
// afterwards, or it keeps its previous set untouched.
type Service struct {
	bookings     bookingRepo
	rooms        roomReader
	availability availabilityChecker
	locks        roomLocker
	log          zerolog.Logger
}

func NewService(bookings bookingRepo, rooms roomReader, availability availabilityChecker, locks roomLocker, log *zerolog.Logger) *Service {
	logger := zerolog.Nop()
	if log != nil {
		logger = *log
	}
	return &Service{
		bookings:     bookings,
		rooms:        rooms,
		availability: availability,
		locks:        locks,
		log:          logger,
	}
}

// Assign replaces the booking's room set with roomIDs.
func (s *Service) Assign(ctx context.Context, bookingID int64, roomIDs []int64) (*domain.Booking, error) {
	roomIDs = dedupe(roomIDs)
	if len(roomIDs) == 0 {
		return nil, &domain.ValidationError{Field: "roomIds", Reason: "at least one room is required"}
	}

	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
		return nil, &domain.InvalidTransitionError{BookingID: bookingID, From: b.Status, Attempted: "assign"}
	}

	capacity := 0
	for _, roomID := range roomIDs {
		room, err := s.rooms.GetByID(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if !room.IsActive {
			return nil, &domain.ValidationError{Field: "roomIds", Reason: "room is not active"}
		}
		if room.RoomTypeID != b.RoomTypeID {
			return nil, &domain.ValidationError{Field: "roomIds", Reason: "room type does not match the booking"}
		}
		capacity += room.MaxOccupancy
	}
	if capacity < b.Guests() {
		return nil, &domain.CapacityExceededError{BookingID: bookingID, Capacity: capacity, Guests: b.Guests()}
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := s.tryAssign(ctx, b, roomIDs); err != nil {
			var conflict *domain.ConcurrencyConflictError
			if errors.As(err, &conflict) && attempt < maxAttempts {
				metrics.IncAssignmentConflict()
				s.log.Warn().
					Int64("booking_id", bookingID).
					Int("attempt", attempt).
					Msg("room assignment conflict, retrying")
				lastErr = err
				continue
			}
			return nil, err
		}
		return s.bookings.GetByID(ctx, bookingID)
	}
	return nil, lastErr
}

func (s *Service) tryAssign(ctx context.Context, b *domain.Booking, roomIDs []int64) error {
	release, err := s.acquire(ctx, roomIDs)
	if err != nil {
		return err
	}
	defer release()

	for _, roomID := range roomIDs {
		ok, err := s.availability.IsRoomAvailable(ctx, roomID, b.CheckInDate, b.CheckOutDate, b.ID)
		if err != nil {
			return err
		}
		if !ok {
			return &domain.RoomUnavailableError{RoomID: roomID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
		}
	}

	return s.bookings.ReplaceRoomAssignments(ctx, b, roomIDs)
}

func (s *Service) acquire(ctx context.Context, roomIDs []int64) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	return s.locks.AcquireRooms(ctx, roomIDs)
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
