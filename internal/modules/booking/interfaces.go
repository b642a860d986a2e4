package booking

import (
	"context"
	"time"

	"innkeeper/internal/domain"
	"innkeeper/internal/modules/pricing"
)

// BookingRepository is the persistence surface the lifecycle needs.
type BookingRepository interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	GetByNumber(ctx context.Context, number string) (*domain.Booking, error)
	ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error
	MarkCheckedIn(ctx context.Context, id int64, at time.Time) error
	MarkCheckedOut(ctx context.Context, id int64, at time.Time, notes string) error
	CancelWithReason(ctx context.Context, id int64, reason string) error
	MaterializeNights(ctx context.Context, b *domain.Booking) error
	ReleaseNights(ctx context.Context, bookingID int64) error
	ClearRoomAssignments(ctx context.Context, bookingID int64) error
	HasRoomConflict(ctx context.Context, roomID int64, from, to time.Time, excludeID int64) (bool, error)
	DueNoShow(ctx context.Context, cutoff time.Time) ([]domain.Booking, error)
}

type RoomRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Room, error)
	GetType(ctx context.Context, id int64) (*domain.RoomType, error)
	UpdateStatuses(ctx context.Context, roomIDs []int64, status domain.RoomStatus) error
}

type AvailabilityChecker interface {
	IsTypeAvailable(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, roomsWanted int, excludeBookingID int64) (bool, error)
}

type Quoter interface {
	Quote(in pricing.QuoteInput) (*pricing.Breakdown, error)
}

// PaymentGate is the reconciliation surface the lifecycle delegates to:
// it never interprets payment amounts itself.
type PaymentGate interface {
	SufficientToConfirm(ctx context.Context, bookingID int64) (bool, error)
	EvaluateCancellationRefund(ctx context.Context, b *domain.Booking, leadDays int) error
}

// EventSender pushes lifecycle events to the front-desk board. A nil
// sender disables notifications.
type EventSender interface {
	NotifyBookingStatus(bookingID int64, bookingNumber string, status domain.BookingStatus)
	NotifyRoomStatus(roomID int64, status domain.RoomStatus)
}
