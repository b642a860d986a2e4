package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingCheckedIn  BookingStatus = "checked_in"
	BookingCheckedOut BookingStatus = "checked_out"
	BookingCancelled  BookingStatus = "cancelled"
	BookingNoShow     BookingStatus = "no_show"
)

// Blocking reports whether a booking in this status counts toward
// room-conflict checks.
func (s BookingStatus) Blocking() bool {
	return s == BookingConfirmed || s == BookingCheckedIn
}

func (s BookingStatus) Terminal() bool {
	return s == BookingCheckedOut || s == BookingCancelled || s == BookingNoShow
}

type Booking struct {
	ID              int64         `json:"id"`
	BookingNumber   string        `json:"booking_number"`
	GuestID         int64         `json:"guest_id"`
	RoomTypeID      int64         `json:"room_type_id"`
	RoomIDs         []int64       `json:"room_ids,omitempty"`
	CheckInDate     time.Time     `json:"check_in_date"`
	CheckOutDate    time.Time     `json:"check_out_date"`
	ActualCheckIn   *time.Time    `json:"actual_check_in,omitempty"`
	ActualCheckOut  *time.Time    `json:"actual_check_out,omitempty"`
	Adults          int           `json:"adults"`
	Children        int           `json:"children"`
	SpecialRequests string        `json:"special_requests,omitempty"`
	Status          BookingStatus `json:"status"`

	// Frozen at creation; never recomputed from current rates.
	RoomRate       decimal.Decimal `json:"room_rate"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	ServiceCharges decimal.Decimal `json:"service_charges"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Currency       string          `json:"currency"`

	CancellationReason string `json:"cancellation_reason,omitempty"`
	Notes              string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	CreatedBy int64     `json:"created_by,omitempty"`
	UpdatedBy int64     `json:"updated_by,omitempty"`
}

func (b *Booking) Guests() int {
	return b.Adults + b.Children
}

// Overlaps reports whether the booking's stay intersects [from, to)
// under half-open semantics: checkout day is free for a same-day check-in.
func (b *Booking) Overlaps(from, to time.Time) bool {
	return b.CheckInDate.Before(to) && from.Before(b.CheckOutDate)
}

// Clock supplies the current time to time-sensitive operations so core
// logic never reads the ambient wall clock.
type Clock func() time.Time
