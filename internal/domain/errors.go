package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

type InvalidTransitionError struct {
	BookingID int64
	From      BookingStatus
	Attempted string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %d: cannot %s from status %q", e.BookingID, e.Attempted, e.From)
}

// RoomUnavailableError reports a date-range conflict, either for a
// concrete room or for an entire room type's inventory.
type RoomUnavailableError struct {
	RoomID     int64
	RoomTypeID int64
	CheckIn    time.Time
	CheckOut   time.Time
}

func (e *RoomUnavailableError) Error() string {
	scope := fmt.Sprintf("room %d", e.RoomID)
	if e.RoomID == 0 {
		scope = fmt.Sprintf("room type %d", e.RoomTypeID)
	}
	return fmt.Sprintf("%s is not available for [%s, %s)",
		scope, e.CheckIn.Format("2006-01-02"), e.CheckOut.Format("2006-01-02"))
}

type CapacityExceededError struct {
	BookingID int64
	Capacity  int
	Guests    int
}

func (e *CapacityExceededError) Error() string {
	return fmt.Sprintf("booking %d: %d guests exceed assigned capacity %d", e.BookingID, e.Guests, e.Capacity)
}

type InvalidRefundAmountError struct {
	PaymentID  string
	Requested  decimal.Decimal
	Refundable decimal.Decimal
}

func (e *InvalidRefundAmountError) Error() string {
	return fmt.Sprintf("payment %s: refund %s exceeds refundable balance %s",
		e.PaymentID, e.Requested.StringFixed(2), e.Refundable.StringFixed(2))
}

type ConcurrencyConflictError struct {
	Entity string
	ID     string
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("%s %s: lost a concurrent update race, retry", e.Entity, e.ID)
}
