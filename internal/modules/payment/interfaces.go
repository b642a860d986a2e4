package payment

import (
	"context"
	"time"

	"innkeeper/internal/domain"
)

type paymentRepo interface {
	CreatePayment(ctx context.Context, p *domain.Payment) error
	GetPayment(ctx context.Context, id string) (*domain.Payment, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paidAt *time.Time) error
	ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error)
	CreateRefund(ctx context.Context, ref *domain.Refund) error
	ListRefundsByPayment(ctx context.Context, paymentID string) ([]domain.Refund, error)
	ListRefundsByBooking(ctx context.Context, bookingID int64) ([]domain.Refund, error)
	// ApplyGatewayEvent must commit the dedup row and the payment write
	// atomically: a failed write may not leave the dedup row behind.
	ApplyGatewayEvent(ctx context.Context, eventType string, raw []byte, p *domain.Payment) (bool, error)
}

type bookingReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
}

// bookingLocker serializes payment and refund recording per booking.
// A nil locker skips the serialization (tests, single-writer setups).
type bookingLocker interface {
	AcquireBooking(ctx context.Context, bookingID int64) (func(), error)
}
