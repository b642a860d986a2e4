package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"innkeeper/internal/config"
	"innkeeper/internal/domain"
	"innkeeper/internal/metrics"
)

var hundred = decimal.NewFromInt(100)

// Service reconciles payments and refunds against bookings. The
// aggregate payment status is always derived from the recorded rows,
// never stored, so a timed-out write resolves itself on the next read.
type Service struct {
	payments paymentRepo
	bookings bookingReader
	locks    bookingLocker
	policy   config.Policy
	log      zerolog.Logger
	clock    domain.Clock
}

func NewService(payments paymentRepo, bookings bookingReader, locks bookingLocker, policy config.Policy, log *zerolog.Logger, clock domain.Clock) *Service {
	if clock == nil {
		clock = time.Now
	}
	logger := zerolog.Nop()
	if log != nil {
		logger = *log
	}
	return &Service{
		payments: payments,
		bookings: bookings,
		locks:    locks,
		policy:   policy,
		log:      logger,
		clock:    clock,
	}
}

func (s *Service) lockBooking(ctx context.Context, bookingID int64) (func(), error) {
	if s.locks == nil {
		return func() {}, nil
	}
	return s.locks.AcquireBooking(ctx, bookingID)
}

// RecordPayment posts a successful payment against a booking.
func (s *Service) RecordPayment(ctx context.Context, bookingID int64, amount decimal.Decimal, currency, method, gatewayRef string) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if currency == "" {
		currency = b.Currency
	}
	if !strings.EqualFold(currency, b.Currency) {
		return nil, &domain.ValidationError{Field: "currency", Reason: "does not match booking currency"}
	}
	currency = strings.ToUpper(currency)

	release, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer release()

	now := s.clock()
	p := &domain.Payment{
		ID:            uuid.NewString(),
		BookingID:     bookingID,
		Amount:        amount.RoundBank(2),
		Currency:      currency,
		Method:        method,
		Status:        domain.PaymentSucceeded,
		TransactionID: gatewayRef,
		PaidAt:        &now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.payments.CreatePayment(ctx, p); err != nil {
		return nil, err
	}

	metrics.IncPaymentRecorded(string(p.Status))
	s.log.Info().
		Int64("booking_id", bookingID).
		Str("payment_id", p.ID).
		Str("amount", p.Amount.StringFixed(2)).
		Msg("payment recorded")
	return p, nil
}

// RecordRefund posts a refund against a payment. The amount must not
// exceed the payment's remaining refundable balance; it is never
// clamped.
func (s *Service) RecordRefund(ctx context.Context, paymentID string, amount decimal.Decimal, reason string) (*domain.Refund, error) {
	if !amount.IsPositive() {
		return nil, &domain.ValidationError{Field: "amount", Reason: "must be positive"}
	}

	p, err := s.payments.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentSucceeded && p.Status != domain.PaymentRefundedPartial {
		return nil, &domain.ValidationError{Field: "payment", Reason: "only succeeded payments can be refunded"}
	}

	release, err := s.lockBooking(ctx, p.BookingID)
	if err != nil {
		return nil, err
	}
	defer release()

	return s.applyRefund(ctx, p, amount, reason)
}

// applyRefund assumes the booking lock is already held.
func (s *Service) applyRefund(ctx context.Context, p *domain.Payment, amount decimal.Decimal, reason string) (*domain.Refund, error) {
	refunds, err := s.payments.ListRefundsByPayment(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	refunded := decimal.Zero
	for _, r := range refunds {
		if r.Status == domain.RefundSucceeded {
			refunded = refunded.Add(r.Amount)
		}
	}

	refundable := p.Amount.Sub(refunded)
	if amount.GreaterThan(refundable) {
		return nil, &domain.InvalidRefundAmountError{PaymentID: p.ID, Requested: amount, Refundable: refundable}
	}

	now := s.clock()
	ref := &domain.Refund{
		ID:        uuid.NewString(),
		PaymentID: p.ID,
		Amount:    amount.RoundBank(2),
		Status:    domain.RefundSucceeded,
		Reason:    reason,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.payments.CreateRefund(ctx, ref); err != nil {
		return nil, err
	}

	status := domain.PaymentRefundedPartial
	if refunded.Add(amount).GreaterThanOrEqual(p.Amount) {
		status = domain.PaymentRefundedFull
	}
	if err := s.payments.UpdatePaymentStatus(ctx, p.ID, status, nil); err != nil {
		return nil, err
	}

	metrics.IncRefundRecorded()
	s.log.Info().
		Str("payment_id", p.ID).
		Str("refund_id", ref.ID).
		Str("amount", ref.Amount.StringFixed(2)).
		Msg("refund recorded")
	return ref, nil
}

// paidTotals sums the booking's gross succeeded payments and succeeded
// refunds.
func (s *Service) paidTotals(ctx context.Context, bookingID int64) (gross, refunded decimal.Decimal, err error) {
	payments, err := s.payments.ListByBooking(ctx, bookingID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	gross = decimal.Zero
	for _, p := range payments {
		switch p.Status {
		case domain.PaymentSucceeded, domain.PaymentRefundedPartial, domain.PaymentRefundedFull:
			gross = gross.Add(p.Amount)
		}
	}

	refunds, err := s.payments.ListRefundsByBooking(ctx, bookingID)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	refunded = decimal.Zero
	for _, r := range refunds {
		if r.Status == domain.RefundSucceeded {
			refunded = refunded.Add(r.Amount)
		}
	}
	return gross, refunded, nil
}

// AggregateStatus derives the booking's payment standing from its
// recorded payments and refunds.
func (s *Service) AggregateStatus(ctx context.Context, bookingID int64) (domain.AggregateStatus, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return "", err
	}

	gross, refunded, err := s.paidTotals(ctx, bookingID)
	if err != nil {
		return "", err
	}
	net := b.TotalAmount
	paid := gross.Sub(refunded)

	if refunded.IsPositive() && gross.GreaterThanOrEqual(net) {
		// The booking was fully paid at some point; refunds decide.
		switch {
		case !paid.IsPositive():
			return domain.AggregateFullyRefunded, nil
		case paid.LessThan(net):
			return domain.AggregatePartiallyRefunded, nil
		default:
			return domain.AggregatePaid, nil
		}
	}

	switch {
	case !paid.IsPositive():
		return domain.AggregateUnpaid, nil
	case paid.LessThan(net):
		return domain.AggregatePartiallyPaid, nil
	default:
		return domain.AggregatePaid, nil
	}
}

// SufficientToConfirm is the deposit gate the booking lifecycle
// delegates to: the paid balance must reach the configured percentage
// of the booking's net amount.
func (s *Service) SufficientToConfirm(ctx context.Context, bookingID int64) (bool, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return false, err
	}

	gross, refunded, err := s.paidTotals(ctx, bookingID)
	if err != nil {
		return false, err
	}
	required := b.TotalAmount.Mul(s.policy.DepositPercent.Decimal).Div(hundred)
	return gross.Sub(refunded).GreaterThanOrEqual(required), nil
}

// EvaluateCancellationRefund applies the lead-time refund policy to a
// cancelled booking, spreading the refund across its payments newest
// first.
func (s *Service) EvaluateCancellationRefund(ctx context.Context, b *domain.Booking, leadDays int) error {
	pct := s.policy.RefundPercent(leadDays)
	if !pct.IsPositive() {
		return nil
	}

	release, err := s.lockBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	defer release()

	gross, refunded, err := s.paidTotals(ctx, b.ID)
	if err != nil {
		return err
	}
	remaining := gross.Sub(refunded).Mul(pct).Div(hundred).RoundBank(2)
	if !remaining.IsPositive() {
		return nil
	}

	payments, err := s.payments.ListByBooking(ctx, b.ID)
	if err != nil {
		return err
	}
	for i := len(payments) - 1; i >= 0 && remaining.IsPositive(); i-- {
		p := payments[i]
		if p.Status != domain.PaymentSucceeded && p.Status != domain.PaymentRefundedPartial {
			continue
		}

		refunds, err := s.payments.ListRefundsByPayment(ctx, p.ID)
		if err != nil {
			return err
		}
		already := decimal.Zero
		for _, r := range refunds {
			if r.Status == domain.RefundSucceeded {
				already = already.Add(r.Amount)
			}
		}
		available := p.Amount.Sub(already)
		if !available.IsPositive() {
			continue
		}

		take := decimal.Min(available, remaining)
		if _, err := s.applyRefund(ctx, &p, take, "booking cancelled"); err != nil {
			return err
		}
		remaining = remaining.Sub(take)
	}
	return nil
}

// HandleGatewayEvent applies an inbound webhook delivery at most once,
// keyed by (transaction id, event type). A recognized replay is a
// no-op success. The dedup row and the payment write commit together,
// so a failed write stays retriable through the gateway's redelivery.
func (s *Service) HandleGatewayEvent(ctx context.Context, evt domain.GatewayEvent, raw []byte) (bool, error) {
	obj := evt.Data.Object
	if obj.ID == "" {
		return false, &domain.ValidationError{Field: "data.object.id", Reason: "transaction id is required"}
	}

	success, known := classifyEventType(evt.Type)
	if !known {
		s.log.Debug().Str("type", evt.Type).Msg("ignoring unhandled gateway event type")
		return false, nil
	}

	b, err := s.bookings.GetByID(ctx, obj.BookingID)
	if err != nil {
		return false, err
	}
	if obj.Currency != "" && !strings.EqualFold(obj.Currency, b.Currency) {
		return false, &domain.ValidationError{Field: "data.object.currency", Reason: "does not match booking currency"}
	}

	release, lockErr := s.lockBooking(ctx, obj.BookingID)
	if lockErr != nil {
		return false, lockErr
	}
	defer release()

	status := domain.PaymentFailed
	now := s.clock()
	var paidAt *time.Time
	if success {
		status = domain.PaymentSucceeded
		paidAt = &now
	}
	p := &domain.Payment{
		ID:              uuid.NewString(),
		BookingID:       obj.BookingID,
		Amount:          decimal.New(obj.Amount, -2),
		Currency:        b.Currency,
		Method:          obj.Method,
		Status:          status,
		TransactionID:   obj.ID,
		GatewayResponse: raw,
		PaidAt:          paidAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	applied, err := s.payments.ApplyGatewayEvent(ctx, evt.Type, raw, p)
	if err != nil {
		return false, err
	}
	if !applied {
		metrics.IncWebhookDuplicate()
		s.log.Info().Str("transaction_id", obj.ID).Str("type", evt.Type).Msg("duplicate gateway event ignored")
		return false, nil
	}

	metrics.IncPaymentRecorded(string(status))
	s.log.Info().
		Str("transaction_id", obj.ID).
		Int64("booking_id", obj.BookingID).
		Str("status", string(status)).
		Msg("gateway event applied")
	return true, nil
}

func classifyEventType(eventType string) (success, known bool) {
	switch eventType {
	case "payment_intent.succeeded", "charge.succeeded":
		return true, true
	case "payment_intent.payment_failed", "charge.failed":
		return false, true
	default:
		return false, false
	}
}
