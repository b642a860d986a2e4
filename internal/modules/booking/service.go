package booking

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"innkeeper/internal/config"
	"innkeeper/internal/domain"
	"innkeeper/internal/metrics"
	"innkeeper/internal/modules/pricing"
)

// Service owns the booking lifecycle: every status transition goes
// through here, and the frozen price breakdown is written exactly once
// at creation.
type Service struct {
	bookings     BookingRepository
	rooms        RoomRepository
	availability AvailabilityChecker
	pricing      Quoter
	payments     PaymentGate
	events       EventSender
	policy       config.Policy
	log          zerolog.Logger
	clock        domain.Clock
}

func NewService(
	bookings BookingRepository,
	rooms RoomRepository,
	availability AvailabilityChecker,
	quoter Quoter,
	payments PaymentGate,
	events EventSender,
	policy config.Policy,
	log *zerolog.Logger,
	clock domain.Clock,
) *Service {
	if clock == nil {
		clock = time.Now
	}
	logger := zerolog.Nop()
	if log != nil {
		logger = *log
	}
	return &Service{
		bookings:     bookings,
		rooms:        rooms,
		availability: availability,
		pricing:      quoter,
		payments:     payments,
		events:       events,
		policy:       policy,
		log:          logger,
		clock:        clock,
	}
}

// Create enters a new booking in PENDING with its pricing frozen. Only
// type-level availability is required; concrete rooms come later.
func (s *Service) Create(ctx context.Context, req CreateBookingRequest, actorID int64) (*domain.Booking, error) {
	checkIn, err := parseStayDate(req.CheckIn, s.policy.CheckInHour)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseStayDate(req.CheckOut, s.policy.CheckOutHour)
	if err != nil {
		return nil, err
	}
	if !checkOut.After(checkIn) {
		return nil, &domain.ValidationError{Field: "check_out", Reason: "must be after check-in"}
	}

	rt, err := s.rooms.GetType(ctx, req.RoomTypeID)
	if err != nil {
		return nil, err
	}

	ok, err := s.availability.IsTypeAvailable(ctx, rt.ID, checkIn, checkOut, 1, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.RoomUnavailableError{RoomTypeID: rt.ID, CheckIn: checkIn, CheckOut: checkOut}
	}

	quote, err := s.pricing.Quote(pricing.QuoteInput{
		BasePrice:       rt.BasePrice,
		SeasonalPricing: rt.SeasonalPricing,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          req.Adults + req.Children,
		MaxOccupancy:    rt.MaxOccupancy,
		Discount:        req.Discount.toDiscount(),
		ServiceCharges:  req.ServiceCharges,
	})
	if err != nil {
		return nil, err
	}

	now := s.clock()
	b := &domain.Booking{
		GuestID:         req.GuestID,
		RoomTypeID:      rt.ID,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Adults:          req.Adults,
		Children:        req.Children,
		SpecialRequests: req.SpecialRequests,
		Status:          domain.BookingPending,
		RoomRate:        quote.RoomRate,
		TotalAmount:     quote.NetAmount,
		TaxAmount:       quote.TaxAmount(),
		ServiceCharges:  quote.ServiceCharges,
		DiscountAmount:  quote.DiscountAmount,
		Currency:        quote.Currency,
		CreatedAt:       now,
		UpdatedAt:       now,
		CreatedBy:       actorID,
		UpdatedBy:       actorID,
	}

	if err := s.bookings.Create(ctx, b); err != nil {
		return nil, err
	}

	metrics.IncBookingTransition(string(domain.BookingPending))
	s.log.Info().
		Int64("booking_id", b.ID).
		Str("booking_number", b.BookingNumber).
		Str("net_amount", b.TotalAmount.StringFixed(2)).
		Msg("booking created")
	s.notifyBooking(b)
	return b, nil
}

// Confirm moves PENDING to CONFIRMED once the reconciliation service
// reports a sufficient payment.
func (s *Service) Confirm(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "confirm"}
	}

	sufficient, err := s.payments.SufficientToConfirm(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sufficient {
		return nil, &domain.ValidationError{Field: "payment", Reason: "insufficient payment to confirm booking"}
	}

	// The overbooking guard rows go in first; if another blocking
	// booking won the rooms in the meantime, status stays PENDING.
	b.Status = domain.BookingConfirmed
	if len(b.RoomIDs) > 0 {
		if err := s.bookings.MaterializeNights(ctx, b); err != nil {
			return nil, err
		}
	}
	if err := s.bookings.UpdateStatus(ctx, id, domain.BookingConfirmed); err != nil {
		_ = s.bookings.ReleaseNights(ctx, id)
		return nil, err
	}

	metrics.IncBookingTransition(string(domain.BookingConfirmed))
	s.log.Info().Int64("booking_id", id).Msg("booking confirmed")
	s.notifyBooking(b)
	return b, nil
}

// CheckIn moves CONFIRMED to CHECKED_IN, requires assigned rooms, and
// flips them to OCCUPIED. A nil actualTime defaults to the clock.
func (s *Service) CheckIn(ctx context.Context, id int64, actualTime *time.Time) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingConfirmed {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "check_in"}
	}
	if len(b.RoomIDs) == 0 {
		return nil, &domain.ValidationError{Field: "rooms", Reason: "no rooms assigned to booking"}
	}

	for _, roomID := range b.RoomIDs {
		room, err := s.rooms.GetByID(ctx, roomID)
		if err != nil {
			return nil, err
		}
		if room.Status == domain.RoomOccupied {
			return nil, &domain.RoomUnavailableError{RoomID: roomID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
		}
		conflict, err := s.bookings.HasRoomConflict(ctx, roomID, b.CheckInDate, b.CheckOutDate, b.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, &domain.RoomUnavailableError{RoomID: roomID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
		}
	}

	at := s.clock()
	if actualTime != nil {
		at = *actualTime
	}
	if err := s.bookings.MarkCheckedIn(ctx, id, at); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateStatuses(ctx, b.RoomIDs, domain.RoomOccupied); err != nil {
		return nil, err
	}

	b.Status = domain.BookingCheckedIn
	b.ActualCheckIn = &at
	metrics.IncBookingTransition(string(domain.BookingCheckedIn))
	s.log.Info().Int64("booking_id", id).Time("at", at).Msg("guest checked in")
	s.notifyBooking(b)
	for _, roomID := range b.RoomIDs {
		s.notifyRoom(roomID, domain.RoomOccupied)
	}
	return b, nil
}

// CheckOut moves CHECKED_IN to CHECKED_OUT and hands the rooms to
// housekeeping (CLEANING, never straight back to AVAILABLE).
func (s *Service) CheckOut(ctx context.Context, id int64, actualTime *time.Time, notes string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingCheckedIn {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "check_out"}
	}

	at := s.clock()
	if actualTime != nil {
		at = *actualTime
	}
	if err := s.bookings.MarkCheckedOut(ctx, id, at, notes); err != nil {
		return nil, err
	}
	if err := s.bookings.ReleaseNights(ctx, id); err != nil {
		return nil, err
	}
	if err := s.rooms.UpdateStatuses(ctx, b.RoomIDs, domain.RoomCleaning); err != nil {
		return nil, err
	}

	b.Status = domain.BookingCheckedOut
	b.ActualCheckOut = &at
	if notes != "" {
		b.Notes = notes
	}
	metrics.IncBookingTransition(string(domain.BookingCheckedOut))
	s.log.Info().Int64("booking_id", id).Time("at", at).Msg("guest checked out")
	s.notifyBooking(b)
	for _, roomID := range b.RoomIDs {
		s.notifyRoom(roomID, domain.RoomCleaning)
	}
	return b, nil
}

// Cancel is allowed from PENDING and CONFIRMED. Room bindings are
// released and the refund policy is evaluated by reconciliation.
func (s *Service) Cancel(ctx context.Context, id int64, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingPending && b.Status != domain.BookingConfirmed {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "cancel"}
	}

	if err := s.bookings.CancelWithReason(ctx, id, reason); err != nil {
		return nil, err
	}
	if err := s.bookings.ClearRoomAssignments(ctx, id); err != nil {
		return nil, err
	}

	leadDays := int(b.CheckInDate.Sub(s.clock()).Hours() / 24)
	if leadDays < 0 {
		leadDays = 0
	}
	if err := s.payments.EvaluateCancellationRefund(ctx, b, leadDays); err != nil {
		// The cancellation itself already stuck; refunds can be
		// replayed from the recorded payments.
		s.log.Error().Err(err).Int64("booking_id", id).Msg("refund evaluation failed")
	}

	b.Status = domain.BookingCancelled
	b.CancellationReason = reason
	b.RoomIDs = nil
	metrics.IncBookingTransition(string(domain.BookingCancelled))
	s.log.Info().Int64("booking_id", id).Str("reason", reason).Msg("booking cancelled")
	s.notifyBooking(b)
	return b, nil
}

// MarkNoShow moves CONFIRMED to NO_SHOW once the check-in date has
// fully elapsed without an actual check-in.
func (s *Service) MarkNoShow(ctx context.Context, id int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.Status != domain.BookingConfirmed {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "mark_no_show"}
	}
	if b.ActualCheckIn != nil {
		return nil, &domain.InvalidTransitionError{BookingID: id, From: b.Status, Attempted: "mark_no_show"}
	}

	// Fully elapsed means midnight after the check-in date has passed.
	d := b.CheckInDate
	endOfCheckInDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location()).AddDate(0, 0, 1)
	if s.clock().Before(endOfCheckInDay) {
		return nil, &domain.ValidationError{Field: "check_in_date", Reason: "check-in date has not fully elapsed"}
	}

	if err := s.bookings.UpdateStatus(ctx, id, domain.BookingNoShow); err != nil {
		return nil, err
	}
	if err := s.bookings.ClearRoomAssignments(ctx, id); err != nil {
		return nil, err
	}

	b.Status = domain.BookingNoShow
	b.RoomIDs = nil
	metrics.IncBookingTransition(string(domain.BookingNoShow))
	s.log.Info().Int64("booking_id", id).Msg("booking marked no-show")
	s.notifyBooking(b)
	return b, nil
}

// SweepNoShows marks every lapsed confirmed booking as NO_SHOW and
// returns how many it processed. Intended for a periodic external
// sweep.
func (s *Service) SweepNoShows(ctx context.Context) (int, error) {
	now := s.clock()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	due, err := s.bookings.DueNoShow(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	marked := 0
	for i := range due {
		if _, err := s.MarkNoShow(ctx, due[i].ID); err != nil {
			s.log.Error().Err(err).Int64("booking_id", due[i].ID).Msg("no-show sweep skipped booking")
			continue
		}
		marked++
	}
	return marked, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

func (s *Service) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	return s.bookings.GetByNumber(ctx, number)
}

func (s *Service) ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bookings.ListByGuest(ctx, guestID, limit, offset)
}

// QuoteForType prices a prospective stay without creating anything.
func (s *Service) QuoteForType(ctx context.Context, req QuoteRequest) (*pricing.Breakdown, error) {
	checkIn, err := parseStayDate(req.CheckIn, s.policy.CheckInHour)
	if err != nil {
		return nil, err
	}
	checkOut, err := parseStayDate(req.CheckOut, s.policy.CheckOutHour)
	if err != nil {
		return nil, err
	}

	in := pricing.QuoteInput{
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		Guests:         req.Guests,
		Discount:       req.Discount.toDiscount(),
		ServiceCharges: req.ServiceCharges,
	}

	switch {
	case req.RoomID != 0:
		room, err := s.rooms.GetByID(ctx, req.RoomID)
		if err != nil {
			return nil, err
		}
		in.BasePrice = room.BasePrice
		in.SeasonalPricing = room.SeasonalPricing
		in.MaxOccupancy = room.MaxOccupancy
	case req.RoomTypeID != 0:
		rt, err := s.rooms.GetType(ctx, req.RoomTypeID)
		if err != nil {
			return nil, err
		}
		in.BasePrice = rt.BasePrice
		in.SeasonalPricing = rt.SeasonalPricing
		in.MaxOccupancy = rt.MaxOccupancy
	default:
		return nil, &domain.ValidationError{Field: "room_id", Reason: "room_id or room_type_id is required"}
	}

	return s.pricing.Quote(in)
}

func (s *Service) notifyBooking(b *domain.Booking) {
	if s.events != nil {
		s.events.NotifyBookingStatus(b.ID, b.BookingNumber, b.Status)
	}
}

func (s *Service) notifyRoom(roomID int64, status domain.RoomStatus) {
	if s.events != nil {
		s.events.NotifyRoomStatus(roomID, status)
	}
}
