package booking

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/config"
	"innkeeper/internal/domain"
	"innkeeper/internal/modules/pricing"
)

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if b != nil {
		b.ID = 42
		b.BookingNumber = "BK-2026-000042"
	}
	return args.Error(0)
}

func (m *MockBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, guestID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockBookingRepository) MarkCheckedOut(ctx context.Context, id int64, at time.Time, notes string) error {
	args := m.Called(ctx, id, at, notes)
	return args.Error(0)
}

func (m *MockBookingRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *MockBookingRepository) MaterializeNights(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepository) ReleaseNights(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingRepository) ClearRoomAssignments(ctx context.Context, bookingID int64) error {
	args := m.Called(ctx, bookingID)
	return args.Error(0)
}

func (m *MockBookingRepository) HasRoomConflict(ctx context.Context, roomID int64, from, to time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, roomID, from, to, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) DueNoShow(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomRepository) GetType(ctx context.Context, id int64) (*domain.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomType), args.Error(1)
}

func (m *MockRoomRepository) UpdateStatuses(ctx context.Context, roomIDs []int64, status domain.RoomStatus) error {
	args := m.Called(ctx, roomIDs, status)
	return args.Error(0)
}

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) IsTypeAvailable(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, roomsWanted int, excludeBookingID int64) (bool, error) {
	args := m.Called(ctx, roomTypeID, checkIn, checkOut, roomsWanted, excludeBookingID)
	return args.Bool(0), args.Error(1)
}

type MockPaymentGate struct {
	mock.Mock
}

func (m *MockPaymentGate) SufficientToConfirm(ctx context.Context, bookingID int64) (bool, error) {
	args := m.Called(ctx, bookingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentGate) EvaluateCancellationRefund(ctx context.Context, b *domain.Booking, leadDays int) error {
	args := m.Called(ctx, b, leadDays)
	return args.Error(0)
}

func testPolicy() config.Policy {
	return config.Policy{
		DepositPercent: config.Dec(decimal.NewFromInt(20)),
		RefundSchedule: []config.RefundRule{
			{MinLeadDays: 7, Percent: config.Dec(decimal.NewFromInt(100))},
			{MinLeadDays: 2, Percent: config.Dec(decimal.NewFromInt(50))},
		},
		CheckInHour:  14,
		CheckOutHour: 11,
	}
}

func fixedClock(t time.Time) domain.Clock {
	return func() time.Time { return t }
}

func newTestService(bookings *MockBookingRepository, rooms *MockRoomRepository, avail *MockAvailability, gate *MockPaymentGate, clock domain.Clock) *Service {
	pricingSvc := pricing.NewService(config.Pricing{
		Currency:       "EUR",
		CityTaxPercent: config.Dec(decimal.NewFromInt(5)),
		VATPercent:     config.Dec(decimal.NewFromInt(7)),
	})
	return NewService(bookings, rooms, avail, pricingSvc, gate, nil, testPolicy(), nil, clock)
}

func TestCreate_FreezesPricingAndStartsPending(t *testing.T) {
	bookings := new(MockBookingRepository)
	rooms := new(MockRoomRepository)
	avail := new(MockAvailability)
	gate := new(MockPaymentGate)

	rooms.On("GetType", mock.Anything, int64(1)).Return(&domain.RoomType{
		ID: 1, Code: "STD", MaxOccupancy: 2, BasePrice: decimal.NewFromInt(1000), IsActive: true,
	}, nil)
	avail.On("IsTypeAvailable", mock.Anything, int64(1), mock.Anything, mock.Anything, 1, int64(0)).Return(true, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	service := newTestService(bookings, rooms, avail, gate, fixedClock(now))

	b, err := service.Create(context.Background(), CreateBookingRequest{
		GuestID:    7,
		RoomTypeID: 1,
		CheckIn:    "2026-03-10",
		CheckOut:   "2026-03-13",
		Adults:     2,
	}, 99)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, "BK-2026-000042", b.BookingNumber)
	// 3 nights x 1000 plus 5% city tax and 7% VAT.
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(3360)), "total %s", b.TotalAmount)
	assert.True(t, b.TaxAmount.Equal(decimal.NewFromInt(360)))
	assert.True(t, b.RoomRate.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(99), b.CreatedBy)
	// Check-in lands at the house hour.
	assert.Equal(t, 14, b.CheckInDate.Hour())
	assert.Equal(t, 11, b.CheckOutDate.Hour())
}

func TestCreate_FreezesSeasonalRateForType(t *testing.T) {
	bookings := new(MockBookingRepository)
	rooms := new(MockRoomRepository)
	avail := new(MockAvailability)
	gate := new(MockPaymentGate)

	rooms.On("GetType", mock.Anything, int64(1)).Return(&domain.RoomType{
		ID: 1, Code: "STD", MaxOccupancy: 2, BasePrice: decimal.NewFromInt(1000),
		SeasonalPricing: map[string]decimal.Decimal{"summer": decimal.NewFromFloat(1.25)},
		IsActive:        true,
	}, nil)
	avail.On("IsTypeAvailable", mock.Anything, int64(1), mock.Anything, mock.Anything, 1, int64(0)).Return(true, nil)
	bookings.On("Create", mock.Anything, mock.Anything).Return(nil)

	pricingSvc := pricing.NewService(config.Pricing{
		Currency: "EUR",
		Seasons: []config.Season{
			{Label: "summer", From: "06-01", To: "09-01"},
		},
	})
	service := NewService(bookings, rooms, avail, pricingSvc, gate, nil, testPolicy(), nil, fixedClock(time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)))

	b, err := service.Create(context.Background(), CreateBookingRequest{
		GuestID:    7,
		RoomTypeID: 1,
		CheckIn:    "2026-07-10",
		CheckOut:   "2026-07-12",
		Adults:     2,
	}, 99)

	require.NoError(t, err)
	// 2 summer nights at 1000 x 1.25, no taxes configured.
	assert.True(t, b.TotalAmount.Equal(decimal.NewFromInt(2500)), "total %s", b.TotalAmount)
	assert.True(t, b.RoomRate.Equal(decimal.NewFromInt(1250)))
}

func TestCreate_NoInventory(t *testing.T) {
	bookings := new(MockBookingRepository)
	rooms := new(MockRoomRepository)
	avail := new(MockAvailability)
	gate := new(MockPaymentGate)

	rooms.On("GetType", mock.Anything, int64(1)).Return(&domain.RoomType{
		ID: 1, Code: "STD", MaxOccupancy: 2, BasePrice: decimal.NewFromInt(1000), IsActive: true,
	}, nil)
	avail.On("IsTypeAvailable", mock.Anything, int64(1), mock.Anything, mock.Anything, 1, int64(0)).Return(false, nil)

	service := newTestService(bookings, rooms, avail, gate, nil)
	_, err := service.Create(context.Background(), CreateBookingRequest{
		GuestID: 7, RoomTypeID: 1, CheckIn: "2026-03-10", CheckOut: "2026-03-13", Adults: 2,
	}, 0)

	var unavail *domain.RoomUnavailableError
	require.ErrorAs(t, err, &unavail)
	assert.Equal(t, int64(1), unavail.RoomTypeID)
	bookings.AssertNotCalled(t, "Create")
}

func TestConfirm_RequiresSufficientPayment(t *testing.T) {
	bookings := new(MockBookingRepository)
	gate := new(MockPaymentGate)

	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingPending, TotalAmount: decimal.NewFromInt(3360),
	}, nil)
	gate.On("SufficientToConfirm", mock.Anything, int64(5)).Return(false, nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), gate, nil)
	_, err := service.Confirm(context.Background(), 5)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "payment", verr.Field)
	bookings.AssertNotCalled(t, "UpdateStatus")
}

func TestConfirm_MaterializesNightsForAssignedRooms(t *testing.T) {
	bookings := new(MockBookingRepository)
	gate := new(MockPaymentGate)

	b := &domain.Booking{ID: 5, Status: domain.BookingPending, RoomIDs: []int64{3}}
	bookings.On("GetByID", mock.Anything, int64(5)).Return(b, nil)
	gate.On("SufficientToConfirm", mock.Anything, int64(5)).Return(true, nil)
	bookings.On("MaterializeNights", mock.Anything, b).Return(nil)
	bookings.On("UpdateStatus", mock.Anything, int64(5), domain.BookingConfirmed).Return(nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), gate, nil)
	out, err := service.Confirm(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, out.Status)
	bookings.AssertExpectations(t)
}

func TestCheckIn_FromPendingFails(t *testing.T) {
	bookings := new(MockBookingRepository)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingPending,
	}, nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), nil)
	_, err := service.CheckIn(context.Background(), 5, nil)

	var trans *domain.InvalidTransitionError
	require.ErrorAs(t, err, &trans)
	assert.Equal(t, domain.BookingPending, trans.From)
	bookings.AssertNotCalled(t, "MarkCheckedIn")
}

func TestCheckIn_RequiresAssignedRooms(t *testing.T) {
	bookings := new(MockBookingRepository)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingConfirmed,
	}, nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), nil)
	_, err := service.CheckIn(context.Background(), 5, nil)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "rooms", verr.Field)
}

func TestCheckIn_MarksRoomsOccupied(t *testing.T) {
	bookings := new(MockBookingRepository)
	rooms := new(MockRoomRepository)

	checkIn := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	checkOut := time.Date(2026, 3, 13, 11, 0, 0, 0, time.UTC)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingConfirmed, RoomIDs: []int64{3},
		CheckInDate: checkIn, CheckOutDate: checkOut,
	}, nil)
	rooms.On("GetByID", mock.Anything, int64(3)).Return(&domain.Room{
		ID: 3, Status: domain.RoomAvailable, IsActive: true,
	}, nil)
	bookings.On("HasRoomConflict", mock.Anything, int64(3), checkIn, checkOut, int64(5)).Return(false, nil)

	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	bookings.On("MarkCheckedIn", mock.Anything, int64(5), now).Return(nil)
	rooms.On("UpdateStatuses", mock.Anything, []int64{3}, domain.RoomOccupied).Return(nil)

	service := newTestService(bookings, rooms, new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	out, err := service.CheckIn(context.Background(), 5, nil)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedIn, out.Status)
	require.NotNil(t, out.ActualCheckIn)
	assert.True(t, out.ActualCheckIn.Equal(now))
	bookings.AssertExpectations(t)
	rooms.AssertExpectations(t)
}

func TestCheckOut_SendsRoomsToCleaning(t *testing.T) {
	bookings := new(MockBookingRepository)
	rooms := new(MockRoomRepository)

	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingCheckedIn, RoomIDs: []int64{3, 4},
	}, nil)
	now := time.Date(2026, 3, 13, 10, 0, 0, 0, time.UTC)
	bookings.On("MarkCheckedOut", mock.Anything, int64(5), now, "minibar restocked").Return(nil)
	bookings.On("ReleaseNights", mock.Anything, int64(5)).Return(nil)
	rooms.On("UpdateStatuses", mock.Anything, []int64{3, 4}, domain.RoomCleaning).Return(nil)

	service := newTestService(bookings, rooms, new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	out, err := service.CheckOut(context.Background(), 5, nil, "minibar restocked")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCheckedOut, out.Status)
	rooms.AssertExpectations(t)
}

func TestCancel_EvaluatesRefundWithLeadDays(t *testing.T) {
	bookings := new(MockBookingRepository)
	gate := new(MockPaymentGate)

	checkIn := time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC)
	b := &domain.Booking{ID: 5, Status: domain.BookingConfirmed, CheckInDate: checkIn}
	bookings.On("GetByID", mock.Anything, int64(5)).Return(b, nil)
	bookings.On("CancelWithReason", mock.Anything, int64(5), "change of plans").Return(nil)
	bookings.On("ClearRoomAssignments", mock.Anything, int64(5)).Return(nil)

	// 10 days ahead of check-in.
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	gate.On("EvaluateCancellationRefund", mock.Anything, b, 10).Return(nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), gate, fixedClock(now))
	out, err := service.Cancel(context.Background(), 5, "change of plans")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, out.Status)
	assert.Equal(t, "change of plans", out.CancellationReason)
	gate.AssertExpectations(t)
}

func TestCancel_FromCheckedInFails(t *testing.T) {
	bookings := new(MockBookingRepository)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingCheckedIn,
	}, nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), nil)
	_, err := service.Cancel(context.Background(), 5, "too late")

	var trans *domain.InvalidTransitionError
	require.ErrorAs(t, err, &trans)
	bookings.AssertNotCalled(t, "CancelWithReason")
}

func TestMarkNoShow_BeforeDayElapsedFails(t *testing.T) {
	bookings := new(MockBookingRepository)
	checkIn := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingConfirmed, CheckInDate: checkIn,
	}, nil)

	// Still the evening of the check-in day.
	now := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	_, err := service.MarkNoShow(context.Background(), 5)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	bookings.AssertNotCalled(t, "UpdateStatus")
}

func TestMarkNoShow_AfterMidnight(t *testing.T) {
	bookings := new(MockBookingRepository)
	checkIn := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingConfirmed, CheckInDate: checkIn, RoomIDs: []int64{3},
	}, nil)
	bookings.On("UpdateStatus", mock.Anything, int64(5), domain.BookingNoShow).Return(nil)
	bookings.On("ClearRoomAssignments", mock.Anything, int64(5)).Return(nil)

	now := time.Date(2026, 3, 11, 0, 5, 0, 0, time.UTC)
	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	out, err := service.MarkNoShow(context.Background(), 5)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingNoShow, out.Status)
	assert.Empty(t, out.RoomIDs)
}

func TestMarkNoShow_GuestAlreadyArrived(t *testing.T) {
	bookings := new(MockBookingRepository)
	arrived := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)
	bookings.On("GetByID", mock.Anything, int64(5)).Return(&domain.Booking{
		ID: 5, Status: domain.BookingConfirmed,
		CheckInDate:   time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		ActualCheckIn: &arrived,
	}, nil)

	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)
	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	_, err := service.MarkNoShow(context.Background(), 5)

	var trans *domain.InvalidTransitionError
	require.ErrorAs(t, err, &trans)
}

func TestSweepNoShows_SkipsFailedBookings(t *testing.T) {
	bookings := new(MockBookingRepository)
	checkIn := time.Date(2026, 3, 8, 14, 0, 0, 0, time.UTC)
	due := []domain.Booking{
		{ID: 1, Status: domain.BookingConfirmed, CheckInDate: checkIn},
		{ID: 2, Status: domain.BookingConfirmed, CheckInDate: checkIn},
	}
	now := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	cutoff := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

	bookings.On("DueNoShow", mock.Anything, cutoff).Return(due, nil)
	bookings.On("GetByID", mock.Anything, int64(1)).Return(&due[0], nil)
	bookings.On("GetByID", mock.Anything, int64(2)).Return(&due[1], nil)
	bookings.On("UpdateStatus", mock.Anything, int64(1), domain.BookingNoShow).Return(nil)
	bookings.On("UpdateStatus", mock.Anything, int64(2), domain.BookingNoShow).Return(assert.AnError)
	bookings.On("ClearRoomAssignments", mock.Anything, int64(1)).Return(nil)

	service := newTestService(bookings, new(MockRoomRepository), new(MockAvailability), new(MockPaymentGate), fixedClock(now))
	swept, err := service.SweepNoShows(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, swept)
}
