package availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"innkeeper/internal/domain"
)

type MockRoomReader struct {
	mock.Mock
}

func (m *MockRoomReader) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomReader) GetType(ctx context.Context, id int64) (*domain.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomType), args.Error(1)
}

func (m *MockRoomReader) ListActiveByType(ctx context.Context, roomTypeID int64) ([]domain.Room, error) {
	args := m.Called(ctx, roomTypeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockConflictReader struct {
	mock.Mock
}

func (m *MockConflictReader) HasRoomConflict(ctx context.Context, roomID int64, from, to time.Time, excludeID int64) (bool, error) {
	args := m.Called(ctx, roomID, from, to, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockConflictReader) BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) ([]int64, error) {
	args := m.Called(ctx, roomTypeID, from, to, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func (m *MockConflictReader) CountUnassignedBlocking(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) (int64, error) {
	args := m.Called(ctx, roomTypeID, from, to, excludeID)
	return args.Get(0).(int64), args.Error(1)
}

type MockMaintenanceReader struct {
	mock.Mock
}

func (m *MockMaintenanceReader) HasBlockingWindow(ctx context.Context, roomID int64, from, to time.Time) (bool, error) {
	args := m.Called(ctx, roomID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockMaintenanceReader) BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time) ([]int64, error) {
	args := m.Called(ctx, roomTypeID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int64), args.Error(1)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 14, 0, 0, 0, time.UTC)
}

func activeRoom(id int64) *domain.Room {
	return &domain.Room{ID: id, RoomNumber: "101", RoomTypeID: 1, IsActive: true}
}

func TestIsRoomAvailable_NoConflicts(t *testing.T) {
	rooms := new(MockRoomReader)
	conflicts := new(MockConflictReader)
	maint := new(MockMaintenanceReader)

	rooms.On("GetByID", mock.Anything, int64(1)).Return(activeRoom(1), nil)
	maint.On("HasBlockingWindow", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(false, nil)
	conflicts.On("HasRoomConflict", mock.Anything, int64(1), mock.Anything, mock.Anything, int64(0)).Return(false, nil)

	service := NewService(rooms, conflicts, maint)
	ok, err := service.IsRoomAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 0)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsRoomAvailable_HalfOpenRange(t *testing.T) {
	// An existing stay [15th, 18th) blocks [17th, 20th) but a back-to-back
	// stay starting on the 18th goes through. The overlap decision lives
	// in the conflict reader; here we pin the questions the service asks.
	rooms := new(MockRoomReader)
	conflicts := new(MockConflictReader)
	maint := new(MockMaintenanceReader)

	rooms.On("GetByID", mock.Anything, int64(1)).Return(activeRoom(1), nil)
	maint.On("HasBlockingWindow", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(false, nil)

	overlapping := day(2026, 3, 17)
	backToBack := day(2026, 3, 18)
	conflicts.On("HasRoomConflict", mock.Anything, int64(1), overlapping, day(2026, 3, 20), int64(0)).Return(true, nil)
	conflicts.On("HasRoomConflict", mock.Anything, int64(1), backToBack, day(2026, 3, 20), int64(0)).Return(false, nil)

	service := NewService(rooms, conflicts, maint)

	ok, err := service.IsRoomAvailable(context.Background(), 1, overlapping, day(2026, 3, 20), 0)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = service.IsRoomAvailable(context.Background(), 1, backToBack, day(2026, 3, 20), 0)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsRoomAvailable_MaintenanceBlocks(t *testing.T) {
	rooms := new(MockRoomReader)
	conflicts := new(MockConflictReader)
	maint := new(MockMaintenanceReader)

	rooms.On("GetByID", mock.Anything, int64(1)).Return(activeRoom(1), nil)
	maint.On("HasBlockingWindow", mock.Anything, int64(1), mock.Anything, mock.Anything).Return(true, nil)

	service := NewService(rooms, conflicts, maint)
	ok, err := service.IsRoomAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 0)

	require.NoError(t, err)
	assert.False(t, ok)
	conflicts.AssertNotCalled(t, "HasRoomConflict")
}

func TestIsRoomAvailable_InactiveRoom(t *testing.T) {
	rooms := new(MockRoomReader)
	rooms.On("GetByID", mock.Anything, int64(1)).Return(&domain.Room{ID: 1, RoomNumber: "101", IsActive: false}, nil)

	service := NewService(rooms, new(MockConflictReader), new(MockMaintenanceReader))
	_, err := service.IsRoomAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 0)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestIsRoomAvailable_InvertedRange(t *testing.T) {
	service := NewService(new(MockRoomReader), new(MockConflictReader), new(MockMaintenanceReader))
	_, err := service.IsRoomAvailable(context.Background(), 1, day(2026, 3, 18), day(2026, 3, 15), 0)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestIsTypeAvailable_CountsBlockedAndUnassigned(t *testing.T) {
	rooms := new(MockRoomReader)
	conflicts := new(MockConflictReader)
	maint := new(MockMaintenanceReader)

	rooms.On("GetType", mock.Anything, int64(1)).Return(&domain.RoomType{ID: 1, Code: "STD", IsActive: true}, nil)
	rooms.On("ListActiveByType", mock.Anything, int64(1)).Return([]domain.Room{
		{ID: 1, IsActive: true}, {ID: 2, IsActive: true}, {ID: 3, IsActive: true}, {ID: 4, IsActive: true},
	}, nil)
	conflicts.On("BlockedRoomIDs", mock.Anything, int64(1), mock.Anything, mock.Anything, int64(0)).Return([]int64{1}, nil)
	maint.On("BlockedRoomIDs", mock.Anything, int64(1), mock.Anything, mock.Anything).Return([]int64{2}, nil)
	conflicts.On("CountUnassignedBlocking", mock.Anything, int64(1), mock.Anything, mock.Anything, int64(0)).Return(int64(1), nil)

	service := NewService(rooms, conflicts, maint)

	// 4 active - 2 blocked - 1 unassigned = 1 free.
	ok, err := service.IsTypeAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 1, 0)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = service.IsTypeAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 2, 0)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestIsTypeAvailable_DoubleBlockedRoomCountedOnce(t *testing.T) {
	rooms := new(MockRoomReader)
	conflicts := new(MockConflictReader)
	maint := new(MockMaintenanceReader)

	rooms.On("GetType", mock.Anything, int64(1)).Return(&domain.RoomType{ID: 1, Code: "STD", IsActive: true}, nil)
	rooms.On("ListActiveByType", mock.Anything, int64(1)).Return([]domain.Room{
		{ID: 1, IsActive: true}, {ID: 2, IsActive: true},
	}, nil)
	// Room 1 is blocked both by a booking and by maintenance.
	conflicts.On("BlockedRoomIDs", mock.Anything, int64(1), mock.Anything, mock.Anything, int64(0)).Return([]int64{1}, nil)
	maint.On("BlockedRoomIDs", mock.Anything, int64(1), mock.Anything, mock.Anything).Return([]int64{1}, nil)
	conflicts.On("CountUnassignedBlocking", mock.Anything, int64(1), mock.Anything, mock.Anything, int64(0)).Return(int64(0), nil)

	service := NewService(rooms, conflicts, maint)
	ok, err := service.IsTypeAvailable(context.Background(), 1, day(2026, 3, 15), day(2026, 3, 18), 1, 0)

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestIsTypeAvailable_InactiveType(t *testing.T) {
	rooms := new(MockRoomReader)
	rooms.On("GetType", mock.Anything, int64(9)).Return(&domain.RoomType{ID: 9, Code: "OLD", IsActive: false}, nil)

	service := NewService(rooms, new(MockConflictReader), new(MockMaintenanceReader))
	_, err := service.IsTypeAvailable(context.Background(), 9, day(2026, 3, 15), day(2026, 3, 18), 1, 0)

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
}
