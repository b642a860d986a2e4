package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"innkeeper/internal/domain"
)

const dateFormat = "2006-01-02"

var blockingStatuses = []string{string(domain.BookingConfirmed), string(domain.BookingCheckedIn)}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func toDomainBooking(m bookingModel, roomIDs []int64) *domain.Booking {
	var special, reason, notes string
	if m.SpecialRequests != nil {
		special = *m.SpecialRequests
	}
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}
	if m.Notes != nil {
		notes = *m.Notes
	}

	return &domain.Booking{
		ID:                 m.ID,
		BookingNumber:      m.BookingNumber,
		GuestID:            m.GuestID,
		RoomTypeID:         m.RoomTypeID,
		RoomIDs:            roomIDs,
		CheckInDate:        m.CheckInDate,
		CheckOutDate:       m.CheckOutDate,
		ActualCheckIn:      m.ActualCheckIn,
		ActualCheckOut:     m.ActualCheckOut,
		Adults:             m.Adults,
		Children:           m.Children,
		SpecialRequests:    special,
		Status:             domain.BookingStatus(m.Status),
		RoomRate:           m.RoomRate,
		TotalAmount:        m.TotalAmount,
		TaxAmount:          m.TaxAmount,
		ServiceCharges:     m.ServiceCharges,
		DiscountAmount:     m.DiscountAmount,
		Currency:           m.Currency,
		CancellationReason: reason,
		Notes:              notes,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		CreatedBy:          m.CreatedBy,
		UpdatedBy:          m.UpdatedBy,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	optional := func(s string) *string {
		if s == "" {
			return nil
		}
		v := s
		return &v
	}

	return bookingModel{
		ID:                 b.ID,
		BookingNumber:      b.BookingNumber,
		GuestID:            b.GuestID,
		RoomTypeID:         b.RoomTypeID,
		CheckInDate:        b.CheckInDate,
		CheckOutDate:       b.CheckOutDate,
		ActualCheckIn:      b.ActualCheckIn,
		ActualCheckOut:     b.ActualCheckOut,
		Adults:             b.Adults,
		Children:           b.Children,
		SpecialRequests:    optional(b.SpecialRequests),
		Status:             string(b.Status),
		RoomRate:           b.RoomRate,
		TotalAmount:        b.TotalAmount,
		TaxAmount:          b.TaxAmount,
		ServiceCharges:     b.ServiceCharges,
		DiscountAmount:     b.DiscountAmount,
		Currency:           b.Currency,
		CancellationReason: optional(b.CancellationReason),
		Notes:              optional(b.Notes),
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		CreatedBy:          b.CreatedBy,
		UpdatedBy:          b.UpdatedBy,
	}
}

// stayNights lists the stay dates of [checkIn, checkOut) as YYYY-MM-DD
// strings, one per night.
func stayNights(checkIn, checkOut time.Time) []string {
	start := time.Date(checkIn.Year(), checkIn.Month(), checkIn.Day(), 0, 0, 0, 0, time.UTC)
	end := time.Date(checkOut.Year(), checkOut.Month(), checkOut.Day(), 0, 0, 0, 0, time.UTC)

	var out []string
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		out = append(out, d.Format(dateFormat))
	}
	return out
}

// Create persists a new booking and issues its booking number from the
// per-year sequence, both inside one transaction.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		year := b.CreatedAt.Year()
		seq, err := nextSequence(tx, year)
		if err != nil {
			return fmt.Errorf("issue booking number: %w", err)
		}
		b.BookingNumber = fmt.Sprintf("BK-%04d-%06d", year, seq)

		m := toBookingModel(b)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		b.ID = m.ID
		b.CreatedAt = m.CreatedAt
		b.UpdatedAt = m.UpdatedAt
		return nil
	})
}

func nextSequence(tx *gorm.DB, year int) (int64, error) {
	res := tx.Model(&bookingSequenceModel{}).
		Where("year = ?", year).
		UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&bookingSequenceModel{Year: year, LastSeq: 1}).Error; err != nil {
			if !isUniqueViolation(err) {
				return 0, err
			}
			// Lost the first-insert race; bump the row the winner created.
			res = tx.Model(&bookingSequenceModel{}).
				Where("year = ?", year).
				UpdateColumn("last_seq", gorm.Expr("last_seq + 1"))
			if res.Error != nil {
				return 0, res.Error
			}
		} else {
			return 1, nil
		}
	}

	var m bookingSequenceModel
	if err := tx.First(&m, "year = ?", year).Error; err != nil {
		return 0, err
	}
	return m.LastSeq, nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "booking", ID: strconv.FormatInt(id, 10)}
		}
		return nil, err
	}
	roomIDs, err := r.AssignedRoomIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m, roomIDs), nil
}

func (r *BookingRepository) GetByNumber(ctx context.Context, number string) (*domain.Booking, error) {
	var m bookingModel
	if err := r.db.WithContext(ctx).First(&m, "booking_number = ?", number).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "booking", ID: number}
		}
		return nil, err
	}
	roomIDs, err := r.AssignedRoomIDs(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m, roomIDs), nil
}

func (r *BookingRepository) ListByGuest(ctx context.Context, guestID int64, limit, offset int) ([]domain.Booking, error) {
	var ms []bookingModel
	err := r.db.WithContext(ctx).
		Where("guest_id = ?", guestID).
		Order("check_in_date DESC").
		Limit(limit).Offset(offset).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		roomIDs, err := r.AssignedRoomIDs(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toDomainBooking(m, roomIDs))
	}
	return out, nil
}

func (r *BookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Update("status", string(status)).Error
}

func (r *BookingRepository) MarkCheckedIn(ctx context.Context, id int64, at time.Time) error {
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          string(domain.BookingCheckedIn),
			"actual_check_in": at,
		}).Error
}

func (r *BookingRepository) MarkCheckedOut(ctx context.Context, id int64, at time.Time, notes string) error {
	patch := map[string]any{
		"status":           string(domain.BookingCheckedOut),
		"actual_check_out": at,
	}
	if notes != "" {
		patch["notes"] = notes
	}
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(patch).Error
}

func (r *BookingRepository) CancelWithReason(ctx context.Context, id int64, reason string) error {
	patch := map[string]any{"status": string(domain.BookingCancelled)}
	if reason != "" {
		patch["cancellation_reason"] = reason
	}
	return r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// HasRoomConflict reports whether any blocking booking other than
// excludeID holds the room for a range overlapping [from, to).
func (r *BookingRepository) HasRoomConflict(ctx context.Context, roomID int64, from, to time.Time, excludeID int64) (bool, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM bookings b
JOIN booking_rooms br ON br.booking_id = b.id
WHERE br.room_id = ?
  AND b.status IN (?, ?)
  AND b.check_in_date < ?
  AND ? < b.check_out_date
  AND b.id <> ?
`
	err := r.db.WithContext(ctx).
		Raw(q, roomID, blockingStatuses[0], blockingStatuses[1], to, from, excludeID).
		Scan(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

// BlockedRoomIDs lists the rooms of a type held by a blocking booking
// overlapping [from, to).
func (r *BookingRepository) BlockedRoomIDs(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) ([]int64, error) {
	var ids []int64
	q := `
SELECT DISTINCT br.room_id
FROM bookings b
JOIN booking_rooms br ON br.booking_id = b.id
JOIN rooms r ON r.id = br.room_id
WHERE r.room_type_id = ?
  AND b.status IN (?, ?)
  AND b.check_in_date < ?
  AND ? < b.check_out_date
  AND b.id <> ?
`
	err := r.db.WithContext(ctx).
		Raw(q, roomTypeID, blockingStatuses[0], blockingStatuses[1], to, from, excludeID).
		Scan(&ids).Error
	return ids, err
}

// CountUnassignedBlocking counts blocking bookings of the type that are
// not yet bound to concrete rooms; they still consume type inventory.
func (r *BookingRepository) CountUnassignedBlocking(ctx context.Context, roomTypeID int64, from, to time.Time, excludeID int64) (int64, error) {
	var cnt int64
	q := `
SELECT COUNT(1)
FROM bookings b
WHERE b.room_type_id = ?
  AND b.status IN (?, ?)
  AND NOT EXISTS (SELECT 1 FROM booking_rooms br WHERE br.booking_id = b.id)
  AND b.check_in_date < ?
  AND ? < b.check_out_date
  AND b.id <> ?
`
	err := r.db.WithContext(ctx).
		Raw(q, roomTypeID, blockingStatuses[0], blockingStatuses[1], to, from, excludeID).
		Scan(&cnt).Error
	return cnt, err
}

func (r *BookingRepository) AssignedRoomIDs(ctx context.Context, bookingID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&bookingRoomModel{}).
		Where("booking_id = ?", bookingID).
		Order("room_id").
		Pluck("room_id", &ids).Error
	return ids, err
}

// ReplaceRoomAssignments atomically swaps the booking's room bindings.
// The conflict re-check runs inside the transaction and the room_nights
// unique index backstops it, so two racing writers cannot both bind an
// overlapping range.
func (r *BookingRepository) ReplaceRoomAssignments(ctx context.Context, b *domain.Booking, roomIDs []int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", b.ID).Delete(&bookingRoomModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("booking_id = ?", b.ID).Delete(&roomNightModel{}).Error; err != nil {
			return err
		}

		for _, roomID := range roomIDs {
			var cnt int64
			q := `
SELECT COUNT(1)
FROM bookings x
JOIN booking_rooms xr ON xr.booking_id = x.id
WHERE xr.room_id = ?
  AND x.status IN (?, ?)
  AND x.check_in_date < ?
  AND ? < x.check_out_date
  AND x.id <> ?
`
			err := tx.Raw(q, roomID, blockingStatuses[0], blockingStatuses[1],
				b.CheckOutDate, b.CheckInDate, b.ID).Scan(&cnt).Error
			if err != nil {
				return err
			}
			if cnt > 0 {
				return &domain.RoomUnavailableError{RoomID: roomID, CheckIn: b.CheckInDate, CheckOut: b.CheckOutDate}
			}

			if err := tx.Create(&bookingRoomModel{BookingID: b.ID, RoomID: roomID}).Error; err != nil {
				return err
			}
		}

		if b.Status.Blocking() {
			if err := insertNights(tx, b.ID, roomIDs, b.CheckInDate, b.CheckOutDate); err != nil {
				return err
			}
		}
		return nil
	})
}

// MaterializeNights writes the room_nights guard rows for a booking
// that just became blocking.
func (r *BookingRepository) MaterializeNights(ctx context.Context, b *domain.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", b.ID).Delete(&roomNightModel{}).Error; err != nil {
			return err
		}
		return insertNights(tx, b.ID, b.RoomIDs, b.CheckInDate, b.CheckOutDate)
	})
}

func insertNights(tx *gorm.DB, bookingID int64, roomIDs []int64, checkIn, checkOut time.Time) error {
	for _, roomID := range roomIDs {
		for _, night := range stayNights(checkIn, checkOut) {
			row := roomNightModel{RoomID: roomID, StayDate: night, BookingID: bookingID}
			if err := tx.Create(&row).Error; err != nil {
				if isUniqueViolation(err) {
					return &domain.ConcurrencyConflictError{
						Entity: "room",
						ID:     fmt.Sprintf("%d@%s", roomID, night),
					}
				}
				return err
			}
		}
	}
	return nil
}

// ReleaseNights drops the overbooking guard rows once a booking stops
// blocking (cancel, no-show, check-out).
func (r *BookingRepository) ReleaseNights(ctx context.Context, bookingID int64) error {
	return r.db.WithContext(ctx).Where("booking_id = ?", bookingID).Delete(&roomNightModel{}).Error
}

// ClearRoomAssignments removes all room bindings and guard rows.
func (r *BookingRepository) ClearRoomAssignments(ctx context.Context, bookingID int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("booking_id = ?", bookingID).Delete(&bookingRoomModel{}).Error; err != nil {
			return err
		}
		return tx.Where("booking_id = ?", bookingID).Delete(&roomNightModel{}).Error
	})
}

// DueNoShow lists confirmed bookings whose check-in date passed before
// the cutoff without an actual check-in.
func (r *BookingRepository) DueNoShow(ctx context.Context, cutoff time.Time) ([]domain.Booking, error) {
	var ms []bookingModel
	err := r.db.WithContext(ctx).
		Where("status = ? AND check_in_date < ? AND actual_check_in IS NULL",
			string(domain.BookingConfirmed), cutoff).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(ms))
	for _, m := range ms {
		roomIDs, err := r.AssignedRoomIDs(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *toDomainBooking(m, roomIDs))
	}
	return out, nil
}
