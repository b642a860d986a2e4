package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"innkeeper/internal/domain"
	"innkeeper/internal/modules/pricing"
)

type CreateBookingRequest struct {
	GuestID         int64           `json:"guest_id" binding:"required"`
	RoomTypeID      int64           `json:"room_type_id" binding:"required"`
	CheckIn         string          `json:"check_in" binding:"required"`
	CheckOut        string          `json:"check_out" binding:"required"`
	Adults          int             `json:"adults" binding:"required,gte=1"`
	Children        int             `json:"children" binding:"gte=0"`
	SpecialRequests string          `json:"special_requests"`
	ServiceCharges  decimal.Decimal `json:"service_charges"`
	Discount        *DiscountDTO    `json:"discount"`
}

type DiscountDTO struct {
	Kind  string          `json:"kind" binding:"required,oneof=flat percent"`
	Value decimal.Decimal `json:"value" binding:"required"`
}

func (d *DiscountDTO) toDiscount() pricing.Discount {
	if d == nil {
		return pricing.Discount{}
	}
	return pricing.Discount{Kind: pricing.DiscountKind(d.Kind), Value: d.Value}
}

type QuoteRequest struct {
	RoomTypeID     int64           `json:"room_type_id"`
	RoomID         int64           `json:"room_id"`
	CheckIn        string          `json:"check_in" binding:"required"`
	CheckOut       string          `json:"check_out" binding:"required"`
	Guests         int             `json:"guests" binding:"required,gte=1"`
	ServiceCharges decimal.Decimal `json:"service_charges"`
	Discount       *DiscountDTO    `json:"discount"`
}

type CheckInRequest struct {
	ActualTime *time.Time `json:"actual_time"`
}

type CheckOutRequest struct {
	ActualTime *time.Time `json:"actual_time"`
	Notes      string     `json:"notes"`
}

type CancelRequest struct {
	Reason string `json:"reason"`
}

type AssignRoomsRequest struct {
	RoomIDs []int64 `json:"room_ids" binding:"required,min=1"`
}

type AvailabilityQuery struct {
	RoomID     int64  `form:"room_id"`
	RoomTypeID int64  `form:"room_type_id"`
	CheckIn    string `form:"check_in" binding:"required"`
	CheckOut   string `form:"check_out" binding:"required"`
	Rooms      int    `form:"rooms,default=1"`
	Exclude    int64  `form:"exclude_booking_id"`
}

// parseStayDate turns a YYYY-MM-DD request value into the stored
// timestamp at the house's fixed local hour.
func parseStayDate(value string, hour int) (time.Time, error) {
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, &domain.ValidationError{Field: "date", Reason: "expected YYYY-MM-DD"}
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC), nil
}
