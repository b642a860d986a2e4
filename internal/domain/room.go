package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type RoomStatus string

const (
	RoomAvailable   RoomStatus = "available"
	RoomOccupied    RoomStatus = "occupied"
	RoomCleaning    RoomStatus = "cleaning"
	RoomMaintenance RoomStatus = "maintenance"
)

type Room struct {
	ID         int64      `json:"id"`
	RoomNumber string     `json:"room_number"`
	RoomTypeID int64      `json:"room_type_id"`
	Status     RoomStatus `json:"status"`
	Floor      int        `json:"floor"`

	MaxOccupancy int             `json:"max_occupancy"`
	BedCount     int             `json:"bed_count"`
	BasePrice    decimal.Decimal `json:"base_price"`

	// Multiplier per season label; labels resolve to date windows in the
	// pricing configuration. Missing label means multiplier 1.0.
	SeasonalPricing map[string]decimal.Decimal `json:"seasonal_pricing,omitempty"`

	Smoking     bool `json:"smoking"`
	PetFriendly bool `json:"pet_friendly"`
	Accessible  bool `json:"accessible"`

	// Locale code -> text.
	Names        map[string]string `json:"names,omitempty"`
	Descriptions map[string]string `json:"descriptions,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomType struct {
	ID           int64           `json:"id"`
	Code         string          `json:"code"`
	MaxOccupancy int             `json:"max_occupancy"`
	BasePrice    decimal.Decimal `json:"base_price"`

	// Multiplier per season label, same contract as Room.SeasonalPricing.
	// Type-level bookings price their nights through these.
	SeasonalPricing map[string]decimal.Decimal `json:"seasonal_pricing,omitempty"`

	IsActive bool `json:"is_active"`
}
