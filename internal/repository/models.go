package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type bookingModel struct {
	ID              int64      `gorm:"column:id;primaryKey"`
	BookingNumber   string     `gorm:"column:booking_number;uniqueIndex"`
	GuestID         int64      `gorm:"column:guest_id;index"`
	RoomTypeID      int64      `gorm:"column:room_type_id;index"`
	CheckInDate     time.Time  `gorm:"column:check_in_date;index"`
	CheckOutDate    time.Time  `gorm:"column:check_out_date"`
	ActualCheckIn   *time.Time `gorm:"column:actual_check_in"`
	ActualCheckOut  *time.Time `gorm:"column:actual_check_out"`
	Adults          int        `gorm:"column:adults"`
	Children        int        `gorm:"column:children"`
	SpecialRequests *string    `gorm:"column:special_requests;type:text"`
	Status          string     `gorm:"column:status;index"`

	RoomRate       decimal.Decimal `gorm:"column:room_rate;type:decimal(12,2)"`
	TotalAmount    decimal.Decimal `gorm:"column:total_amount;type:decimal(12,2)"`
	TaxAmount      decimal.Decimal `gorm:"column:tax_amount;type:decimal(12,2)"`
	ServiceCharges decimal.Decimal `gorm:"column:service_charges;type:decimal(12,2)"`
	DiscountAmount decimal.Decimal `gorm:"column:discount_amount;type:decimal(12,2)"`
	Currency       string          `gorm:"column:currency;size:3"`

	CancellationReason *string `gorm:"column:cancellation_reason;type:text"`
	Notes              *string `gorm:"column:notes;type:text"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	CreatedBy int64     `gorm:"column:created_by"`
	UpdatedBy int64     `gorm:"column:updated_by"`
}

func (bookingModel) TableName() string { return "bookings" }

type bookingRoomModel struct {
	ID        int64 `gorm:"column:id;primaryKey"`
	BookingID int64 `gorm:"column:booking_id;uniqueIndex:idx_booking_room"`
	RoomID    int64 `gorm:"column:room_id;uniqueIndex:idx_booking_room;index"`
}

func (bookingRoomModel) TableName() string { return "booking_rooms" }

// roomNightModel materializes one row per room per stay night of a
// blocking booking. The unique index is the overbooking guard: two
// blocking bookings can never hold the same room on the same night.
type roomNightModel struct {
	ID        int64  `gorm:"column:id;primaryKey"`
	RoomID    int64  `gorm:"column:room_id;uniqueIndex:idx_room_night"`
	StayDate  string `gorm:"column:stay_date;size:10;uniqueIndex:idx_room_night"`
	BookingID int64  `gorm:"column:booking_id;index"`
}

func (roomNightModel) TableName() string { return "room_nights" }

type bookingSequenceModel struct {
	Year    int   `gorm:"column:year;primaryKey"`
	LastSeq int64 `gorm:"column:last_seq"`
}

func (bookingSequenceModel) TableName() string { return "booking_sequences" }

type roomModel struct {
	ID              int64           `gorm:"column:id;primaryKey"`
	RoomNumber      string          `gorm:"column:room_number;uniqueIndex"`
	RoomTypeID      int64           `gorm:"column:room_type_id;index"`
	Status          string          `gorm:"column:status"`
	Floor           int             `gorm:"column:floor"`
	MaxOccupancy    int             `gorm:"column:max_occupancy"`
	BedCount        int             `gorm:"column:bed_count"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:decimal(12,2)"`
	SeasonalPricing []byte          `gorm:"column:seasonal_pricing;type:text"`
	Smoking         bool            `gorm:"column:smoking"`
	PetFriendly     bool            `gorm:"column:pet_friendly"`
	Accessible      bool            `gorm:"column:accessible"`
	Names           []byte          `gorm:"column:names;type:text"`
	Descriptions    []byte          `gorm:"column:descriptions;type:text"`
	IsActive        bool            `gorm:"column:is_active"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

type roomTypeModel struct {
	ID              int64           `gorm:"column:id;primaryKey"`
	Code            string          `gorm:"column:code;uniqueIndex"`
	MaxOccupancy    int             `gorm:"column:max_occupancy"`
	BasePrice       decimal.Decimal `gorm:"column:base_price;type:decimal(12,2)"`
	SeasonalPricing []byte          `gorm:"column:seasonal_pricing;type:text"`
	IsActive        bool            `gorm:"column:is_active"`
}

func (roomTypeModel) TableName() string { return "room_types" }

type paymentModel struct {
	ID              string          `gorm:"column:id;primaryKey;size:36"`
	BookingID       int64           `gorm:"column:booking_id;index"`
	Amount          decimal.Decimal `gorm:"column:amount;type:decimal(12,2)"`
	Currency        string          `gorm:"column:currency;size:3"`
	Method          string          `gorm:"column:method"`
	Status          string          `gorm:"column:status"`
	TransactionID   *string         `gorm:"column:transaction_id;uniqueIndex"`
	GatewayResponse []byte          `gorm:"column:gateway_response;type:text"`
	PaidAt          *time.Time      `gorm:"column:paid_at"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
}

func (paymentModel) TableName() string { return "payments" }

type refundModel struct {
	ID        string          `gorm:"column:id;primaryKey;size:36"`
	PaymentID string          `gorm:"column:payment_id;index;size:36"`
	Amount    decimal.Decimal `gorm:"column:amount;type:decimal(12,2)"`
	Status    string          `gorm:"column:status"`
	Reason    *string         `gorm:"column:reason;type:text"`
	CreatedAt time.Time       `gorm:"column:created_at"`
	UpdatedAt time.Time       `gorm:"column:updated_at"`
}

func (refundModel) TableName() string { return "refunds" }

// gatewayEventModel is the webhook dedup ledger: one row per applied
// (transaction, event type) pair. Replays hit the unique index.
type gatewayEventModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	TransactionID string    `gorm:"column:transaction_id;uniqueIndex:idx_gateway_event"`
	EventType     string    `gorm:"column:event_type;uniqueIndex:idx_gateway_event"`
	RawPayload    []byte    `gorm:"column:raw_payload;type:text"`
	CreatedAt     time.Time `gorm:"column:created_at"`
}

func (gatewayEventModel) TableName() string { return "gateway_events" }

type maintenanceLogModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	RoomID      int64      `gorm:"column:room_id;index"`
	Type        string     `gorm:"column:type"`
	StartTime   time.Time  `gorm:"column:start_time"`
	EndTime     *time.Time `gorm:"column:end_time"`
	IsCompleted bool       `gorm:"column:is_completed"`
	Notes       *string    `gorm:"column:notes;type:text"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
}

func (maintenanceLogModel) TableName() string { return "maintenance_logs" }

// AutoMigrate creates or updates the schema for every table this
// package owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&roomTypeModel{},
		&roomModel{},
		&bookingModel{},
		&bookingRoomModel{},
		&roomNightModel{},
		&bookingSequenceModel{},
		&paymentModel{},
		&refundModel{},
		&gatewayEventModel{},
		&maintenanceLogModel{},
	)
}
