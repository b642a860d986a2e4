package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending         PaymentStatus = "pending"
	PaymentSucceeded       PaymentStatus = "succeeded"
	PaymentFailed          PaymentStatus = "failed"
	PaymentRefundedPartial PaymentStatus = "refunded_partial"
	PaymentRefundedFull    PaymentStatus = "refunded_full"
)

// AggregateStatus is derived from a booking's payments and refunds,
// never stored as ground truth.
type AggregateStatus string

const (
	AggregateUnpaid            AggregateStatus = "unpaid"
	AggregatePartiallyPaid     AggregateStatus = "partially_paid"
	AggregatePaid              AggregateStatus = "paid"
	AggregatePartiallyRefunded AggregateStatus = "partially_refunded"
	AggregateFullyRefunded     AggregateStatus = "fully_refunded"
)

type Payment struct {
	ID              string          `json:"id"`
	BookingID       int64           `json:"booking_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Method          string          `json:"method"`
	Status          PaymentStatus   `json:"status"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	GatewayResponse []byte          `json:"-"`
	PaidAt          *time.Time      `json:"paid_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
)

type Refund struct {
	ID        string          `json:"id"`
	PaymentID string          `json:"payment_id"`
	Amount    decimal.Decimal `json:"amount"`
	Status    RefundStatus    `json:"status"`
	Reason    string          `json:"reason,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// GatewayEvent is the inbound payment-gateway webhook payload.
type GatewayEvent struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Livemode bool             `json:"livemode"`
	Data     GatewayEventData `json:"data"`
}

type GatewayEventData struct {
	Object GatewayObject `json:"object"`
}

// GatewayObject carries the transaction outcome. Amount is in the
// currency's minor units, gateway convention.
type GatewayObject struct {
	ID        string `json:"id"`
	BookingID int64  `json:"booking_id,string"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Method    string `json:"payment_method_type,omitempty"`
}
