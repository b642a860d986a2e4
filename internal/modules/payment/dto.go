package payment

import "github.com/shopspring/decimal"

type RecordPaymentRequest struct {
	BookingID  int64           `json:"bookingId" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	Currency   string          `json:"currency"`
	Method     string          `json:"method" binding:"required"`
	GatewayRef string          `json:"gatewayRef"`
}

type RecordRefundRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Reason string          `json:"reason"`
}

type PaymentResponse struct {
	ID            string `json:"id"`
	BookingID     int64  `json:"bookingId"`
	Amount        string `json:"amount"`
	Currency      string `json:"currency"`
	Method        string `json:"method"`
	Status        string `json:"status"`
	TransactionID string `json:"transactionId,omitempty"`
	PaidAt        string `json:"paidAt,omitempty"`
}

type RefundResponse struct {
	ID        string `json:"id"`
	PaymentID string `json:"paymentId"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	Reason    string `json:"reason,omitempty"`
}

type AggregateStatusResponse struct {
	BookingID int64  `json:"bookingId"`
	Status    string `json:"status"`
}
