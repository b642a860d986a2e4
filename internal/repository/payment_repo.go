package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"innkeeper/internal/domain"
)

type PaymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

func toDomainPayment(m paymentModel) *domain.Payment {
	var txID string
	if m.TransactionID != nil {
		txID = *m.TransactionID
	}
	return &domain.Payment{
		ID:              m.ID,
		BookingID:       m.BookingID,
		Amount:          m.Amount,
		Currency:        m.Currency,
		Method:          m.Method,
		Status:          domain.PaymentStatus(m.Status),
		TransactionID:   txID,
		GatewayResponse: m.GatewayResponse,
		PaidAt:          m.PaidAt,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toPaymentModel(p *domain.Payment) paymentModel {
	var txID *string
	if p.TransactionID != "" {
		v := p.TransactionID
		txID = &v
	}
	return paymentModel{
		ID:              p.ID,
		BookingID:       p.BookingID,
		Amount:          p.Amount,
		Currency:        p.Currency,
		Method:          p.Method,
		Status:          string(p.Status),
		TransactionID:   txID,
		GatewayResponse: p.GatewayResponse,
		PaidAt:          p.PaidAt,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

func (r *PaymentRepository) CreatePayment(ctx context.Context, p *domain.Payment) error {
	m := toPaymentModel(p)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	p.CreatedAt = m.CreatedAt
	p.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentRepository) GetPayment(ctx context.Context, id string) (*domain.Payment, error) {
	var m paymentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "payment", ID: id}
		}
		return nil, err
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, txID string) (*domain.Payment, error) {
	var m paymentModel
	if err := r.db.WithContext(ctx).First(&m, "transaction_id = ?", txID).Error; err != nil {
		if isNotFound(err) {
			return nil, &domain.NotFoundError{Entity: "payment", ID: txID}
		}
		return nil, err
	}
	return toDomainPayment(m), nil
}

func (r *PaymentRepository) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus, paidAt *time.Time) error {
	patch := map[string]any{"status": string(status)}
	if paidAt != nil {
		patch["paid_at"] = *paidAt
	}
	return r.db.WithContext(ctx).Model(&paymentModel{}).
		Where("id = ?", id).
		Updates(patch).Error
}

// ListByBooking returns the booking's payments in insertion order.
func (r *PaymentRepository) ListByBooking(ctx context.Context, bookingID int64) ([]domain.Payment, error) {
	var ms []paymentModel
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.Payment, 0, len(ms))
	for _, m := range ms {
		out = append(out, *toDomainPayment(m))
	}
	return out, nil
}

func (r *PaymentRepository) CreateRefund(ctx context.Context, ref *domain.Refund) error {
	var reason *string
	if ref.Reason != "" {
		v := ref.Reason
		reason = &v
	}
	m := refundModel{
		ID:        ref.ID,
		PaymentID: ref.PaymentID,
		Amount:    ref.Amount,
		Status:    string(ref.Status),
		Reason:    reason,
		CreatedAt: ref.CreatedAt,
		UpdatedAt: ref.UpdatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return err
	}
	ref.CreatedAt = m.CreatedAt
	ref.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *PaymentRepository) ListRefundsByPayment(ctx context.Context, paymentID string) ([]domain.Refund, error) {
	var ms []refundModel
	err := r.db.WithContext(ctx).
		Where("payment_id = ?", paymentID).
		Order("created_at, id").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	return toDomainRefunds(ms), nil
}

// ListRefundsByBooking returns all refunds across the booking's
// payments in insertion order.
func (r *PaymentRepository) ListRefundsByBooking(ctx context.Context, bookingID int64) ([]domain.Refund, error) {
	var ms []refundModel
	q := `
SELECT rf.*
FROM refunds rf
JOIN payments p ON p.id = rf.payment_id
WHERE p.booking_id = ?
ORDER BY rf.created_at, rf.id
`
	if err := r.db.WithContext(ctx).Raw(q, bookingID).Scan(&ms).Error; err != nil {
		return nil, err
	}
	return toDomainRefunds(ms), nil
}

func toDomainRefunds(ms []refundModel) []domain.Refund {
	out := make([]domain.Refund, 0, len(ms))
	for _, m := range ms {
		var reason string
		if m.Reason != nil {
			reason = *m.Reason
		}
		out = append(out, domain.Refund{
			ID:        m.ID,
			PaymentID: m.PaymentID,
			Amount:    m.Amount,
			Status:    domain.RefundStatus(m.Status),
			Reason:    reason,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}
	return out
}

// ApplyGatewayEvent records a webhook delivery at most once. The dedup
// row and the payment write commit in one transaction, so a failed
// write leaves no dedup row behind and the gateway's redelivery gets a
// clean retry. Returns false when the (transaction, event type) pair
// was already applied.
func (r *PaymentRepository) ApplyGatewayEvent(ctx context.Context, eventType string, raw []byte, p *domain.Payment) (bool, error) {
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := gatewayEventModel{
			TransactionID: p.TransactionID,
			EventType:     eventType,
			RawPayload:    raw,
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			if isUniqueViolation(res.Error) {
				return nil
			}
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		var existing paymentModel
		err := tx.First(&existing, "transaction_id = ?", p.TransactionID).Error
		switch {
		case err == nil:
			patch := map[string]any{
				"status":     string(p.Status),
				"updated_at": p.UpdatedAt,
			}
			if p.PaidAt != nil {
				patch["paid_at"] = *p.PaidAt
			}
			if err := tx.Model(&paymentModel{}).
				Where("id = ?", existing.ID).
				Updates(patch).Error; err != nil {
				return err
			}
		case isNotFound(err):
			m := toPaymentModel(p)
			if err := tx.Create(&m).Error; err != nil {
				return err
			}
		default:
			return err
		}

		applied = true
		return nil
	})
	return applied, err
}
