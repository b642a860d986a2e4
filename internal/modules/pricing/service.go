package pricing

import (
	"time"

	"github.com/shopspring/decimal"

	"innkeeper/internal/config"
	"innkeeper/internal/domain"
)

// minorUnits is the rounding precision for persisted monetary fields.
const minorUnits = 2

var hundred = decimal.NewFromInt(100)

type DiscountKind string

const (
	DiscountNone    DiscountKind = ""
	DiscountFlat    DiscountKind = "flat"
	DiscountPercent DiscountKind = "percent"
)

// Discount is an explicit parameter per quote, never an implicit
// global.
type Discount struct {
	Kind  DiscountKind
	Value decimal.Decimal
}

type QuoteInput struct {
	BasePrice       decimal.Decimal
	SeasonalPricing map[string]decimal.Decimal
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          int
	MaxOccupancy    int
	Discount        Discount
	ServiceCharges  decimal.Decimal
}

// Breakdown is the frozen quote written onto a booking at creation.
// Later rate or tax changes never touch it.
type Breakdown struct {
	RoomRate       decimal.Decimal `json:"room_rate"`
	Nights         int             `json:"nights"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	CityTax        decimal.Decimal `json:"city_tax"`
	VAT            decimal.Decimal `json:"vat"`
	ServiceCharges decimal.Decimal `json:"service_charges"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	NetAmount      decimal.Decimal `json:"net_amount"`
	Currency       string          `json:"currency"`
}

// TaxAmount is the combined tax persisted on the booking record.
func (b *Breakdown) TaxAmount() decimal.Decimal {
	return b.CityTax.Add(b.VAT)
}

// Service computes price breakdowns from externally supplied rate
// configuration. All arithmetic is decimal; binary floating point
// never touches money.
type Service struct {
	cfg config.Pricing
}

func NewService(cfg config.Pricing) *Service {
	return &Service{cfg: cfg}
}

// Quote computes the full breakdown for a stay. It is deterministic
// for fixed input and configuration.
func (s *Service) Quote(in QuoteInput) (*Breakdown, error) {
	nights := nightsBetween(in.CheckIn, in.CheckOut)
	if nights <= 0 {
		return nil, &domain.ValidationError{Field: "check_out", Reason: "stay must cover at least one night"}
	}
	if in.Guests < 1 {
		return nil, &domain.ValidationError{Field: "guests", Reason: "at least one guest is required"}
	}
	if in.MaxOccupancy > 0 && in.Guests > in.MaxOccupancy {
		return nil, &domain.ValidationError{Field: "guests", Reason: "guest count exceeds room capacity"}
	}
	if in.BasePrice.IsNegative() {
		return nil, &domain.ValidationError{Field: "base_price", Reason: "must not be negative"}
	}

	// Rate may differ per night when the stay spans season boundaries.
	subtotal := decimal.Zero
	night := dateOnly(in.CheckIn)
	for i := 0; i < nights; i++ {
		subtotal = subtotal.Add(in.BasePrice.Mul(s.multiplierFor(night, in.SeasonalPricing)))
		night = night.AddDate(0, 0, 1)
	}

	discount, err := discountAmount(in.Discount, subtotal)
	if err != nil {
		return nil, err
	}

	taxable := subtotal
	if !s.cfg.DiscountAfterTax {
		taxable = subtotal.Sub(discount)
	}
	cityTax := taxable.Mul(s.cfg.CityTaxPercent.Decimal).Div(hundred).RoundBank(minorUnits)
	vat := taxable.Mul(s.cfg.VATPercent.Decimal).Div(hundred).RoundBank(minorUnits)

	serviceCharges := in.ServiceCharges.RoundBank(minorUnits)
	discount = discount.RoundBank(minorUnits)
	subtotal = subtotal.RoundBank(minorUnits)

	net := subtotal.Sub(discount).Add(cityTax).Add(vat).Add(serviceCharges).RoundBank(minorUnits)

	return &Breakdown{
		RoomRate:       subtotal.Div(decimal.NewFromInt(int64(nights))).RoundBank(minorUnits),
		Nights:         nights,
		Subtotal:       subtotal,
		CityTax:        cityTax,
		VAT:            vat,
		ServiceCharges: serviceCharges,
		DiscountAmount: discount,
		NetAmount:      net,
		Currency:       s.cfg.Currency,
	}, nil
}

func (s *Service) multiplierFor(night time.Time, seasonal map[string]decimal.Decimal) decimal.Decimal {
	if len(seasonal) == 0 {
		return decimal.NewFromInt(1)
	}
	for _, season := range s.cfg.Seasons {
		if !season.Contains(night) {
			continue
		}
		if mult, ok := seasonal[season.Label]; ok {
			return mult
		}
	}
	return decimal.NewFromInt(1)
}

func discountAmount(d Discount, subtotal decimal.Decimal) (decimal.Decimal, error) {
	switch d.Kind {
	case DiscountNone:
		return decimal.Zero, nil
	case DiscountFlat:
		if d.Value.IsNegative() {
			return decimal.Zero, &domain.ValidationError{Field: "discount", Reason: "must not be negative"}
		}
		if d.Value.GreaterThan(subtotal) {
			return decimal.Zero, &domain.ValidationError{Field: "discount", Reason: "exceeds stay subtotal"}
		}
		return d.Value, nil
	case DiscountPercent:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return decimal.Zero, &domain.ValidationError{Field: "discount", Reason: "percentage must be between 0 and 100"}
		}
		return subtotal.Mul(d.Value).Div(hundred), nil
	default:
		return decimal.Zero, &domain.ValidationError{Field: "discount", Reason: "unknown discount kind"}
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func nightsBetween(checkIn, checkOut time.Time) int {
	return int(dateOnly(checkOut).Sub(dateOnly(checkIn)).Hours() / 24)
}
