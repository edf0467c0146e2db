package billing

import (
	"cafehub/internal/models"

	"github.com/shopspring/decimal"
)

const (
	DefaultServiceFeeRate = 0.10
	DefaultVATRate        = 0.10
)

// roundRate returns round(amount * rate), half away from zero.
func roundRate(amount int64, rate float64) int64 {
	return decimal.NewFromInt(amount).Mul(decimal.NewFromFloat(rate)).Round(0).IntPart()
}

// Subtotal sums price times quantity over the cart
func Subtotal(items []models.CartItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Price * int64(item.Quantity)
	}
	return total
}

// ServiceFee is the rounded service surcharge on a subtotal
func ServiceFee(subtotal int64, rate float64) int64 {
	return roundRate(subtotal, rate)
}

// Totals is the order level breakdown. It never includes VAT.
type Totals struct {
	Subtotal   int64 `json:"subtotal"`
	ServiceFee int64 `json:"serviceFee"`
	Total      int64 `json:"total"`
}

// OrderTotals computes the order level amounts of a cart
func OrderTotals(items []models.CartItem, serviceFeeRate float64) Totals {
	subtotal := Subtotal(items)
	fee := ServiceFee(subtotal, serviceFeeRate)
	return Totals{Subtotal: subtotal, ServiceFee: fee, Total: subtotal + fee}
}

// NewBill computes the bill level amounts from an order's subtotal and
// service fee: VAT is charged on both.
func NewBill(subtotal, serviceFee int64, vatRate float64) models.Bill {
	beforeVAT := subtotal + serviceFee
	vat := roundRate(beforeVAT, vatRate)
	return models.Bill{
		Subtotal:   subtotal,
		ServiceFee: serviceFee,
		VAT:        vat,
		Total:      beforeVAT + vat,
	}
}

// BillFor is NewBill for a placed order; a nil order yields a zero bill.
func BillFor(order *models.PlacedOrder, vatRate float64) models.Bill {
	if order == nil {
		return models.Bill{}
	}
	return NewBill(order.Subtotal, order.ServiceFee, vatRate)
}
