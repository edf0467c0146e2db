package billing

import (
	"testing"

	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderTotals(t *testing.T) {
	items := []models.CartItem{
		{ID: "a", Price: 45, Quantity: 2},
		{ID: "b", Price: 75, Quantity: 1},
	}

	totals := OrderTotals(items, DefaultServiceFeeRate)

	assert.Equal(t, int64(165), totals.Subtotal)
	assert.Equal(t, int64(17), totals.ServiceFee)
	assert.Equal(t, int64(182), totals.Total)
}

func TestServiceFeeRounding(t *testing.T) {
	tests := []struct {
		subtotal int64
		rate     float64
		want     int64
	}{
		{0, 0.10, 0},
		{104, 0.10, 10},
		{105, 0.10, 11},
		{165, 0.10, 17},
		{220, 0.10, 22},
		{99, 0.15, 15},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ServiceFee(tt.subtotal, tt.rate), "subtotal=%d rate=%v", tt.subtotal, tt.rate)
	}
}

func TestBillAddsVATOnTopOfOrderTotal(t *testing.T) {
	bill := NewBill(165, 17, DefaultVATRate)

	assert.Equal(t, int64(18), bill.VAT)
	assert.Equal(t, int64(200), bill.Total)

	order := &models.PlacedOrder{Subtotal: 165, ServiceFee: 17, Total: 182}
	assert.Equal(t, bill, BillFor(order, DefaultVATRate))
	assert.NotEqual(t, order.Total, bill.Total)
}

func TestBillForNilOrder(t *testing.T) {
	assert.Equal(t, models.Bill{}, BillFor(nil, DefaultVATRate))
}
