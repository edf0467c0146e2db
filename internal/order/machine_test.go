package order

import (
	"regexp"
	"testing"

	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	turkish = models.MenuItem{ID: "coffees-turkish", Name: "Turkish Coffee", Price: 45}
	baklava = models.MenuItem{ID: "desserts-baklava", Name: "Baklava", Price: 75}
)

func TestSetTable(t *testing.T) {
	m := NewMachine(0.10)
	m.SetTable("brew-and-bloom", "6", "t6")
	m.SetTable("brew-and-bloom", "6", "t6")

	s := m.State()
	assert.Equal(t, "brew-and-bloom", *s.CafeID)
	assert.Equal(t, "6", s.TableNumber)
	assert.Equal(t, "t6", *s.TableID)

	m.SetTable("brew-and-bloom", "9", "")
	assert.Nil(t, m.State().TableID)
}

func TestCartOneLinePerItem(t *testing.T) {
	m := NewMachine(0.10)
	m.AddToCart(turkish, 1, turkish.ID)
	m.AddToCart(baklava, 1, baklava.ID)
	m.AddToCart(turkish, 2, turkish.ID)

	items := m.State().CartItems
	require.Len(t, items, 2)
	assert.Equal(t, 3, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)

	m.UpdateQuantity(turkish.ID, 5)
	assert.Equal(t, 5, m.State().CartItems[0].Quantity)

	m.UpdateQuantity(turkish.ID, 0)
	items = m.State().CartItems
	require.Len(t, items, 1)
	assert.Equal(t, baklava.ID, items[0].ID)

	m.RemoveFromCart("missing")
	m.UpdateQuantity("missing", 3)
	assert.Len(t, m.State().CartItems, 1)

	m.RemoveFromCart(baklava.ID)
	assert.Empty(t, m.State().CartItems)
}

func TestAddToCartIgnoresNonPositiveQuantity(t *testing.T) {
	m := NewMachine(0.10)
	m.AddToCart(turkish, 0, turkish.ID)
	assert.Empty(t, m.State().CartItems)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	m := NewMachine(0.10)
	before := m.State()

	placed, ok := m.PlaceOrder()
	assert.False(t, ok)
	assert.Nil(t, placed)
	assert.Equal(t, before, m.State())
}

func TestPlaceOrder(t *testing.T) {
	m := NewMachine(0.10)
	m.SetTable("brew-and-bloom", "6", "t6")
	m.AddToCart(turkish, 2, turkish.ID)
	m.AddToCart(baklava, 1, baklava.ID)
	m.SetSpecialInstructions("no sugar")
	cart := m.State().CartItems

	placed, ok := m.PlaceOrder()
	require.True(t, ok)
	assert.Regexp(t, regexp.MustCompile(`^[1-9]\d{3}$`), placed.OrderID)
	assert.Equal(t, int64(165), placed.Subtotal)
	assert.Equal(t, int64(17), placed.ServiceFee)
	assert.Equal(t, int64(182), placed.Total)
	assert.Equal(t, cart, placed.Items)
	assert.Equal(t, "6", placed.TableNumber)
	assert.Equal(t, "no sugar", placed.SpecialInstructions)
	assert.Equal(t, models.OrderStatusReceived, placed.Status)

	s := m.State()
	assert.Empty(t, s.CartItems)
	assert.Equal(t, placed.OrderID, *s.OrderID)
	assert.Equal(t, models.OrderStatusReceived, s.OrderStatus)
	assert.Equal(t, "brew-and-bloom", *s.CafeID)
}

func TestClearCartKeepsPlacedOrder(t *testing.T) {
	m := NewMachine(0.10)
	m.SetTable("c1", "1", "t1")
	m.AddToCart(turkish, 1, turkish.ID)
	_, ok := m.PlaceOrder()
	require.True(t, ok)

	m.AddToCart(baklava, 1, baklava.ID)
	m.ClearCart()

	s := m.State()
	assert.Empty(t, s.CartItems)
	assert.NotNil(t, s.PlacedOrder)
	assert.Equal(t, "1", s.TableNumber)
}

func TestStatusStaysConsistent(t *testing.T) {
	m := NewMachine(0.10)
	m.UpdateOrderStatus(models.OrderStatusReady)
	assert.Equal(t, models.OrderStatusReady, m.State().OrderStatus)
	assert.Nil(t, m.State().PlacedOrder)

	m.AddToCart(turkish, 1, turkish.ID)
	m.PlaceOrder()
	m.UpdateOrderStatus(models.OrderStatusPreparing)
	s := m.State()
	assert.Equal(t, models.OrderStatusPreparing, s.OrderStatus)
	assert.Equal(t, models.OrderStatusPreparing, s.PlacedOrder.Status)

	m.CancelOrder()
	s = m.State()
	assert.Equal(t, models.OrderStatusCancelled, s.OrderStatus)
	assert.Equal(t, models.OrderStatusCancelled, s.PlacedOrder.Status)
}

func TestTryCancel(t *testing.T) {
	m := NewMachine(0.10)
	status, ok := m.TryCancel()
	assert.False(t, ok, "nothing placed")
	assert.Equal(t, models.OrderStatusIdle, status)

	m.AddToCart(turkish, 1, turkish.ID)
	m.PlaceOrder()
	status, ok = m.TryCancel()
	require.True(t, ok)
	assert.Equal(t, models.OrderStatusCancelled, status)
	assert.Equal(t, models.OrderStatusCancelled, m.State().PlacedOrder.Status)

	_, ok = m.TryCancel()
	assert.False(t, ok, "already cancelled")

	m.ResetOrder()
	m.AddToCart(turkish, 1, turkish.ID)
	m.PlaceOrder()
	m.UpdateOrderStatus(models.OrderStatusReady)
	status, ok = m.TryCancel()
	assert.False(t, ok)
	assert.Equal(t, models.OrderStatusReady, status)
	assert.Equal(t, models.OrderStatusReady, m.State().OrderStatus)
}

func TestAdvance(t *testing.T) {
	m := NewMachine(0.10)
	_, ok := m.Advance()
	assert.False(t, ok, "nothing placed")

	m.AddToCart(turkish, 1, turkish.ID)
	m.PlaceOrder()

	var seen []models.OrderStatus
	for {
		status, ok := m.Advance()
		if !ok {
			break
		}
		seen = append(seen, status)
	}
	assert.Equal(t, []models.OrderStatus{
		models.OrderStatusPreparing,
		models.OrderStatusReady,
		models.OrderStatusDelivered,
	}, seen)
}

func TestPaymentMethodAndReset(t *testing.T) {
	m := NewMachine(0.15)
	m.SetTable("c1", "1", "t1")
	m.AddToCart(turkish, 1, turkish.ID)
	m.PlaceOrder()
	m.SetPaymentMethod(models.PaymentCash)
	assert.Equal(t, models.PaymentCash, *m.State().PaymentMethod)

	m.ResetOrder()
	assert.Equal(t, Defaults(0.15), m.State())
}

func TestNewMachineDefaultRate(t *testing.T) {
	m := NewMachine(0)
	assert.Equal(t, 0.10, m.State().ServiceFeeRate)
}
