package order

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"cafehub/internal/billing"
	"cafehub/internal/models"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// Machine is the in-venue ordering state of one session: table binding,
// live cart and at most one placed order. Invalid operations are no-ops.
type Machine struct {
	mu      sync.Mutex
	state   models.OrderState
	feeRate float64
	now     func() time.Time
	logger  *zap.Logger
}

// Defaults returns the empty ordering state at the given service fee rate
func Defaults(feeRate float64) models.OrderState {
	return models.OrderState{
		TableNumber:    "",
		CartItems:      []models.CartItem{},
		OrderStatus:    models.OrderStatusIdle,
		ServiceFeeRate: feeRate,
	}
}

// NewMachine creates an order machine. A non-positive rate falls back to
// the default service fee.
func NewMachine(feeRate float64) *Machine {
	if feeRate <= 0 {
		feeRate = billing.DefaultServiceFeeRate
	}
	return &Machine{
		state:   Defaults(feeRate),
		feeRate: feeRate,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// State returns a copy of the ordering state
func (m *Machine) State() models.OrderState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return clone(m.state)
}

// SetTable binds the session to a cafe and table. tableID may be empty.
func (m *Machine) SetTable(cafeID, tableNumber, tableID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state.CafeID = &cafeID
	m.state.TableNumber = tableNumber
	if tableID == "" {
		m.state.TableID = nil
	} else {
		m.state.TableID = &tableID
	}
}

// AddToCart adds quantity of item under itemID, merging into an existing
// line when there is one.
func (m *Machine) AddToCart(item models.MenuItem, quantity int, itemID string) {
	if quantity <= 0 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.state.CartItems {
		if m.state.CartItems[i].ID == itemID {
			m.state.CartItems[i].Quantity += quantity
			return
		}
	}
	m.state.CartItems = append(m.state.CartItems, models.CartItem{
		ID:       itemID,
		Name:     item.Name,
		Price:    item.Price,
		Quantity: quantity,
	})
}

// RemoveFromCart drops the line of itemID if present
func (m *Machine) RemoveFromCart(itemID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removeLocked(itemID)
}

// UpdateQuantity sets the quantity of a line. Zero or less removes it.
func (m *Machine) UpdateQuantity(itemID string, quantity int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if quantity <= 0 {
		m.removeLocked(itemID)
		return
	}
	for i := range m.state.CartItems {
		if m.state.CartItems[i].ID == itemID {
			m.state.CartItems[i].Quantity = quantity
			return
		}
	}
}

func (m *Machine) removeLocked(itemID string) {
	kept := m.state.CartItems[:0]
	for _, it := range m.state.CartItems {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	m.state.CartItems = kept
}

// ClearCart empties the cart. Table binding and the placed order stay.
func (m *Machine) ClearCart() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.CartItems = []models.CartItem{}
}

// SetSpecialInstructions stores the kitchen note of the next order
func (m *Machine) SetSpecialInstructions(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.SpecialInstructions = text
}

// PlaceOrder freezes the cart into a placed order with status received and
// empties the cart. An empty cart returns false and changes nothing.
func (m *Machine) PlaceOrder() (*models.PlacedOrder, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.state.CartItems) == 0 {
		return nil, false
	}

	totals := billing.OrderTotals(m.state.CartItems, m.state.ServiceFeeRate)
	items := make([]models.CartItem, len(m.state.CartItems))
	copy(items, m.state.CartItems)

	placed := &models.PlacedOrder{
		OrderID:             newOrderID(),
		TableNumber:         m.state.TableNumber,
		Items:               items,
		Status:              models.OrderStatusReceived,
		SpecialInstructions: m.state.SpecialInstructions,
		Subtotal:            totals.Subtotal,
		ServiceFee:          totals.ServiceFee,
		Total:               totals.Total,
		CreatedAt:           m.now().UTC(),
	}

	m.state.CartItems = []models.CartItem{}
	m.state.OrderID = &placed.OrderID
	m.state.PlacedOrder = placed
	m.state.OrderStatus = models.OrderStatusReceived

	m.logger.Debug("Order placed",
		zap.String("order_id", placed.OrderID),
		zap.Int64("total", placed.Total))

	out := clonePlaced(placed)
	return out, true
}

// UpdateOrderStatus sets the status on the state and on the placed order
func (m *Machine) UpdateOrderStatus(status models.OrderStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStatusLocked(status)
}

// CancelOrder marks the order cancelled. Callers gate it with CanCancel.
func (m *Machine) CancelOrder() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setStatusLocked(models.OrderStatusCancelled)
}

// TryCancel cancels the placed order when its status still allows it. The
// check and the transition share one lock so a concurrent Advance cannot
// slip between them. It returns the status seen and whether it cancelled.
func (m *Machine) TryCancel() (models.OrderStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.PlacedOrder == nil || !CanCancel(m.state.OrderStatus) {
		return m.state.OrderStatus, false
	}
	m.setStatusLocked(models.OrderStatusCancelled)
	return models.OrderStatusCancelled, true
}

// Advance moves the order one step along the tracking sequence. It returns
// the new status and false when there is nothing to advance.
func (m *Machine) Advance() (models.OrderStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.PlacedOrder == nil {
		return m.state.OrderStatus, false
	}
	next, ok := Next(m.state.OrderStatus)
	if !ok {
		return m.state.OrderStatus, false
	}
	m.setStatusLocked(next)
	return next, true
}

func (m *Machine) setStatusLocked(status models.OrderStatus) {
	m.state.OrderStatus = status
	if m.state.PlacedOrder != nil {
		m.state.PlacedOrder.Status = status
	}
}

// SetPaymentMethod records how the bill was settled. Empty clears it.
func (m *Machine) SetPaymentMethod(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if method == "" {
		m.state.PaymentMethod = nil
		return
	}
	m.state.PaymentMethod = &method
}

// ResetOrder returns to the empty state of a new venue visit
func (m *Machine) ResetOrder() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = Defaults(m.feeRate)
}

func newOrderID() string {
	return fmt.Sprintf("%d", 1000+rand.Intn(9000))
}

func clone(s models.OrderState) models.OrderState {
	out := s
	out.CartItems = make([]models.CartItem, len(s.CartItems))
	copy(out.CartItems, s.CartItems)
	if s.CafeID != nil {
		v := *s.CafeID
		out.CafeID = &v
	}
	if s.TableID != nil {
		v := *s.TableID
		out.TableID = &v
	}
	if s.OrderID != nil {
		v := *s.OrderID
		out.OrderID = &v
	}
	if s.PaymentMethod != nil {
		v := *s.PaymentMethod
		out.PaymentMethod = &v
	}
	out.PlacedOrder = clonePlaced(s.PlacedOrder)
	return out
}

func clonePlaced(p *models.PlacedOrder) *models.PlacedOrder {
	if p == nil {
		return nil
	}
	out := *p
	out.Items = make([]models.CartItem, len(p.Items))
	copy(out.Items, p.Items)
	return &out
}
