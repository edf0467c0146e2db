package service

import (
	"context"
	"fmt"
	"time"

	"cafehub/internal/billing"
	"cafehub/internal/broker"
	"cafehub/internal/catalog"
	"cafehub/internal/models"
	"cafehub/internal/order"
	"cafehub/internal/session"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// OrderingService drives the in-venue pages: scan, menu, cart, tracking,
// bill and payment.
type OrderingService struct {
	catalog *catalog.Catalog
	gateway PaymentGateway
	events  *broker.EventPublisher
	vatRate float64
	now     func() time.Time
	logger  *zap.Logger
}

func NewOrderingService(
	c *catalog.Catalog,
	gateway PaymentGateway,
	events *broker.EventPublisher,
	vatRate float64,
) *OrderingService {
	if vatRate <= 0 {
		vatRate = billing.DefaultVATRate
	}
	return &OrderingService{
		catalog: c,
		gateway: gateway,
		events:  events,
		vatRate: vatRate,
		now:     time.Now,
		logger:  util.GetLogger(),
	}
}

// ScanRequest is a scanned QR payload or a typed table number
type ScanRequest struct {
	Payload string `json:"payload"`
	Label   string `json:"label"`
}

// ScanView is the table preview awaiting approval
type ScanView struct {
	Cafe  models.Cafe  `json:"cafe"`
	Table models.Table `json:"table"`
}

// CartView is the live cart with totals before VAT
type CartView struct {
	State  models.OrderState `json:"state"`
	Totals billing.Totals    `json:"totals"`
}

// CartUpdate is one cart mutation of the menu or summary page
type CartUpdate struct {
	ItemID   string `json:"itemId" binding:"required"`
	Quantity int    `json:"quantity"`
}

// TrackingView is the order tracking page
type TrackingView struct {
	Order     models.PlacedOrder   `json:"order"`
	Status    models.OrderStatus   `json:"status"`
	Steps     []models.OrderStatus `json:"steps"`
	CanCancel bool                 `json:"canCancel"`
}

// BillView is the VAT inclusive bill of the placed order
type BillView struct {
	Cafe  models.Cafe         `json:"cafe"`
	Order *models.PlacedOrder `json:"order"`
	Bill  models.Bill         `json:"bill"`
}

// OrderPaymentRequest is the submitted bill payment form
type OrderPaymentRequest struct {
	Method string      `json:"method"`
	Card   CardDetails `json:"card"`
}

// OrderReceiptView is the payment confirmation page
type OrderReceiptView struct {
	Cafe          models.Cafe        `json:"cafe"`
	Order         models.PlacedOrder `json:"order"`
	Bill          models.Bill        `json:"bill"`
	PaymentMethod string             `json:"paymentMethod"`
}

// TrackingSteps is the sequence shown on the tracking page
var TrackingSteps = []models.OrderStatus{
	models.OrderStatusReceived,
	models.OrderStatusPreparing,
	models.OrderStatusReady,
	models.OrderStatusDelivered,
}

var orderMethods = map[string]bool{
	models.PaymentCreditCard:     true,
	models.PaymentDebitCard:      true,
	models.PaymentAppleGooglePay: true,
	models.PaymentCash:           true,
}

// Scan resolves a QR payload or typed table number to a table of the cafe
func (s *OrderingService) Scan(ctx context.Context, cafeID string, req ScanRequest) (*ScanView, error) {
	_, span := util.StartSpan(ctx, "OrderingService.Scan")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	table, err := resolveScan(s.catalog, cafeID, req.Payload, req.Label)
	if err != nil {
		return nil, err
	}
	return &ScanView{Cafe: cafe, Table: table}, nil
}

// Approve binds the session to the scanned table. Moving to another cafe
// starts a new visit.
func (s *OrderingService) Approve(ctx context.Context, sess *session.Session, cafeID string, req ScanRequest) (*models.OrderState, error) {
	ctx, span := util.StartSpan(ctx, "OrderingService.Approve", util.SessionIDKey.String(sess.ID))
	defer span.End()

	view, err := s.Scan(ctx, cafeID, req)
	if err != nil {
		return nil, err
	}

	current := sess.Order.State()
	if current.CafeID != nil && *current.CafeID != cafeID {
		sess.Tracker.Stop()
		sess.Order.ResetOrder()
		s.logger.Debug("Order reset for new cafe",
			zap.String("session_id", sess.ID),
			zap.String("cafe_id", cafeID))
	}

	tableID := view.Table.ID
	sess.Order.SetTable(cafeID, view.Table.Label, tableID)
	state := sess.Order.State()
	return &state, nil
}

// Menu returns the menu of a cafe by category
func (s *OrderingService) Menu(ctx context.Context, cafeID string) (map[string][]models.MenuItem, error) {
	_, span := util.StartSpan(ctx, "OrderingService.Menu")
	defer span.End()
	return s.catalog.Menu(cafeID)
}

// AddToCart adds a menu item of the cafe to the cart
func (s *OrderingService) AddToCart(ctx context.Context, sess *session.Session, cafeID string, upd CartUpdate) (*CartView, error) {
	_, span := util.StartSpan(ctx, "OrderingService.AddToCart")
	defer span.End()

	item, err := s.catalog.MenuItem(cafeID, upd.ItemID)
	if err != nil {
		return nil, err
	}
	qty := upd.Quantity
	if qty == 0 {
		qty = 1
	}
	sess.Order.AddToCart(item, qty, item.ID)
	return s.cartView(sess), nil
}

// UpdateQuantity sets a line quantity, removing it at zero or less
func (s *OrderingService) UpdateQuantity(ctx context.Context, sess *session.Session, upd CartUpdate) *CartView {
	_, span := util.StartSpan(ctx, "OrderingService.UpdateQuantity")
	defer span.End()

	sess.Order.UpdateQuantity(upd.ItemID, upd.Quantity)
	return s.cartView(sess)
}

// RemoveFromCart drops a line
func (s *OrderingService) RemoveFromCart(ctx context.Context, sess *session.Session, itemID string) *CartView {
	_, span := util.StartSpan(ctx, "OrderingService.RemoveFromCart")
	defer span.End()

	sess.Order.RemoveFromCart(itemID)
	return s.cartView(sess)
}

// ClearCart empties the cart
func (s *OrderingService) ClearCart(ctx context.Context, sess *session.Session) *CartView {
	_, span := util.StartSpan(ctx, "OrderingService.ClearCart")
	defer span.End()

	sess.Order.ClearCart()
	return s.cartView(sess)
}

// SetSpecialInstructions stores the kitchen note
func (s *OrderingService) SetSpecialInstructions(ctx context.Context, sess *session.Session, text string) *CartView {
	_, span := util.StartSpan(ctx, "OrderingService.SetSpecialInstructions")
	defer span.End()

	sess.Order.SetSpecialInstructions(text)
	return s.cartView(sess)
}

// Summary is the order summary page
func (s *OrderingService) Summary(ctx context.Context, sess *session.Session) *CartView {
	_, span := util.StartSpan(ctx, "OrderingService.Summary")
	defer span.End()
	return s.cartView(sess)
}

func (s *OrderingService) cartView(sess *session.Session) *CartView {
	state := sess.Order.State()
	return &CartView{
		State:  state,
		Totals: billing.OrderTotals(state.CartItems, state.ServiceFeeRate),
	}
}

// PlaceOrder sends the cart to the kitchen and starts tracking. An empty
// cart goes back to the menu.
func (s *OrderingService) PlaceOrder(ctx context.Context, sess *session.Session, cafeID string) (*models.PlacedOrder, error) {
	ctx, span := util.StartSpan(ctx, "OrderingService.PlaceOrder", util.SessionIDKey.String(sess.ID))
	defer span.End()

	if _, err := s.catalog.Cafe(cafeID); err != nil {
		return nil, err
	}

	placed, ok := sess.Order.PlaceOrder()
	if !ok {
		return nil, guard(cafeID, RouteMenu)
	}
	sess.Tracker.Stop()
	sess.Tracker.Start(sess.Context())

	util.OrdersPlacedTotal.Inc()
	s.logger.Info("Order placed",
		zap.String("session_id", sess.ID),
		zap.String("cafe_id", cafeID),
		zap.String("order_id", placed.OrderID),
		zap.Int64("total", placed.Total))

	event := &models.OrderPlacedEvent{
		BaseEvent:   broker.NewBaseEvent(models.EventTypeOrderPlaced, sess.ID),
		CafeID:      cafeID,
		OrderID:     placed.OrderID,
		TableNumber: placed.TableNumber,
		Items:       placed.Items,
		Total:       placed.Total,
	}
	if err := s.events.PublishOrderPlaced(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPlaced event", zap.Error(err))
	}
	return placed, nil
}

// Tracking shows the placed order and re-arms its tracker
func (s *OrderingService) Tracking(ctx context.Context, sess *session.Session, cafeID string) (*TrackingView, error) {
	_, span := util.StartSpan(ctx, "OrderingService.Tracking")
	defer span.End()

	state := sess.Order.State()
	if state.PlacedOrder == nil {
		return nil, guard(cafeID, RouteMenu)
	}
	sess.Tracker.Start(sess.Context())

	return &TrackingView{
		Order:     *state.PlacedOrder,
		Status:    state.OrderStatus,
		Steps:     TrackingSteps,
		CanCancel: order.CanCancel(state.OrderStatus),
	}, nil
}

// Cancel withdraws the order while the kitchen has not finished it
func (s *OrderingService) Cancel(ctx context.Context, sess *session.Session, cafeID string) (*TrackingView, error) {
	ctx, span := util.StartSpan(ctx, "OrderingService.Cancel", util.SessionIDKey.String(sess.ID))
	defer span.End()

	state := sess.Order.State()
	if state.PlacedOrder == nil {
		return nil, guard(cafeID, RouteMenu)
	}
	if status, ok := sess.Order.TryCancel(); !ok {
		return nil, fmt.Errorf("%w: order is %s", ErrCannotCancel, status)
	}

	sess.Tracker.Stop()
	sess.Tracker.Publish(models.OrderStatusCancelled)

	util.OrdersCancelledTotal.Inc()
	util.OrderStatusTransitionsTotal.WithLabelValues(string(models.OrderStatusCancelled)).Inc()
	s.logger.Info("Order cancelled",
		zap.String("session_id", sess.ID),
		zap.String("order_id", state.PlacedOrder.OrderID))

	event := &models.OrderCancelledEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderCancelled, sess.ID),
		OrderID:   state.PlacedOrder.OrderID,
	}
	if err := s.events.PublishOrderCancelled(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderCancelled event", zap.Error(err))
	}

	state = sess.Order.State()
	return &TrackingView{
		Order:     *state.PlacedOrder,
		Status:    state.OrderStatus,
		Steps:     TrackingSteps,
		CanCancel: false,
	}, nil
}

// Bill is the VAT inclusive bill, all zeros before an order is placed
func (s *OrderingService) Bill(ctx context.Context, sess *session.Session, cafeID string) (*BillView, error) {
	_, span := util.StartSpan(ctx, "OrderingService.Bill")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state := sess.Order.State()
	return &BillView{
		Cafe:  cafe,
		Order: state.PlacedOrder,
		Bill:  billing.BillFor(state.PlacedOrder, s.vatRate),
	}, nil
}

// PaymentPage is the bill payment form
func (s *OrderingService) PaymentPage(ctx context.Context, sess *session.Session, cafeID string) (*BillView, error) {
	ctx, span := util.StartSpan(ctx, "OrderingService.PaymentPage")
	defer span.End()

	if sess.Order.State().PlacedOrder == nil {
		return nil, guard(cafeID, RouteBill)
	}
	return s.Bill(ctx, sess, cafeID)
}

// Pay settles the bill once. Card methods need the card form, cash and
// wallet payments do not. The paid order is published for the account
// history.
func (s *OrderingService) Pay(ctx context.Context, sess *session.Session, cafeID string, req OrderPaymentRequest) (*OrderReceiptView, error) {
	ctx, span := util.StartSpan(ctx, "OrderingService.Pay", util.SessionIDKey.String(sess.ID))
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state := sess.Order.State()
	if state.PlacedOrder == nil {
		return nil, guard(cafeID, RouteBill)
	}
	if state.PaymentMethod != nil {
		return &OrderReceiptView{
			Cafe:          cafe,
			Order:         *state.PlacedOrder,
			Bill:          billing.BillFor(state.PlacedOrder, s.vatRate),
			PaymentMethod: *state.PaymentMethod,
		}, nil
	}
	if !orderMethods[req.Method] {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrInvalidPayment, req.Method)
	}
	if RequiresCard(req.Method) && !req.Card.Complete() {
		return nil, fmt.Errorf("%w: card details are incomplete", ErrInvalidPayment)
	}

	if !sess.OrderPayment.TryStart() {
		return nil, ErrPaymentInFlight
	}
	defer sess.OrderPayment.Done()

	bill := billing.BillFor(state.PlacedOrder, s.vatRate)
	err = s.gateway.Charge(ctx, PaymentRequest{
		Flow:      "order",
		SessionID: sess.ID,
		Method:    req.Method,
		Amount:    bill.Total,
		Card:      req.Card,
	})
	if err != nil {
		return nil, fmt.Errorf("order payment failed: %w", err)
	}

	sess.Order.SetPaymentMethod(req.Method)
	util.OrdersPaidTotal.Inc()
	s.logger.Info("Bill paid",
		zap.String("session_id", sess.ID),
		zap.String("order_id", state.PlacedOrder.OrderID),
		zap.String("method", req.Method),
		zap.Int64("total", bill.Total))

	event := &models.OrderPaidEvent{
		BaseEvent: broker.NewBaseEvent(models.EventTypeOrderPaid, sess.ID),
		PastOrder: s.pastOrder(cafe, *state.PlacedOrder, bill, req),
	}
	if u, ok := sess.Auth.User(); ok {
		event.UserID = u.ID
	}
	if err := s.events.PublishOrderPaid(ctx, event); err != nil {
		s.logger.Error("Failed to publish OrderPaid event", zap.Error(err))
	}

	return &OrderReceiptView{
		Cafe:          cafe,
		Order:         *state.PlacedOrder,
		Bill:          bill,
		PaymentMethod: req.Method,
	}, nil
}

func (s *OrderingService) pastOrder(cafe models.Cafe, placed models.PlacedOrder, bill models.Bill, req OrderPaymentRequest) models.PastOrder {
	items := make([]models.PastOrderItem, 0, len(placed.Items))
	for _, it := range placed.Items {
		items = append(items, models.PastOrderItem{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.Price})
	}

	var last4 *string
	if RequiresCard(req.Method) {
		v := req.Card.Last4()
		last4 = &v
	}

	return models.PastOrder{
		ID:            placed.OrderID,
		CafeID:        cafe.ID,
		CafeName:      cafe.Name,
		Date:          s.now().UTC(),
		TableNumber:   placed.TableNumber,
		Total:         bill.Total,
		Status:        models.PastOrderCompleted,
		Items:         items,
		PaymentMethod: req.Method,
		CardLast4:     last4,
		Subtotal:      bill.Subtotal,
		ServiceFee:    bill.ServiceFee,
		VAT:           bill.VAT,
	}
}

// Receipt confirms the payment
func (s *OrderingService) Receipt(ctx context.Context, sess *session.Session, cafeID string) (*OrderReceiptView, error) {
	_, span := util.StartSpan(ctx, "OrderingService.Receipt")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state := sess.Order.State()
	if state.PaymentMethod == nil || state.PlacedOrder == nil {
		return nil, guard(cafeID, RouteBill)
	}
	return &OrderReceiptView{
		Cafe:          cafe,
		Order:         *state.PlacedOrder,
		Bill:          billing.BillFor(state.PlacedOrder, s.vatRate),
		PaymentMethod: *state.PaymentMethod,
	}, nil
}

// StatusHook publishes the status changes driven by session trackers
func StatusHook(events *broker.EventPublisher) session.StatusHook {
	logger := util.GetLogger()
	return func(ctx context.Context, sessionID, orderID string, status models.OrderStatus) {
		event := &models.OrderStatusChangedEvent{
			BaseEvent: broker.NewBaseEvent(models.EventTypeOrderStatusChanged, sessionID),
			OrderID:   orderID,
			Status:    status,
		}
		if err := events.PublishOrderStatusChanged(ctx, event); err != nil {
			logger.Error("Failed to publish OrderStatusChanged event", zap.Error(err))
		}
	}
}
