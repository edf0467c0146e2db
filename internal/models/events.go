package models

import "time"

// Event types
const (
	EventTypeReservationConfirmed = "RESERVATION_CONFIRMED"
	EventTypeOrderPlaced          = "ORDER_PLACED"
	EventTypeOrderStatusChanged   = "ORDER_STATUS_CHANGED"
	EventTypeOrderCancelled       = "ORDER_CANCELLED"
	EventTypeOrderPaid            = "ORDER_PAID"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	SessionID string    `json:"session_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Type returns the event type, promoted to every concrete event
func (e BaseEvent) Type() string {
	return e.EventType
}

// ReservationConfirmedEvent published when a reservation payment completes
type ReservationConfirmedEvent struct {
	BaseEvent
	CafeID          string `json:"cafe_id"`
	ReservationCode string `json:"reservation_code"`
	TransactionID   string `json:"transaction_id"`
	PartySize       int    `json:"party_size"`
	DurationMinutes int    `json:"duration_minutes"`
	TableID         string `json:"table_id"`
	Amount          int64  `json:"amount"`
}

// OrderPlacedEvent published when a cart becomes a placed order
type OrderPlacedEvent struct {
	BaseEvent
	CafeID      string     `json:"cafe_id"`
	OrderID     string     `json:"order_id"`
	TableNumber string     `json:"table_number"`
	Items       []CartItem `json:"items"`
	Total       int64      `json:"total"`
}

// OrderStatusChangedEvent published on every status step
type OrderStatusChangedEvent struct {
	BaseEvent
	OrderID string      `json:"order_id"`
	Status  OrderStatus `json:"status"`
}

// OrderCancelledEvent published when the guest cancels
type OrderCancelledEvent struct {
	BaseEvent
	OrderID string `json:"order_id"`
}

// OrderPaidEvent published when the bill is paid. It carries the billing
// snapshot that ends up in the account history.
type OrderPaidEvent struct {
	BaseEvent
	UserID    string    `json:"user_id,omitempty"`
	PastOrder PastOrder `json:"past_order"`
}
