package order

import "cafehub/internal/models"

var progression = map[models.OrderStatus]models.OrderStatus{
	models.OrderStatusReceived:  models.OrderStatusPreparing,
	models.OrderStatusPreparing: models.OrderStatusReady,
	models.OrderStatusReady:     models.OrderStatusDelivered,
}

// Next returns the status that follows s on the tracking page
func Next(s models.OrderStatus) (models.OrderStatus, bool) {
	next, ok := progression[s]
	return next, ok
}

// CanCancel reports whether the guest may still cancel
func CanCancel(s models.OrderStatus) bool {
	return s == models.OrderStatusReceived || s == models.OrderStatusPreparing
}

// IsTerminal reports whether no further transition happens from s
func IsTerminal(s models.OrderStatus) bool {
	return s == models.OrderStatusDelivered || s == models.OrderStatusCancelled
}
