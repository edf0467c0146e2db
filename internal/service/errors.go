package service

import (
	"errors"
	"fmt"

	"cafehub/internal/util"
)

var (
	ErrCannotCancel    = errors.New("order can no longer be cancelled")
	ErrPaymentInFlight = errors.New("payment already in progress")
	ErrInvalidPayment  = errors.New("invalid payment details")
	ErrInvalidScan     = errors.New("unreadable table code")
)

// RedirectError sends the client back to an earlier step of a flow. It is
// not a failure and carries no message for the guest.
type RedirectError struct {
	Route string
}

func (e *RedirectError) Error() string {
	return "redirect to " + e.Route
}

// AsRedirect returns the redirect carried by err, if any
func AsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

// Page routes of a cafe, relative to /cafes/{id}
const (
	RouteReserve            = "reserve"
	RouteReserveSummary     = "reserve/summary"
	RouteReservePayment     = "reserve/payment"
	RouteReservationReceipt = "reservation/receipt"
	RouteScan               = "scan"
	RouteMenu               = "menu"
	RouteOrderSummary       = "order/summary"
	RouteOrderTracking      = "order/tracking"
	RouteBill               = "bill"
	RouteOrderPayment       = "order/payment"
	RouteOrderReceipt       = "order/receipt"
)

// CafeRoute builds the client path of a cafe page
func CafeRoute(cafeID, page string) string {
	return fmt.Sprintf("/cafes/%s/%s", cafeID, page)
}

func guard(cafeID, page string) error {
	util.ReservationGuardRedirectsTotal.WithLabelValues(page).Inc()
	return &RedirectError{Route: CafeRoute(cafeID, page)}
}
