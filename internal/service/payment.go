package service

import (
	"context"
	"strings"
	"time"

	"cafehub/internal/models"
	"cafehub/internal/util"
)

// DefaultPaymentDelay is the simulated processing time of the mock gateway
const DefaultPaymentDelay = time.Second

// CardDetails is the card form of the payment pages
type CardDetails struct {
	Number string `json:"cardNumber"`
	Expiry string `json:"expiry"`
	CVC    string `json:"cvc"`
	Holder string `json:"cardholder"`
}

// Complete reports whether every card field is filled in
func (c CardDetails) Complete() bool {
	return strings.TrimSpace(c.Number) != "" &&
		strings.TrimSpace(c.Expiry) != "" &&
		strings.TrimSpace(c.CVC) != "" &&
		strings.TrimSpace(c.Holder) != ""
}

// Last4 returns the last four digits of the card number, 0000 when it has
// no digits.
func (c CardDetails) Last4() string {
	var digits []byte
	for i := 0; i < len(c.Number); i++ {
		if c.Number[i] >= '0' && c.Number[i] <= '9' {
			digits = append(digits, c.Number[i])
		}
	}
	if len(digits) == 0 {
		return "0000"
	}
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}
	return string(digits)
}

// RequiresCard reports whether method is settled with card details
func RequiresCard(method string) bool {
	return method == models.PaymentCreditCard || method == models.PaymentDebitCard
}

// PaymentRequest is what the gateway is asked to charge
type PaymentRequest struct {
	Flow      string
	SessionID string
	Method    string
	Amount    int64
	Card      CardDetails
}

// PaymentGateway charges a guest. MockGateway stands in until a real
// provider is wired.
type PaymentGateway interface {
	Charge(ctx context.Context, req PaymentRequest) error
}

// MockGateway approves every charge after a fixed delay
type MockGateway struct {
	Delay time.Duration
}

func NewMockGateway(delay time.Duration) *MockGateway {
	if delay < 0 {
		delay = 0
	}
	return &MockGateway{Delay: delay}
}

// Charge waits for the delay or for ctx, whichever ends first
func (g *MockGateway) Charge(ctx context.Context, req PaymentRequest) error {
	start := time.Now()
	defer func() {
		util.PaymentProcessingLatency.WithLabelValues(req.Flow).Observe(time.Since(start).Seconds())
	}()

	if g.Delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(g.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
