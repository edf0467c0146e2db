package reservation

import (
	"context"
	"time"

	"cafehub/internal/floorplan"
	"cafehub/internal/models"
)

const (
	MinPartySize = 1
	MaxPartySize = 10
)

// DurationOption is an offered stay length and its fixed reservation fee
type DurationOption struct {
	Minutes int   `json:"minutes"`
	Price   int64 `json:"price"`
}

// DurationOptions are the stays a guest can book
var DurationOptions = []DurationOption{
	{Minutes: 20, Price: 15},
	{Minutes: 35, Price: 20},
	{Minutes: 55, Price: 40},
}

// PriceFor returns the fee of a duration
func PriceFor(minutes int) (int64, bool) {
	for _, opt := range DurationOptions {
		if opt.Minutes == minutes {
			return opt.Price, true
		}
	}
	return 0, false
}

// SelectPartySize sets the party size and clears the table so capacity is
// checked again. Sizes outside 1..10 and confirmed reservations are ignored.
func (m *Machine) SelectPartySize(ctx context.Context, size int) bool {
	if size < MinPartySize || size > MaxPartySize || IsConfirmed(m.State()) {
		return false
	}
	m.Apply(ctx, func(s *models.ReservationState) {
		s.PartySize = ptr(size)
		s.TableID = nil
		s.TableLabel = nil
		s.TableArea = nil
	})
	return true
}

// SelectDuration sets the stay length and takes the fee from the option
// table. The price is not recomputed later.
func (m *Machine) SelectDuration(ctx context.Context, minutes int) bool {
	price, ok := PriceFor(minutes)
	if !ok || IsConfirmed(m.State()) {
		return false
	}
	m.Apply(ctx, func(s *models.ReservationState) {
		s.DurationMinutes = ptr(minutes)
		s.TotalPrice = ptr(price)
	})
	return true
}

// SelectTable binds the table when it is available and seats the chosen
// party. Anything else is silently ignored.
func (m *Machine) SelectTable(ctx context.Context, t models.Table) bool {
	current := m.State()
	if current.PartySize == nil || IsConfirmed(current) {
		return false
	}
	if !floorplan.Selectable(t, *current.PartySize) {
		return false
	}
	m.Apply(ctx, func(s *models.ReservationState) {
		s.TableID = ptr(t.ID)
		s.TableLabel = ptr(t.Label)
		s.TableArea = ptr(t.Area)
	})
	return true
}

// SetNotes stores the free text request
func (m *Machine) SetNotes(ctx context.Context, notes string) bool {
	if IsConfirmed(m.State()) {
		return false
	}
	m.Apply(ctx, func(s *models.ReservationState) {
		s.Notes = notes
	})
	return true
}

// Payment is the outcome of a reservation payment submission
type Payment struct {
	Method          string
	CardLast4       string
	ReservationCode string
	TransactionID   string
	CreatedAt       time.Time
}

// RecordPayment stores the payment outcome, which makes the reservation
// read-only for the rest of the session.
func (m *Machine) RecordPayment(ctx context.Context, p Payment) models.ReservationState {
	return m.Apply(ctx, func(s *models.ReservationState) {
		s.PaymentMethod = ptr(p.Method)
		s.CardLast4 = ptr(p.CardLast4)
		s.ReservationCode = ptr(p.ReservationCode)
		s.TransactionID = ptr(p.TransactionID)
		s.CreatedAt = ptr(p.CreatedAt)
	})
}

// DetailsComplete reports whether the details step may be left: party
// size, duration, table and price all set.
func DetailsComplete(s models.ReservationState) bool {
	return s.PartySize != nil && s.DurationMinutes != nil && s.TableID != nil && s.TotalPrice != nil
}

// IsConfirmed reports whether the reservation reached its receipt
func IsConfirmed(s models.ReservationState) bool {
	return s.ReservationCode != nil && s.TransactionID != nil
}

// BelongsTo reports whether the state is for cafeID
func BelongsTo(s models.ReservationState, cafeID string) bool {
	return s.CafeID != nil && *s.CafeID == cafeID
}

// Window returns the start and end of the stay when it begins at start
func Window(s models.ReservationState, start time.Time) (time.Time, time.Time) {
	minutes := 0
	if s.DurationMinutes != nil {
		minutes = *s.DurationMinutes
	}
	return start, start.Add(time.Duration(minutes) * time.Minute)
}
