package service

import (
	"context"
	"fmt"
	"time"

	"cafehub/internal/broker"
	"cafehub/internal/catalog"
	"cafehub/internal/floorplan"
	"cafehub/internal/models"
	"cafehub/internal/reservation"
	"cafehub/internal/session"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

// DefaultReservationCodePrefix starts every reservation code
const DefaultReservationCodePrefix = "VENUE"

// ReservationService drives the details, summary, payment and receipt
// pages of a table reservation.
type ReservationService struct {
	catalog    *catalog.Catalog
	gateway    PaymentGateway
	events     *broker.EventPublisher
	codePrefix string
	now        func() time.Time
	logger     *zap.Logger
}

func NewReservationService(
	c *catalog.Catalog,
	gateway PaymentGateway,
	events *broker.EventPublisher,
	codePrefix string,
) *ReservationService {
	if codePrefix == "" {
		codePrefix = DefaultReservationCodePrefix
	}
	return &ReservationService{
		catalog:    c,
		gateway:    gateway,
		events:     events,
		codePrefix: codePrefix,
		now:        time.Now,
		logger:     util.GetLogger(),
	}
}

// DetailsView is the reservation details page
type DetailsView struct {
	Cafe         models.Cafe                  `json:"cafe"`
	State        models.ReservationState      `json:"state"`
	Tables       []floorplan.TableView        `json:"tables"`
	Durations    []reservation.DurationOption `json:"durations"`
	MinPartySize int                          `json:"minPartySize"`
	MaxPartySize int                          `json:"maxPartySize"`
	CanProceed   bool                         `json:"canProceed"`
}

// DetailsUpdate carries the choices of the details page. Set fields are
// applied in form order: party size, duration, table, notes.
type DetailsUpdate struct {
	PartySize       *int    `json:"partySize"`
	DurationMinutes *int    `json:"durationMinutes"`
	TableID         *string `json:"tableId"`
	Notes           *string `json:"notes"`
}

// SummaryView is the reservation summary page
type SummaryView struct {
	Cafe  models.Cafe             `json:"cafe"`
	State models.ReservationState `json:"state"`
	Start time.Time               `json:"start"`
	End   time.Time               `json:"end"`
	Fee   int64                   `json:"fee"`
}

// ReservationPaymentView is the reservation payment page
type ReservationPaymentView struct {
	Cafe    models.Cafe             `json:"cafe"`
	State   models.ReservationState `json:"state"`
	Amount  int64                   `json:"amount"`
	Methods []string                `json:"methods"`
}

// ReservationPaymentRequest is the submitted payment form
type ReservationPaymentRequest struct {
	Method string      `json:"method"`
	Card   CardDetails `json:"card"`
}

// ReservationReceiptView is the confirmation page
type ReservationReceiptView struct {
	Cafe  models.Cafe             `json:"cafe"`
	State models.ReservationState `json:"state"`
}

var reservationMethods = []string{
	models.PaymentCreditCard,
	models.PaymentAppleGooglePay,
	models.PaymentDebitCard,
}

// Details opens the details page. A reservation for another cafe, or one
// already confirmed, is replaced by a fresh one for cafeID.
func (s *ReservationService) Details(ctx context.Context, sess *session.Session, cafeID string) (*DetailsView, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Details")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	s.enter(ctx, sess, cafeID)
	return s.detailsView(cafe, sess.Reservation.State())
}

// UpdateDetails applies the details form. Choices the floor plan or the
// option table does not allow are ignored.
func (s *ReservationService) UpdateDetails(ctx context.Context, sess *session.Session, cafeID string, upd DetailsUpdate) (*DetailsView, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.UpdateDetails")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	s.enter(ctx, sess, cafeID)

	m := sess.Reservation
	if upd.PartySize != nil {
		m.SelectPartySize(ctx, *upd.PartySize)
	}
	if upd.DurationMinutes != nil {
		m.SelectDuration(ctx, *upd.DurationMinutes)
	}
	if upd.TableID != nil {
		table, err := s.catalog.Table(cafeID, *upd.TableID)
		if err != nil {
			return nil, err
		}
		if !m.SelectTable(ctx, table) {
			s.logger.Debug("Table not selectable",
				zap.String("session_id", sess.ID),
				zap.String("table_id", table.ID))
		}
	}
	if upd.Notes != nil {
		m.SetNotes(ctx, *upd.Notes)
	}
	return s.detailsView(cafe, m.State())
}

// MergeDetails shallow merges a raw JSON object over the reservation
// without any validation.
func (s *ReservationService) MergeDetails(ctx context.Context, sess *session.Session, cafeID string, patch []byte) (*DetailsView, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.MergeDetails")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	s.enter(ctx, sess, cafeID)

	state, err := sess.Reservation.SetDetails(ctx, patch)
	if err != nil {
		return nil, err
	}
	return s.detailsView(cafe, state)
}

func (s *ReservationService) enter(ctx context.Context, sess *session.Session, cafeID string) {
	state := sess.Reservation.State()
	if reservation.BelongsTo(state, cafeID) && !reservation.IsConfirmed(state) {
		return
	}
	sess.Reservation.Reset(ctx, cafeID)
	s.logger.Debug("Reservation started",
		zap.String("session_id", sess.ID),
		zap.String("cafe_id", cafeID))
}

func (s *ReservationService) detailsView(cafe models.Cafe, state models.ReservationState) (*DetailsView, error) {
	plan, err := s.catalog.FloorPlan(cafe.ID)
	if err != nil {
		return nil, err
	}
	partySize, selected := 0, ""
	if state.PartySize != nil {
		partySize = *state.PartySize
	}
	if state.TableID != nil {
		selected = *state.TableID
	}
	return &DetailsView{
		Cafe:         cafe,
		State:        state,
		Tables:       floorplan.Annotate(plan, partySize, selected),
		Durations:    reservation.DurationOptions,
		MinPartySize: reservation.MinPartySize,
		MaxPartySize: reservation.MaxPartySize,
		CanProceed:   reservation.DetailsComplete(state),
	}, nil
}

// ready returns the reservation of cafeID when its details are complete,
// otherwise a redirect to fallback.
func (s *ReservationService) ready(sess *session.Session, cafeID, fallback string) (models.ReservationState, error) {
	state := sess.Reservation.State()
	if !reservation.BelongsTo(state, cafeID) || !reservation.DetailsComplete(state) {
		return state, guard(cafeID, fallback)
	}
	return state, nil
}

// Summary shows the chosen table, stay window and fee
func (s *ReservationService) Summary(ctx context.Context, sess *session.Session, cafeID string) (*SummaryView, error) {
	_, span := util.StartSpan(ctx, "ReservationService.Summary")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state, err := s.ready(sess, cafeID, RouteReserve)
	if err != nil {
		return nil, err
	}

	start, end := reservation.Window(state, s.now())
	return &SummaryView{
		Cafe:  cafe,
		State: state,
		Start: start,
		End:   end,
		Fee:   *state.TotalPrice,
	}, nil
}

// PaymentPage shows the amount due and the accepted methods
func (s *ReservationService) PaymentPage(ctx context.Context, sess *session.Session, cafeID string) (*ReservationPaymentView, error) {
	_, span := util.StartSpan(ctx, "ReservationService.PaymentPage")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state, err := s.ready(sess, cafeID, RouteReserveSummary)
	if err != nil {
		return nil, err
	}
	return &ReservationPaymentView{
		Cafe:    cafe,
		State:   state,
		Amount:  *state.TotalPrice,
		Methods: reservationMethods,
	}, nil
}

// Pay charges the reservation fee and issues the reservation code. Every
// card field is required whatever the method. A repeated submission after
// success answers the existing receipt.
func (s *ReservationService) Pay(ctx context.Context, sess *session.Session, cafeID string, req ReservationPaymentRequest) (*ReservationReceiptView, error) {
	ctx, span := util.StartSpan(ctx, "ReservationService.Pay", util.SessionIDKey.String(sess.ID))
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state, err := s.ready(sess, cafeID, RouteReserveSummary)
	if err != nil {
		return nil, err
	}
	if reservation.IsConfirmed(state) {
		return &ReservationReceiptView{Cafe: cafe, State: state}, nil
	}
	if !validReservationMethod(req.Method) {
		return nil, fmt.Errorf("%w: unsupported method %q", ErrInvalidPayment, req.Method)
	}
	if !req.Card.Complete() {
		return nil, fmt.Errorf("%w: card details are incomplete", ErrInvalidPayment)
	}

	if !sess.ReservationPayment.TryStart() {
		return nil, ErrPaymentInFlight
	}
	defer sess.ReservationPayment.Done()

	err = s.gateway.Charge(ctx, PaymentRequest{
		Flow:      "reservation",
		SessionID: sess.ID,
		Method:    req.Method,
		Amount:    *state.TotalPrice,
		Card:      req.Card,
	})
	if err != nil {
		return nil, fmt.Errorf("reservation payment failed: %w", err)
	}

	now := s.now()
	state = sess.Reservation.RecordPayment(ctx, reservation.Payment{
		Method:          req.Method,
		CardLast4:       req.Card.Last4(),
		ReservationCode: reservation.NewReservationCode(s.codePrefix, now),
		TransactionID:   reservation.NewTransactionID(),
		CreatedAt:       now.UTC(),
	})

	util.ReservationsConfirmedTotal.Inc()
	s.logger.Info("Reservation confirmed",
		zap.String("session_id", sess.ID),
		zap.String("cafe_id", cafeID),
		zap.String("reservation_code", *state.ReservationCode))

	event := &models.ReservationConfirmedEvent{
		BaseEvent:       broker.NewBaseEvent(models.EventTypeReservationConfirmed, sess.ID),
		CafeID:          cafeID,
		ReservationCode: *state.ReservationCode,
		TransactionID:   *state.TransactionID,
		PartySize:       *state.PartySize,
		DurationMinutes: *state.DurationMinutes,
		TableID:         *state.TableID,
		Amount:          *state.TotalPrice,
	}
	if err := s.events.PublishReservationConfirmed(ctx, event); err != nil {
		s.logger.Error("Failed to publish ReservationConfirmed event", zap.Error(err))
	}

	return &ReservationReceiptView{Cafe: cafe, State: state}, nil
}

// Receipt shows the confirmed reservation
func (s *ReservationService) Receipt(ctx context.Context, sess *session.Session, cafeID string) (*ReservationReceiptView, error) {
	_, span := util.StartSpan(ctx, "ReservationService.Receipt")
	defer span.End()

	cafe, err := s.catalog.Cafe(cafeID)
	if err != nil {
		return nil, err
	}
	state := sess.Reservation.State()
	if !reservation.BelongsTo(state, cafeID) || state.ReservationCode == nil {
		return nil, guard(cafeID, RouteReservePayment)
	}
	return &ReservationReceiptView{Cafe: cafe, State: state}, nil
}

func validReservationMethod(method string) bool {
	for _, m := range reservationMethods {
		if m == method {
			return true
		}
	}
	return false
}
