package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"cafehub/internal/catalog"
	"cafehub/internal/floorplan"
	"cafehub/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const cafeID = "brew-and-bloom"

var validCard = CardDetails{Number: "4242 4242 4242 4242", Expiry: "12/28", CVC: "123", Holder: "Ahmet Yilmaz"}

func TestDetailsStartsReservationForCafe(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	view, err := f.reservation.Details(ctx, sess, cafeID)
	require.NoError(t, err)
	assert.Equal(t, cafeID, *view.State.CafeID)
	assert.Len(t, view.Tables, 13)
	assert.Len(t, view.Durations, 3)
	assert.False(t, view.CanProceed)

	_, err = f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{PartySize: intPtr(2)})
	require.NoError(t, err)

	view, err = f.reservation.Details(ctx, sess, "midnight-bakery")
	require.NoError(t, err)
	assert.Equal(t, "midnight-bakery", *view.State.CafeID)
	assert.Nil(t, view.State.PartySize)

	_, err = f.reservation.Details(ctx, sess, "nowhere")
	assert.ErrorIs(t, err, catalog.ErrCafeNotFound)
}

func TestUpdateDetailsIgnoresBlockedTables(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	view, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{
		PartySize:       intPtr(4),
		DurationMinutes: intPtr(35),
		TableID:         strPtr("t1"),
	})
	require.NoError(t, err)
	assert.Nil(t, view.State.TableID)
	assert.False(t, view.CanProceed)

	for _, tv := range view.Tables {
		if tv.Table.ID == "t1" {
			assert.Equal(t, floorplan.BlockCapacity, tv.Blocked)
		}
	}

	view, err = f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{TableID: strPtr("t6"), Notes: strPtr("quiet corner")})
	require.NoError(t, err)
	assert.Equal(t, "t6", *view.State.TableID)
	assert.Equal(t, "quiet corner", view.State.Notes)
	assert.True(t, view.CanProceed)

	_, err = f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{TableID: strPtr("t99")})
	assert.ErrorIs(t, err, catalog.ErrTableNotFound)
}

func TestMergeDetails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	view, err := f.reservation.MergeDetails(ctx, sess, cafeID, []byte(`{"partySize":3,"notes":"hi"}`))
	require.NoError(t, err)
	assert.Equal(t, 3, *view.State.PartySize)

	_, err = f.reservation.MergeDetails(ctx, sess, cafeID, []byte(`"nope"`))
	assert.Error(t, err)
}

func TestSummaryGuard(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	_, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{PartySize: intPtr(2), DurationMinutes: intPtr(20)})
	require.NoError(t, err)

	_, err = f.reservation.Summary(ctx, sess, cafeID)
	re, ok := AsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, "/cafes/brew-and-bloom/reserve", re.Route)

	_, err = f.reservation.PaymentPage(ctx, sess, cafeID)
	re, ok = AsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, "/cafes/brew-and-bloom/reserve/summary", re.Route)

	_, err = f.reservation.Receipt(ctx, sess, cafeID)
	re, ok = AsRedirect(err)
	require.True(t, ok)
	assert.Equal(t, "/cafes/brew-and-bloom/reserve/payment", re.Route)
}

func TestReservationPaymentFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	_, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{
		PartySize:       intPtr(4),
		DurationMinutes: intPtr(55),
		TableID:         strPtr("t6"),
	})
	require.NoError(t, err)

	summary, err := f.reservation.Summary(ctx, sess, cafeID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), summary.Fee)
	assert.Equal(t, 55.0, summary.End.Sub(summary.Start).Minutes())

	page, err := f.reservation.PaymentPage(ctx, sess, cafeID)
	require.NoError(t, err)
	assert.Equal(t, int64(40), page.Amount)

	_, err = f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentAppleGooglePay})
	assert.ErrorIs(t, err, ErrInvalidPayment)
	_, err = f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentCash, Card: validCard})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	f.gateway.On("Charge", mock.Anything, mock.MatchedBy(func(r PaymentRequest) bool {
		return r.Flow == "reservation" && r.Amount == 40
	})).Return(nil).Once()

	receipt, err := f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentCreditCard, Card: validCard})
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^VENUE-\d{4}-\d{2}-\d{2}-\d{4}$`), *receipt.State.ReservationCode)
	assert.Regexp(t, regexp.MustCompile(`^TRX-\d{9}$`), *receipt.State.TransactionID)
	assert.Equal(t, "4242", *receipt.State.CardLast4)
	assert.NotNil(t, receipt.State.CreatedAt)

	again, err := f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentCreditCard, Card: validCard})
	require.NoError(t, err)
	assert.Equal(t, *receipt.State.ReservationCode, *again.State.ReservationCode)

	got, err := f.reservation.Receipt(ctx, sess, cafeID)
	require.NoError(t, err)
	assert.Equal(t, *receipt.State.TransactionID, *got.State.TransactionID)

	f.gateway.AssertExpectations(t)
	assert.Equal(t, []string{models.EventTypeReservationConfirmed}, f.events.seen())
}

func TestReservationPaymentGatewayError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	_, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{
		PartySize: intPtr(2), DurationMinutes: intPtr(20), TableID: strPtr("t1"),
	})
	require.NoError(t, err)

	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(errors.New("gateway down")).Once()
	_, err = f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentDebitCard, Card: validCard})
	assert.Error(t, err)
	assert.Nil(t, sess.Reservation.State().ReservationCode)
	assert.True(t, sess.ReservationPayment.TryStart(), "flag released after failure")
	f.gateway.AssertExpectations(t)
}

func TestReservationPaymentInFlight(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	_, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{
		PartySize: intPtr(2), DurationMinutes: intPtr(20), TableID: strPtr("t1"),
	})
	require.NoError(t, err)

	require.True(t, sess.ReservationPayment.TryStart())
	_, err = f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentCreditCard, Card: validCard})
	assert.ErrorIs(t, err, ErrPaymentInFlight)
	f.gateway.AssertNotCalled(t, "Charge", mock.Anything, mock.Anything)
}

func TestDetailsAfterConfirmationStartsOver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registry.Create(ctx)

	_, err := f.reservation.UpdateDetails(ctx, sess, cafeID, DetailsUpdate{
		PartySize: intPtr(2), DurationMinutes: intPtr(20), TableID: strPtr("t1"),
	})
	require.NoError(t, err)
	f.gateway.On("Charge", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = f.reservation.Pay(ctx, sess, cafeID, ReservationPaymentRequest{Method: models.PaymentCreditCard, Card: validCard})
	require.NoError(t, err)

	view, err := f.reservation.Details(ctx, sess, cafeID)
	require.NoError(t, err)
	assert.Nil(t, view.State.ReservationCode)
	assert.Nil(t, view.State.PartySize)
}
