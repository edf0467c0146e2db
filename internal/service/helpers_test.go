package service

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cafehub/internal/auth"
	"cafehub/internal/broker"
	"cafehub/internal/catalog"
	"cafehub/internal/localstore"
	"cafehub/internal/session"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Charge(ctx context.Context, req PaymentRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

// eventRecorder collects the event types that went through the bus
type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) handle(_ context.Context, msg kafka.Message) error {
	var base struct {
		EventType string `json:"event_type"`
	}
	if err := json.Unmarshal(msg.Value, &base); err != nil {
		return err
	}
	r.mu.Lock()
	r.types = append(r.types, base.EventType)
	r.mu.Unlock()
	return nil
}

func (r *eventRecorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

type fixture struct {
	catalog     *catalog.Catalog
	registry    *session.Registry
	gateway     *mockGateway
	events      *eventRecorder
	reservation *ReservationService
	ordering    *OrderingService
	account     *AccountService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithInterval(t, time.Hour)
}

// newFixtureWithInterval lets tracking tests run the kitchen simulation fast
func newFixtureWithInterval(t *testing.T, interval time.Duration) *fixture {
	t.Helper()
	c := catalog.MustLoad()
	rec := &eventRecorder{}
	pub := broker.NewEventPublisher(broker.NewLocalBus(rec.handle))
	gw := new(mockGateway)

	reg := session.NewRegistry(session.Options{
		Backend:          localstore.NewMemory(),
		AuthService:      auth.NewMockService(0),
		SeedDemoUser:     true,
		ServiceFeeRate:   0.10,
		TrackingInterval: interval,
	})
	t.Cleanup(reg.Close)

	return &fixture{
		catalog:     c,
		registry:    reg,
		gateway:     gw,
		events:      rec,
		reservation: NewReservationService(c, gw, pub, "VENUE"),
		ordering:    NewOrderingService(c, gw, pub, 0.10),
		account:     NewAccountService(c),
	}
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
