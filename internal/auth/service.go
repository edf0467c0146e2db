package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"cafehub/internal/models"
)

// DefaultDelay is how long the mock service pretends to talk to a backend
const DefaultDelay = 300 * time.Millisecond

var ErrMissingCredentials = errors.New("email and password are required")

// SignupRequest is the registration form
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required"`
}

// AuthService resolves sign-in attempts to an account. A real identity
// provider can replace MockService without touching Store.
type AuthService interface {
	Login(ctx context.Context, email, password string) (models.User, error)
	LoginWithGoogle(ctx context.Context) (models.User, error)
	LoginWithApple(ctx context.Context) (models.User, error)
	Signup(ctx context.Context, req SignupRequest) (models.User, error)
}

// MockService accepts every attempt after a fixed delay and answers with
// the demo account.
type MockService struct {
	Delay time.Duration
}

// NewMockService creates the mock service. A negative delay means none.
func NewMockService(delay time.Duration) *MockService {
	if delay < 0 {
		delay = 0
	}
	return &MockService{Delay: delay}
}

func (s *MockService) wait(ctx context.Context) error {
	if s.Delay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (s *MockService) Login(ctx context.Context, email, password string) (models.User, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return models.User{}, ErrMissingCredentials
	}
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	return DemoUser(), nil
}

func (s *MockService) LoginWithGoogle(ctx context.Context) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	return DemoUser(), nil
}

func (s *MockService) LoginWithApple(ctx context.Context) (models.User, error) {
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}
	return DemoUser(), nil
}

// Signup returns the demo account carrying the submitted name, email and
// phone.
func (s *MockService) Signup(ctx context.Context, req SignupRequest) (models.User, error) {
	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return models.User{}, ErrMissingCredentials
	}
	if err := s.wait(ctx); err != nil {
		return models.User{}, err
	}

	u := DemoUser()
	u.Name = req.Name
	u.Email = req.Email
	u.Phone = nil
	if req.Phone != "" {
		phone := req.Phone
		u.Phone = &phone
	}
	return u, nil
}

// DemoUser is the account every mock sign-in resolves to
func DemoUser() models.User {
	phone := "0532 123 4567"
	birth := "1990-05-15"
	card := "4242"

	return models.User{
		ID:          "user-1",
		Name:        "Ahmet Yılmaz",
		Email:       "ahmet@email.com",
		Phone:       &phone,
		BirthDate:   &birth,
		MemberSince: "2025-01-15",
		Favorites:   []string{"brew-and-bloom", "third-wave-stories", "midnight-bakery"},
		Orders: []models.PastOrder{
			{
				ID:          "ord-001",
				CafeID:      "brew-and-bloom",
				CafeName:    "Brew & Bloom",
				Date:        time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
				TableNumber: "7",
				Total:       245,
				Status:      models.PastOrderCompleted,
				Items: []models.PastOrderItem{
					{Name: "Turkish Coffee", Quantity: 2, UnitPrice: 45},
					{Name: "Baklava", Quantity: 1, UnitPrice: 75},
					{Name: "Water", Quantity: 2, UnitPrice: 10},
				},
				PaymentMethod: models.PaymentCreditCard,
				CardLast4:     &card,
				Subtotal:      220,
				ServiceFee:    15,
				VAT:           10,
			},
			{
				ID:          "ord-002",
				CafeID:      "third-wave-stories",
				CafeName:    "Third Wave Stories",
				Date:        time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC),
				TableNumber: "3",
				Total:       180,
				Status:      models.PastOrderCompleted,
				Items: []models.PastOrderItem{
					{Name: "Filter Coffee", Quantity: 2, UnitPrice: 45},
					{Name: "Cheesecake", Quantity: 1, UnitPrice: 85},
				},
				PaymentMethod: models.PaymentAppleGooglePay,
				Subtotal:      175,
				ServiceFee:    3,
				VAT:           2,
			},
			{
				ID:          "ord-003",
				CafeID:      "midnight-bakery",
				CafeName:    "Midnight Bakery & Coffee",
				Date:        time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC),
				TableNumber: "2",
				Total:       120,
				Status:      models.PastOrderCompleted,
				Items: []models.PastOrderItem{
					{Name: "Turkish Coffee", Quantity: 2, UnitPrice: 45},
					{Name: "Water", Quantity: 2, UnitPrice: 10},
				},
				PaymentMethod: models.PaymentCash,
				Subtotal:      110,
				ServiceFee:    5,
				VAT:           5,
			},
		},
	}
}
