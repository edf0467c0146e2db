package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cafehub/internal/models"
	"cafehub/internal/util"

	"go.uber.org/zap"
)

var ErrNotAuthenticated = errors.New("not signed in")

// ProfileUpdate carries the editable profile fields. Nil fields are kept.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	BirthDate *string `json:"birthDate"`
}

// Store is the signed-in account of one session
type Store struct {
	mu     sync.Mutex
	user   *models.User
	svc    AuthService
	logger *zap.Logger
}

// NewStore creates an auth store. With seedDemo the demo account starts
// signed in.
func NewStore(svc AuthService, seedDemo bool) *Store {
	s := &Store{
		svc:    svc,
		logger: util.GetLogger(),
	}
	if seedDemo {
		u := DemoUser()
		s.user = &u
	}
	return s
}

// User returns a copy of the signed-in account
func (s *Store) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return cloneUser(*s.user), true
}

// IsAuthenticated reports whether someone is signed in
func (s *Store) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user != nil
}

func (s *Store) Login(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.svc.Login(ctx, email, password)
	if err != nil {
		return models.User{}, fmt.Errorf("login failed: %w", err)
	}
	return s.signIn(u, "password"), nil
}

func (s *Store) LoginWithGoogle(ctx context.Context) (models.User, error) {
	u, err := s.svc.LoginWithGoogle(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("google login failed: %w", err)
	}
	return s.signIn(u, "google"), nil
}

func (s *Store) LoginWithApple(ctx context.Context) (models.User, error) {
	u, err := s.svc.LoginWithApple(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("apple login failed: %w", err)
	}
	return s.signIn(u, "apple"), nil
}

func (s *Store) Signup(ctx context.Context, req SignupRequest) (models.User, error) {
	u, err := s.svc.Signup(ctx, req)
	if err != nil {
		return models.User{}, fmt.Errorf("signup failed: %w", err)
	}
	return s.signIn(u, "signup"), nil
}

func (s *Store) signIn(u models.User, method string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := cloneUser(u)
	s.user = &stored
	s.logger.Info("User signed in", zap.String("user_id", u.ID), zap.String("method", method))
	return cloneUser(stored)
}

// Logout drops the account
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
}

// AddFavorite adds cafeID to the favorites once
func (s *Store) AddFavorite(cafeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrNotAuthenticated
	}
	if !contains(s.user.Favorites, cafeID) {
		s.user.Favorites = append(s.user.Favorites, cafeID)
	}
	return nil
}

// RemoveFavorite drops cafeID from the favorites
func (s *Store) RemoveFavorite(cafeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrNotAuthenticated
	}
	kept := make([]string, 0, len(s.user.Favorites))
	for _, id := range s.user.Favorites {
		if id != cafeID {
			kept = append(kept, id)
		}
	}
	s.user.Favorites = kept
	return nil
}

// ToggleFavorite flips cafeID and reports whether it is now a favorite
func (s *Store) ToggleFavorite(cafeID string) (bool, error) {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return false, ErrNotAuthenticated
	}
	fav := contains(s.user.Favorites, cafeID)
	s.mu.Unlock()

	if fav {
		return false, s.RemoveFavorite(cafeID)
	}
	return true, s.AddFavorite(cafeID)
}

// UpdateProfile applies the set fields of p
func (s *Store) UpdateProfile(p ProfileUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, ErrNotAuthenticated
	}
	if p.Name != nil {
		s.user.Name = *p.Name
	}
	if p.Email != nil {
		s.user.Email = *p.Email
	}
	if p.Phone != nil {
		phone := *p.Phone
		s.user.Phone = &phone
	}
	if p.BirthDate != nil {
		birth := *p.BirthDate
		s.user.BirthDate = &birth
	}
	return cloneUser(*s.user), nil
}

// AppendOrder adds a completed order to the front of the history
func (s *Store) AppendOrder(o models.PastOrder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return ErrNotAuthenticated
	}
	s.user.Orders = append([]models.PastOrder{o}, s.user.Orders...)
	return nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func cloneUser(u models.User) models.User {
	out := u
	out.Favorites = append([]string(nil), u.Favorites...)
	out.Orders = make([]models.PastOrder, len(u.Orders))
	for i, o := range u.Orders {
		o.Items = append([]models.PastOrderItem(nil), o.Items...)
		out.Orders[i] = o
	}
	return out
}
