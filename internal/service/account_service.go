package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"cafehub/internal/auth"
	"cafehub/internal/catalog"
	"cafehub/internal/models"
	"cafehub/internal/session"
	"cafehub/internal/util"

	"github.com/tealeg/xlsx"
	"go.uber.org/zap"
)

// AccountService drives sign-in, profile, favorites and order history
type AccountService struct {
	catalog *catalog.Catalog
	logger  *zap.Logger
}

func NewAccountService(c *catalog.Catalog) *AccountService {
	return &AccountService{catalog: c, logger: util.GetLogger()}
}

// LoginRequest is the sign-in form
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// FavoriteView pairs a favorite cafe id with its catalog entry, when known
type FavoriteView struct {
	CafeID string       `json:"cafeId"`
	Cafe   *models.Cafe `json:"cafe"`
}

// PastOrderView is a history entry with its bill recomputed
type PastOrderView struct {
	models.PastOrder
	Bill models.Bill `json:"bill"`
}

func (s *AccountService) Login(ctx context.Context, sess *session.Session, req LoginRequest) (models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Login")
	defer span.End()
	return sess.Auth.Login(ctx, req.Email, req.Password)
}

func (s *AccountService) LoginWithGoogle(ctx context.Context, sess *session.Session) (models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.LoginWithGoogle")
	defer span.End()
	return sess.Auth.LoginWithGoogle(ctx)
}

func (s *AccountService) LoginWithApple(ctx context.Context, sess *session.Session) (models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.LoginWithApple")
	defer span.End()
	return sess.Auth.LoginWithApple(ctx)
}

func (s *AccountService) Signup(ctx context.Context, sess *session.Session, req auth.SignupRequest) (models.User, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.Signup")
	defer span.End()
	return sess.Auth.Signup(ctx, req)
}

func (s *AccountService) Logout(ctx context.Context, sess *session.Session) {
	_, span := util.StartSpan(ctx, "AccountService.Logout")
	defer span.End()
	sess.Auth.Logout()
}

// Profile returns the signed-in account
func (s *AccountService) Profile(ctx context.Context, sess *session.Session) (models.User, error) {
	_, span := util.StartSpan(ctx, "AccountService.Profile")
	defer span.End()

	u, ok := sess.Auth.User()
	if !ok {
		return models.User{}, auth.ErrNotAuthenticated
	}
	return u, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, sess *session.Session, upd auth.ProfileUpdate) (models.User, error) {
	_, span := util.StartSpan(ctx, "AccountService.UpdateProfile")
	defer span.End()
	return sess.Auth.UpdateProfile(upd)
}

// Favorites lists the favorite cafes in the order they were added
func (s *AccountService) Favorites(ctx context.Context, sess *session.Session) ([]FavoriteView, error) {
	_, span := util.StartSpan(ctx, "AccountService.Favorites")
	defer span.End()

	u, ok := sess.Auth.User()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	out := make([]FavoriteView, 0, len(u.Favorites))
	for _, id := range u.Favorites {
		fv := FavoriteView{CafeID: id}
		if cafe, err := s.catalog.Cafe(id); err == nil {
			fv.Cafe = &cafe
		}
		out = append(out, fv)
	}
	return out, nil
}

// AddFavorite marks a catalog cafe as favorite
func (s *AccountService) AddFavorite(ctx context.Context, sess *session.Session, cafeID string) error {
	_, span := util.StartSpan(ctx, "AccountService.AddFavorite")
	defer span.End()

	if _, err := s.catalog.Cafe(cafeID); err != nil {
		return err
	}
	return sess.Auth.AddFavorite(cafeID)
}

func (s *AccountService) RemoveFavorite(ctx context.Context, sess *session.Session, cafeID string) error {
	_, span := util.StartSpan(ctx, "AccountService.RemoveFavorite")
	defer span.End()
	return sess.Auth.RemoveFavorite(cafeID)
}

// ToggleFavorite flips a cafe and reports whether it is now a favorite
func (s *AccountService) ToggleFavorite(ctx context.Context, sess *session.Session, cafeID string) (bool, error) {
	_, span := util.StartSpan(ctx, "AccountService.ToggleFavorite")
	defer span.End()

	if _, err := s.catalog.Cafe(cafeID); err != nil {
		return false, err
	}
	return sess.Auth.ToggleFavorite(cafeID)
}

// Orders returns the order history, newest first. The bill is the snapshot
// taken when the order was billed, never recomputed at today's rates.
func (s *AccountService) Orders(ctx context.Context, sess *session.Session) ([]PastOrderView, error) {
	_, span := util.StartSpan(ctx, "AccountService.Orders")
	defer span.End()

	u, ok := sess.Auth.User()
	if !ok {
		return nil, auth.ErrNotAuthenticated
	}
	out := make([]PastOrderView, 0, len(u.Orders))
	for _, o := range u.Orders {
		out = append(out, PastOrderView{
			PastOrder: o,
			Bill: models.Bill{
				Subtotal:   o.Subtotal,
				ServiceFee: o.ServiceFee,
				VAT:        o.VAT,
				Total:      o.Total,
			},
		})
	}
	return out, nil
}

var exportHeaders = []string{
	"Order", "Date", "Cafe", "Table", "Items", "Payment", "Card",
	"Subtotal", "ServiceFee", "VAT", "Total", "Status",
}

// ExportOrders renders the order history as an xlsx workbook
func (s *AccountService) ExportOrders(ctx context.Context, sess *session.Session) ([]byte, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.ExportOrders")
	defer span.End()

	orders, err := s.Orders(ctx, sess)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Orders")
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range exportHeaders {
		headerRow.AddCell().SetValue(h)
	}

	for _, o := range orders {
		row := sheet.AddRow()
		row.AddCell().SetValue(o.ID)
		row.AddCell().SetValue(o.Date.Format("2006-01-02 15:04:05"))
		row.AddCell().SetValue(o.CafeName)
		row.AddCell().SetValue(o.TableNumber)
		row.AddCell().SetValue(itemSummary(o.Items))
		row.AddCell().SetValue(o.PaymentMethod)
		card := ""
		if o.CardLast4 != nil {
			card = *o.CardLast4
		}
		row.AddCell().SetValue(card)
		row.AddCell().SetValue(o.Subtotal)
		row.AddCell().SetValue(o.ServiceFee)
		row.AddCell().SetValue(o.VAT)
		row.AddCell().SetValue(o.Total)
		row.AddCell().SetValue(o.Status)
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	s.logger.Debug("Order history exported",
		zap.String("session_id", sess.ID),
		zap.Int("orders", len(orders)))
	return buf.Bytes(), nil
}

func itemSummary(items []models.PastOrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
	}
	return strings.Join(parts, ", ")
}

// Preferences returns language and theme
func (s *AccountService) Preferences(ctx context.Context, sess *session.Session) models.Preferences {
	ctx, span := util.StartSpan(ctx, "AccountService.Preferences")
	defer span.End()
	return sess.Prefs.Get(ctx)
}

// UpdatePreferences stores the set fields of p
func (s *AccountService) UpdatePreferences(ctx context.Context, sess *session.Session, p models.Preferences) (models.Preferences, error) {
	ctx, span := util.StartSpan(ctx, "AccountService.UpdatePreferences")
	defer span.End()

	if p.Language != "" {
		if err := sess.Prefs.SetLanguage(ctx, p.Language); err != nil {
			return models.Preferences{}, err
		}
	}
	if p.Theme != "" {
		if err := sess.Prefs.SetTheme(ctx, p.Theme); err != nil {
			return models.Preferences{}, err
		}
	}
	return sess.Prefs.Get(ctx), nil
}
