package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cafehub/internal/auth"
	"cafehub/internal/catalog"
	"cafehub/internal/reservation"
	"cafehub/internal/service"
	"cafehub/internal/session"
	"cafehub/internal/util"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const sessionContextKey = "session"

// Options wires the handler to the services it exposes
type Options struct {
	Catalog      *catalog.Catalog
	Registry     *session.Registry
	Tokens       *auth.TokenIssuer
	Reservations *service.ReservationService
	Ordering     *service.OrderingService
	Accounts     *service.AccountService
	QR           *service.QRGenerator
	CORSOrigins  []string
}

// Handler contains HTTP handlers
type Handler struct {
	catalog      *catalog.Catalog
	registry     *session.Registry
	tokens       *auth.TokenIssuer
	reservations *service.ReservationService
	ordering     *service.OrderingService
	accounts     *service.AccountService
	qr           *service.QRGenerator
	corsOrigins  []string
	logger       *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(opts Options) *Handler {
	qr := opts.QR
	if qr == nil {
		qr = service.NewQRGenerator(opts.Catalog)
	}
	return &Handler{
		catalog:      opts.Catalog,
		registry:     opts.Registry,
		tokens:       opts.Tokens,
		reservations: opts.Reservations,
		ordering:     opts.Ordering,
		accounts:     opts.Accounts,
		qr:           qr,
		corsOrigins:  opts.CORSOrigins,
		logger:       util.GetLogger(),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())
	router.Use(h.corsMiddleware())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/sessions", h.createSession)

		v1.GET("/cities", h.listCities)
		v1.GET("/cafes", h.searchCafes)
		v1.GET("/cafes/:id", h.getCafe)
		v1.GET("/cafes/:id/menu", h.getMenu)
		v1.GET("/cafes/:id/floorplan", h.getFloorPlan)
		v1.GET("/cafes/:id/tables/:tableId/qr", h.tableQR)
	}

	s := v1.Group("", h.sessionMiddleware())
	{
		s.DELETE("/sessions", h.endSession)

		s.GET("/cafes/:id/reserve", h.reservationDetails)
		s.PUT("/cafes/:id/reserve", h.updateReservationDetails)
		s.PATCH("/cafes/:id/reserve", h.mergeReservationDetails)
		s.GET("/cafes/:id/reserve/summary", h.reservationSummary)
		s.GET("/cafes/:id/reserve/payment", h.reservationPaymentPage)
		s.POST("/cafes/:id/reserve/payment", h.payReservation)
		s.GET("/cafes/:id/reservation/receipt", h.reservationReceipt)

		s.POST("/cafes/:id/scan", h.scanTable)
		s.POST("/cafes/:id/scan/approval", h.approveTable)
		s.POST("/cafes/:id/cart/items", h.addToCart)
		s.PUT("/cafes/:id/cart/items/:itemId", h.updateCartItem)
		s.DELETE("/cafes/:id/cart/items/:itemId", h.removeCartItem)
		s.DELETE("/cafes/:id/cart", h.clearCart)
		s.PUT("/cafes/:id/cart/instructions", h.setInstructions)
		s.GET("/cafes/:id/order/summary", h.orderSummary)
		s.POST("/cafes/:id/order", h.placeOrder)
		s.GET("/cafes/:id/order/tracking", h.orderTracking)
		s.GET("/cafes/:id/order/tracking/ws", h.orderTrackingWS)
		s.POST("/cafes/:id/order/cancel", h.cancelOrder)
		s.GET("/cafes/:id/bill", h.getBill)
		s.GET("/cafes/:id/order/payment", h.orderPaymentPage)
		s.POST("/cafes/:id/order/payment", h.payOrder)
		s.GET("/cafes/:id/order/receipt", h.orderReceipt)

		s.POST("/auth/login", h.login)
		s.POST("/auth/google", h.loginWithGoogle)
		s.POST("/auth/apple", h.loginWithApple)
		s.POST("/auth/signup", h.signup)
		s.POST("/auth/logout", h.logout)

		s.GET("/account", h.getProfile)
		s.PATCH("/account", h.updateProfile)
		s.GET("/account/favorites", h.listFavorites)
		s.PUT("/account/favorites/:cafeId", h.addFavorite)
		s.DELETE("/account/favorites/:cafeId", h.removeFavorite)
		s.POST("/account/favorites/:cafeId/toggle", h.toggleFavorite)
		s.GET("/account/orders", h.listOrders)
		s.GET("/account/orders/export", h.exportOrders)

		s.GET("/preferences", h.getPreferences)
		s.PUT("/preferences", h.updatePreferences)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ready",
		"sessions": h.registry.Len(),
		"time":     time.Now().Unix(),
	})
}

// createSession starts a session and hands out its bearer token
func (h *Handler) createSession(c *gin.Context) {
	sess := h.registry.Create(c.Request.Context())
	token, expiresAt, err := h.tokens.Issue(sess.ID)
	if err != nil {
		h.registry.Remove(c.Request.Context(), sess.ID)
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sess.ID,
		"token":     token,
		"expiresAt": expiresAt,
	})
}

func (h *Handler) endSession(c *gin.Context) {
	sess := currentSession(c)
	h.registry.Remove(c.Request.Context(), sess.ID)
	c.Status(http.StatusNoContent)
}

// sessionMiddleware resolves the bearer token to a live session. Browsers
// opening the tracking socket pass the token as a query parameter.
func (h *Handler) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing session token",
			})
			return
		}

		sid, err := h.tokens.Parse(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid session token",
				"details": err.Error(),
			})
			return
		}

		c.Set(sessionContextKey, h.registry.Open(c.Request.Context(), sid))
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(h.corsOrigins) == 0 || (len(h.corsOrigins) == 1 && h.corsOrigins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = h.corsOrigins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// respondError maps service errors to status codes. Guard redirects are
// answered with 303 and the route the client should show instead.
func (h *Handler) respondError(c *gin.Context, err error) {
	if re, ok := service.AsRedirect(err); ok {
		c.Header("Location", re.Route)
		c.JSON(http.StatusSeeOther, gin.H{"redirect": re.Route})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
	}
	c.JSON(status, gin.H{
		"error":   http.StatusText(status),
		"details": err.Error(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, catalog.ErrCafeNotFound),
		errors.Is(err, catalog.ErrTableNotFound),
		errors.Is(err, catalog.ErrMenuItemNotFound),
		errors.Is(err, session.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrInvalidScan),
		errors.Is(err, session.ErrInvalidPreference),
		errors.Is(err, reservation.ErrInvalidPatch),
		errors.Is(err, auth.ErrMissingCredentials):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrCannotCancel),
		errors.Is(err, service.ErrPaymentInFlight):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request body",
		"details": err.Error(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
