package api

import (
	"net/http"

	"cafehub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) scanTable(c *gin.Context) {
	var req service.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.ordering.Scan(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) approveTable(c *gin.Context) {
	var req service.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	state, err := h.ordering.Approve(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

func (h *Handler) addToCart(c *gin.Context) {
	var upd service.CartUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.ordering.AddToCart(c.Request.Context(), currentSession(c), c.Param("id"), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) updateCartItem(c *gin.Context) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}

	upd := service.CartUpdate{ItemID: c.Param("itemId"), Quantity: body.Quantity}
	c.JSON(http.StatusOK, h.ordering.UpdateQuantity(c.Request.Context(), currentSession(c), upd))
}

func (h *Handler) removeCartItem(c *gin.Context) {
	c.JSON(http.StatusOK, h.ordering.RemoveFromCart(c.Request.Context(), currentSession(c), c.Param("itemId")))
}

func (h *Handler) clearCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.ordering.ClearCart(c.Request.Context(), currentSession(c)))
}

func (h *Handler) setInstructions(c *gin.Context) {
	var body struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, h.ordering.SetSpecialInstructions(c.Request.Context(), currentSession(c), body.Text))
}

func (h *Handler) orderSummary(c *gin.Context) {
	c.JSON(http.StatusOK, h.ordering.Summary(c.Request.Context(), currentSession(c)))
}

func (h *Handler) placeOrder(c *gin.Context) {
	placed, err := h.ordering.PlaceOrder(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, placed)
}

func (h *Handler) orderTracking(c *gin.Context) {
	view, err := h.ordering.Tracking(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	view, err := h.ordering.Cancel(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) getBill(c *gin.Context) {
	view, err := h.ordering.Bill(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) orderPaymentPage(c *gin.Context) {
	view, err := h.ordering.PaymentPage(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) payOrder(c *gin.Context) {
	var req service.OrderPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.ordering.Pay(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) orderReceipt(c *gin.Context) {
	view, err := h.ordering.Receipt(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
