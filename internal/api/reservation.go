package api

import (
	"io"
	"net/http"

	"cafehub/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) reservationDetails(c *gin.Context) {
	view, err := h.reservations.Details(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// updateReservationDetails applies the form choices of the details page
func (h *Handler) updateReservationDetails(c *gin.Context) {
	var upd service.DetailsUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.reservations.UpdateDetails(c.Request.Context(), currentSession(c), c.Param("id"), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// mergeReservationDetails writes raw fields over the reservation
func (h *Handler) mergeReservationDetails(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.reservations.MergeDetails(c.Request.Context(), currentSession(c), c.Param("id"), body)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) reservationSummary(c *gin.Context) {
	view, err := h.reservations.Summary(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) reservationPaymentPage(c *gin.Context) {
	view, err := h.reservations.PaymentPage(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *Handler) payReservation(c *gin.Context) {
	var req service.ReservationPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	view, err := h.reservations.Pay(c.Request.Context(), currentSession(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (h *Handler) reservationReceipt(c *gin.Context) {
	view, err := h.reservations.Receipt(c.Request.Context(), currentSession(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}
