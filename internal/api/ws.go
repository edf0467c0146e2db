package api

import (
	"net/http"
	"time"

	"cafehub/internal/models"
	"cafehub/internal/order"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const wsWriteTimeout = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// statusMessage is one frame of the tracking socket
type statusMessage struct {
	OrderID   string             `json:"orderId"`
	Status    models.OrderStatus `json:"status"`
	CanCancel bool               `json:"canCancel"`
}

// orderTrackingWS streams status changes of the placed order. The first
// frame is the current status; the socket closes once the order is
// delivered or cancelled.
func (h *Handler) orderTrackingWS(c *gin.Context) {
	sess := currentSession(c)
	view, err := h.ordering.Tracking(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	updates, unsubscribe := sess.Tracker.Subscribe()
	defer unsubscribe()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	orderID := view.Order.OrderID
	send := func(status models.OrderStatus) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		err := conn.WriteJSON(statusMessage{
			OrderID:   orderID,
			Status:    status,
			CanCancel: order.CanCancel(status),
		})
		return err == nil
	}

	if !send(view.Status) || order.IsTerminal(view.Status) {
		return
	}

	// reads only detect the client going away
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-gone:
			return
		case <-sess.Context().Done():
			return
		case status, ok := <-updates:
			if !ok || !send(status) || order.IsTerminal(status) {
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
		}
	}
}
