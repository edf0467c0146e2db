package api

import (
	"fmt"
	"net/http"
	"time"

	"cafehub/internal/auth"
	"cafehub/internal/models"
	"cafehub/internal/service"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), currentSession(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) loginWithGoogle(c *gin.Context) {
	user, err := h.accounts.LoginWithGoogle(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) loginWithApple(c *gin.Context) {
	user, err := h.accounts.LoginWithApple(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) signup(c *gin.Context) {
	var req auth.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.accounts.Signup(c.Request.Context(), currentSession(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (h *Handler) logout(c *gin.Context) {
	h.accounts.Logout(c.Request.Context(), currentSession(c))
	c.Status(http.StatusNoContent)
}

func (h *Handler) getProfile(c *gin.Context) {
	user, err := h.accounts.Profile(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	var upd auth.ProfileUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		badRequest(c, err)
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), currentSession(c), upd)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) listFavorites(c *gin.Context) {
	favs, err := h.accounts.Favorites(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": favs})
}

func (h *Handler) addFavorite(c *gin.Context) {
	if err := h.accounts.AddFavorite(c.Request.Context(), currentSession(c), c.Param("cafeId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) removeFavorite(c *gin.Context) {
	if err := h.accounts.RemoveFavorite(c.Request.Context(), currentSession(c), c.Param("cafeId")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) toggleFavorite(c *gin.Context) {
	on, err := h.accounts.ToggleFavorite(c.Request.Context(), currentSession(c), c.Param("cafeId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorite": on})
}

func (h *Handler) listOrders(c *gin.Context) {
	orders, err := h.accounts.Orders(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// exportOrders downloads the order history as a spreadsheet
func (h *Handler) exportOrders(c *gin.Context) {
	data, err := h.accounts.ExportOrders(c.Request.Context(), currentSession(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	name := fmt.Sprintf("cafehub-orders-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}

func (h *Handler) getPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.accounts.Preferences(c.Request.Context(), currentSession(c)))
}

func (h *Handler) updatePreferences(c *gin.Context) {
	var p models.Preferences
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}

	prefs, err := h.accounts.UpdatePreferences(c.Request.Context(), currentSession(c), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}
