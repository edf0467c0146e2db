package api

import (
	"net/http"

	"cafehub/internal/catalog"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"cities": h.catalog.Cities()})
}

// searchCafes handles the home page list and its filters
func (h *Handler) searchCafes(c *gin.Context) {
	var f catalog.Filter
	if err := c.ShouldBindQuery(&f); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid filter",
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cafes": h.catalog.Search(f)})
}

func (h *Handler) getCafe(c *gin.Context) {
	cafe, err := h.catalog.Cafe(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cafe)
}

func (h *Handler) getMenu(c *gin.Context) {
	menu, err := h.ordering.Menu(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": catalog.MenuCategories,
		"menu":       menu,
	})
}

func (h *Handler) getFloorPlan(c *gin.Context) {
	plan, err := h.catalog.FloorPlan(c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// tableQR serves the PNG printed on a table stand
func (h *Handler) tableQR(c *gin.Context) {
	png, err := h.qr.TablePNG(c.Param("id"), c.Param("tableId"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
