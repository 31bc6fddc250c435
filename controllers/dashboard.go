package controllers

import (
	"net/http"
	"time"

	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
)

type DashboardOverview struct {
	store.DashboardStats
	Month string `json:"month"`
	Today string `json:"today"`
}

// GetDashboardOverview summarises customers, unpaid bills and this month's billing.
func (h *Controller) GetDashboardOverview(c *gin.Context) {
	now := h.now().In(h.location())
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	stats, err := h.Store.DashboardStats(c.Request.Context(), firstOfMonth, utils.FormatDate(firstOfMonth))
	if err != nil {
		h.respondStoreError(c, err, "Dashboard not found", "Failed to load dashboard")
		return
	}

	c.JSON(http.StatusOK, DashboardOverview{
		DashboardStats: *stats,
		Month:          now.Format("2006-01"),
		Today:          utils.FormatDate(now),
	})
}
