package controllers

import (
	"net/http"

	"dairyflow-backend/services"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
)

// GetOverride returns the recorded delivery of one day. A day without a
// record follows the subscription and is returned with a null override.
func (h *Controller) GetOverride(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	date := c.Param("date")

	override, err := h.Deliveries.GetOverride(c.Request.Context(), customerID, date)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load delivery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "override": override})
}

func (h *Controller) SaveOverride(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	var input services.OverrideInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	override, err := h.Deliveries.SaveOverride(c.Request.Context(), customerID, c.Param("date"), input)
	if err != nil {
		h.respondServiceError(c, err, "Failed to save delivery")
		return
	}
	c.JSON(http.StatusOK, override)
}

func (h *Controller) DeleteOverride(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.Deliveries.DeleteOverride(c.Request.Context(), customerID, c.Param("date")); err != nil {
		h.respondServiceError(c, err, "Failed to delete delivery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Delivery reset to subscription"})
}

// GetCalendar resolves every day of ?month=YYYY-MM, the current month by default.
func (h *Controller) GetCalendar(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		month = h.now().In(h.location()).Format("2006-01")
	}

	days, err := h.Deliveries.MonthCalendar(c.Request.Context(), customerID, month)
	if err != nil {
		h.respondServiceError(c, err, "Failed to load calendar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "days": days})
}
