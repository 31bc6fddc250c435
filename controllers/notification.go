// controllers/notification.go
package controllers

import (
	"net/http"

	"dairyflow-backend/models"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
)

// NotifyBill sends the bill message to the customer again.
func (h *Controller) NotifyBill(c *gin.Context) {
	if h.Notifier == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Notifications are not configured")
		return
	}

	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	billID, ok := parseID(c, "billId", "bill")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	customer, err := h.Store.GetCustomer(ctx, customerID)
	if err != nil {
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return
	}
	bill, err := h.Store.GetBill(ctx, customerID, billID)
	if err != nil {
		h.respondStoreError(c, err, "Bill not found", "Database error")
		return
	}

	if err := h.Notifier.NotifyBillGenerated(ctx, customer, bill); err != nil {
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to send notification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification sent"})
}

// GetBillNotifications lists every message sent for a bill.
func (h *Controller) GetBillNotifications(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	billID, ok := parseID(c, "billId", "bill")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetBill(ctx, customerID, billID); err != nil {
		h.respondStoreError(c, err, "Bill not found", "Database error")
		return
	}

	logs, err := h.Store.ListNotificationLogs(ctx, billID)
	if err != nil {
		h.respondStoreError(c, err, "Bill not found", "Failed to retrieve notifications")
		return
	}
	if logs == nil {
		logs = []models.NotificationLog{}
	}
	c.JSON(http.StatusOK, logs)
}
