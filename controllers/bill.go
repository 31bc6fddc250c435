// controllers/bill.go
package controllers

import (
	"errors"
	"net/http"

	"dairyflow-backend/models"
	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
)

// PublicBill is what the holder of a bill link can see.
type PublicBill struct {
	CustomerName string       `json:"customerName"`
	Bill         *models.Bill `json:"bill"`
}

// GenerateBill bills the customer from the day after their last bill up to today.
func (h *Controller) GenerateBill(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	result, err := h.Billing.GenerateBill(c.Request.Context(), customerID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to generate bill")
		return
	}
	c.JSON(http.StatusCreated, result)
}

// PreviewBill shows the next bill without saving it.
func (h *Controller) PreviewBill(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	draft, err := h.Billing.PreviewBill(c.Request.Context(), customerID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to preview bill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": draft})
}

// GetBills lists a customer's bills, newest first.
func (h *Controller) GetBills(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if _, err := h.Store.GetCustomer(ctx, customerID); err != nil {
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return
	}

	bills, err := h.Store.ListBills(ctx, customerID)
	if err != nil {
		h.respondStoreError(c, err, "Bill not found", "Failed to retrieve bills")
		return
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	c.JSON(http.StatusOK, bills)
}

func (h *Controller) GetBill(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	billID, ok := parseID(c, "billId", "bill")
	if !ok {
		return
	}

	bill, err := h.Store.GetBill(c.Request.Context(), customerID, billID)
	if err != nil {
		h.respondStoreError(c, err, "Bill not found", "Database error")
		return
	}
	c.JSON(http.StatusOK, bill)
}

// MarkBillPaid records payment. The bill's items and totals never change.
func (h *Controller) MarkBillPaid(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}
	billID, ok := parseID(c, "billId", "bill")
	if !ok {
		return
	}

	bill, err := h.Billing.MarkPaid(c.Request.Context(), customerID, billID)
	if err != nil {
		h.respondServiceError(c, err, "Failed to mark bill as paid")
		return
	}
	c.JSON(http.StatusOK, bill)
}

// GetBillLink returns a signed URL that shows the bill without logging in.
func (h *Controller) GetBillLink(c *gin.Context) {
	if h.Links == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Bill links are not configured")
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

	if _, err := h.Store.GetBill(c.Request.Context(), customerID, billID); err != nil {
		h.respondStoreError(c, err, "Bill not found", "Database error")
		return
	}

	token, err := h.Links.Sign(customerID, billID)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to sign bill link")
		return
	}

	response := gin.H{"token": token}
	if h.Notifier != nil {
		response["url"] = h.Notifier.BillURL(customerID, billID)
	}
	c.JSON(http.StatusOK, response)
}

// GetPublicBill serves the bill behind a signed link.
func (h *Controller) GetPublicBill(c *gin.Context) {
	if h.Links == nil {
		utils.RespondWithError(c, http.StatusServiceUnavailable, "Bill links are not configured")
		return
	}

	customerID, billID, err := h.Links.Verify(c.Query("token"))
	if err != nil {
		utils.RespondWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	ctx := c.Request.Context()
	bill, err := h.Store.GetBill(ctx, customerID, billID)
	if err != nil {
		h.respondStoreError(c, err, "Bill not found", "Database error")
		return
	}

	name := ""
	customer, err := h.Store.GetCustomer(ctx, customerID)
	switch {
	case err == nil:
		name = customer.Name
	case !errors.Is(err, store.ErrNotFound):
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return
	}

	c.JSON(http.StatusOK, PublicBill{CustomerName: name, Bill: bill})
}
