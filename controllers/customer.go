package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"dairyflow-backend/models"
	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreateCustomerInput defines the expected JSON structure for creating a customer
type CreateCustomerInput struct {
	Name                  string                    `json:"name" binding:"required"`
	Phone                 string                    `json:"phone"`
	Email                 string                    `json:"email"`
	Address               string                    `json:"address"`
	SubscriptionItems     []models.SubscriptionItem `json:"subscriptionItems"`
	SubscriptionStartDate *string                   `json:"subscriptionStartDate"`
}

// UpdateCustomerInput defines the expected JSON structure for updating a customer.
// A non-null subscriptionItems replaces the whole subscription.
type UpdateCustomerInput struct {
	Name                  *string                    `json:"name"`
	Phone                 *string                    `json:"phone"`
	Email                 *string                    `json:"email"`
	Address               *string                    `json:"address"`
	SubscriptionItems     *[]models.SubscriptionItem `json:"subscriptionItems"`
	SubscriptionStartDate *string                    `json:"subscriptionStartDate"`
	IsActive              *bool                      `json:"isActive"`
}

func (h *Controller) CreateCustomer(c *gin.Context) {
	var input CreateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	customer := models.Customer{
		Name:     strings.TrimSpace(input.Name),
		Email:    input.Email,
		Address:  input.Address,
		IsActive: true,
	}

	if input.Phone != "" {
		phone, ok := h.checkPhone(c, input.Phone, uuid.Nil)
		if !ok {
			return
		}
		customer.Phone = phone
	}

	if input.SubscriptionStartDate != nil && *input.SubscriptionStartDate != "" {
		if !utils.IsValidDate(*input.SubscriptionStartDate) {
			utils.RespondWithError(c, http.StatusBadRequest, "Subscription start date must be in YYYY-MM-DD format")
			return
		}
		customer.SubscriptionStartDate = input.SubscriptionStartDate
	}

	subscription, msg, err := h.resolveSubscription(c.Request.Context(), input.SubscriptionItems)
	if err != nil {
		h.respondStoreError(c, err, "Item not found", "Failed to load items")
		return
	}
	if msg != "" {
		utils.RespondWithError(c, http.StatusBadRequest, msg)
		return
	}
	customer.SubscriptionItems = datatypes.NewJSONSlice(subscription)

	if err := h.Store.CreateCustomer(c.Request.Context(), &customer); err != nil {
		h.respondStoreError(c, err, "Customer not found", "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, customer)
}

// GetCustomers lists customers. ?active=true limits the list to active ones.
func (h *Controller) GetCustomers(c *gin.Context) {
	customers, err := h.Store.ListCustomers(c.Request.Context(), c.Query("active") == "true")
	if err != nil {
		h.respondStoreError(c, err, "Customer not found", "Failed to retrieve customers")
		return
	}
	if customers == nil {
		customers = []models.Customer{}
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Controller) GetCustomer(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.Store.GetCustomer(c.Request.Context(), customerID)
	if err != nil {
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Controller) UpdateCustomer(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	var input UpdateCustomerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	customer, err := h.Store.GetCustomer(ctx, customerID)
	if err != nil {
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "Name cannot be empty")
			return
		}
		customer.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		if *input.Phone == "" {
			customer.Phone = ""
		} else {
			phone, ok := h.checkPhone(c, *input.Phone, customer.ID)
			if !ok {
				return
			}
			customer.Phone = phone
		}
	}
	if input.Email != nil {
		customer.Email = *input.Email
	}
	if input.Address != nil {
		customer.Address = *input.Address
	}
	if input.SubscriptionStartDate != nil {
		if *input.SubscriptionStartDate == "" {
			customer.SubscriptionStartDate = nil
		} else if !utils.IsValidDate(*input.SubscriptionStartDate) {
			utils.RespondWithError(c, http.StatusBadRequest, "Subscription start date must be in YYYY-MM-DD format")
			return
		} else {
			customer.SubscriptionStartDate = input.SubscriptionStartDate
		}
	}
	if input.SubscriptionItems != nil {
		subscription, msg, err := h.resolveSubscription(ctx, *input.SubscriptionItems)
		if err != nil {
			h.respondStoreError(c, err, "Item not found", "Failed to load items")
			return
		}
		if msg != "" {
			utils.RespondWithError(c, http.StatusBadRequest, msg)
			return
		}
		customer.SubscriptionItems = datatypes.NewJSONSlice(subscription)
	}
	if input.IsActive != nil {
		customer.IsActive = *input.IsActive
	}

	if err := h.Store.UpdateCustomer(ctx, customer); err != nil {
		h.respondStoreError(c, err, "Customer not found", "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// DeleteCustomer soft deletes a customer. Bills and delivery history are kept.
func (h *Controller) DeleteCustomer(c *gin.Context) {
	customerID, ok := parseID(c, "id", "customer")
	if !ok {
		return
	}

	if err := h.Store.DeleteCustomer(c.Request.Context(), customerID); err != nil {
		h.respondStoreError(c, err, "Customer not found", "Failed to delete customer")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted successfully"})
}

// checkPhone validates the number and rejects one used by another customer.
func (h *Controller) checkPhone(c *gin.Context, raw string, self uuid.UUID) (string, bool) {
	phone := utils.NormalizePhone(raw)
	if !utils.ValidatePhone(phone) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid phone number format")
		return "", false
	}

	existing, err := h.Store.FindCustomerByPhone(c.Request.Context(), phone)
	switch {
	case err == nil && existing.ID != self:
		utils.RespondWithError(c, http.StatusConflict, "Customer with this phone number already exists")
		return "", false
	case err != nil && !errors.Is(err, store.ErrNotFound):
		h.respondStoreError(c, err, "Customer not found", "Database error")
		return "", false
	}
	return phone, true
}

// resolveSubscription checks every line against the item catalogue and fills
// in the item names. A non-empty message means the input is invalid.
func (h *Controller) resolveSubscription(ctx context.Context, lines []models.SubscriptionItem) ([]models.SubscriptionItem, string, error) {
	out := make([]models.SubscriptionItem, 0, len(lines))
	seen := make(map[string]bool, len(lines))

	for _, line := range lines {
		itemID, err := uuid.Parse(line.ItemID)
		if err != nil {
			return nil, "Invalid item ID in subscription: " + line.ItemID, nil
		}
		if seen[line.ItemID] {
			return nil, "Item appears twice in subscription: " + line.ItemID, nil
		}
		if !line.Quantity.IsPositive() {
			return nil, "Subscription quantities must be positive", nil
		}

		item, err := h.Store.GetItem(ctx, itemID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, "Unknown item in subscription: " + line.ItemID, nil
		}
		if err != nil {
			return nil, "", err
		}

		seen[line.ItemID] = true
		out = append(out, models.SubscriptionItem{ItemID: line.ItemID, ItemName: item.Name, Quantity: line.Quantity})
	}
	return out, "", nil
}
