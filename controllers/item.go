// controllers/item.go
package controllers

import (
	"net/http"
	"strings"

	"dairyflow-backend/models"
	"dairyflow-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateItemInput defines the expected JSON structure for creating an item.
// price is the legacy name of ratePerUnit and is only read when ratePerUnit
// is absent.
type CreateItemInput struct {
	Name        string           `json:"itemName" binding:"required"`
	Unit        string           `json:"unit"`
	RatePerUnit *decimal.Decimal `json:"ratePerUnit"`
	Price       *decimal.Decimal `json:"price"`
}

// UpdateItemInput defines the expected JSON structure for updating an item
type UpdateItemInput struct {
	Name        *string          `json:"itemName"`
	Unit        *string          `json:"unit"`
	RatePerUnit *decimal.Decimal `json:"ratePerUnit"`
	Price       *decimal.Decimal `json:"price"`
	IsActive    *bool            `json:"isActive"`
}

func canonicalRate(rate, price *decimal.Decimal) *decimal.Decimal {
	if rate != nil {
		return rate
	}
	return price
}

func (h *Controller) CreateItem(c *gin.Context) {
	var input CreateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	rate := canonicalRate(input.RatePerUnit, input.Price)
	if rate == nil {
		utils.RespondWithError(c, http.StatusBadRequest, "ratePerUnit is required")
		return
	}
	if rate.IsNegative() {
		utils.RespondWithError(c, http.StatusBadRequest, "ratePerUnit cannot be negative")
		return
	}

	item := models.Item{
		Name:        strings.TrimSpace(input.Name),
		Unit:        input.Unit,
		RatePerUnit: rate.Round(2),
		IsActive:    true,
	}
	if err := h.Store.CreateItem(c.Request.Context(), &item); err != nil {
		h.respondStoreError(c, err, "Item not found", "Failed to create item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Controller) GetItems(c *gin.Context) {
	items, err := h.Store.ListItems(c.Request.Context())
	if err != nil {
		h.respondStoreError(c, err, "Item not found", "Failed to retrieve items")
		return
	}
	if items == nil {
		items = []models.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Controller) GetItem(c *gin.Context) {
	itemID, ok := parseID(c, "id", "item")
	if !ok {
		return
	}

	item, err := h.Store.GetItem(c.Request.Context(), itemID)
	if err != nil {
		h.respondStoreError(c, err, "Item not found", "Database error")
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateItem changes an item. A new rate applies to bills generated from now
// on; existing bills keep the rate they were generated with.
func (h *Controller) UpdateItem(c *gin.Context) {
	itemID, ok := parseID(c, "id", "item")
	if !ok {
		return
	}

	var input UpdateItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	ctx := c.Request.Context()
	item, err := h.Store.GetItem(ctx, itemID)
	if err != nil {
		h.respondStoreError(c, err, "Item not found", "Database error")
		return
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			utils.RespondWithError(c, http.StatusBadRequest, "itemName cannot be empty")
			return
		}
		item.Name = strings.TrimSpace(*input.Name)
	}
	if input.Unit != nil {
		item.Unit = *input.Unit
	}
	if rate := canonicalRate(input.RatePerUnit, input.Price); rate != nil {
		if rate.IsNegative() {
			utils.RespondWithError(c, http.StatusBadRequest, "ratePerUnit cannot be negative")
			return
		}
		item.RatePerUnit = rate.Round(2)
	}
	if input.IsActive != nil {
		item.IsActive = *input.IsActive
	}

	if err := h.Store.UpdateItem(ctx, item); err != nil {
		h.respondStoreError(c, err, "Item not found", "Failed to update item")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Controller) DeleteItem(c *gin.Context) {
	itemID, ok := parseID(c, "id", "item")
	if !ok {
		return
	}

	if err := h.Store.DeleteItem(c.Request.Context(), itemID); err != nil {
		h.respondStoreError(c, err, "Item not found", "Failed to delete item")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted successfully"})
}
