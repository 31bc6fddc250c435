package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// SubscriptionItem is one line of a customer's standing daily delivery.
type SubscriptionItem struct {
	ItemID   string   `json:"id"`
	ItemName string   `json:"itemName"`
	Quantity Quantity `json:"quantity"`
}

type Customer struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	Name    string `gorm:"not null" json:"name"`
	Phone   string `gorm:"index" json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`

	// Replaced wholesale on edit.
	SubscriptionItems     datatypes.JSONSlice[SubscriptionItem] `json:"subscriptionItems"`
	SubscriptionStartDate *string                               `gorm:"type:varchar(10)" json:"subscriptionStartDate,omitempty"`

	IsActive bool `gorm:"not null" json:"isActive"`

	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Customer) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return
}
