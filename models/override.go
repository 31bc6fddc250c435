package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OverrideItem is an item line recorded on a single day. Subscription lines
// carry itemName, extra lines carry name.
type OverrideItem struct {
	ID       string   `json:"id"`
	ItemName string   `json:"itemName,omitempty"`
	Name     string   `json:"name,omitempty"`
	Quantity Quantity `json:"quantity"`
}

// DayOverride replaces a customer's default subscription for one date.
type DayOverride struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_override_customer_date,priority:1" json:"customerId"`
	Date       string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_override_customer_date,priority:2" json:"date"`

	Status            DeliveryStatus                    `gorm:"type:varchar(20);not null" json:"status"`
	SubscriptionItems datatypes.JSONSlice[OverrideItem] `json:"subscriptionItems"`
	ExtraItems        datatypes.JSONSlice[OverrideItem] `json:"extraItems"`
	Note              string                            `json:"note"`
	MarkedBy          string                            `gorm:"type:varchar(50)" json:"markedBy"`

	// Set exactly once, by the bill that consumed this override.
	BillID   *uuid.UUID `gorm:"type:uuid;index" json:"billId,omitempty"`
	BilledAt *time.Time `json:"billedAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (o *DayOverride) BeforeCreate(tx *gorm.DB) (err error) {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return
}

func (o *DayOverride) IsBilled() bool {
	return o.BillID != nil
}
