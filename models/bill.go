package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// BillLineItem is the aggregated quantity of one item over a billing period,
// priced at the rate in effect when the bill was generated.
type BillLineItem struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Quantity decimal.Decimal `json:"quantity"`
	Rate     decimal.Decimal `json:"rate"`
	Total    decimal.Decimal `json:"total"`
}

// Bill is immutable once created apart from its payment fields. A customer has
// at most one bill per (fromDate, toDate).
type Bill struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bill_period,priority:1" json:"customerId"`
	FromDate   string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_bill_period,priority:2" json:"fromDate"`
	ToDate     string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_bill_period,priority:3;index" json:"toDate"`

	Items       datatypes.JSONSlice[BillLineItem] `json:"items"`
	TotalAmount decimal.Decimal                   `gorm:"type:decimal(12,2);not null" json:"totalAmount"`

	IsPaid      bool       `gorm:"not null" json:"isPaid"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	GeneratedAt time.Time  `gorm:"not null" json:"generatedAt"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (b *Bill) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return
}
