package services

import (
	"context"
	"time"

	"dairyflow-backend/models"

	"github.com/google/uuid"
)

type CustomerReader interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	ListCustomers(ctx context.Context, activeOnly bool) ([]models.Customer, error)
}

type ItemLister interface {
	ListItems(ctx context.Context) ([]models.Item, error)
}

type OverrideReader interface {
	// FindOverride returns nil, nil when the day has no override.
	FindOverride(ctx context.Context, customerID uuid.UUID, date string) (*models.DayOverride, error)
}

type BillReader interface {
	// LatestBill returns nil, nil when the customer has no bill.
	LatestBill(ctx context.Context, customerID uuid.UUID) (*models.Bill, error)
}

// CommitStore is the write side of bill generation.
type CommitStore interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	CreateBill(ctx context.Context, bill *models.Bill) error
	MarkOverridesBilled(ctx context.Context, overrideIDs []uuid.UUID, billID uuid.UUID, billedAt time.Time) (int64, error)
}

// BillingStore is everything the billing service needs from persistence.
type BillingStore interface {
	CustomerReader
	ItemLister
	OverrideReader
	BillReader
	CommitStore
	MarkBillPaid(ctx context.Context, customerID, billID uuid.UUID, paidAt time.Time) (*models.Bill, error)
}
