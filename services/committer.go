package services

import (
	"context"
	"errors"
	"time"

	"dairyflow-backend/config"
	"dairyflow-backend/models"
	"dairyflow-backend/store"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// DefaultBatchSize is the largest number of overrides marked in one write.
const DefaultBatchSize = config.MaxBatchSize

// CommitResult describes what a commit wrote.
type CommitResult struct {
	Bill    *models.Bill
	Marked  int64
	Batches int
}

// BillCommitter persists a bill and marks the overrides it consumed. Both
// happen in one transaction; marking is split into sequential batches of at
// most batchSize overrides and skips overrides that already carry a bill.
type BillCommitter struct {
	store     CommitStore
	batchSize int
	now       func() time.Time
}

func NewBillCommitter(s CommitStore, batchSize int, now func() time.Time) *BillCommitter {
	if batchSize <= 0 || batchSize > DefaultBatchSize {
		batchSize = DefaultBatchSize
	}
	return &BillCommitter{store: s, batchSize: batchSize, now: now}
}

func (c *BillCommitter) Commit(ctx context.Context, bill *models.Bill, overrideIDs []uuid.UUID) (*CommitResult, error) {
	result := &CommitResult{Bill: bill}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	bill.IsPaid = false
	bill.PaidAt = nil
	bill.GeneratedAt = c.now()

	err := c.store.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := c.store.CreateBill(ctx, bill); err != nil {
			if errors.Is(err, store.ErrDuplicateBill) {
				return ErrDuplicateBill
			}
			return newError(ErrPersistence, "Failed to save bill", err)
		}

		for _, batch := range lo.Chunk(overrideIDs, c.batchSize) {
			n, err := c.store.MarkOverridesBilled(ctx, batch, bill.ID, bill.GeneratedAt)
			if err != nil {
				return newError(ErrPersistence, "Failed to mark deliveries as billed", err)
			}
			result.Marked += n
			result.Batches++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
