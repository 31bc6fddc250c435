package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dairyflow-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LatestBill returns the bill with the greatest toDate, or nil when the
// customer has never been billed.
func (s *Store) LatestBill(ctx context.Context, customerID uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := s.conn(ctx).
		Where("customer_id = ?", customerID).
		Order("to_date DESC").
		First(&bill).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest bill: %w", err)
	}
	return &bill, nil
}

// CreateBill inserts a new bill. A second bill for the same customer and
// period fails with ErrDuplicateBill.
func (s *Store) CreateBill(ctx context.Context, bill *models.Bill) error {
	err := s.conn(ctx).Create(bill).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateBill
	}
	if err != nil {
		return fmt.Errorf("create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, customerID, billID uuid.UUID) (*models.Bill, error) {
	var bill models.Bill
	err := s.conn(ctx).
		Where("customer_id = ? AND id = ?", customerID, billID).
		First(&bill).Error
	if err != nil {
		return nil, translate(err)
	}
	return &bill, nil
}

// ListBills returns a customer's bills, newest first.
func (s *Store) ListBills(ctx context.Context, customerID uuid.UUID) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.conn(ctx).
		Where("customer_id = ?", customerID).
		Order("to_date DESC").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	return bills, nil
}

// MarkBillPaid flips the payment fields only. Paying a paid bill is a no-op.
func (s *Store) MarkBillPaid(ctx context.Context, customerID, billID uuid.UUID, paidAt time.Time) (*models.Bill, error) {
	var bill *models.Bill
	err := s.WithinTransaction(ctx, func(ctx context.Context) error {
		found, err := s.GetBill(ctx, customerID, billID)
		if err != nil {
			return err
		}
		if !found.IsPaid {
			err = s.conn(ctx).Model(&models.Bill{}).
				Where("id = ? AND is_paid = ?", billID, false).
				Updates(map[string]interface{}{"is_paid": true, "paid_at": paidAt}).Error
			if err != nil {
				return fmt.Errorf("mark bill paid: %w", err)
			}
			found.IsPaid = true
			found.PaidAt = &paidAt
		}
		bill = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return bill, nil
}

// ListBillsGeneratedSince returns every bill generated at or after since,
// oldest first.
func (s *Store) ListBillsGeneratedSince(ctx context.Context, since time.Time) ([]models.Bill, error) {
	var bills []models.Bill
	err := s.conn(ctx).
		Where("generated_at >= ?", since).
		Order("generated_at ASC").
		Find(&bills).Error
	if err != nil {
		return nil, fmt.Errorf("list bills since %s: %w", since.Format(time.RFC3339), err)
	}
	return bills, nil
}
