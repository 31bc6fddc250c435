package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dairyflow-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FindOverride returns nil without error when the day has no override.
func (s *Store) FindOverride(ctx context.Context, customerID uuid.UUID, date string) (*models.DayOverride, error) {
	var override models.DayOverride
	err := s.conn(ctx).
		Where("customer_id = ? AND date = ?", customerID, date).
		First(&override).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find override %s/%s: %w", customerID, date, err)
	}
	return &override, nil
}

// ListOverrides returns the overrides of a customer within [from, to].
func (s *Store) ListOverrides(ctx context.Context, customerID uuid.UUID, from, to string) ([]models.DayOverride, error) {
	var overrides []models.DayOverride
	err := s.conn(ctx).
		Where("customer_id = ? AND date >= ? AND date <= ?", customerID, from, to).
		Order("date ASC").
		Find(&overrides).Error
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	return overrides, nil
}

// UpsertOverride creates or replaces the override of (customer, date). Billed
// overrides are never touched.
func (s *Store) UpsertOverride(ctx context.Context, override *models.DayOverride) error {
	if override.ID == uuid.Nil {
		override.ID = uuid.New()
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "customer_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "subscription_items", "extra_items", "note", "marked_by", "updated_at",
		}),
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "day_overrides.bill_id IS NULL"},
		}},
	}).Create(override).Error
	if err != nil {
		return fmt.Errorf("save override: %w", err)
	}
	return nil
}

func (s *Store) DeleteOverride(ctx context.Context, customerID uuid.UUID, date string) error {
	result := s.conn(ctx).
		Where("customer_id = ? AND date = ? AND bill_id IS NULL", customerID, date).
		Delete(&models.DayOverride{})
	if result.Error != nil {
		return fmt.Errorf("delete override: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkOverridesBilled records billID on every listed override that has not
// been billed yet and returns how many rows changed.
func (s *Store) MarkOverridesBilled(ctx context.Context, overrideIDs []uuid.UUID, billID uuid.UUID, billedAt time.Time) (int64, error) {
	if len(overrideIDs) == 0 {
		return 0, nil
	}
	result := s.conn(ctx).Model(&models.DayOverride{}).
		Where("id IN ? AND bill_id IS NULL", overrideIDs).
		Updates(map[string]interface{}{
			"bill_id":   billID,
			"billed_at": billedAt,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("mark overrides billed: %w", result.Error)
	}
	return result.RowsAffected, nil
}
