package store

import (
	"context"
	"fmt"

	"dairyflow-backend/models"

	"github.com/google/uuid"
)

func (s *Store) CreateItem(ctx context.Context, item *models.Item) error {
	if err := s.conn(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create item: %w", err)
	}
	return nil
}

func (s *Store) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := s.conn(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// ListItems returns every item that has not been deleted, active or not.
func (s *Store) ListItems(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := s.conn(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *Store) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := s.conn(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	return nil
}

func (s *Store) DeleteItem(ctx context.Context, id uuid.UUID) error {
	result := s.conn(ctx).Where("id = ?", id).Delete(&models.Item{})
	if result.Error != nil {
		return fmt.Errorf("delete item: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
