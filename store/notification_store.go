package store

import (
	"context"
	"fmt"

	"dairyflow-backend/models"

	"github.com/google/uuid"
)

func (s *Store) CreateNotificationLog(ctx context.Context, entry *models.NotificationLog) error {
	if err := s.conn(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create notification log: %w", err)
	}
	return nil
}

func (s *Store) ListNotificationLogs(ctx context.Context, billID uuid.UUID) ([]models.NotificationLog, error) {
	var logs []models.NotificationLog
	if err := s.conn(ctx).Where("bill_id = ?", billID).Order("sent_at DESC").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("list notification logs: %w", err)
	}
	return logs, nil
}
