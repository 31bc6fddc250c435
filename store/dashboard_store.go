package store

import (
	"context"
	"fmt"
	"time"

	"dairyflow-backend/models"
)

// DashboardStats summarises billing activity for the dashboard.
type DashboardStats struct {
	ActiveCustomers   int64   `json:"activeCustomers"`
	TotalItems        int64   `json:"totalItems"`
	UnpaidBills       int64   `json:"unpaidBills"`
	UnpaidAmount      float64 `json:"unpaidAmount"`
	BillsThisMonth    int64   `json:"billsThisMonth"`
	RevenueThisMonth  float64 `json:"revenueThisMonth"`
	DeliveriesSkipped int64   `json:"deliveriesSkippedThisMonth"`
}

func (s *Store) DashboardStats(ctx context.Context, monthStart time.Time, monthFirstDay string) (*DashboardStats, error) {
	var stats DashboardStats
	db := s.conn(ctx)

	if err := db.Model(&models.Customer{}).Where("is_active = ?", true).Count(&stats.ActiveCustomers).Error; err != nil {
		return nil, fmt.Errorf("count customers: %w", err)
	}
	if err := db.Model(&models.Item{}).Count(&stats.TotalItems).Error; err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}
	if err := db.Model(&models.Bill{}).Where("is_paid = ?", false).Count(&stats.UnpaidBills).Error; err != nil {
		return nil, fmt.Errorf("count unpaid bills: %w", err)
	}
	if err := db.Model(&models.Bill{}).Where("is_paid = ?", false).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.UnpaidAmount).Error; err != nil {
		return nil, fmt.Errorf("sum unpaid bills: %w", err)
	}
	if err := db.Model(&models.Bill{}).Where("generated_at >= ?", monthStart).Count(&stats.BillsThisMonth).Error; err != nil {
		return nil, fmt.Errorf("count bills: %w", err)
	}
	if err := db.Model(&models.Bill{}).Where("generated_at >= ?", monthStart).
		Select("COALESCE(SUM(total_amount), 0)").Scan(&stats.RevenueThisMonth).Error; err != nil {
		return nil, fmt.Errorf("sum bills: %w", err)
	}
	if err := db.Model(&models.DayOverride{}).
		Where("date >= ? AND status = ?", monthFirstDay, models.StatusNotDelivered).
		Count(&stats.DeliveriesSkipped).Error; err != nil {
		return nil, fmt.Errorf("count skipped deliveries: %w", err)
	}

	return &stats, nil
}
