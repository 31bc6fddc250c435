package services

import (
	"context"
	"errors"
	"strings"

	"dairyflow-backend/models"
	"dairyflow-backend/store"
	"dairyflow-backend/utils"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// DeliveryStore is the persistence used by daily delivery tracking.
type DeliveryStore interface {
	BillReader
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error)
	FindOverride(ctx context.Context, customerID uuid.UUID, date string) (*models.DayOverride, error)
	ListOverrides(ctx context.Context, customerID uuid.UUID, from, to string) ([]models.DayOverride, error)
	UpsertOverride(ctx context.Context, override *models.DayOverride) error
	DeleteOverride(ctx context.Context, customerID uuid.UUID, date string) error
}

// OverrideInput is what an operator records for one day.
type OverrideInput struct {
	Status            string                `json:"status"`
	SubscriptionItems []models.OverrideItem `json:"subscriptionItems"`
	ExtraItems        []models.OverrideItem `json:"extraItems"`
	Note              string                `json:"note"`
	MarkedBy          string                `json:"markedBy"`
}

// CalendarDay is one cell of a customer's delivery calendar.
type CalendarDay struct {
	Date   string         `json:"date"`
	Source DaySource      `json:"source"`
	Status string         `json:"status"`
	Billed bool           `json:"billed"`
	Note   string         `json:"note,omitempty"`
	Items  []ResolvedLine `json:"items"`
}

type DeliveryService struct {
	store  DeliveryStore
	logger *zap.Logger
}

func NewDeliveryService(s DeliveryStore, logger *zap.Logger) *DeliveryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DeliveryService{store: s, logger: logger.Named("deliveries")}
}

// GetOverride returns nil without error when the day follows the subscription.
func (s *DeliveryService) GetOverride(ctx context.Context, customerID uuid.UUID, date string) (*models.DayOverride, error) {
	if !utils.IsValidDate(date) {
		return nil, newError(ErrValidation, "Date must be in YYYY-MM-DD format", nil)
	}
	override, err := s.store.FindOverride(ctx, customerID, date)
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load delivery", err)
	}
	return override, nil
}

// SaveOverride records what was delivered on one day:
//   - delivered copies the current subscription and keeps the given extras
//   - notDelivered copies the subscription with zero quantities and no extras
//   - custom stores the given items as they are
//
// A day that is already billed cannot be changed.
func (s *DeliveryService) SaveOverride(ctx context.Context, customerID uuid.UUID, date string, in OverrideInput) (*models.DayOverride, error) {
	if !utils.IsValidDate(date) {
		return nil, newError(ErrValidation, "Date must be in YYYY-MM-DD format", nil)
	}
	status, ok := models.ParseDeliveryStatus(in.Status)
	if !ok {
		return nil, newError(ErrValidation, "Status must be delivered, notDelivered or custom", nil)
	}

	customer, err := s.store.GetCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load customer", err)
	}

	if err := s.checkUnbilledDate(ctx, customerID, date); err != nil {
		return nil, err
	}

	existing, err := s.store.FindOverride(ctx, customerID, date)
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load delivery", err)
	}
	if existing != nil && existing.IsBilled() {
		return nil, ErrOverrideBilled
	}

	override := &models.DayOverride{
		CustomerID: customerID,
		Date:       date,
		Status:     status,
		Note:       strings.TrimSpace(in.Note),
		MarkedBy:   in.MarkedBy,
	}

	switch status {
	case models.StatusDelivered:
		override.SubscriptionItems = datatypes.NewJSONSlice(subscriptionSnapshot(customer, false))
		override.ExtraItems = datatypes.NewJSONSlice(cleanItems(in.ExtraItems))
	case models.StatusNotDelivered:
		override.SubscriptionItems = datatypes.NewJSONSlice(subscriptionSnapshot(customer, true))
		override.ExtraItems = datatypes.NewJSONSlice([]models.OverrideItem{})
	default:
		override.SubscriptionItems = datatypes.NewJSONSlice(cleanItems(in.SubscriptionItems))
		override.ExtraItems = datatypes.NewJSONSlice(cleanItems(in.ExtraItems))
	}

	if err := s.store.UpsertOverride(ctx, override); err != nil {
		return nil, newError(ErrPersistence, "Failed to save delivery", err)
	}

	// The upsert leaves a concurrently billed row alone; read back what is stored.
	saved, err := s.store.FindOverride(ctx, customerID, date)
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load delivery", err)
	}
	if saved == nil {
		return nil, newError(ErrPersistence, "Delivery was not saved", nil)
	}
	if saved.IsBilled() {
		return nil, ErrOverrideBilled
	}

	s.logger.Debug("delivery saved",
		zap.String("customer_id", customerID.String()),
		zap.String("date", date),
		zap.String("status", string(status)),
	)
	return saved, nil
}

// DeleteOverride reverts a day to the customer's subscription.
func (s *DeliveryService) DeleteOverride(ctx context.Context, customerID uuid.UUID, date string) error {
	if !utils.IsValidDate(date) {
		return newError(ErrValidation, "Date must be in YYYY-MM-DD format", nil)
	}
	if err := s.checkUnbilledDate(ctx, customerID, date); err != nil {
		return err
	}

	existing, err := s.store.FindOverride(ctx, customerID, date)
	if err != nil {
		return newError(ErrPersistence, "Failed to load delivery", err)
	}
	if existing == nil {
		return nil
	}
	if existing.IsBilled() {
		return ErrOverrideBilled
	}

	if err := s.store.DeleteOverride(ctx, customerID, date); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOverrideBilled
		}
		return newError(ErrPersistence, "Failed to delete delivery", err)
	}
	return nil
}

// checkUnbilledDate rejects dates inside a period that is already billed.
// Periods only move forward, so a change there would never reach a bill.
func (s *DeliveryService) checkUnbilledDate(ctx context.Context, customerID uuid.UUID, date string) error {
	latest, err := s.store.LatestBill(ctx, customerID)
	if err != nil {
		return newError(ErrPersistence, "Failed to load bills", err)
	}
	if latest != nil && date <= latest.ToDate {
		return newError(ErrOverrideBilled, "This day is covered by the bill up to "+latest.ToDate+" and can no longer be changed", nil)
	}
	return nil
}

// MonthCalendar resolves every day of month ("YYYY-MM") for a customer the
// same way billing would.
func (s *DeliveryService) MonthCalendar(ctx context.Context, customerID uuid.UUID, month string) ([]CalendarDay, error) {
	first, last, err := utils.MonthBounds(month)
	if err != nil {
		return nil, newError(ErrValidation, "Month must be in YYYY-MM format", err)
	}

	customer, err := s.store.GetCustomer(ctx, customerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load customer", err)
	}

	overrides, err := s.store.ListOverrides(ctx, customerID, first, last)
	if err != nil {
		return nil, newError(ErrPersistence, "Failed to load deliveries", err)
	}
	byDate := lo.KeyBy(overrides, func(o models.DayOverride) string { return o.Date })

	dates, err := utils.DateRange(first, last)
	if err != nil {
		return nil, newError(ErrValidation, "Invalid month", err)
	}

	days := make([]CalendarDay, 0, len(dates))
	for _, date := range dates {
		var override *models.DayOverride
		if o, ok := byDate[date]; ok {
			override = &o
		}

		resolved := ResolveDay(customer, date, override)
		day := CalendarDay{
			Date:   date,
			Source: resolved.Source,
			Items:  resolved.Lines,
		}
		if day.Items == nil {
			day.Items = []ResolvedLine{}
		}
		if override != nil {
			day.Status = string(override.Status)
			day.Billed = override.IsBilled()
			day.Note = override.Note
			if day.Billed {
				day.Items = overrideLines(override)
			}
		} else {
			day.Status = string(models.StatusDelivered)
		}
		days = append(days, day)
	}
	return days, nil
}

// overrideLines lists what a billed day contributed to its bill.
func overrideLines(o *models.DayOverride) []ResolvedLine {
	if o.Status.Excludes() {
		return []ResolvedLine{}
	}
	unbilled := *o
	unbilled.BillID = nil
	lines := ResolveDay(&models.Customer{}, o.Date, &unbilled).Lines
	if lines == nil {
		return []ResolvedLine{}
	}
	return lines
}

func subscriptionSnapshot(customer *models.Customer, zeroed bool) []models.OverrideItem {
	return lo.Map(customer.SubscriptionItems, func(item models.SubscriptionItem, _ int) models.OverrideItem {
		quantity := item.Quantity
		if zeroed {
			quantity = models.NewQuantity(0)
		}
		return models.OverrideItem{ID: item.ItemID, ItemName: item.ItemName, Quantity: quantity}
	})
}

func cleanItems(items []models.OverrideItem) []models.OverrideItem {
	out := lo.Filter(items, func(item models.OverrideItem, _ int) bool {
		return strings.TrimSpace(item.ID) != ""
	})
	if out == nil {
		return []models.OverrideItem{}
	}
	return out
}
