package services

import (
	"context"

	"dairyflow-backend/models"

	"github.com/shopspring/decimal"
)

// DaySource tells where a resolved day's items came from.
type DaySource string

const (
	SourceOverride     DaySource = "override"
	SourceSubscription DaySource = "subscription"
	SourceExcluded     DaySource = "excluded"
)

// ResolvedLine is one billable item quantity on one day.
type ResolvedLine struct {
	ItemID   string          `json:"itemId"`
	ItemName string          `json:"itemName"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ResolvedDay is the effective delivery of a customer on one date.
type ResolvedDay struct {
	Date     string              `json:"date"`
	Source   DaySource           `json:"source"`
	Lines    []ResolvedLine      `json:"items"`
	Override *models.DayOverride `json:"-"`
}

// Billable reports whether the day's override must be marked by the bill
// that includes it.
func (d ResolvedDay) Billable() bool {
	return d.Source == SourceOverride && d.Override != nil
}

// DayResolver decides what a customer received on a given date.
type DayResolver struct {
	overrides OverrideReader
}

func NewDayResolver(overrides OverrideReader) *DayResolver {
	return &DayResolver{overrides: overrides}
}

// Resolve looks up the override of the day and applies ResolveDay.
func (r *DayResolver) Resolve(ctx context.Context, customer *models.Customer, date string) (ResolvedDay, error) {
	override, err := r.overrides.FindOverride(ctx, customer.ID, date)
	if err != nil {
		return ResolvedDay{}, err
	}
	return ResolveDay(customer, date, override), nil
}

// ResolveDay applies the precedence rules to an already loaded override:
//   - a billed override contributes nothing, it belongs to an earlier bill
//   - a notDelivered override contributes nothing
//   - any other override contributes its subscription and extra items
//   - without an override the customer's current subscription applies
func ResolveDay(customer *models.Customer, date string, override *models.DayOverride) ResolvedDay {
	day := ResolvedDay{Date: date, Override: override}

	if override == nil {
		day.Source = SourceSubscription
		for _, item := range customer.SubscriptionItems {
			day.Lines = appendLine(day.Lines, item.ItemID, item.ItemName, item.Quantity)
		}
		return day
	}

	if override.IsBilled() || override.Status.Excludes() {
		day.Source = SourceExcluded
		return day
	}

	day.Source = SourceOverride
	for _, item := range override.SubscriptionItems {
		day.Lines = appendLine(day.Lines, item.ID, item.ItemName, item.Quantity)
	}
	for _, item := range override.ExtraItems {
		name := item.Name
		if name == "" {
			name = item.ItemName
		}
		day.Lines = appendLine(day.Lines, item.ID, name, item.Quantity)
	}
	return day
}

// appendLine drops entries without an id or with a non-positive quantity.
func appendLine(lines []ResolvedLine, id, name string, quantity models.Quantity) []ResolvedLine {
	if id == "" || !quantity.IsPositive() {
		return lines
	}
	return append(lines, ResolvedLine{ItemID: id, ItemName: name, Quantity: quantity.Decimal})
}
