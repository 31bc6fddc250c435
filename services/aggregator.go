package services

import (
	"dairyflow-backend/models"

	"github.com/shopspring/decimal"
)

const unknownItemName = "Unknown Item"

type lineAccumulator struct {
	itemID   string
	itemName string
	quantity decimal.Decimal
}

// Aggregator sums resolved days into one accumulator per item. Items keep
// the order in which they were first seen.
type Aggregator struct {
	lines map[string]*lineAccumulator
	order []string
}

func NewAggregator() *Aggregator {
	return &Aggregator{lines: make(map[string]*lineAccumulator)}
}

func (a *Aggregator) Add(day ResolvedDay) {
	for _, line := range day.Lines {
		acc, ok := a.lines[line.ItemID]
		if !ok {
			acc = &lineAccumulator{itemID: line.ItemID, quantity: decimal.Zero}
			a.lines[line.ItemID] = acc
			a.order = append(a.order, line.ItemID)
		}
		if acc.itemName == "" {
			acc.itemName = line.ItemName
		}
		acc.quantity = acc.quantity.Add(line.Quantity)
	}
}

func (a *Aggregator) Len() int {
	return len(a.order)
}

// Price turns the accumulated quantities into bill lines using rates.
// Unknown items are priced at zero.
func (a *Aggregator) Price(rates RateTable) ([]models.BillLineItem, decimal.Decimal, error) {
	if a.Len() == 0 {
		return nil, decimal.Zero, ErrNoBillableItems
	}

	items := make([]models.BillLineItem, 0, len(a.order))
	total := decimal.Zero
	for _, id := range a.order {
		acc := a.lines[id]
		rate, _ := rates.Lookup(id)

		name := acc.itemName
		if name == "" {
			name = rate.ItemName
		}
		if name == "" {
			name = unknownItemName
		}

		lineTotal := acc.quantity.Mul(rate.RatePerUnit).Round(2)
		total = total.Add(lineTotal)

		items = append(items, models.BillLineItem{
			ItemID:   id,
			ItemName: name,
			Quantity: acc.quantity,
			Rate:     rate.RatePerUnit,
			Total:    lineTotal,
		})
	}
	return items, total, nil
}
