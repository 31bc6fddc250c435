package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Rate is the current price of one item.
type Rate struct {
	ItemName    string
	RatePerUnit decimal.Decimal
}

// RateTable maps item ids to their current rate. It is loaded once per run so
// every line of a bill is priced against the same snapshot.
type RateTable map[string]Rate

func LoadRateTable(ctx context.Context, items ItemLister) (RateTable, error) {
	list, err := items.ListItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load item rates: %w", err)
	}

	table := make(RateTable, len(list))
	for _, item := range list {
		table[item.ID.String()] = Rate{ItemName: item.Name, RatePerUnit: item.RatePerUnit}
	}
	return table, nil
}

// Lookup returns a zero rate for unknown items.
func (t RateTable) Lookup(itemID string) (Rate, bool) {
	rate, ok := t[itemID]
	if !ok {
		return Rate{RatePerUnit: decimal.Zero}, false
	}
	return rate, true
}
