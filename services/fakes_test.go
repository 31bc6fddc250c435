package services

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"dairyflow-backend/models"
	"dairyflow-backend/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

var fixedNow = time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// fakeStore is an in-memory BillingStore and DeliveryStore. Transactions
// restore bills and overrides when fn fails.
type fakeStore struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*models.Customer
	items     []models.Item
	overrides map[string]*models.DayOverride
	bills     []*models.Bill
	logs      []models.NotificationLog

	findErrs  map[string]error
	markErr   error
	markCalls [][]uuid.UUID
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		customers: make(map[uuid.UUID]*models.Customer),
		overrides: make(map[string]*models.DayOverride),
		findErrs:  make(map[string]error),
	}
}

func overrideKey(customerID uuid.UUID, date string) string {
	return customerID.String() + "|" + date
}

func (f *fakeStore) addItem(name string, rate int64) models.Item {
	item := models.Item{ID: uuid.New(), Name: name, RatePerUnit: decimal.NewFromInt(rate), IsActive: true}
	f.items = append(f.items, item)
	return item
}

func (f *fakeStore) addCustomer(startDate string, subscription ...models.SubscriptionItem) *models.Customer {
	customer := &models.Customer{
		ID:                uuid.New(),
		Name:              "Asha",
		Phone:             "+919876543210",
		IsActive:          true,
		SubscriptionItems: datatypes.NewJSONSlice(subscription),
	}
	if startDate != "" {
		customer.SubscriptionStartDate = &startDate
	}
	f.customers[customer.ID] = customer
	return customer
}

func (f *fakeStore) addOverride(customerID uuid.UUID, date string, status models.DeliveryStatus, items ...models.OverrideItem) *models.DayOverride {
	o := &models.DayOverride{
		ID:                uuid.New(),
		CustomerID:        customerID,
		Date:              date,
		Status:            status,
		SubscriptionItems: datatypes.NewJSONSlice(items),
	}
	f.overrides[overrideKey(customerID, date)] = o
	return o
}

func (f *fakeStore) addBill(customerID uuid.UUID, from, to string) *models.Bill {
	bill := &models.Bill{ID: uuid.New(), CustomerID: customerID, FromDate: from, ToDate: to}
	f.bills = append(f.bills, bill)
	return bill
}

func (f *fakeStore) billsFor(customerID uuid.UUID) []models.Bill {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Bill
	for _, b := range f.bills {
		if b.CustomerID == customerID {
			out = append(out, *b)
		}
	}
	return out
}

func (f *fakeStore) GetCustomer(_ context.Context, id uuid.UUID) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeStore) ListCustomers(_ context.Context, activeOnly bool) ([]models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Customer
	for _, c := range f.customers {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (f *fakeStore) ListItems(_ context.Context) ([]models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Item(nil), f.items...), nil
}

func (f *fakeStore) FindOverride(_ context.Context, customerID uuid.UUID, date string) (*models.DayOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.findErrs[date]; err != nil {
		return nil, err
	}
	o, ok := f.overrides[overrideKey(customerID, date)]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeStore) ListOverrides(_ context.Context, customerID uuid.UUID, from, to string) ([]models.DayOverride, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DayOverride
	for _, o := range f.overrides {
		if o.CustomerID == customerID && o.Date >= from && o.Date <= to {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (f *fakeStore) UpsertOverride(_ context.Context, override *models.DayOverride) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := overrideKey(override.CustomerID, override.Date)
	if existing, ok := f.overrides[key]; ok {
		if existing.IsBilled() {
			return nil
		}
		override.ID = existing.ID
	} else if override.ID == uuid.Nil {
		override.ID = uuid.New()
	}
	cp := *override
	f.overrides[key] = &cp
	return nil
}

func (f *fakeStore) DeleteOverride(_ context.Context, customerID uuid.UUID, date string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := overrideKey(customerID, date)
	o, ok := f.overrides[key]
	if !ok || o.IsBilled() {
		return store.ErrNotFound
	}
	delete(f.overrides, key)
	return nil
}

func (f *fakeStore) LatestBill(_ context.Context, customerID uuid.UUID) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Bill
	for _, b := range f.bills {
		if b.CustomerID == customerID && (latest == nil || b.ToDate > latest.ToDate) {
			latest = b
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	bills := append([]*models.Bill(nil), f.bills...)
	overrides := make(map[string]models.DayOverride, len(f.overrides))
	for k, v := range f.overrides {
		overrides[k] = *v
	}
	f.mu.Unlock()

	if err := fn(ctx); err != nil {
		f.mu.Lock()
		f.bills = bills
		f.overrides = make(map[string]*models.DayOverride, len(overrides))
		for k, v := range overrides {
			v := v
			f.overrides[k] = &v
		}
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) CreateBill(_ context.Context, bill *models.Bill) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bills {
		if b.CustomerID == bill.CustomerID && b.FromDate == bill.FromDate && b.ToDate == bill.ToDate {
			return store.ErrDuplicateBill
		}
	}
	cp := *bill
	f.bills = append(f.bills, &cp)
	return nil
}

func (f *fakeStore) MarkOverridesBilled(_ context.Context, ids []uuid.UUID, billID uuid.UUID, billedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markCalls = append(f.markCalls, append([]uuid.UUID(nil), ids...))
	if f.markErr != nil {
		return 0, f.markErr
	}

	wanted := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	var n int64
	for _, o := range f.overrides {
		if wanted[o.ID] && o.BillID == nil {
			id := billID
			at := billedAt
			o.BillID = &id
			o.BilledAt = &at
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) MarkBillPaid(_ context.Context, customerID, billID uuid.UUID, paidAt time.Time) (*models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.bills {
		if b.ID == billID && b.CustomerID == customerID {
			if !b.IsPaid {
				b.IsPaid = true
				b.PaidAt = &paidAt
			}
			cp := *b
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) CreateNotificationLog(_ context.Context, entry *models.NotificationLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logs = append(f.logs, *entry)
	return nil
}

func newTestBillingService(s BillingStore) *BillingService {
	return NewBillingService(s, NewInMemoryLocker(), zap.NewNop(), BillingOptions{
		Location:     time.UTC,
		LookbackDays: 30,
		Now:          fixedClock,
	})
}

func subscription(item models.Item, quantity int64) models.SubscriptionItem {
	return models.SubscriptionItem{ItemID: item.ID.String(), ItemName: item.Name, Quantity: models.NewQuantity(quantity)}
}

func overrideItem(item models.Item, quantity int64) models.OverrideItem {
	return models.OverrideItem{ID: item.ID.String(), ItemName: item.Name, Quantity: models.NewQuantity(quantity)}
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func findLine(t *testing.T, items []models.BillLineItem, itemID uuid.UUID) models.BillLineItem {
	t.Helper()
	for _, line := range items {
		if line.ItemID == itemID.String() {
			return line
		}
	}
	require.Failf(t, "line not found", "no bill line for item %s", itemID)
	return models.BillLineItem{}
}
