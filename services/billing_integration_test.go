package services

import (
	"context"
	"testing"
	"time"

	"dairyflow-backend/models"
	"dairyflow-backend/store"
	"dairyflow-backend/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

func TestBillingService_WithDatabase(t *testing.T) {
	s := store.New(testutil.NewTestDB(t))
	ctx := context.Background()

	milk := &models.Item{Name: "Milk", Unit: "litre", RatePerUnit: decimal.NewFromInt(50), IsActive: true}
	require.NoError(t, s.CreateItem(ctx, milk))

	start := "2024-05-08"
	customer := &models.Customer{
		Name:                  "Asha",
		IsActive:              true,
		SubscriptionStartDate: &start,
		SubscriptionItems: datatypes.NewJSONSlice([]models.SubscriptionItem{
			{ItemID: milk.ID.String(), ItemName: "Milk", Quantity: models.NewQuantity(1)},
		}),
	}
	require.NoError(t, s.CreateCustomer(ctx, customer))

	deliveries := NewDeliveryService(s, nil)
	_, err := deliveries.SaveOverride(ctx, customer.ID, "2024-05-09", OverrideInput{Status: "notDelivered"})
	require.NoError(t, err)
	_, err = deliveries.SaveOverride(ctx, customer.ID, "2024-05-10", OverrideInput{Status: "delivered"})
	require.NoError(t, err)

	now := fixedNow
	svc := NewBillingService(s, NewInMemoryLocker(), zap.NewNop(), BillingOptions{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})

	result, err := svc.GenerateBill(ctx, customer.ID)
	require.NoError(t, err)
	assertDecimal(t, "100", result.Data.TotalAmount)

	skipped, err := s.FindOverride(ctx, customer.ID, "2024-05-09")
	require.NoError(t, err)
	assert.Nil(t, skipped.BillID)

	delivered, err := s.FindOverride(ctx, customer.ID, "2024-05-10")
	require.NoError(t, err)
	require.NotNil(t, delivered.BillID)
	assert.Equal(t, result.BillID, *delivered.BillID)

	_, err = deliveries.SaveOverride(ctx, customer.ID, "2024-05-10", OverrideInput{Status: "notDelivered"})
	assert.ErrorIs(t, err, ErrOverrideBilled)

	// A later rate change leaves the stored bill untouched.
	milk.RatePerUnit = decimal.NewFromInt(60)
	require.NoError(t, s.UpdateItem(ctx, milk))

	stored, err := s.GetBill(ctx, customer.ID, result.BillID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assertDecimal(t, "50", stored.Items[0].Rate)
	assertDecimal(t, "100", stored.TotalAmount)

	_, err = svc.GenerateBill(ctx, customer.ID)
	assert.ErrorIs(t, err, ErrAlreadyUpToDate)

	now = fixedNow.AddDate(0, 0, 2)
	next, err := svc.GenerateBill(ctx, customer.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-11", next.Data.FromDate)
	assert.Equal(t, "2024-05-12", next.Data.ToDate)
	assertDecimal(t, "120", next.Data.TotalAmount)

	paid, err := svc.MarkPaid(ctx, customer.ID, result.BillID)
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)

	bills, err := s.ListBills(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, next.BillID, bills[0].ID)
}
