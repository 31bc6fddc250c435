package services

import (
	"context"
	"testing"

	"dairyflow-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveOverride_StatusSemantics(t *testing.T) {
	fs := newFakeStore()
	milk := fs.addItem("Milk", 50)
	ghee := fs.addItem("Ghee", 600)
	customer := fs.addCustomer("2024-05-01", subscription(milk, 2))
	svc := NewDeliveryService(fs, nil)
	ctx := context.Background()

	delivered, err := svc.SaveOverride(ctx, customer.ID, "2024-05-03", OverrideInput{
		Status:     "delivered",
		ExtraItems: []models.OverrideItem{{ID: ghee.ID.String(), Name: "Ghee", Quantity: models.NewQuantity(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, delivered.Status)
	require.Len(t, delivered.SubscriptionItems, 1)
	assertDecimal(t, "2", delivered.SubscriptionItems[0].Quantity.Decimal)
	assert.Len(t, delivered.ExtraItems, 1)

	skipped, err := svc.SaveOverride(ctx, customer.ID, "2024-05-03", OverrideInput{
		Status:     "skipped",
		ExtraItems: []models.OverrideItem{{ID: ghee.ID.String(), Quantity: models.NewQuantity(1)}},
	})
	require.NoError(t, err)
	assert.Equal(t, delivered.ID, skipped.ID, "same day keeps its record")
	assert.Equal(t, models.StatusNotDelivered, skipped.Status)
	require.Len(t, skipped.SubscriptionItems, 1)
	assert.True(t, skipped.SubscriptionItems[0].Quantity.IsZero())
	assert.Empty(t, skipped.ExtraItems)

	custom, err := svc.SaveOverride(ctx, customer.ID, "2024-05-04", OverrideInput{
		Status: "custom",
		Note:   "  half litre only ",
		SubscriptionItems: []models.OverrideItem{
			{ID: milk.ID.String(), ItemName: "Milk", Quantity: models.QuantityFromDecimal(decimal.RequireFromString("0.5"))},
			{ID: "", Quantity: models.NewQuantity(3)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "half litre only", custom.Note)
	require.Len(t, custom.SubscriptionItems, 1)
	assertDecimal(t, "0.5", custom.SubscriptionItems[0].Quantity.Decimal)
}

func TestSaveOverride_Validation(t *testing.T) {
	fs := newFakeStore()
	customer := fs.addCustomer("")
	svc := NewDeliveryService(fs, nil)
	ctx := context.Background()

	_, err := svc.SaveOverride(ctx, customer.ID, "05/03/2024", OverrideInput{Status: "delivered"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SaveOverride(ctx, customer.ID, "2024-05-03", OverrideInput{Status: "teleported"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.SaveOverride(ctx, uuid.New(), "2024-05-03", OverrideInput{Status: "delivered"})
	assert.ErrorIs(t, err, ErrCustomerNotFound)
}

func TestSaveOverride_BilledDayIsReadOnly(t *testing.T) {
	fs := newFakeStore()
	milk := fs.addItem("Milk", 50)
	customer := fs.addCustomer("", subscription(milk, 1))
	billID := uuid.New()
	o := fs.addOverride(customer.ID, "2024-05-03", models.StatusDelivered, overrideItem(milk, 1))
	o.BillID = &billID
	svc := NewDeliveryService(fs, nil)
	ctx := context.Background()

	_, err := svc.SaveOverride(ctx, customer.ID, "2024-05-03", OverrideInput{Status: "notDelivered"})
	assert.ErrorIs(t, err, ErrOverrideBilled)

	err = svc.DeleteOverride(ctx, customer.ID, "2024-05-03")
	assert.ErrorIs(t, err, ErrOverrideBilled)

	stored := fs.overrides[overrideKey(customer.ID, "2024-05-03")]
	assert.Equal(t, models.StatusDelivered, stored.Status)
}

func TestOverrides_BilledPeriodIsReadOnly(t *testing.T) {
	fs := newFakeStore()
	milk := fs.addItem("Milk", 50)
	customer := fs.addCustomer("2024-05-01", subscription(milk, 1))
	fs.addOverride(customer.ID, "2024-05-04", models.StatusNotDelivered)
	fs.addBill(customer.ID, "2024-05-01", "2024-05-05")
	svc := NewDeliveryService(fs, nil)
	ctx := context.Background()

	for _, date := range []string{"2024-05-01", "2024-05-03", "2024-05-05"} {
		_, err := svc.SaveOverride(ctx, customer.ID, date, OverrideInput{Status: "notDelivered"})
		assert.ErrorIs(t, err, ErrOverrideBilled, date)
		_, stored := fs.overrides[overrideKey(customer.ID, date)]
		assert.False(t, stored, date)
	}

	err := svc.DeleteOverride(ctx, customer.ID, "2024-05-04")
	assert.ErrorIs(t, err, ErrOverrideBilled)
	assert.Contains(t, fs.overrides, overrideKey(customer.ID, "2024-05-04"))

	_, err = svc.SaveOverride(ctx, customer.ID, "2024-05-06", OverrideInput{Status: "notDelivered"})
	assert.NoError(t, err, "the first unbilled day stays editable")
	assert.NoError(t, svc.DeleteOverride(ctx, customer.ID, "2024-05-06"))
}

func TestDeleteOverride(t *testing.T) {
	fs := newFakeStore()
	customer := fs.addCustomer("")
	fs.addOverride(customer.ID, "2024-05-03", models.StatusNotDelivered)
	svc := NewDeliveryService(fs, nil)
	ctx := context.Background()

	require.NoError(t, svc.DeleteOverride(ctx, customer.ID, "2024-05-03"))
	found, err := svc.GetOverride(ctx, customer.ID, "2024-05-03")
	require.NoError(t, err)
	assert.Nil(t, found)

	assert.NoError(t, svc.DeleteOverride(ctx, customer.ID, "2024-05-03"))
}

func TestMonthCalendar(t *testing.T) {
	fs := newFakeStore()
	milk := fs.addItem("Milk", 50)
	customer := fs.addCustomer("2024-02-01", subscription(milk, 1))
	fs.addOverride(customer.ID, "2024-02-05", models.StatusNotDelivered)
	fs.addOverride(customer.ID, "2024-02-06", models.StatusCustom, overrideItem(milk, 3))
	billID := uuid.New()
	billed := fs.addOverride(customer.ID, "2024-02-07", models.StatusDelivered, overrideItem(milk, 2))
	billed.BillID = &billID
	fs.addOverride(customer.ID, "2024-03-01", models.StatusNotDelivered)

	days, err := NewDeliveryService(fs, nil).MonthCalendar(context.Background(), customer.ID, "2024-02")
	require.NoError(t, err)
	require.Len(t, days, 29)

	assert.Equal(t, "2024-02-01", days[0].Date)
	assert.Equal(t, SourceSubscription, days[0].Source)
	require.Len(t, days[0].Items, 1)

	assert.Equal(t, SourceExcluded, days[4].Source)
	assert.Equal(t, "notDelivered", days[4].Status)
	assert.Empty(t, days[4].Items)

	assert.Equal(t, SourceOverride, days[5].Source)
	assertDecimal(t, "3", days[5].Items[0].Quantity)

	assert.True(t, days[6].Billed)
	assert.Equal(t, SourceExcluded, days[6].Source)
	require.Len(t, days[6].Items, 1)
	assertDecimal(t, "2", days[6].Items[0].Quantity)

	assert.Equal(t, "2024-02-29", days[28].Date)

	_, err = NewDeliveryService(fs, nil).MonthCalendar(context.Background(), customer.ID, "February")
	assert.ErrorIs(t, err, ErrValidation)
}
