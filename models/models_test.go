package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantity_UnmarshalLenient(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"number", `2`, "2"},
		{"fraction", `0.5`, "0.5"},
		{"numeric string", `"3"`, "3"},
		{"garbage string", `"two"`, "0"},
		{"empty string", `""`, "0"},
		{"null", `null`, "0"},
		{"bool", `true`, "0"},
		{"negative", `-1`, "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Quantity
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &q))
			assert.Equal(t, tt.want, q.String())
		})
	}
}

func TestOverrideItem_DecodesMixedPayload(t *testing.T) {
	var items []OverrideItem
	raw := `[{"id":"milk","itemName":"Milk","quantity":"2"},{"id":"curd","name":"Curd","quantity":"x"},{"quantity":1}]`
	require.NoError(t, json.Unmarshal([]byte(raw), &items))

	require.Len(t, items, 3)
	assert.Equal(t, "2", items[0].Quantity.String())
	assert.True(t, items[0].Quantity.IsPositive())
	assert.False(t, items[1].Quantity.IsPositive())
	assert.Empty(t, items[2].ID)
}

func TestQuantity_MarshalAsNumber(t *testing.T) {
	out, err := json.Marshal(SubscriptionItem{ItemID: "milk", ItemName: "Milk", Quantity: NewQuantity(2)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"milk","itemName":"Milk","quantity":2}`, string(out))
}

func TestParseDeliveryStatus(t *testing.T) {
	tests := []struct {
		raw   string
		want  DeliveryStatus
		known bool
	}{
		{"delivered", StatusDelivered, true},
		{"notDelivered", StatusNotDelivered, true},
		{"NOT_DELIVERED", StatusNotDelivered, true},
		{"skipped", StatusNotDelivered, true},
		{"custom", StatusCustom, true},
		{"paid", StatusDelivered, true},
		{"billed", StatusDelivered, true},
		{"something-else", StatusCustom, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, known := ParseDeliveryStatus(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestDeliveryStatus_Scan(t *testing.T) {
	var s DeliveryStatus
	require.NoError(t, s.Scan("skipped"))
	assert.Equal(t, StatusNotDelivered, s)
	assert.True(t, s.Excludes())

	require.NoError(t, s.Scan([]byte("delivered")))
	assert.Equal(t, StatusDelivered, s)
	assert.False(t, s.Excludes())

	assert.Error(t, s.Scan(42))
}

func TestDeliveryStatus_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Status DeliveryStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"skipped"}`), &payload))
	assert.Equal(t, StatusNotDelivered, payload.Status)

	assert.Error(t, json.Unmarshal([]byte(`{"status":"maybe"}`), &payload))
}
