package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// DeliveryStatus is the resolved state of a day override.
type DeliveryStatus string

const (
	StatusDelivered    DeliveryStatus = "delivered"
	StatusNotDelivered DeliveryStatus = "notDelivered"
	StatusCustom       DeliveryStatus = "custom"
)

// rawStatuses maps every spelling found in stored overrides to its resolved
// state. Keys are lower-cased. "paid" and "billed" were written over the
// delivery status by older billing runs; those days were delivered.
var rawStatuses = map[string]DeliveryStatus{
	"delivered":     StatusDelivered,
	"paid":          StatusDelivered,
	"billed":        StatusDelivered,
	"notdelivered":  StatusNotDelivered,
	"not_delivered": StatusNotDelivered,
	"not-delivered": StatusNotDelivered,
	"skipped":       StatusNotDelivered,
	"skip":          StatusNotDelivered,
	"cancelled":     StatusNotDelivered,
	"canceled":      StatusNotDelivered,
	"custom":        StatusCustom,
}

// ParseDeliveryStatus resolves a raw stored value. Unknown non-empty values
// resolve to custom so their recorded items still count.
func ParseDeliveryStatus(raw string) (DeliveryStatus, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if s, ok := rawStatuses[key]; ok {
		return s, true
	}
	return StatusCustom, false
}

// Excludes reports whether a day with this status contributes nothing.
func (s DeliveryStatus) Excludes() bool {
	return s == StatusNotDelivered
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusDelivered, StatusNotDelivered, StatusCustom:
		return true
	}
	return false
}

func (s DeliveryStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *DeliveryStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*s, _ = ParseDeliveryStatus(v)
	case []byte:
		*s, _ = ParseDeliveryStatus(string(v))
	case nil:
		*s = StatusCustom
	default:
		return fmt.Errorf("unsupported delivery status type %T", value)
	}
	return nil
}

func (s *DeliveryStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseDeliveryStatus(string(text))
	if !ok {
		return fmt.Errorf("unknown delivery status %q", string(text))
	}
	*s = parsed
	return nil
}
