// models/notification_log.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	CustomerID   uuid.UUID `gorm:"type:uuid;index;not null"`
	BillID       uuid.UUID `gorm:"type:uuid;index;not null"`
	Channel      string    `gorm:"type:varchar(20)"` // whatsapp, sms
	Status       string    `gorm:"type:varchar(20)"` // sent, failed
	Message      string    `gorm:"type:text"`
	ErrorMessage string    `gorm:"type:text"`
	ProviderSID  string    `gorm:"type:varchar(64)"`
	SentAt       time.Time
	CreatedAt    time.Time
}

func (n *NotificationLog) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return
}
