package db

import "time"

// SubscriberStatus 是订阅者的确认状态。
type SubscriberStatus string

const (
	SubscriberPending   SubscriberStatus = "pending"
	SubscriberConfirmed SubscriberStatus = "confirmed"
)

// Subscriber 是一个邮件订阅者。Token 仅在待确认期间存在，确认后清空。
type Subscriber struct {
	ID          uint             `gorm:"primaryKey"`
	Email       string           `gorm:"size:254;uniqueIndex;not null"`
	Status      SubscriberStatus `gorm:"size:20;not null;default:pending"`
	Token       *string          `gorm:"size:64;uniqueIndex"`
	ConfirmedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Confirmed reports whether the double opt-in has completed.
func (s Subscriber) Confirmed() bool {
	return s.Status == SubscriberConfirmed
}
