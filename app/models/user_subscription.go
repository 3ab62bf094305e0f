package models

import "time"

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
)

// UserSubscription mirrors the provider's subscription state for one user,
// keyed uniquely on the external user id. Upserts are last-write-wins: the
// provider does not expose a sequence number, so no ordering check is applied
// against updated_at (a late stale delivery can regress state).
type UserSubscription struct {
	ID                 uint       `gorm:"primaryKey" json:"id"`
	UserID             string     `gorm:"type:varchar(36);not null;uniqueIndex:ux_user_subscriptions_user" json:"user_id"`
	Plan               string     `gorm:"type:varchar(100);not null;default:'unknown'" json:"plan"`
	Status             string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CurrentPeriodStart *time.Time `gorm:"type:timestamp;default:null" json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `gorm:"type:timestamp;default:null" json:"current_period_end,omitempty"`
	CreatedAt          time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsEntitling reports whether the subscription grants paid access.
func (s *UserSubscription) IsEntitling() bool {
	switch s.Status {
	case SubscriptionStatusActive, SubscriptionStatusTrialing:
		return true
	default:
		return false
	}
}
