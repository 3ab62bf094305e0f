package models

import "time"

// Payment provider constants used across billing-related models.
const (
	ProviderCreem = "creem"
)

// WebhookEvent stores provider webhook payloads with deduplication metadata
// for idempotent processing. Rows are append-only; the processed flag is the
// only field mutated after insert.
//
// EventID is nullable: the provider occasionally omits its event id, and such
// deliveries cannot be deduplicated. MySQL unique indexes admit any number of
// NULLs, so those rows coexist under the (provider, event_id) constraint.
type WebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_webhook_events_provider_event,unique,priority:1;index" json:"provider"`
	EventID         *string    `gorm:"type:varchar(191);index:ux_webhook_events_provider_event,unique,priority:2" json:"event_id,omitempty"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	Processed       bool       `gorm:"default:false;index" json:"processed"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
