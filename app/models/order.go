package models

import (
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	OrderStatusCompleted = "completed"
)

// Order is the durable record of one provider payment transaction. Uniqueness
// on (provider, order_id) is its own idempotency boundary: the same order may
// be reported through different event types and ids, and re-recording it is a
// no-op. Rows are immutable after insert.
type Order struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Provider      string    `gorm:"type:varchar(20);not null;index:ux_orders_provider_order,unique,priority:1;index" json:"provider" validate:"required"`
	OrderID       string    `gorm:"type:varchar(191);not null;index:ux_orders_provider_order,unique,priority:2" json:"order_id" validate:"required"`
	UserID        *string   `gorm:"type:varchar(36);default:null;index" json:"user_id,omitempty"`
	CustomerEmail string    `gorm:"type:varchar(200);default:''" json:"customer_email" validate:"omitempty,email"`
	PlanName      string    `gorm:"type:varchar(100);not null;default:'unknown'" json:"plan_name"`
	Amount        float64   `gorm:"type:decimal(10,2);not null;default:0" json:"amount" validate:"gte=0"`
	Currency      string    `gorm:"type:varchar(3);not null;default:'USD'" json:"currency" validate:"len=3"`
	Status        string    `gorm:"type:varchar(32);not null;default:'completed'" json:"status"`
	MetadataJSON  string    `gorm:"type:longtext" json:"metadata_json"`
	CreatedAt     time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

func (o *Order) Validate() error {
	v := validator.New()

	return v.Struct(o)
}
