package billing

import (
	"time"

	"github.com/lunavoice/billing/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the billing service.
type Repository interface {
	CreateWebhookEventIfNew(event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
	CreateOrderIfNew(order *models.Order) (bool, error)
	UpsertUserSubscription(sub *models.UserSubscription) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// CreateWebhookEventIfNew inserts the event under the (provider, event_id)
// unique index and reports whether this delivery won the insert. The single
// conflict-ignoring insert is the dedup source of truth: under concurrent
// redelivery exactly one caller observes created=true. Events without a
// provider id bypass dedup entirely and always insert.
func (r *gormRepository) CreateWebhookEventIfNew(event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	if event.EventID == nil {
		if err := r.db.Create(event).Error; err != nil {
			return false, nil, err
		}
		return true, event, nil
	}

	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.Where("provider = ? AND event_id = ?", event.Provider, *event.EventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed":        processingError == "",
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}

// CreateOrderIfNew inserts the order unless (provider, order_id) already
// exists. A duplicate is a no-op success, not an error: the same order can be
// reported through different event types and redeliveries.
func (r *gormRepository) CreateOrderIfNew(order *models.Order) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "order_id"},
		},
		DoNothing: true,
	}).Create(order)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// UpsertUserSubscription writes the subscription row keyed on user_id. Last
// write wins; there is no sequence check against the stored row.
func (r *gormRepository) UpsertUserSubscription(sub *models.UserSubscription) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan",
			"status",
			"current_period_start",
			"current_period_end",
			"updated_at",
		}),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("user_id = ?", sub.UserID).First(sub).Error
}
