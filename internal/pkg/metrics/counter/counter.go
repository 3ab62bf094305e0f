package counter

import (
	"context"
	"fmt"

	"github.com/lunavoice/billing/internal/pkg/cache"
)

const webhookEventsKey = "webhook:counters:events"

// Delivery results tracked per event type.
const (
	ResultProcessed = "processed"
	ResultSkipped   = "skipped"
	ResultDuplicate = "duplicate"
	ResultRejected  = "rejected"
	ResultFailed    = "failed"
)

// AddWebhookEvent increments the delivery counter for an event type/result
// pair in Redis. Counters are best-effort observability, so callers may
// ignore the returned error.
func AddWebhookEvent(eventType, result string) error {
	if eventType == "" {
		eventType = "unknown"
	}
	field := fmt.Sprintf("%s:%s", eventType, result)
	return cache.GetClient().HIncrBy(context.Background(), webhookEventsKey, field, 1).Err()
}

// Snapshot returns all webhook delivery counters.
func Snapshot(ctx context.Context) (map[string]string, error) {
	return cache.GetClient().HGetAll(ctx, webhookEventsKey).Result()
}
