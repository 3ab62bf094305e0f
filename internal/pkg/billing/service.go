package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/lunavoice/billing/app/models"
	"github.com/lunavoice/billing/internal/pkg/creem"
	"gorm.io/gorm"
)

const (
	defaultPlanName  = "unknown"
	defaultTrialPlan = "trial"
	defaultCurrency  = "USD"
)

// UserResolver maps provider identity hints to an internal user id. Satisfied
// by identity.Resolver.
type UserResolver interface {
	Resolve(ctx context.Context, explicitUserID, email string) (string, error)
}

// Service ingests provider webhook events and reconciles them into durable
// order and subscription records.
type Service struct {
	repo     Repository
	resolver UserResolver
}

// NewService creates a billing service from an injected repository and
// resolver.
func NewService(repo Repository, resolver UserResolver) *Service {
	return &Service{repo: repo, resolver: resolver}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, resolver UserResolver) *Service {
	return NewService(NewRepository(db), resolver)
}

// Outcome describes how far processing got for an accepted event.
type Outcome struct {
	Processed bool
	Note      string
}

// RecordEvent persists the delivery in the webhook event ledger and reports
// whether it is new. Deliveries without a provider event id cannot be
// deduplicated; they are stored with a NULL event id, logged as a risk and
// processed unconditionally.
func (s *Service) RecordEvent(ctx context.Context, eventID, eventType string, payload []byte) (bool, *models.WebhookEvent, error) {
	_ = ctx
	event := &models.WebhookEvent{
		Provider:    models.ProviderCreem,
		EventType:   strings.TrimSpace(eventType),
		PayloadJSON: string(payload),
	}
	if id := strings.TrimSpace(eventID); id != "" {
		event.EventID = &id
	} else {
		slog.Warn("webhook delivery carries no event id, dedup not possible",
			"provider", models.ProviderCreem,
			"event_type", event.EventType,
			"delivery_marker", uuid.NewString())
	}
	return s.repo.CreateWebhookEventIfNew(event)
}

// MarkProcessed flags a stored event as handled, keeping the error text of a
// failed or skipped run for later inspection.
func (s *Service) MarkProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	_ = ctx
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(webhookEventID, errMsg)
}

// ProcessEvent routes the event to its handler. Unknown types are accepted
// without effect so the provider stops redelivering them. A returned error
// means a store write failed; the caller responds 500 and the provider
// retries, which the unique constraints make safe.
func (s *Service) ProcessEvent(ctx context.Context, ev *creem.Event) (Outcome, error) {
	switch {
	case ev.Checkout != nil:
		return s.handleCheckoutCompleted(ctx, ev)
	case ev.Paid != nil:
		return s.handleSubscriptionPaid(ctx, ev)
	case ev.Trialing != nil:
		return s.handleSubscriptionTrialing(ctx, ev)
	default:
		slog.Info("ignoring unhandled webhook event type", "event_type", ev.Type)
		return Outcome{Processed: false, Note: "unhandled event type: " + ev.Type}, nil
	}
}

func (s *Service) handleCheckoutCompleted(ctx context.Context, ev *creem.Event) (Outcome, error) {
	p := ev.Checkout
	userID := s.resolveUser(ctx, p.Metadata.UserID, ev.CustomerEmail(), ev.Type)

	orderID := p.OrderID()
	if orderID == "" {
		slog.Warn("checkout event carries no order id, nothing recorded", "event_id", ev.ID)
		return Outcome{Processed: false, Note: "missing order id"}, nil
	}

	order := &models.Order{
		Provider:      models.ProviderCreem,
		OrderID:       orderID,
		CustomerEmail: ev.CustomerEmail(),
		PlanName:      planOrDefault(p.Metadata.PlanName, defaultPlanName),
		Amount:        MinorToMajor(p.AmountMinor()),
		Currency:      currencyOrDefault(p.Order.Currency),
		Status:        models.OrderStatusCompleted,
		MetadataJSON:  string(ev.Raw),
	}
	if userID != "" {
		order.UserID = &userID
	}
	if err := s.recordOrder(order); err != nil {
		return Outcome{}, err
	}

	if userID == "" {
		slog.Warn("no resolvable user for checkout, subscription update skipped",
			"order_id", orderID, "customer_email", ev.CustomerEmail())
		return Outcome{Processed: true, Note: "user unresolved, subscription update skipped"}, nil
	}

	sub := &models.UserSubscription{
		UserID: userID,
		Plan:   planOrDefault(p.Metadata.PlanName, defaultPlanName),
		Status: models.SubscriptionStatusActive,
	}
	if p.Subscription != nil {
		sub.CurrentPeriodStart = p.Subscription.CurrentPeriodStartDate
		sub.CurrentPeriodEnd = p.Subscription.CurrentPeriodEndDate
	}
	if err := s.repo.UpsertUserSubscription(sub); err != nil {
		return Outcome{}, fmt.Errorf("upsert subscription: %w", err)
	}

	slog.Info("checkout completed", "order_id", orderID, "user_id", userID)
	return Outcome{Processed: true}, nil
}

func (s *Service) handleSubscriptionPaid(ctx context.Context, ev *creem.Event) (Outcome, error) {
	p := ev.Paid
	userID := s.resolveUser(ctx, p.Metadata.UserID, ev.CustomerEmail(), ev.Type)

	orderID := p.OrderID()
	if orderID == "" {
		slog.Warn("renewal event carries no order reference, nothing recorded", "event_id", ev.ID)
		return Outcome{Processed: false, Note: "missing order id"}, nil
	}

	order := &models.Order{
		Provider:      models.ProviderCreem,
		OrderID:       orderID,
		CustomerEmail: ev.CustomerEmail(),
		PlanName:      planOrDefault(p.Metadata.PlanName, defaultPlanName),
		Amount:        MinorToMajor(p.LastTransaction.Amount),
		Currency:      currencyOrDefault(p.LastTransaction.Currency),
		Status:        models.OrderStatusCompleted,
		MetadataJSON:  string(ev.Raw),
	}
	if userID != "" {
		order.UserID = &userID
	}
	if err := s.recordOrder(order); err != nil {
		return Outcome{}, err
	}

	if userID == "" {
		slog.Warn("no resolvable user for renewal, subscription update skipped",
			"order_id", orderID, "customer_email", ev.CustomerEmail())
		return Outcome{Processed: true, Note: "user unresolved, subscription update skipped"}, nil
	}

	sub := &models.UserSubscription{
		UserID:             userID,
		Plan:               planOrDefault(p.Metadata.PlanName, defaultPlanName),
		Status:             models.SubscriptionStatusActive,
		CurrentPeriodStart: p.CurrentPeriodStartDate,
		CurrentPeriodEnd:   p.CurrentPeriodEndDate,
	}
	if err := s.repo.UpsertUserSubscription(sub); err != nil {
		return Outcome{}, fmt.Errorf("upsert subscription: %w", err)
	}

	slog.Info("subscription renewed", "order_id", orderID, "user_id", userID)
	return Outcome{Processed: true}, nil
}

func (s *Service) handleSubscriptionTrialing(ctx context.Context, ev *creem.Event) (Outcome, error) {
	p := ev.Trialing
	userID := s.resolveUser(ctx, p.Metadata.UserID, ev.CustomerEmail(), ev.Type)

	if userID == "" {
		slog.Warn("no resolvable user for trial start, nothing recorded",
			"customer_email", ev.CustomerEmail())
		return Outcome{Processed: false, Note: "user unresolved, no subscription recorded"}, nil
	}

	sub := &models.UserSubscription{
		UserID:             userID,
		Plan:               planOrDefault(p.Metadata.PlanName, defaultTrialPlan),
		Status:             models.SubscriptionStatusTrialing,
		CurrentPeriodStart: p.CurrentPeriodStartDate,
		CurrentPeriodEnd:   p.CurrentPeriodEndDate,
	}
	if err := s.repo.UpsertUserSubscription(sub); err != nil {
		return Outcome{}, fmt.Errorf("upsert subscription: %w", err)
	}

	slog.Info("trial started", "user_id", userID)
	return Outcome{Processed: true}, nil
}

func (s *Service) recordOrder(order *models.Order) error {
	if err := order.Validate(); err != nil {
		return fmt.Errorf("validate order: %w", err)
	}
	inserted, err := s.repo.CreateOrderIfNew(order)
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	if !inserted {
		slog.Info("order already recorded, skipping insert",
			"provider", order.Provider, "order_id", order.OrderID)
	}
	return nil
}

// resolveUser degrades a directory failure to "unresolved" instead of failing
// the delivery: the order is still worth recording without a user link.
func (s *Service) resolveUser(ctx context.Context, explicitUserID, email, eventType string) string {
	userID, err := s.resolver.Resolve(ctx, explicitUserID, email)
	if err != nil {
		slog.Warn("user resolution failed", "event_type", eventType, "error", err)
		return ""
	}
	return userID
}

func planOrDefault(name, def string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return def
}

func currencyOrDefault(currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if len(c) != 3 {
		return defaultCurrency
	}
	return c
}
