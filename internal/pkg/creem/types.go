package creem

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Recognized webhook event types. Everything else is accepted but ignored so
// the provider does not retry indefinitely.
const (
	EventCheckoutCompleted    = "checkout.completed"
	EventSubscriptionPaid     = "subscription.paid"
	EventSubscriptionTrialing = "subscription.trialing"
)

var ErrInvalidPayload = errors.New("creem: invalid webhook payload")

// envelope mirrors the raw webhook body. Creem is inconsistent about key
// names across event types and API revisions, so both spellings of the id,
// type and payload keys are accepted.
type envelope struct {
	ID        string          `json:"id"`
	EventID   string          `json:"event_id"`
	EventType string          `json:"eventType"`
	Type      string          `json:"type"`
	Object    json.RawMessage `json:"object"`
	Data      json.RawMessage `json:"data"`
}

// Metadata is the pass-through block set at checkout creation time. It is the
// only place the payload can carry our internal user id.
type Metadata struct {
	UserID   string `json:"userId"`
	PlanName string `json:"planName"`
	Email    string `json:"email"`
}

type Customer struct {
	Email string `json:"email"`
}

type OrderObject struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type Transaction struct {
	ID       string `json:"id"`
	Order    string `json:"order"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

type SubscriptionPeriod struct {
	CurrentPeriodStartDate *time.Time `json:"current_period_start_date"`
	CurrentPeriodEndDate   *time.Time `json:"current_period_end_date"`
}

// CheckoutCompleted is the payload of a completed one-off or first
// subscription checkout.
type CheckoutCompleted struct {
	ID           string              `json:"id"`
	Metadata     Metadata            `json:"metadata"`
	Order        OrderObject         `json:"order"`
	Customer     Customer            `json:"customer"`
	Amount       int64               `json:"amount"`
	Subscription *SubscriptionPeriod `json:"subscription"`
}

// OrderID returns the provider order id, falling back to the checkout object
// id when the nested order block is absent.
func (p *CheckoutCompleted) OrderID() string {
	if p.Order.ID != "" {
		return p.Order.ID
	}
	return p.ID
}

// AmountMinor returns the charged amount in minor units.
func (p *CheckoutCompleted) AmountMinor() int64 {
	if p.Order.Amount != 0 {
		return p.Order.Amount
	}
	return p.Amount
}

// SubscriptionPaid is the payload of a renewal charge on an existing
// subscription.
type SubscriptionPaid struct {
	ID                     string      `json:"id"`
	Metadata               Metadata    `json:"metadata"`
	Customer               Customer    `json:"customer"`
	LastTransaction        Transaction `json:"last_transaction"`
	CurrentPeriodStartDate *time.Time  `json:"current_period_start_date"`
	CurrentPeriodEndDate   *time.Time  `json:"current_period_end_date"`
}

// OrderID returns the order reference of the renewal transaction, falling
// back to the transaction id and finally the subscription object id.
func (p *SubscriptionPaid) OrderID() string {
	if p.LastTransaction.Order != "" {
		return p.LastTransaction.Order
	}
	if p.LastTransaction.ID != "" {
		return p.LastTransaction.ID
	}
	return p.ID
}

// SubscriptionTrialing is the payload of a trial period start. No money moves
// on this event, so it carries no order or transaction block.
type SubscriptionTrialing struct {
	Metadata               Metadata   `json:"metadata"`
	Customer               Customer   `json:"customer"`
	CurrentPeriodStartDate *time.Time `json:"current_period_start_date"`
	CurrentPeriodEndDate   *time.Time `json:"current_period_end_date"`
}

// Event is the tagged union over known webhook payloads. For a recognized
// type exactly one payload pointer is non-nil; for unknown types all are nil
// and Raw still carries the payload object as delivered.
type Event struct {
	ID   string
	Type string
	Raw  json.RawMessage

	Checkout *CheckoutCompleted
	Paid     *SubscriptionPaid
	Trialing *SubscriptionTrialing
}

// Known reports whether the event type maps to a handler.
func (e *Event) Known() bool {
	return e.Checkout != nil || e.Paid != nil || e.Trialing != nil
}

// CustomerEmail returns the best available customer email for the event:
// checkout metadata first, then the customer block.
func (e *Event) CustomerEmail() string {
	switch {
	case e.Checkout != nil:
		return firstNonEmpty(e.Checkout.Metadata.Email, e.Checkout.Customer.Email)
	case e.Paid != nil:
		return firstNonEmpty(e.Paid.Metadata.Email, e.Paid.Customer.Email)
	case e.Trialing != nil:
		return firstNonEmpty(e.Trialing.Metadata.Email, e.Trialing.Customer.Email)
	}
	return ""
}

// Parse decodes a raw webhook body into the tagged union. It returns
// ErrInvalidPayload (wrapped) when the body or the typed payload block does
// not decode; callers record such deliveries as unprocessed rather than
// letting the provider retry a body that will never parse. When the envelope
// itself decoded, the returned event still carries the id and type alongside
// the error.
func Parse(body []byte) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Join(ErrInvalidPayload, err)
	}

	payload := env.Object
	if len(payload) == 0 {
		payload = env.Data
	}
	if len(payload) == 0 {
		payload = json.RawMessage(`{}`)
	}

	ev := &Event{
		ID:   firstNonEmpty(env.ID, env.EventID),
		Type: strings.TrimSpace(firstNonEmpty(env.EventType, env.Type)),
		Raw:  payload,
	}

	switch ev.Type {
	case EventCheckoutCompleted:
		ev.Checkout = &CheckoutCompleted{}
		if err := json.Unmarshal(payload, ev.Checkout); err != nil {
			ev.Checkout = nil
			return ev, errors.Join(ErrInvalidPayload, err)
		}
	case EventSubscriptionPaid:
		ev.Paid = &SubscriptionPaid{}
		if err := json.Unmarshal(payload, ev.Paid); err != nil {
			ev.Paid = nil
			return ev, errors.Join(ErrInvalidPayload, err)
		}
	case EventSubscriptionTrialing:
		ev.Trialing = &SubscriptionTrialing{}
		if err := json.Unmarshal(payload, ev.Trialing); err != nil {
			ev.Trialing = nil
			return ev, errors.Join(ErrInvalidPayload, err)
		}
	}

	return ev, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
