package creem

import (
	"errors"
	"testing"
	"time"
)

func TestParseCheckoutCompleted(t *testing.T) {
	raw := []byte(`{
		"id": "evt_1",
		"eventType": "checkout.completed",
		"object": {
			"id": "ch_9",
			"metadata": { "userId": "u-1", "planName": "pro", "email": "a@b.io" },
			"order": { "id": "ord_7", "amount": 2900, "currency": "usd" },
			"customer": { "email": "c@d.io" },
			"subscription": {
				"current_period_start_date": "2026-01-01T00:00:00Z",
				"current_period_end_date": "2026-02-01T00:00:00Z"
			}
		}
	}`)

	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_1" || ev.Type != EventCheckoutCompleted {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if !ev.Known() || ev.Checkout == nil {
		t.Fatalf("expected checkout payload to be set")
	}
	if ev.Checkout.OrderID() != "ord_7" {
		t.Fatalf("unexpected order id %q", ev.Checkout.OrderID())
	}
	if ev.Checkout.AmountMinor() != 2900 {
		t.Fatalf("unexpected amount %d", ev.Checkout.AmountMinor())
	}
	if ev.CustomerEmail() != "a@b.io" {
		t.Fatalf("expected metadata email to win, got %q", ev.CustomerEmail())
	}
	wantStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := ev.Checkout.Subscription.CurrentPeriodStartDate; got == nil || !got.Equal(wantStart) {
		t.Fatalf("unexpected period start %v", got)
	}
}

func TestParseAlternateKeySpellings(t *testing.T) {
	raw := []byte(`{
		"event_id": "evt_2",
		"type": "subscription.paid",
		"data": {
			"metadata": { "planName": "pro" },
			"customer": { "email": "c@d.io" },
			"last_transaction": { "id": "txn_1", "order": "ord_2", "amount": 900, "currency": "EUR" }
		}
	}`)

	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.ID != "evt_2" || ev.Type != EventSubscriptionPaid {
		t.Fatalf("unexpected envelope: id=%q type=%q", ev.ID, ev.Type)
	}
	if ev.Paid == nil || ev.Paid.OrderID() != "ord_2" {
		t.Fatalf("expected paid payload with order ord_2")
	}
	if ev.CustomerEmail() != "c@d.io" {
		t.Fatalf("expected customer email fallback, got %q", ev.CustomerEmail())
	}
}

func TestParsePaidOrderIDFallbacks(t *testing.T) {
	raw := []byte(`{
		"id": "evt_3",
		"eventType": "subscription.paid",
		"object": { "id": "sub_1", "last_transaction": { "id": "txn_9", "amount": 100 } }
	}`)
	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := ev.Paid.OrderID(); got != "txn_9" {
		t.Fatalf("expected transaction id fallback, got %q", got)
	}

	raw = []byte(`{
		"id": "evt_4",
		"eventType": "subscription.paid",
		"object": { "id": "sub_2", "last_transaction": {} }
	}`)
	ev, err = Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if got := ev.Paid.OrderID(); got != "sub_2" {
		t.Fatalf("expected object id fallback, got %q", got)
	}
}

func TestParseUnknownType(t *testing.T) {
	raw := []byte(`{ "id": "evt_5", "eventType": "refund.created", "object": {"x": 1} }`)
	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Known() {
		t.Fatalf("expected unknown event to carry no typed payload")
	}
	if ev.Type != "refund.created" || len(ev.Raw) == 0 {
		t.Fatalf("expected envelope fields preserved for unknown type")
	}
}

func TestParseMissingPayloadDefaultsEmpty(t *testing.T) {
	raw := []byte(`{ "id": "evt_6", "eventType": "subscription.trialing" }`)
	ev, err := Parse(raw)
	if err != nil {
		t.Fatalf("unexpected parse error: %v", err)
	}
	if ev.Trialing == nil {
		t.Fatalf("expected trialing payload from empty object")
	}
}

func TestParseInvalidBody(t *testing.T) {
	if _, err := Parse([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
}

func TestParseInvalidTypedPayloadKeepsEnvelope(t *testing.T) {
	raw := []byte(`{ "id": "evt_7", "eventType": "checkout.completed", "object": { "order": "oops" } }`)
	ev, err := Parse(raw)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected ErrInvalidPayload, got %v", err)
	}
	if ev == nil || ev.ID != "evt_7" || ev.Type != EventCheckoutCompleted {
		t.Fatalf("expected envelope fields alongside the error")
	}
	if ev.Known() {
		t.Fatalf("expected no typed payload on decode failure")
	}
}
