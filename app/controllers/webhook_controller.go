package controllers

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lunavoice/billing/internal/pkg/billing"
	"github.com/lunavoice/billing/internal/pkg/creem"
	"github.com/lunavoice/billing/internal/pkg/metrics/counter"
)

const webhookTimeout = 15 * time.Second

// WebhookController is the terminal sink for payment provider notifications.
// All state is injected at construction so tests can run isolated instances.
type WebhookController struct {
	svc           *billing.Service
	webhookSecret string
}

func NewWebhookController(svc *billing.Service, webhookSecret string) *WebhookController {
	return &WebhookController{svc: svc, webhookSecret: webhookSecret}
}

// HandleCreemWebhook processes one delivery. Response codes follow the
// provider's retry contract: 401 means permanently rejected (bad signature),
// 200 means accepted (including duplicates and unhandled types), 500 means
// redeliver. The unique constraints on the event ledger and the order table
// make every redelivery safe.
func (h *WebhookController) HandleCreemWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	if len(bytes.TrimSpace(rawBody)) == 0 {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true})
	}

	// Verification runs over the undecoded body. Nothing is stored before the
	// signature checks out.
	signature := firstHeaderValue(c, "X-Creem-Signature", "Creem-Signature")
	if !creem.VerifyWebhookSignature(rawBody, signature, h.webhookSecret) {
		slog.Warn("webhook signature verification failed",
			"has_signature", signature != "", "ip", c.IP())
		_ = counter.AddWebhookEvent("", counter.ResultRejected)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), webhookTimeout)
	defer cancel()

	ev, parseErr := creem.Parse(rawBody)
	if parseErr != nil {
		// The body will never parse; record the delivery as unprocessed and
		// answer 200 so the provider stops redelivering it.
		var eventID, eventType string
		if ev != nil {
			eventID, eventType = ev.ID, ev.Type
		}
		created, stored, err := h.svc.RecordEvent(ctx, eventID, eventType, rawBody)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
		}
		if !created {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
		}
		_ = h.svc.MarkProcessed(ctx, stored.ID, parseErr)
		_ = counter.AddWebhookEvent(eventType, counter.ResultSkipped)
		slog.Warn("webhook payload did not parse", "event_id", eventID, "event_type", eventType)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"received": true, "processed": false, "error": "invalid_payload",
		})
	}

	created, stored, err := h.svc.RecordEvent(ctx, ev.ID, ev.Type, rawBody)
	if err != nil {
		slog.Error("webhook event persist failed", "event_id", ev.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_persist_failed"})
	}
	if !created {
		slog.Info("duplicate webhook delivery skipped", "event_id", ev.ID, "event_type", ev.Type)
		_ = counter.AddWebhookEvent(ev.Type, counter.ResultDuplicate)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"received": true, "duplicate": true})
	}

	outcome, procErr := h.svc.ProcessEvent(ctx, ev)
	markErr := procErr
	if markErr == nil && !outcome.Processed && outcome.Note != "" {
		markErr = errors.New(outcome.Note)
	}
	_ = h.svc.MarkProcessed(ctx, stored.ID, markErr)

	if procErr != nil {
		slog.Error("webhook processing failed", "event_id", ev.ID, "event_type", ev.Type, "error", procErr)
		_ = counter.AddWebhookEvent(ev.Type, counter.ResultFailed)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_failed"})
	}

	if outcome.Processed {
		_ = counter.AddWebhookEvent(ev.Type, counter.ResultProcessed)
	} else {
		_ = counter.AddWebhookEvent(ev.Type, counter.ResultSkipped)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"received":  true,
		"processed": outcome.Processed,
		"eventType": ev.Type,
	})
}

func firstHeaderValue(c *fiber.Ctx, keys ...string) string {
	for _, k := range keys {
		v := strings.TrimSpace(c.Get(k))
		if v != "" {
			return v
		}
	}
	return ""
}
