package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/lunavoice/billing/internal/pkg/metrics/counter"
)

// StatsController exposes the webhook delivery counters kept in Redis.
type StatsController struct {
}

func NewStatsController() *StatsController {
	return &StatsController{}
}

func (h *StatsController) HandleWebhookStats(c *fiber.Ctx) error {
	counters, err := counter.Snapshot(c.UserContext())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "counters_unavailable"})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"events": counters})
}
