package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthController answers liveness probes with a database ping.
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

func (h *HealthController) HandleHealth(c *fiber.Ctx) error {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded", "database": "down",
		})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "ok", "database": "up",
	})
}
