package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/lunavoice/billing/app/controllers"
	"github.com/lunavoice/billing/internal/pkg/billing"
	"github.com/lunavoice/billing/internal/pkg/cache"
	"github.com/lunavoice/billing/internal/pkg/database"
	"github.com/lunavoice/billing/internal/pkg/env"
	"github.com/lunavoice/billing/internal/pkg/identity"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	// Generous limit: the payment provider batches retries and must not be
	// throttled into dropping deliveries.
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        300,
		Expiration: time.Minute,
	}))

	db := database.GetDB()
	resolver := identity.NewResolver(
		identity.NewClientFromEnv(),
		cache.NewRedisStore(15*time.Minute),
	)
	svc := billing.NewServiceFromDB(db, resolver)

	webhooks := controllers.NewWebhookController(svc, env.GetEnv("CREEM_WEBHOOK_SECRET", ""))
	health := controllers.NewHealthController(db)
	stats := controllers.NewStatsController()

	v1 := api.Group("/v1")
	v1.Post("/webhooks/creem", webhooks.HandleCreemWebhook)
	v1.Get("/health", health.HandleHealth)
	v1.Get("/stats/webhooks", stats.HandleWebhookStats)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}
