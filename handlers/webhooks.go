// handlers/webhooks.go
package handlers

import (
	"ugc-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupWebhookRoutes(app *fiber.App, webhookService *services.WebhookService) {
	// Signature-checked inside the handlers — webhooks carry their own auth
	app.Post("/webhooks/orders/create", webhookService.HandleOrderCreated)
	app.Post("/webhooks/typeform", webhookService.HandleTypeform)
}
