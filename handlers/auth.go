// handlers/auth.go
package handlers

import (
	"ugc-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App, authService *services.AuthService) {
	app.Get("/auth/install", authService.Install)
	app.Get("/auth/callback", authService.Callback)
}
