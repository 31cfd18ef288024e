// handlers/admin.go
package handlers

import (
	"ugc-rewards-system/middleware"
	"ugc-rewards-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupAdminRoutes(app *fiber.App, db *gorm.DB, submissionService *services.SubmissionService) {
	// 🔐 Review endpoints — require the merchant header pair
	admin := app.Group("/admin", middleware.MerchantAuth(db))

	admin.Get("/ugc", submissionService.ListSubmissions)
	admin.Post("/ugc/:id/approve", submissionService.ApproveSubmission)
	admin.Post("/ugc/:id/reject", submissionService.RejectSubmission)
}
