// handlers/ugc.go
package handlers

import (
	"ugc-rewards-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupUGCRoutes(app *fiber.App, submissionService *services.SubmissionService) {
	// Customer-facing routes — authorization is the token (invitation or
	// upload), checked per handler, not a session
	app.Post("/ugc/upload-url", submissionService.GetUploadURL)
	app.Post("/ugc/proxy-upload", submissionService.ProxyUpload)
	app.Post("/ugc/submit", submissionService.CreateSubmission)
	app.Post("/ugc/submit-from-token", submissionService.SubmitFromToken)
	app.Post("/ugc/validate-token", submissionService.ValidateInvitationToken)
	app.Post("/ugc/validate-upload-token", submissionService.ValidateUploadToken)
}
