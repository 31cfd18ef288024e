// services/submission_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"ugc-rewards-system/middleware"
	"ugc-rewards-system/models"
	"ugc-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MaxVideoSize caps uploads at 100MB.
const MaxVideoSize = 100 * 1024 * 1024

var ErrSubmissionExists = errors.New("submission already exists for customer")

// SubmissionService owns the submission lifecycle: upload URL handout,
// creation (direct, invitation token, upload token), and the admin review
// transitions.
type SubmissionService struct {
	DB      *gorm.DB
	Storage *utils.Storage
	Tokens  *utils.TokenCodec
	Rewards *RewardService
}

func NewSubmissionService(db *gorm.DB, storage *utils.Storage, tokens *utils.TokenCodec, rewards *RewardService) *SubmissionService {
	return &SubmissionService{DB: db, Storage: storage, Tokens: tokens, Rewards: rewards}
}

// createSubmission inserts the pending submission. The unique index on
// customer_id is the real one-per-customer guard; a duplicate insert comes
// back as ErrSubmissionExists regardless of who raced whom.
func (s *SubmissionService) createSubmission(customerID, shopDomain, videoKey string) (*models.Submission, error) {
	sub := models.Submission{
		CustomerID: customerID,
		ShopDomain: shopDomain,
		VideoKey:   videoKey,
		VideoURL:   s.Storage.PublicURL(videoKey),
		Status:     models.SubmissionStatusPending,
	}
	if err := s.DB.Create(&sub).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrSubmissionExists
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	return &sub, nil
}

// --- Upload flow ---

// GetUploadURL hands out a presigned PUT URL scoped to a fresh video key.
func (s *SubmissionService) GetUploadURL(c *fiber.Ctx) error {
	var req struct {
		Filename    string `json:"filename" validate:"required"`
		ContentType string `json:"contentType" validate:"required"`
		CustomerID  string `json:"customerId" validate:"required,uuid"`
		ShopDomain  string `json:"shopDomain" validate:"required"`
		FileSize    int64  `json:"fileSize"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: filename, contentType, customerId, shopDomain",
		})
	}
	if req.FileSize > MaxVideoSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Maximum size: %dMB", MaxVideoSize/1024/1024),
		})
	}
	if !utils.ValidVideoExtension(req.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Invalid file extension. Allowed: %s", strings.Join(utils.AllowedVideoExtensions, ", ")),
		})
	}

	upload, err := s.Storage.PresignUpload(c.Context(), req.Filename, req.ContentType, req.CustomerID, req.ShopDomain)
	if err != nil {
		logrus.WithError(err).Error("upload URL generation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"uploadUrl": upload.UploadURL,
		"videoKey":  upload.VideoKey,
		"publicUrl": upload.PublicURL,
		"constraints": fiber.Map{
			"maxFileSize":  MaxVideoSize,
			"allowedTypes": utils.AllowedVideoTypes,
			"expiresIn":    int(utils.UploadURLTTL.Seconds()),
		},
	})
}

// ProxyUpload takes the video as multipart form data and pushes it to
// storage server-side, for clients that cannot PUT to R2 directly.
func (s *SubmissionService) ProxyUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing file"})
	}
	customerID := c.FormValue("customerId")
	shopDomain := c.FormValue("shopDomain")
	if customerID == "" || shopDomain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Missing required fields"})
	}

	if fileHeader.Size > MaxVideoSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large. Maximum size: %dMB", MaxVideoSize/1024/1024),
		})
	}
	if !utils.ValidVideoType(fileHeader.Header.Get("Content-Type")) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid file type"})
	}

	key, err := s.Storage.UploadVideo(c.Context(), fileHeader, customerID, shopDomain)
	if err != nil {
		logrus.WithError(err).Error("proxy upload failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Upload failed"})
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"videoKey":  key,
		"publicUrl": s.Storage.PublicURL(key),
	})
}

// --- Submission creation ---

// CreateSubmission is the direct creation path after an upload completed.
func (s *SubmissionService) CreateSubmission(c *fiber.Ctx) error {
	var req struct {
		CustomerID string `json:"customerId" validate:"required,uuid"`
		ShopDomain string `json:"shopDomain" validate:"required"`
		VideoKey   string `json:"videoKey" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Missing required fields: customerId, shopDomain, videoKey",
		})
	}

	var merchant models.Merchant
	if err := s.DB.First(&merchant, "shop_domain = ?", req.ShopDomain).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": fmt.Sprintf("Shop not found for domain: %s", req.ShopDomain),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	var customer models.Customer
	err := s.DB.Where("id = ? AND shop_domain = ?", req.CustomerID, req.ShopDomain).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Customer not found or does not belong to this shop",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	sub, err := s.createSubmission(customer.ID, req.ShopDomain, req.VideoKey)
	if err != nil {
		if errors.Is(err, ErrSubmissionExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A video submission already exists for this customer",
			})
		}
		logrus.WithError(err).Error("submission creation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create submission"})
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"customer":      customer.Email,
		"shop":          req.ShopDomain,
	}).Info("🎬 UGC submission created")

	return c.JSON(fiber.Map{
		"success": true,
		"submission": fiber.Map{
			"id":         sub.ID,
			"status":     sub.Status,
			"video_url":  sub.VideoURL,
			"created_at": sub.CreatedAt,
		},
		"customer": fiber.Map{
			"email": customer.Email,
			"name":  customer.DisplayName(),
		},
		"message": "Video submitted successfully! It will be reviewed by the store team.",
	})
}

// ValidateInvitationToken checks a codec-minted invitation token and returns
// the customer identity plus the shop's reward settings for the upload form.
func (s *SubmissionService) ValidateInvitationToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Token) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "error": "Token is required"})
	}

	customerID, shopDomain, _, err := s.Tokens.Verify(req.Token, time.Now())
	if err != nil {
		return c.JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
	}

	var customer models.Customer
	if err := s.DB.Where("id = ? AND shop_domain = ?", customerID, shopDomain).First(&customer).Error; err != nil {
		return c.JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
	}

	var merchant models.Merchant
	if err := s.DB.First(&merchant, "shop_domain = ?", shopDomain).Error; err != nil {
		return c.JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
	}

	var existing models.Submission
	if err := s.DB.First(&existing, "customer_id = ?", customer.ID).Error; err == nil {
		return c.JSON(fiber.Map{
			"valid": false,
			"error": fmt.Sprintf("You have already submitted a video (Status: %s)", existing.Status),
		})
	}

	return c.JSON(fiber.Map{
		"valid":        true,
		"customerId":   customer.ID,
		"shopDomain":   shopDomain,
		"email":        customer.Email,
		"customerName": customer.FirstName,
		"shopSettings": fiber.Map{
			"reward_type":     merchant.RewardType,
			"reward_value":    merchant.RewardValue,
			"reward_currency": merchant.RewardCurrency,
		},
	})
}

// ValidateUploadToken checks a DB-backed upload token from the Typeform path.
func (s *SubmissionService) ValidateUploadToken(c *fiber.Ctx) error {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"valid": false, "error": "Token required"})
	}

	token, err := s.usableUploadToken(req.Token)
	if err != nil {
		return c.JSON(fiber.Map{"valid": false, "error": "Invalid or expired token"})
	}

	return c.JSON(fiber.Map{
		"valid": true,
		"customer": fiber.Map{
			"id":         token.Customer.ID,
			"email":      token.Customer.Email,
			"first_name": token.Customer.FirstName,
			"shopDomain": token.Customer.ShopDomain,
		},
	})
}

// SubmitFromToken creates the submission for an upload-token holder and
// consumes the token.
func (s *SubmissionService) SubmitFromToken(c *fiber.Ctx) error {
	var req struct {
		Token    string `json:"token" validate:"required"`
		VideoKey string `json:"videoKey" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := utils.Validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Token and videoKey required"})
	}

	token, err := s.usableUploadToken(req.Token)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	sub, err := s.createSubmission(token.CustomerID, token.Customer.ShopDomain, req.VideoKey)
	if err != nil {
		if errors.Is(err, ErrSubmissionExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "A video submission already exists for this customer",
			})
		}
		logrus.WithError(err).Error("submission creation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create submission"})
	}

	now := time.Now()
	if err := s.DB.Model(&models.UploadToken{}).
		Where("id = ? AND used_at IS NULL", token.ID).
		Update("used_at", now).Error; err != nil {
		logrus.WithError(err).Error("failed to mark upload token used")
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": sub.ID,
		"customer_id":   token.CustomerID,
		"video_key":     req.VideoKey,
	}).Info("🎬 UGC submission created from upload token")

	return c.JSON(fiber.Map{
		"success":       true,
		"submission_id": sub.ID,
		"message":       "Video submitted successfully",
	})
}

func (s *SubmissionService) usableUploadToken(raw string) (*models.UploadToken, error) {
	var token models.UploadToken
	err := s.DB.Preload("Customer").
		Where("token = ? AND used_at IS NULL AND expires_at > ?", raw, time.Now()).
		First(&token).Error
	if err != nil {
		return nil, err
	}
	if token.Customer == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &token, nil
}

// --- Admin review ---

// ListSubmissions is the merchant dashboard listing with status, email and
// date filters plus pagination.
func (s *SubmissionService) ListSubmissions(c *fiber.Ctx) error {
	merchant := middleware.MerchantFromCtx(c)

	status := c.Query("status", string(models.SubmissionStatusPending))
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", 20)
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	query := s.DB.Model(&models.Submission{}).
		Where("submissions.shop_domain = ?", merchant.ShopDomain).
		Where("submissions.status = ?", status)

	if email := c.Query("customer_email"); email != "" {
		query = query.
			Joins("JOIN customers ON customers.id = submissions.customer_id").
			Where("customers.email ILIKE ?", "%"+email+"%")
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("submissions.created_at >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("submissions.created_at <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logrus.WithError(err).Error("submission count failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch submissions"})
	}

	var submissions []models.Submission
	err := query.
		Preload("Customer").
		Preload("Reward").
		Order("submissions.created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&submissions).Error
	if err != nil {
		logrus.WithError(err).Error("submission listing failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch submissions"})
	}

	formatted := make([]fiber.Map, 0, len(submissions))
	for _, sub := range submissions {
		item := fiber.Map{
			"id":           sub.ID,
			"video_url":    sub.VideoURL,
			"video_key":    sub.VideoKey,
			"status":       sub.Status,
			"review_notes": sub.ReviewNotes,
			"created_at":   sub.CreatedAt,
			"updated_at":   sub.UpdatedAt,
			"reward":       sub.Reward,
		}
		if sub.Customer != nil {
			item["customer_id"] = sub.Customer.ID
			item["customer_email"] = sub.Customer.Email
			item["customer_name"] = sub.Customer.DisplayName()
		}
		formatted = append(formatted, item)
	}

	pages := (total + int64(limit) - 1) / int64(limit)
	return c.JSON(fiber.Map{
		"success":     true,
		"submissions": formatted,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

// ApproveSubmission transitions a submission to approved and dispatches
// reward issuance. Issuance failure does not roll the approval back; the
// response reports the degraded outcome and the retry worker takes it from
// there.
func (s *SubmissionService) ApproveSubmission(c *fiber.Ctx) error {
	merchant := middleware.MerchantFromCtx(c)

	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission ID"})
	}

	// notes are optional on approval, tolerate an empty body
	var req struct {
		Notes string `json:"notes"`
	}
	_ = c.BodyParser(&req)

	var submission models.Submission
	err := s.DB.Preload("Customer").
		Where("id = ? AND shop_domain = ?", id, merchant.ShopDomain).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Submission not found or access denied",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if submission.Status == models.SubmissionStatusApproved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Submission is already approved"})
	}

	var existingReward models.Reward
	if err := s.DB.First(&existingReward, "submission_id = ?", submission.ID).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Reward already exists for this submission",
		})
	}

	submission.Status = models.SubmissionStatusApproved
	submission.ReviewNotes = strings.TrimSpace(req.Notes)
	if err := s.DB.Save(&submission).Error; err != nil {
		logrus.WithError(err).Error("submission approval failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update submission"})
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"shop":          merchant.ShopDomain,
	}).Info("✅ UGC submission approved")

	// Best-effort reward issuance. A racing duplicate reward create is a
	// conflict; an issuance failure leaves the reward row retryable.
	reward, err := s.Rewards.CreateForSubmission(merchant, &submission)
	if err != nil {
		if errors.Is(err, ErrRewardExists) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Reward already exists for this submission",
			})
		}
		logrus.WithError(err).Error("reward creation failed after approval")
		return c.JSON(fiber.Map{
			"success":    true,
			"submission": submissionSummary(&submission),
			"reward":     nil,
			"message":    "Submission approved, but reward creation failed and will be retried.",
		})
	}

	message := "Submission approved successfully! Reward created."
	if submission.Customer == nil {
		message = "Submission approved, but reward issuance is pending (customer record missing)."
	} else if err := s.Rewards.Issue(merchant, submission.Customer, reward); err != nil {
		logrus.WithError(err).Warn("reward issuance failed, left for retry worker")
		message = "Submission approved, but reward issuance failed and will be retried."
	}

	return c.JSON(fiber.Map{
		"success":    true,
		"submission": submissionSummary(&submission),
		"reward": fiber.Map{
			"id":       reward.ID,
			"type":     reward.Type,
			"value":    reward.Value,
			"currency": reward.Currency,
			"status":   reward.Status,
			"code":     reward.Code,
		},
		"message": message,
	})
}

// RejectSubmission transitions a submission to rejected. Notes are required.
func (s *SubmissionService) RejectSubmission(c *fiber.Ctx) error {
	merchant := middleware.MerchantFromCtx(c)

	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid submission ID"})
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	notes := strings.TrimSpace(req.Notes)
	if notes == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Notes are required when rejecting a submission",
		})
	}

	var submission models.Submission
	err := s.DB.Where("id = ? AND shop_domain = ?", id, merchant.ShopDomain).First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Submission not found or access denied",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "DB error"})
	}

	if submission.Status == models.SubmissionStatusRejected {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Submission is already rejected"})
	}
	if submission.Status == models.SubmissionStatusApproved {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Cannot reject an approved submission"})
	}

	submission.Status = models.SubmissionStatusRejected
	submission.ReviewNotes = notes
	if err := s.DB.Save(&submission).Error; err != nil {
		logrus.WithError(err).Error("submission rejection failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update submission"})
	}

	logrus.WithFields(logrus.Fields{
		"submission_id": submission.ID,
		"shop":          merchant.ShopDomain,
		"notes":         notes,
	}).Info("❌ UGC submission rejected")

	return c.JSON(fiber.Map{
		"success":    true,
		"submission": submissionSummary(&submission),
		"message":    "Submission rejected successfully.",
	})
}

func submissionSummary(sub *models.Submission) fiber.Map {
	return fiber.Map{
		"id":           sub.ID,
		"status":       sub.Status,
		"review_notes": sub.ReviewNotes,
		"updated_at":   sub.UpdatedAt,
	}
}
