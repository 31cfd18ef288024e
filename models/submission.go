package models

import "time"

// SubmissionStatus is the review state of a video submission
type SubmissionStatus string

const (
	SubmissionStatusPending    SubmissionStatus = "pending"
	SubmissionStatusProcessing SubmissionStatus = "processing"
	SubmissionStatusApproved   SubmissionStatus = "approved"
	SubmissionStatusRejected   SubmissionStatus = "rejected"
)

// Submission is a customer's uploaded video awaiting review. The unique
// index on customer_id enforces one submission per customer at the
// database level; a racing duplicate insert comes back as a conflict.
type Submission struct {
	ID          string           `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CustomerID  string           `gorm:"uniqueIndex;not null" json:"customer_id"`
	ShopDomain  string           `gorm:"index;not null" json:"shop_domain"`
	VideoKey    string           `gorm:"not null" json:"video_key"`
	VideoURL    string           `gorm:"type:text" json:"video_url"`
	Status      SubmissionStatus `gorm:"not null;default:'pending';index" json:"status"`
	ReviewNotes string           `gorm:"type:text" json:"review_notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Reward   *Reward   `gorm:"foreignKey:SubmissionID" json:"reward,omitempty"`
}
