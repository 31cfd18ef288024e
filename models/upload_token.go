package models

import "time"

// UploadToken is a short-lived, single-use credential handed out for the
// Typeform entry point. Consumed exactly once (UsedAt set) when the video
// submission it authorizes is created.
type UploadToken struct {
	ID                    string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Token                 string     `gorm:"uniqueIndex;not null" json:"token"`
	CustomerID            string     `gorm:"index;not null" json:"customer_id"`
	TypeformResponseToken string     `json:"typeform_response_token,omitempty"`
	ExpiresAt             time.Time  `gorm:"index;not null" json:"expires_at"`
	UsedAt                *time.Time `json:"used_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}

// Usable reports whether the token can still authorize an upload.
func (t *UploadToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
