// services/mailer.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ugc-rewards-system/models"

	"github.com/sirupsen/logrus"
)

// Mailer sends the invitation and upload-link emails. When APIKey is empty
// it only logs what would have been sent, which is how local and demo
// environments run.
type Mailer struct {
	APIKey  string
	BaseURL string
	From    string
	AppURL  string
	Client  *http.Client
}

func NewMailer(apiKey, from, appURL string) *Mailer {
	return &Mailer{
		APIKey:  apiKey,
		BaseURL: "https://api.resend.com",
		From:    from,
		AppURL:  strings.TrimSuffix(appURL, "/"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SendInvitation delivers the UGC invitation carrying the tokenized form URL.
func (m *Mailer) SendInvitation(merchant *models.Merchant, customer *models.Customer, token string) error {
	formURL := fmt.Sprintf("%s/ugc-form?token=%s", m.AppURL, token)

	template := merchant.EmailTemplate
	if template == "" {
		template = defaultInvitationTemplate
	}

	name := customer.FirstName
	if name == "" {
		name = "Valued Customer"
	}

	html := strings.NewReplacer(
		"{{customer_name}}", name,
		"{{ugc_form_url}}", formURL,
		"{{reward_text}}", RewardText(merchant),
		"{{shop_domain}}", merchant.ShopDomain,
	).Replace(template)

	return m.send(customer.Email, "Share your experience and earn a reward!", html)
}

// SendUploadLink delivers the single-use upload URL for the Typeform path.
func (m *Mailer) SendUploadLink(customer *models.Customer, shopDomain, uploadToken string) error {
	uploadURL := fmt.Sprintf("%s/ugc-upload?token=%s", m.AppURL, uploadToken)

	name := customer.FirstName
	if name == "" {
		name = "Valued Customer"
	}

	html := strings.NewReplacer(
		"{{customer_name}}", name,
		"{{upload_url}}", uploadURL,
		"{{shop_domain}}", shopDomain,
	).Replace(defaultUploadTemplate)

	return m.send(customer.Email, "Your video upload link", html)
}

// RewardText renders the merchant's reward configuration for email copy.
func RewardText(merchant *models.Merchant) string {
	switch merchant.RewardType {
	case models.RewardTypeDiscount:
		if merchant.RewardCurrency == "PERCENTAGE" {
			return fmt.Sprintf("A %s%% discount", merchant.RewardValue.String())
		}
		return fmt.Sprintf("A %s %s discount", merchant.RewardValue.String(), merchant.RewardCurrency)
	case models.RewardTypeGiftCard:
		return fmt.Sprintf("A %s %s gift card", merchant.RewardValue.String(), merchant.RewardCurrency)
	}
	return "A special reward"
}

func (m *Mailer) send(to, subject, html string) error {
	if m.APIKey == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("📧 email delivery skipped (no API key), logging only")
		return nil
	}

	body, _ := json.Marshal(map[string]interface{}{
		"from":    m.From,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})

	req, err := http.NewRequest(http.MethodPost, m.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.APIKey)

	resp, err := m.Client.Do(req)
	if err != nil {
		return fmt.Errorf("email send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("email provider returned %s", resp.Status)
	}
	return nil
}

const defaultInvitationTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi {{customer_name}}! 🎬</h2>
  <p>Thank you for being a loyal customer of {{shop_domain}}!</p>
  <p>We would love for you to share your experience with a short testimonial video.</p>
  <p><strong>🎁 As a thank you, you will receive: {{reward_text}}</strong></p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{ugc_form_url}}"
       style="background-color: #007cba; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
      Upload my video
    </a>
  </div>
  <p>Record a short clip (30-60 seconds) showing the product, upload it through the
  form, and receive your reward once it is approved.</p>
  <p>Best,<br>The {{shop_domain}} team</p>
</div>
`

const defaultUploadTemplate = `
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Hi {{customer_name}}!</h2>
  <p>Here is your personal link to upload your video for {{shop_domain}}:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="{{upload_url}}"
       style="background-color: #007cba; color: white; padding: 15px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">
      Upload my video
    </a>
  </div>
  <p>The link is valid for 7 days and can be used once.</p>
</div>
`
