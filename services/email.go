package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/taskhive/backend/config"
)

// Emailer sends transactional mail (invites, password resets).
type Emailer interface {
	Send(subject, body string, recipients []string) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendEmailer sends email through the Resend HTTP API.
type ResendEmailer struct {
	apiKey    string
	fromEmail string
	client    *http.Client
}

// NewResendEmailer builds an emailer from RESEND_API_KEY and
// RESEND_FROM_EMAIL in the given config map.
func NewResendEmailer(cfg map[string]string) (*ResendEmailer, error) {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}
	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if fromEmail == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL environment variable is required")
	}
	return &ResendEmailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		client:    &http.Client{},
	}, nil
}

// Send delivers an HTML email to the recipients via Resend.
func (e *ResendEmailer) Send(subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	payload := ResendEmailRequest{
		From:    e.fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequest("POST", "https://api.resend.com/emails", bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+e.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Successfully sent email via Resend")
	}

	return nil
}

// InviteEmailBody renders the invitation mail pointing at the web app.
func InviteEmailBody(token, appURL string) string {
	return fmt.Sprintf(
		`<p>You have been invited to join the app.</p><p><a href="%s/sign-up?token=%s">Accept the invitation</a></p>`,
		appURL, token,
	)
}

// PasswordResetEmailBody renders the reset mail pointing at the web app.
func PasswordResetEmailBody(token, appURL string) string {
	return fmt.Sprintf(
		`<p>A password reset was requested for your account.</p><p><a href="%s/reset-password?token=%s">Reset your password</a></p>`,
		appURL, token,
	)
}

// MockEmailer records sent mail for tests instead of delivering it.
type MockEmailer struct {
	mu   sync.Mutex
	Sent []ResendEmailRequest
}

func NewMockEmailer() *MockEmailer {
	return &MockEmailer{}
}

func (m *MockEmailer) Send(subject, body string, recipients []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, ResendEmailRequest{To: recipients, Subject: subject, Html: body})
	return nil
}
