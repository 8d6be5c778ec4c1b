package mailer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const mailerSendAPIURL = "https://api.mailersend.com/v1/email"

// MailerSendService implements the Mailer interface using MailerSend.
type MailerSendService struct {
	apiKey    string
	fromEmail string
	fromName  string
	client    *http.Client
	logger    *zap.Logger
}

// NewMailerSendService creates a new MailerSendService.
func NewMailerSendService(apiKey, fromEmail, fromName string, logger *zap.Logger) *MailerSendService {
	return &MailerSendService{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		fromName:  fromName,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.Named("MailerSendService"),
	}
}

type mailerSendRequest struct {
	From    fromEmail `json:"from"`
	To      []toEmail `json:"to"`
	Subject string    `json:"subject"`
	Text    string    `json:"text"`
	HTML    string    `json:"html"`
}

type fromEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type toEmail struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendWelcome sends the post-registration welcome email through the
// MailerSend API.
func (s *MailerSendService) SendWelcome(toEmailAddr, toName string) error {
	s.logger.Info("Sending welcome email", zap.String("toEmail", toEmailAddr))

	htmlBody, textBody := welcomeBodies(toName)
	requestPayload := mailerSendRequest{
		From: fromEmail{
			Email: s.fromEmail,
			Name:  s.fromName,
		},
		To: []toEmail{
			{Email: toEmailAddr, Name: toName},
		},
		Subject: "Welcome!",
		Text:    textBody,
		HTML:    htmlBody,
	}

	payloadBytes, err := json.Marshal(requestPayload)
	if err != nil {
		return fmt.Errorf("failed to marshal request payload: %w", err)
	}

	req, err := http.NewRequest("POST", mailerSendAPIURL, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("Failed to send request to MailerSend", zap.Error(err))
		return fmt.Errorf("failed to send request to MailerSend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		s.logger.Error("MailerSend API request failed", zap.Int("statusCode", resp.StatusCode))
		return fmt.Errorf("MailerSend API request failed with status code %d", resp.StatusCode)
	}

	s.logger.Info("Welcome email sent", zap.String("toEmail", toEmailAddr), zap.String("messageID", resp.Header.Get("X-Message-Id")))
	return nil
}
