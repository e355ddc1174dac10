package notify

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailSender delivers plain-text receipts through SendGrid. Email is an
// optional channel here: checkout bookings without an email address simply
// never reach it.
type EmailSender struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailSender(apiKey, fromEmail, fromName string) *EmailSender {
	return &EmailSender{apiKey: apiKey, fromEmail: fromEmail, fromName: fromName}
}

func (s *EmailSender) Send(toEmail, toName, subject, body string) error {
	if s.apiKey == "" || s.fromEmail == "" {
		return fmt.Errorf("sendgrid sender not configured")
	}

	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	resp, err := sendgrid.NewSendClient(s.apiKey).Send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	log.Printf("Email sent to %s (subject: %s)", toEmail, subject)
	return nil
}
