package notify

import (
	"fmt"
	"log"

	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"apexparking/internal/utils"
)

// SMSSender delivers message bodies over Twilio. A zero From/SID config makes
// Send fail loudly instead of silently dropping messages.
type SMSSender struct {
	client *twilio.RestClient
	from   string
}

func NewSMSSender(accountSID, authToken, fromNumber string) *SMSSender {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	return &SMSSender{client: client, from: fromNumber}
}

// Send delivers body to the given phone number, normalizing it to E.164
// first. Callers treat failures as non-fatal; the error is for logging.
func (s *SMSSender) Send(to, body string) error {
	if s.from == "" {
		return fmt.Errorf("twilio sender not configured")
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(utils.NormalizePhone(to))
	params.SetFrom(s.from)
	params.SetBody(body)

	resp, err := s.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}
	if resp != nil && resp.Sid != nil {
		log.Printf("SMS sent to %s, sid %s", to, *resp.Sid)
	}
	return nil
}
