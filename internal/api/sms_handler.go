package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"

	twilioclient "github.com/twilio/twilio-go/client"

	"apexparking/internal/service"
)

// SMSWebhookHandler receives inbound messages from the SMS gateway. The
// gateway expects a TwiML response no matter what happened, so every path
// returns 200 with an (empty) TwiML document.
type SMSWebhookHandler struct {
	Service       *service.ReservationService
	PartnerNumber string
	validator     *twilioclient.RequestValidator
}

func NewSMSWebhookHandler(svc *service.ReservationService, partnerNumber, twilioAuthToken string) *SMSWebhookHandler {
	h := &SMSWebhookHandler{Service: svc, PartnerNumber: partnerNumber}
	if twilioAuthToken != "" {
		v := twilioclient.NewRequestValidator(twilioAuthToken)
		h.validator = &v
	}
	return h
}

func (h *SMSWebhookHandler) HandleIncomingSMS(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		log.Printf("Incoming SMS: bad form: %v", err)
		writeTwiML(w)
		return
	}

	if h.validator != nil {
		if sig := r.Header.Get("X-Twilio-Signature"); sig != "" {
			params := map[string]string{}
			for key, values := range r.PostForm {
				if len(values) > 0 {
					params[key] = values[0]
				}
			}
			url := "https://" + r.Host + r.URL.RequestURI()
			if !h.validator.Validate(url, params, sig) {
				log.Printf("Incoming SMS: signature validation failed")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
		}
	}

	from := r.PostFormValue("From")
	body := r.PostFormValue("Body")
	log.Printf("Incoming SMS from %s", from)

	if !fromPartner(from, h.PartnerNumber) {
		log.Printf("SMS not from the booking partner, ignoring")
		writeTwiML(w)
		return
	}

	if err := h.Service.IngestPartnerSMS(body); err != nil {
		// the gateway still gets its ack; nothing was persisted
		log.Printf("Incoming SMS not ingested: %v", err)
	}
	writeTwiML(w)
}

// fromPartner compares the last ten digits so "+1..." and bare formats match.
func fromPartner(from, partner string) bool {
	a := digitsOf(from)
	b := digitsOf(partner)
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	if len(b) > 10 {
		b = b[len(b)-10:]
	}
	return strings.HasSuffix(a, b)
}

func digitsOf(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func writeTwiML(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`)
}
