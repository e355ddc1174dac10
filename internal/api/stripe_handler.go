package api

import (
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"apexparking/internal/service"
)

// StripeWebhookHandler consumes payment events. The signature check runs
// before any payload field is trusted.
type StripeWebhookHandler struct {
	WebhookSecret string
	Service       *service.ReservationService
}

func NewStripeWebhookHandler(webhookSecret string, svc *service.ReservationService) *StripeWebhookHandler {
	return &StripeWebhookHandler{WebhookSecret: webhookSecret, Service: svc}
}

func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	const maxBodyBytes = int64(65536)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("Error reading webhook body: %v", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.WebhookSecret)
	if err != nil {
		log.Printf("Webhook signature verification failed: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case "payment_intent.succeeded":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Printf("Error parsing payment_intent: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.Printf("Payment succeeded: %s", intent.ID)
		if err := h.Service.ConfirmPayment(intent.ID); err != nil {
			log.Printf("DB error confirming payment %s: %v", intent.ID, err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

	case "payment_intent.payment_failed":
		var intent stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
			log.Printf("Error parsing payment_intent: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		log.Printf("Payment failed: %s", intent.ID)
		if err := h.Service.FailPayment(intent.ID); err != nil {
			log.Printf("DB error failing payment %s: %v", intent.ID, err)
		}

	default:
		log.Printf("Unhandled event type: %s", event.Type)
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
