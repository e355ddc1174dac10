package service

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

// StripeService wraps PaymentIntent creation. The package-level stripe.Key is
// set once in main before any service is constructed.
type StripeService struct{}

func NewStripeService() *StripeService {
	return &StripeService{}
}

// CreatePaymentIntent authorizes amount cents in USD and returns the intent
// id plus the client secret the browser needs to complete payment.
func (s *StripeService) CreatePaymentIntent(amount int64, receiptEmail string, metadata map[string]string) (string, string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
	}
	if receiptEmail != "" {
		params.ReceiptEmail = stripe.String(receiptEmail)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("creating payment intent: %w", err)
	}
	return intent.ID, intent.ClientSecret, nil
}
