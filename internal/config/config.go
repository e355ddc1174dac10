package config

import (
	"os"
	"strconv"
)

// Config holds every environment-backed setting the server uses. Values are
// read once at startup; godotenv has already populated the environment by the
// time Load runs.
type Config struct {
	Port        string
	DatabaseURL string

	StripeSecretKey     string
	StripeWebhookSecret string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string

	SendgridAPIKey    string
	SendgridFromEmail string
	SendgridFromName  string

	EmailWebhookSecret string
	JWTSecret          string

	SiteURL          string
	ReviewURL        string
	LotAddress       string
	LotPhone         string
	GateCode         string
	PartnerSMSNumber string

	MaxDailySpots int
	CheckoutHour  int
}

func Load() Config {
	return Config{
		Port:        getenv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		TwilioAccountSID: os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:  os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromNumber: os.Getenv("TWILIO_PHONE_NUMBER"),

		SendgridAPIKey:    os.Getenv("SENDGRID_API_KEY"),
		SendgridFromEmail: os.Getenv("SENDGRID_FROM_EMAIL"),
		SendgridFromName:  getenv("SENDGRID_FROM_NAME", "Apex Truck Parking"),

		EmailWebhookSecret: os.Getenv("EMAIL_WEBHOOK_SECRET"),
		JWTSecret:          os.Getenv("JWT_SECRET"),

		SiteURL:          getenv("SITE_URL", "https://apextruckparking.com"),
		ReviewURL:        getenv("REVIEW_URL", "https://g.page/r/CdoDNoSfz0r6EAI/review"),
		LotAddress:       getenv("LOT_ADDRESS", "6759 Marbut Rd, Lithonia, GA 30058"),
		LotPhone:         getenv("LOT_PHONE", "(470) 838-2281"),
		GateCode:         getenv("GATE_CODE", "1234"),
		PartnerSMSNumber: getenv("PARTNER_SMS_NUMBER", "+12058523087"),

		MaxDailySpots: getint("MAX_DAILY_SPOTS", 4),
		CheckoutHour:  getint("CHECKOUT_HOUR", 12),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
