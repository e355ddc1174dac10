package main

import (
	"database/sql"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"

	"apexparking/internal/api"
	"apexparking/internal/auth"
	"apexparking/internal/config"
	"apexparking/internal/notify"
	"apexparking/internal/repository"
	"apexparking/internal/service"
)

func main() {
	godotenv.Load()
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = cfg.StripeSecretKey

	repo := repository.NewReservationRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)

	sms := notify.NewSMSSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber)
	email := notify.NewEmailSender(cfg.SendgridAPIKey, cfg.SendgridFromEmail, cfg.SendgridFromName)

	svc := service.NewReservationService(repo, service.NewStripeService(), sms, email, cfg)
	sweep := service.NewSweepService(repo, sms, cfg)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo, cfg.JWTSecret)

	reservationHandler := api.NewReservationHandler(svc)
	stripeHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, svc)
	smsHandler := api.NewSMSWebhookHandler(svc, cfg.PartnerSMSNumber, cfg.TwilioAuthToken)
	emailHandler := api.NewEmailBookingHandler(svc, cfg.EmailWebhookSecret)
	adminHandler := api.NewAdminHandler(svc, adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", reservationHandler.CheckAvailability).Methods("GET")
	r.HandleFunc("/api/reservations", reservationHandler.CreateReservation).Methods("POST")
	r.HandleFunc("/api/reservations/extend", reservationHandler.ExtendStay).Methods("POST")

	// Webhooks
	r.HandleFunc("/webhooks/stripe", stripeHandler.HandleWebhook).Methods("POST")
	r.HandleFunc("/webhooks/sms", smsHandler.HandleIncomingSMS).Methods("POST")
	r.HandleFunc("/webhooks/email-booking", emailHandler.HandleEmailBooking).Methods("POST")

	// Admin endpoints (login is open, the rest behind JWT)
	r.HandleFunc("/admin/login", adminHandler.Login).Methods("POST")
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware(cfg.JWTSecret))
	admin.HandleFunc("/reservations", adminHandler.ListReservations).Methods("GET")

	// Reminder / thank-you sweep every 30 minutes
	c := cron.New()
	if _, err := c.AddFunc("*/30 * * * *", func() { sweep.Run(time.Now()) }); err != nil {
		log.Fatalf("Failed to schedule sweep: %v", err)
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, cors(r)))
}
