package service

import (
	"fmt"
	"log"
	"net/url"
	"time"

	"apexparking/internal/booking"
	"apexparking/internal/config"
	"apexparking/internal/notify"
	"apexparking/internal/repository"
)

// SweepService runs the scheduled notification passes. Both passes are
// idempotent: a row is marked only after Twilio accepted the message, and the
// queries exclude already-marked rows, so an overlapping or retried sweep
// cannot double-text anyone (modulo the send-then-mark window, accepted as
// at-most-once effort).
type SweepService struct {
	Repo *repository.ReservationRepository
	SMS  SMSSender
	Cfg  config.Config
}

func NewSweepService(repo *repository.ReservationRepository, sms SMSSender, cfg config.Config) *SweepService {
	return &SweepService{Repo: repo, SMS: sms, Cfg: cfg}
}

// Run is the cron entrypoint.
func (s *SweepService) Run(now time.Time) {
	reminders, err := s.SendExpirationReminders(now)
	if err != nil {
		log.Printf("Sweep: expiration reminders failed: %v", err)
	}
	thankYous, err := s.SendThankYous(now)
	if err != nil {
		log.Printf("Sweep: thank-you messages failed: %v", err)
	}
	log.Printf("Sweep done: %d reminders, %d thank-yous", reminders, thankYous)
}

// SendExpirationReminders texts parkers whose stay expires at checkout today,
// roughly two hours beforehand. Outside the reminder window it does nothing,
// so the 30-minute cadence only fires messages in the intended slot.
func (s *SweepService) SendExpirationReminders(now time.Time) (int, error) {
	reminderHour := s.Cfg.CheckoutHour - 2
	if now.Hour() < reminderHour-1 || now.Hour() > reminderHour+1 {
		return 0, nil
	}

	due, err := s.Repo.DueExpirationReminders(now.Format(booking.DateLayout))
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, res := range due {
		extendURL := fmt.Sprintf("%s/extend.html?confirmation=%s&phone=%s",
			s.Cfg.SiteURL, res.ConfirmationCode, url.QueryEscape(res.Phone))
		msg := notify.ReminderMessage(notify.MessageParams{
			FirstName: res.FirstName,
			ExtendURL: extendURL,
			LotPhone:  s.Cfg.LotPhone,
		})
		if err := s.SMS.Send(res.Phone, msg); err != nil {
			log.Printf("Failed to send reminder to %s: %v", res.Phone, err)
			continue
		}
		if err := s.Repo.MarkReminderSent(res.ID); err != nil {
			log.Printf("Reminder sent but not marked for reservation %d: %v", res.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// SendThankYous follows up with parkers whose stay ended yesterday, with a
// review link.
func (s *SweepService) SendThankYous(now time.Time) (int, error) {
	yesterday := now.AddDate(0, 0, -1).Format(booking.DateLayout)

	due, err := s.Repo.DueThankYous(yesterday)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, res := range due {
		msg := notify.ThankYouMessage(notify.MessageParams{
			FirstName: res.FirstName,
			ReviewURL: s.Cfg.ReviewURL,
		})
		if err := s.SMS.Send(res.Phone, msg); err != nil {
			log.Printf("Failed to send thank-you to %s: %v", res.Phone, err)
			continue
		}
		if err := s.Repo.MarkFollowupSent(res.ID); err != nil {
			log.Printf("Thank-you sent but not marked for reservation %d: %v", res.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}
