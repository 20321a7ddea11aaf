package service

import (
	"bytes"
	"fmt"
	"time"

	"go.uber.org/zap"

	"novadrive/internal/availability"
	"novadrive/internal/db"
	"novadrive/internal/entities"
	"novadrive/internal/logger"
	"novadrive/internal/templates"
	"novadrive/internal/utils"
)

type EmailSender interface {
	SendEmail(toEmail, toName, subject, plainText, html string) error
}

type SMSSender interface {
	SendSMS(toNumber, body string) error
}

var statusTranslations = map[string]map[string]string{
	"fr": {
		db.StatusPending:   "en attente",
		db.StatusConfirmed: "confirmée",
		db.StatusActive:    "en cours",
		db.StatusCompleted: "terminée",
		db.StatusCancelled: "annulée",
	},
}

// StatusTranslation returns the booking status in the customer's language.
// English and unknown languages use the status as stored.
func StatusTranslation(status, lang string) string {
	if t, ok := statusTranslations[lang][status]; ok {
		return t
	}
	return status
}

// SenderService renders and dispatches customer notifications.
type SenderService struct {
	email    EmailSender
	sms      SMSSender
	currency string
	rule     availability.TimezoneRule
	now      func() time.Time
	dispatch func(func())
}

func NewSenderService(email EmailSender, sms SMSSender, currency string) *SenderService {
	return &SenderService{
		email:    email,
		sms:      sms,
		currency: currency,
		rule:     availability.BusinessTimezone,
		now:      time.Now,
		dispatch: func(f func()) { go f() },
	}
}

type renderedEmail struct {
	Subject string
	Plain   string
	HTML    string
}

func (s *SenderService) emailData(b *db.Booking, vehicleName, status string) entities.BookingEmailData {
	loc := s.rule.Location()
	return entities.BookingEmailData{
		CustomerName:       b.CustomerName,
		BookingCode:        b.Code,
		VehicleName:        vehicleName,
		Duration:           describeDuration(b.Duration(), b.Language),
		WithChauffeur:      b.WithChauffeur,
		StartTimeFormatted: b.StartTime.In(loc).Format("02 Jan 2006 15:04"),
		EndTimeFormatted:   b.EndTime.In(loc).Format("02 Jan 2006 15:04"),
		TotalPrice:         utils.FormatMoney(b.TotalPrice, s.currency),
		CurrentYear:        s.now().In(loc).Year(),
		Language:           b.Language,
		Status:             StatusTranslation(status, b.Language),
	}
}

func (s *SenderService) renderEmail(data entities.BookingEmailData) (renderedEmail, error) {
	var out renderedEmail
	switch data.Language {
	case "fr":
		out.Subject = fmt.Sprintf("Votre réservation NovaDrive est %s - Code : %s", data.Status, data.BookingCode)
		out.Plain = fmt.Sprintf(
			"Bonjour %s,\n\nVotre réservation NovaDrive est %s.\n\n"+
				"Code de réservation : %s\nVéhicule : %s\nDurée : %s\nDébut : %s\nFin : %s\nTotal : %s\n\n"+
				"Merci d'avoir choisi NovaDrive.",
			data.CustomerName, data.Status, data.BookingCode, data.VehicleName, data.Duration,
			data.StartTimeFormatted, data.EndTimeFormatted, data.TotalPrice,
		)
	default:
		out.Subject = fmt.Sprintf("Your NovaDrive booking is %s - Code: %s", data.Status, data.BookingCode)
		out.Plain = fmt.Sprintf(
			"Hello %s,\n\nYour NovaDrive booking is %s.\n\n"+
				"Booking code: %s\nVehicle: %s\nDuration: %s\nStart: %s\nEnd: %s\nTotal: %s\n\n"+
				"Thank you for choosing NovaDrive.",
			data.CustomerName, data.Status, data.BookingCode, data.VehicleName, data.Duration,
			data.StartTimeFormatted, data.EndTimeFormatted, data.TotalPrice,
		)
	}

	var buf bytes.Buffer
	if err := templates.BookingEmail.Execute(&buf, data); err != nil {
		return out, fmt.Errorf("rendering email for %s: %w", data.BookingCode, err)
	}
	out.HTML = buf.String()
	return out, nil
}

func (s *SenderService) smsBody(b *db.Booking, status string) string {
	start := b.StartTime.In(s.rule.Location()).Format("02/01 15:04")
	translated := StatusTranslation(status, b.Language)
	switch b.Language {
	case "fr":
		return fmt.Sprintf("NovaDrive : votre réservation %s est %s !\nDébut : %s.\nPlus de détails par email.", b.Code, translated, start)
	default:
		return fmt.Sprintf("NovaDrive: booking %s is %s!\nStart: %s.\nMore details in your email.", b.Code, translated, start)
	}
}

// NotifyBooking sends the status email and SMS in the background. Delivery
// failures are logged and never surface to the caller.
func (s *SenderService) NotifyBooking(b *db.Booking, vehicleName, status string) {
	data := s.emailData(b, vehicleName, status)
	email, err := s.renderEmail(data)
	if err != nil {
		logger.Error("email render failed", zap.String("code", b.Code), zap.Error(err))
		return
	}
	to, name, phone, code := b.CustomerEmail, b.CustomerName, b.CustomerPhone, b.Code
	smsText := s.smsBody(b, status)

	s.dispatch(func() {
		if err := s.email.SendEmail(to, name, email.Subject, email.Plain, email.HTML); err != nil {
			logger.Warn("booking email not delivered", zap.String("code", code), zap.Error(err))
		}
		if phone == "" {
			return
		}
		if err := s.sms.SendSMS(phone, smsText); err != nil {
			logger.Warn("booking sms not delivered", zap.String("code", code), zap.Error(err))
		}
	})
}
