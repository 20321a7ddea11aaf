package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"

	"novadrive/internal/config"
	"novadrive/internal/logger"
)

var (
	ErrEmailNotConfigured = errors.New("sendgrid credentials not configured")
	ErrSMSNotConfigured   = errors.New("twilio credentials not configured")
)

// NotifyService delivers raw emails through SendGrid and SMS through Twilio.
type NotifyService struct {
	sendgridKey string
	fromEmail   string
	fromName    string

	twilio     *twilio.RestClient
	fromNumber string
}

func NewNotifyService(cfg config.Config) *NotifyService {
	n := &NotifyService{
		sendgridKey: cfg.SendGrid.APIKey,
		fromEmail:   cfg.SendGrid.FromEmail,
		fromName:    cfg.SendGrid.FromName,
		fromNumber:  cfg.Twilio.FromNumber,
	}
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.AuthToken != "" {
		n.twilio = twilio.NewRestClientWithParams(twilio.ClientParams{
			Username:   cfg.Twilio.AccountSID,
			Password:   cfg.Twilio.AuthToken,
			AccountSid: cfg.Twilio.AccountSID,
		})
	}
	return n
}

func (n *NotifyService) SendEmail(toEmail, toName, subject, plainText, html string) error {
	if n.sendgridKey == "" || n.fromEmail == "" {
		logger.Warn("email skipped, sendgrid not configured", zap.String("to", toEmail))
		return ErrEmailNotConfigured
	}

	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainText, html)

	resp, err := sendgrid.NewSendClient(n.sendgridKey).Send(message)
	if err != nil {
		return fmt.Errorf("sending email to %s: %w", toEmail, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}
	logger.Info("email sent", zap.String("to", toEmail), zap.String("subject", subject), zap.Int("status", resp.StatusCode))
	return nil
}

func (n *NotifyService) SendSMS(toNumber, body string) error {
	if n.twilio == nil || n.fromNumber == "" {
		logger.Warn("sms skipped, twilio not configured", zap.String("to", toNumber))
		return ErrSMSNotConfigured
	}
	if !strings.HasPrefix(toNumber, "+") {
		logger.Warn("destination number is not E.164", zap.String("to", toNumber))
	}

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(n.fromNumber)
	params.SetBody(body)

	resp, err := n.twilio.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("sending sms to %s: %w", toNumber, err)
	}
	if resp != nil && resp.Sid != nil {
		logger.Info("sms sent", zap.String("to", toNumber), zap.String("sid", *resp.Sid))
	}
	return nil
}
