package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"

	"novadrive/internal/logger"
	"novadrive/internal/service"
)

const maxWebhookBodyBytes = int64(65536)

type PaymentEvents interface {
	ConfirmPayment(ctx context.Context, sessionID, paymentIntentID string) error
	MarkRefunded(ctx context.Context, paymentIntentID string) error
}

type StripeWebhookHandler struct {
	webhookSecret string
	events        PaymentEvents
}

func NewStripeWebhookHandler(webhookSecret string, events PaymentEvents) *StripeWebhookHandler {
	return &StripeWebhookHandler{webhookSecret: webhookSecret, events: events}
}

// HandleWebhook verifies the Stripe signature and applies checkout and
// refund events. Events for unknown bookings are acknowledged so Stripe
// stops retrying them; other failures return 500 to get a retry.
func (h *StripeWebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		logger.Warn("webhook body unreadable", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	event, err := webhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil || sess.ID == "" {
			logger.Warn("malformed checkout.session payload", zap.String("event_id", event.ID), zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		paymentIntentID := ""
		if sess.PaymentIntent != nil {
			paymentIntentID = sess.PaymentIntent.ID
		}
		err = h.events.ConfirmPayment(r.Context(), sess.ID, paymentIntentID)

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			logger.Warn("malformed charge payload", zap.String("event_id", event.ID), zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if charge.PaymentIntent == nil || charge.PaymentIntent.ID == "" {
			break
		}
		err = h.events.MarkRefunded(r.Context(), charge.PaymentIntent.ID)

	default:
		logger.Debug("unhandled stripe event", zap.String("type", string(event.Type)))
	}

	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			logger.Warn("stripe event for unknown booking", zap.String("event_id", event.ID), zap.String("type", string(event.Type)))
		} else {
			logger.Error("stripe event failed", zap.String("event_id", event.ID), zap.Error(err))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}
