package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"

	"novadrive/internal/utils"
)

// CheckoutParams describes a single line item Stripe Checkout payment.
type CheckoutParams struct {
	Amount        float64
	Description   string
	CustomerEmail string
	BookingCode   string
	Language      string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type StripeService struct {
	currency    string
	frontendURL string
}

// NewStripeService expects stripe.Key to be set by the caller.
func NewStripeService(currency, frontendURL string) *StripeService {
	return &StripeService{
		currency:    currency,
		frontendURL: strings.TrimRight(frontendURL, "/"),
	}
}

func (s *StripeService) returnURL(lang, outcome string) string {
	if lang == "" {
		lang = "en"
	}
	return fmt.Sprintf("%s/%s/bookings/%s?session_id={CHECKOUT_SESSION_ID}", s.frontendURL, lang, outcome)
}

func (s *StripeService) CreateCheckoutSession(ctx context.Context, p CheckoutParams) (*CheckoutSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(s.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(p.Description),
					},
					UnitAmount: stripe.Int64(utils.ToCents(p.Amount)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(s.returnURL(p.Language, "confirmation")),
		CancelURL:         stripe.String(s.returnURL(p.Language, "failed")),
		CustomerEmail:     stripe.String(p.CustomerEmail),
		ClientReferenceID: stripe.String(p.BookingCode),
	}
	params.AddMetadata("booking_code", p.BookingCode)

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("creating checkout session for %s: %w", p.BookingCode, err)
	}
	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

func (s *StripeService) RefundPaymentBySessionID(ctx context.Context, sessionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return err
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no payment intent found for session %s", sessionID)
	}
	_, err = refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	})
	return err
}

// SessionIDForPaymentIntent finds the checkout session that created a
// payment intent. It returns "" when Stripe knows of none.
func (s *StripeService) SessionIDForPaymentIntent(ctx context.Context, paymentIntentID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	params := &stripe.CheckoutSessionListParams{
		PaymentIntent: stripe.String(paymentIntentID),
	}
	params.Limit = stripe.Int64(1)
	iter := session.List(params)
	if iter.Next() {
		return iter.CheckoutSession().ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", err
	}
	return "", nil
}
