package repository

import (
	"context"
	"database/sql"
	"fmt"
)

type StripeRepository struct {
	DB *sql.DB
}

func NewStripeRepository(db *sql.DB) *StripeRepository {
	return &StripeRepository{DB: db}
}

// UpdateStatusBySessionID records the outcome of a checkout session. An empty
// paymentIntentID keeps the stored one.
func (r *StripeRepository) UpdateStatusBySessionID(ctx context.Context, sessionID, status, paymentStatus, paymentIntentID string) error {
	query := `
		UPDATE bookings
		SET
			status = $2,
			payment_status = $3,
			stripe_payment_intent_id = COALESCE(NULLIF($4, ''), stripe_payment_intent_id),
			updated_at = NOW()
		WHERE stripe_session_id = $1`

	res, err := r.DB.ExecContext(ctx, query, sessionID, status, paymentStatus, paymentIntentID)
	if err != nil {
		return fmt.Errorf("error updating booking for session %s: %w", sessionID, err)
	}
	return expectOneRow(res, "session "+sessionID)
}

func (r *StripeRepository) UpdateStatusByPaymentIntentID(ctx context.Context, paymentIntentID, status, paymentStatus string) error {
	query := `
		UPDATE bookings
		SET status = $2, payment_status = $3, updated_at = NOW()
		WHERE stripe_payment_intent_id = $1`

	res, err := r.DB.ExecContext(ctx, query, paymentIntentID, status, paymentStatus)
	if err != nil {
		return fmt.Errorf("error updating booking for payment intent %s: %w", paymentIntentID, err)
	}
	return expectOneRow(res, "payment intent "+paymentIntentID)
}
