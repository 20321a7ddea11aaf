package service

import "errors"

var (
	ErrVehicleNotFound          = errors.New("vehicle not found")
	ErrVehicleUnavailable       = errors.New("vehicle is not available for the requested dates")
	ErrBookingNotFound          = errors.New("booking not found")
	ErrBookingNotCancellable    = errors.New("booking can no longer be cancelled")
	ErrCancellationWindow       = errors.New("bookings can only be cancelled before the cancellation window")
	ErrInvalidBookingRequest    = errors.New("invalid booking request")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidDateRange         = errors.New("invalid date range")
	ErrInvalidRateCard          = errors.New("rates must be non-negative")
	ErrInvalidCredentials       = errors.New("invalid credentials")
	ErrInvalidAdmin             = errors.New("invalid admin account")
	ErrInvalidFilter            = errors.New("invalid booking filter")
)
