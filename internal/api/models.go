package api

type ErrorResponse struct {
	Error string `json:"error"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateAdminRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BookingLookupRequest authenticates a customer by the email the booking was made with.
type BookingLookupRequest struct {
	Email string `json:"email"`
}
