package bank

import "errors"

// Domain errors. Their messages are shown to users verbatim.
var (
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrNotAuthenticated    = errors.New("not authenticated")
	ErrAccountNotFound     = errors.New("user not found")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrReceiverNotFound    = errors.New("receiver not found")
	ErrSelfTransfer        = errors.New("cannot transfer to yourself")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be a positive value with at most 2 decimal places")

	// ErrStorageUnavailable wraps infrastructure faults (redis, postgres) so they
	// never get confused with the validation errors above.
	ErrStorageUnavailable = errors.New("storage unavailable")

	ErrSelfDelete           = errors.New("cannot delete yourself")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidRole          = errors.New("role must be Customer, Manager or Admin")
	ErrVerificationRequired = errors.New("password verification required")
)
