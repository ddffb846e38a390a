package domain

import "errors"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrProofRequired rejects flipping a request to paid without a proof
	// reference attached. The record must stay unchanged.
	ErrProofRequired = errors.New("proof is required for a paid request")

	// ErrInvoiceRequired rejects committing a non-cash request without an
	// uploaded invoice.
	ErrInvoiceRequired = errors.New("invoice is required for a non-cash request")

	// ErrUserExists is returned when registering an already known telegram id.
	ErrUserExists = errors.New("user already registered")
)
