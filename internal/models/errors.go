package models

import (
	"errors"
	"fmt"
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrInvalidAmount       = errors.New("amount must be greater than 0")
	ErrInsufficientFunds   = errors.New("insufficient balance")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidTransaction  = errors.New("invalid transaction record")
)

// GatewayError carries the upstream rejection verbatim. Ambiguous marks
// outcomes the gateway never confirmed (timeouts, transport failures); the
// caller must not retry those blindly.
type GatewayError struct {
	StatusCode int
	Message    string
	Ambiguous  bool
}

func (e *GatewayError) Error() string {
	if e.Ambiguous {
		return fmt.Sprintf("paystack: outcome unknown: %s", e.Message)
	}
	return fmt.Sprintf("paystack: %s", e.Message)
}

// PostGatewayCommitError means the gateway accepted a transfer but the local
// debit or ledger append failed afterwards. The books no longer match the
// real world and an operator has to reconcile by hand.
type PostGatewayCommitError struct {
	TransferCode string
	Err          error
}

func (e *PostGatewayCommitError) Error() string {
	return fmt.Sprintf("local commit failed after gateway accepted transfer %s: %v", e.TransferCode, e.Err)
}

func (e *PostGatewayCommitError) Unwrap() error { return e.Err }
