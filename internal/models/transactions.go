package models

import (
	"database/sql"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeFund             TransactionType = "fund"
	TypeWithdraw         TransactionType = "withdraw"
	TypeTransfer         TransactionType = "transfer"
	TypeBill             TransactionType = "bill"
	TypeExternalTransfer TransactionType = "external-transfer"
	TypeAirtime          TransactionType = "airtime"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeFund, TypeWithdraw, TypeTransfer, TypeBill, TypeExternalTransfer, TypeAirtime:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

func (s TransactionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further status transition is permitted.
func (s TransactionStatus) Terminal() bool {
	return s == StatusSuccess || s == StatusFailed
}

// AdvanceResult is the outcome of advancing a pending transaction.
type AdvanceResult int

const (
	Advanced AdvanceResult = iota
	// AlreadyFinal means the matched transaction was already in a terminal
	// status. Redelivered webhook events hit this path; it is not a failure.
	AlreadyFinal
)

type Transaction struct {
	ID         int               `json:"id,omitempty" db:"id,omitempty"`
	UserID     int               `json:"user_id,omitempty" db:"user_id,omitempty"`
	Type       TransactionType   `json:"type,omitempty" db:"transaction_type,omitempty"`
	Amount     decimal.Decimal   `json:"amount" db:"amount"`
	Status     TransactionStatus `json:"status,omitempty" db:"status,omitempty"`
	Reference  string            `json:"reference,omitempty" db:"reference,omitempty"`
	GatewayRef string            `json:"gateway_ref,omitempty" db:"gateway_ref,omitempty"`
	Details    json.RawMessage   `json:"details,omitempty" db:"details,omitempty"`
	CreatedAt  sql.NullString    `json:"created_at,omitempty" db:"created_at,omitempty"`
	UpdatedAt  sql.NullString    `json:"updated_at,omitempty" db:"updated_at,omitempty"`
}

// Per-type detail payloads stored in the transactions.details JSON column.
// ExternalTransferDetail.TransferCode doubles as the reconciliation key and
// is mirrored into the indexed gateway_ref column on insert.

type TransferDetail struct {
	To   string `json:"to,omitempty"`
	From string `json:"from,omitempty"`
	Note string `json:"note,omitempty"`
}

type ExternalTransferDetail struct {
	To           string `json:"to"`
	BankCode     string `json:"bank_code"`
	TransferCode string `json:"transfer_code"`
	Reason       string `json:"reason,omitempty"`
}

type BillDetail struct {
	Biller string `json:"biller"`
	Note   string `json:"note,omitempty"`
}

type AirtimeDetail struct {
	Phone   string `json:"phone"`
	Network string `json:"network"`
}
