package services

import (
	"context"
	"kudipay/internal/models"

	"github.com/shopspring/decimal"
)

// WalletStore is the balance storage contract the orchestrators run against.
// Implementations must make each mutation atomic per wallet and
// TransferBalance atomic across both wallets.
type WalletStore interface {
	Balance(ctx context.Context, userID int) (decimal.Decimal, error)
	Credit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error)
	Debit(ctx context.Context, userID int, amount decimal.Decimal) (decimal.Decimal, error)
	TransferBalance(ctx context.Context, fromID, toID int, amount decimal.Decimal) (decimal.Decimal, error)
}

type TransactionLedger interface {
	Append(ctx context.Context, t models.Transaction) (int, error)
	AppendPair(ctx context.Context, a, b models.Transaction) error
	AdvanceStatus(ctx context.Context, gatewayRef string, status models.TransactionStatus) (models.AdvanceResult, error)
	ListByUser(ctx context.Context, userID, page, limit int) ([]models.Transaction, error)
	GetByID(ctx context.Context, id, userID int) (models.Transaction, error)
	GetByGatewayRef(ctx context.Context, gatewayRef string) (models.Transaction, error)
	ExistsByReference(ctx context.Context, reference string) (bool, error)
}

type UserDirectory interface {
	FindByAccountNumber(ctx context.Context, accountNumber string) (models.User, error)
	FindByID(ctx context.Context, id int) (models.User, error)
}

// Gateway is the outbound payment gateway boundary. Calls are single
// synchronous requests; retry policy belongs to the caller.
type Gateway interface {
	CreateTransferRecipient(ctx context.Context, accountNumber, bankCode, name string) (string, error)
	InitiateTransfer(ctx context.Context, recipientCode string, amount decimal.Decimal, reason string) (string, error)
}
