package services

import (
	"context"
	"encoding/json"
	"fmt"

	"kudipay/internal/models"
	"kudipay/pkg/utils"

	"github.com/shopspring/decimal"
)

// ExternalTransferService routes a payout through the gateway. The external
// leg cannot be made atomic with the local one, so ordering is deliberate:
// nothing local changes until the gateway has accepted the transfer, and a
// local failure after acceptance is surfaced as a PostGatewayCommitError
// rather than retried, since retrying risks paying twice.
type ExternalTransferService struct {
	wallets WalletStore
	ledger  TransactionLedger
	users   UserDirectory
	gateway Gateway
}

func NewExternalTransferService(wallets WalletStore, ledger TransactionLedger, users UserDirectory, gateway Gateway) *ExternalTransferService {
	return &ExternalTransferService{wallets: wallets, ledger: ledger, users: users, gateway: gateway}
}

type ExternalTransferRequest struct {
	UserID        int
	AccountNumber string
	BankCode      string
	Amount        decimal.Decimal
	Reference     string
	Reason        string
}

type ExternalTransferResult struct {
	TransactionID int             `json:"transaction_id"`
	TransferCode  string          `json:"transfer_code"`
	Balance       decimal.Decimal `json:"balance"`
}

func (s *ExternalTransferService) Transfer(ctx context.Context, req ExternalTransferRequest) (*ExternalTransferResult, error) {
	if !req.Amount.IsPositive() {
		return nil, models.ErrInvalidAmount
	}
	if req.AccountNumber == "" || req.BankCode == "" {
		return nil, fmt.Errorf("%w: account number and bank code required", models.ErrValidation)
	}

	balance, err := s.wallets.Balance(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if balance.LessThan(req.Amount) {
		return nil, models.ErrInsufficientFunds
	}

	user, err := s.users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	name := user.FirstName + " " + user.LastName

	recipientCode, err := s.gateway.CreateTransferRecipient(ctx, req.AccountNumber, req.BankCode, name)
	if err != nil {
		return nil, err
	}

	reason := req.Reason
	if reason == "" {
		reason = "External transfer"
	}
	transferCode, err := s.gateway.InitiateTransfer(ctx, recipientCode, req.Amount, reason)
	if err != nil {
		return nil, err
	}

	// The gateway has accepted the transfer. From here every local failure
	// leaves the books behind the real world and is an operator problem, not
	// something to swallow or retry.
	newBalance, err := s.wallets.Debit(ctx, req.UserID, req.Amount)
	if err != nil {
		commitErr := &models.PostGatewayCommitError{TransferCode: transferCode, Err: err}
		utils.Logger.WithField("user_id", req.UserID).WithField("transfer_code", transferCode).
			Errorf("OPERATOR ACTION REQUIRED: %v", commitErr)
		return nil, commitErr
	}

	reference := req.Reference
	if reference == "" {
		reference = GenerateReference("EXT")
	}
	detail, _ := json.Marshal(models.ExternalTransferDetail{
		To:           req.AccountNumber,
		BankCode:     req.BankCode,
		TransferCode: transferCode,
		Reason:       reason,
	})
	txnID, err := s.ledger.Append(ctx, models.Transaction{
		UserID:     req.UserID,
		Type:       models.TypeExternalTransfer,
		Amount:     req.Amount,
		Status:     models.StatusPending,
		Reference:  reference,
		GatewayRef: transferCode,
		Details:    detail,
	})
	if err != nil {
		commitErr := &models.PostGatewayCommitError{TransferCode: transferCode, Err: err}
		utils.Logger.WithField("user_id", req.UserID).WithField("transfer_code", transferCode).
			Errorf("OPERATOR ACTION REQUIRED: wallet debited but ledger append failed: %v", commitErr)
		return nil, commitErr
	}

	return &ExternalTransferResult{
		TransactionID: txnID,
		TransferCode:  transferCode,
		Balance:       newBalance,
	}, nil
}
