package services

import (
	"context"
	"encoding/json"
	"fmt"

	"kudipay/internal/models"
	"kudipay/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferService moves funds between two local wallets. The balance pair
// commits atomically in the store; the two ledger legs commit atomically in
// the ledger; a failed append reverses the balance transfer so the sender is
// never left debited without a trail.
type TransferService struct {
	wallets WalletStore
	ledger  TransactionLedger
	users   UserDirectory
}

func NewTransferService(wallets WalletStore, ledger TransactionLedger, users UserDirectory) *TransferService {
	return &TransferService{wallets: wallets, ledger: ledger, users: users}
}

func (s *TransferService) Transfer(ctx context.Context, senderID int, recipientAccount string, amount decimal.Decimal, reference, note string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	if recipientAccount == "" {
		return decimal.Zero, fmt.Errorf("%w: recipient account number required", models.ErrValidation)
	}

	recipient, err := s.users.FindByAccountNumber(ctx, recipientAccount)
	if err != nil {
		return decimal.Zero, err
	}
	if recipient.ID == senderID {
		return decimal.Zero, fmt.Errorf("%w: cannot transfer to your own wallet", models.ErrValidation)
	}
	sender, err := s.users.FindByID(ctx, senderID)
	if err != nil {
		return decimal.Zero, err
	}

	senderBalance, err := s.wallets.TransferBalance(ctx, senderID, recipient.ID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	if reference == "" {
		reference = uuid.NewString()
	}
	outDetail, _ := json.Marshal(models.TransferDetail{To: recipientAccount, Note: note})
	inDetail, _ := json.Marshal(models.TransferDetail{From: sender.AccountNumber, Note: note})

	err = s.ledger.AppendPair(ctx,
		models.Transaction{
			UserID:    senderID,
			Type:      models.TypeTransfer,
			Amount:    amount,
			Status:    models.StatusSuccess,
			Reference: reference,
			Details:   outDetail,
		},
		models.Transaction{
			UserID:    recipient.ID,
			Type:      models.TypeTransfer,
			Amount:    amount,
			Status:    models.StatusSuccess,
			Reference: reference,
			Details:   inDetail,
		})
	if err != nil {
		s.reverseTransfer(ctx, recipient.ID, senderID, amount)
		return decimal.Zero, err
	}

	return senderBalance, nil
}

func (s *TransferService) reverseTransfer(ctx context.Context, fromID, toID int, amount decimal.Decimal) {
	if _, err := s.wallets.TransferBalance(context.WithoutCancel(ctx), fromID, toID, amount); err != nil {
		utils.Logger.WithField("from_user", fromID).WithField("to_user", toID).
			WithField("amount", amount.String()).
			Errorf("OPERATOR ACTION REQUIRED: failed to reverse transfer after ledger append failure: %v", err)
	}
}
