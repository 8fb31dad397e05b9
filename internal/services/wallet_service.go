package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kudipay/internal/models"
	"kudipay/pkg/utils"

	"github.com/shopspring/decimal"
)

// Phone prefixes per mobile network, checked before any balance mutation.
var networkPrefixes = map[string][]string{
	"mtn":     {"0803", "0806", "0703", "0706", "0813", "0816", "0810", "0814", "0903", "0906", "0913", "0916"},
	"glo":     {"0805", "0807", "0705", "0815", "0811", "0905"},
	"airtel":  {"0802", "0808", "0708", "0812", "0701", "0902", "0907", "0901", "0912"},
	"9mobile": {"0809", "0817", "0818", "0909", "0908"},
}

// WalletService handles the synchronous operations: the local side effect is
// the whole operation, so each record is appended already in its terminal
// status. Balance mutation and ledger append commit together through a
// compensating-action pattern: when the append fails the mutation is
// reversed before the error is returned.
type WalletService struct {
	wallets WalletStore
	ledger  TransactionLedger
}

func NewWalletService(wallets WalletStore, ledger TransactionLedger) *WalletService {
	return &WalletService{wallets: wallets, ledger: ledger}
}

func (s *WalletService) Balance(ctx context.Context, userID int) (decimal.Decimal, error) {
	return s.wallets.Balance(ctx, userID)
}

func (s *WalletService) Fund(ctx context.Context, userID int, amount decimal.Decimal, reference, note string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}

	balance, err := s.wallets.Credit(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	_, err = s.ledger.Append(ctx, models.Transaction{
		UserID:    userID,
		Type:      models.TypeFund,
		Amount:    amount,
		Status:    models.StatusSuccess,
		Reference: reference,
		Details:   marshalNote(note),
	})
	if err != nil {
		s.compensateCredit(ctx, userID, amount)
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *WalletService) Withdraw(ctx context.Context, userID int, amount decimal.Decimal, reference, note string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}

	balance, err := s.wallets.Debit(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	_, err = s.ledger.Append(ctx, models.Transaction{
		UserID:    userID,
		Type:      models.TypeWithdraw,
		Amount:    amount,
		Status:    models.StatusSuccess,
		Reference: reference,
		Details:   marshalNote(note),
	})
	if err != nil {
		s.compensateDebit(ctx, userID, amount)
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *WalletService) PayBill(ctx context.Context, userID int, amount decimal.Decimal, biller, reference, note string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	if biller == "" {
		return decimal.Zero, fmt.Errorf("%w: biller required", models.ErrValidation)
	}

	balance, err := s.wallets.Debit(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	detail, _ := json.Marshal(models.BillDetail{Biller: biller, Note: note})
	_, err = s.ledger.Append(ctx, models.Transaction{
		UserID:    userID,
		Type:      models.TypeBill,
		Amount:    amount,
		Status:    models.StatusSuccess,
		Reference: reference,
		Details:   detail,
	})
	if err != nil {
		s.compensateDebit(ctx, userID, amount)
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *WalletService) BuyAirtime(ctx context.Context, userID int, amount decimal.Decimal, phone, network, reference string) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, models.ErrInvalidAmount
	}
	if err := validateAirtimeNumber(phone, network); err != nil {
		return decimal.Zero, err
	}

	balance, err := s.wallets.Debit(ctx, userID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	detail, _ := json.Marshal(models.AirtimeDetail{Phone: phone, Network: network})
	_, err = s.ledger.Append(ctx, models.Transaction{
		UserID:    userID,
		Type:      models.TypeAirtime,
		Amount:    amount,
		Status:    models.StatusSuccess,
		Reference: reference,
		Details:   detail,
	})
	if err != nil {
		s.compensateDebit(ctx, userID, amount)
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *WalletService) History(ctx context.Context, userID, page, limit int) ([]models.Transaction, error) {
	return s.ledger.ListByUser(ctx, userID, page, limit)
}

func (s *WalletService) GetTransaction(ctx context.Context, id, userID int) (models.Transaction, error) {
	return s.ledger.GetByID(ctx, id, userID)
}

func validateAirtimeNumber(phone, network string) error {
	if phone == "" {
		return fmt.Errorf("%w: phone number required", models.ErrValidation)
	}
	prefixes, ok := networkPrefixes[network]
	if !ok {
		return fmt.Errorf("%w: network required", models.ErrValidation)
	}
	if len(phone) < 4 {
		return fmt.Errorf("%w: phone number does not match selected network (%s)", models.ErrValidation, strings.ToUpper(network))
	}
	prefix := phone[:4]
	for _, p := range prefixes {
		if p == prefix {
			return nil
		}
	}
	return fmt.Errorf("%w: phone number does not match selected network (%s)", models.ErrValidation, strings.ToUpper(network))
}

// The reversal runs on a background context: the operation already failed
// and the compensation must not be skipped because the request was canceled.
func (s *WalletService) compensateCredit(ctx context.Context, userID int, amount decimal.Decimal) {
	if _, err := s.wallets.Debit(context.WithoutCancel(ctx), userID, amount); err != nil {
		utils.Logger.WithField("user_id", userID).WithField("amount", amount.String()).
			Errorf("OPERATOR ACTION REQUIRED: failed to reverse credit after ledger append failure: %v", err)
	}
}

func (s *WalletService) compensateDebit(ctx context.Context, userID int, amount decimal.Decimal) {
	if _, err := s.wallets.Credit(context.WithoutCancel(ctx), userID, amount); err != nil {
		utils.Logger.WithField("user_id", userID).WithField("amount", amount.String()).
			Errorf("OPERATOR ACTION REQUIRED: failed to reverse debit after ledger append failure: %v", err)
	}
}

func marshalNote(note string) []byte {
	if note == "" {
		return nil
	}
	detail, _ := json.Marshal(map[string]string{"note": note})
	return detail
}
