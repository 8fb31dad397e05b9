package services

import (
	"context"
	"fmt"
	"time"

	"kudipay/internal/models"
	"kudipay/pkg/utils"

	"github.com/shopspring/decimal"
)

// WebhookEvent is the parsed Paystack notification payload.
type WebhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		TransferCode string                 `json:"transfer_code"`
		Reference    string                 `json:"reference"`
		Amount       int64                  `json:"amount"`
		Status       string                 `json:"status"`
		Metadata     map[string]interface{} `json:"metadata"`
	} `json:"data"`
}

// WebhookService converges pending transactions to their gateway-confirmed
// outcome. Deliveries can repeat and arrive in any order; the conditional
// pending-only transition in the ledger is what makes that safe. A non-nil
// error means an infrastructure failure worth a redelivery; everything else
// is acknowledged so the gateway stops resending.
type WebhookService struct {
	wallets WalletStore
	ledger  TransactionLedger
	users   UserDirectory

	// notify is swappable in tests; it defaults to the settlement email.
	notify func(to, firstName, amount, reference string, date time.Time) error
}

func NewWebhookService(wallets WalletStore, ledger TransactionLedger, users UserDirectory) *WebhookService {
	return &WebhookService{
		wallets: wallets,
		ledger:  ledger,
		users:   users,
		notify:  utils.SendTransferSettledEmail,
	}
}

func (s *WebhookService) HandleEvent(ctx context.Context, event WebhookEvent) error {
	switch event.Event {
	case "transfer.success":
		return s.advanceTransfer(ctx, event.Data.TransferCode, models.StatusSuccess)

	case "transfer.failed", "transfer.reversed", "transfer.abandoned", "transfer.dispute":
		return s.advanceTransfer(ctx, event.Data.TransferCode, models.StatusFailed)

	case "transfer.pending", "transfer.queue", "transfer.processing", "transfer.otp":
		// In-flight notifications: the transaction stays pending.
		return s.advanceTransfer(ctx, event.Data.TransferCode, models.StatusPending)

	case "charge.success":
		return s.creditCharge(ctx, event)

	case "charge.failed", "charge.reversed":
		utils.Logger.WithField("event", event.Event).WithField("reference", event.Data.Reference).
			Info("paystack charge did not complete, nothing to do")
		return nil

	default:
		utils.Logger.WithField("event", event.Event).Info("ignoring unrecognized paystack event")
		return nil
	}
}

func (s *WebhookService) advanceTransfer(ctx context.Context, transferCode string, target models.TransactionStatus) error {
	if transferCode == "" {
		utils.Logger.Warn("paystack transfer event without transfer_code")
		return nil
	}

	result, err := s.ledger.AdvanceStatus(ctx, transferCode, target)
	if err == models.ErrTransactionNotFound {
		// Acknowledge anyway: the gateway would redeliver forever.
		utils.Logger.WithField("transfer_code", transferCode).
			Warn("paystack event for unknown transfer, acknowledged without processing")
		return nil
	}
	if err != nil {
		return err
	}
	if result == models.AlreadyFinal {
		utils.Logger.WithField("transfer_code", transferCode).WithField("target", string(target)).
			Info("duplicate paystack delivery, transaction already settled")
		return nil
	}

	if target == models.StatusSuccess {
		s.notifySettled(ctx, transferCode)
	}
	return nil
}

func (s *WebhookService) notifySettled(ctx context.Context, transferCode string) {
	txn, err := s.ledger.GetByGatewayRef(ctx, transferCode)
	if err != nil {
		utils.Logger.Errorf("failed to load settled transfer %s for notification: %v", transferCode, err)
		return
	}
	user, err := s.users.FindByID(ctx, txn.UserID)
	if err != nil || user.Email == "" {
		utils.Logger.Warnf("no notification sent for transfer %s: owner unresolved", transferCode)
		return
	}

	go func() {
		if err := s.notify(user.Email, user.FirstName, txn.Amount.StringFixed(2), txn.Reference, time.Now()); err != nil {
			utils.Logger.Errorf("failed to send settlement email for transfer %s: %v", transferCode, err)
		}
	}()
}

// creditCharge handles gateway-funded top-ups: a confirmed charge credits the
// wallet and appends a fund record, deduplicated by the gateway reference.
func (s *WebhookService) creditCharge(ctx context.Context, event WebhookEvent) error {
	if event.Data.Status != "success" || event.Data.Reference == "" {
		utils.Logger.WithField("reference", event.Data.Reference).Info("ignoring incomplete charge event")
		return nil
	}

	exists, err := s.ledger.ExistsByReference(ctx, event.Data.Reference)
	if err != nil {
		return err
	}
	if exists {
		utils.Logger.WithField("reference", event.Data.Reference).Info("duplicate charge delivery ignored")
		return nil
	}

	userID, ok := metadataUserID(event.Data.Metadata)
	if !ok {
		utils.Logger.WithField("reference", event.Data.Reference).
			Warn("charge event without usable userId metadata, acknowledged without processing")
		return nil
	}

	amount := decimal.NewFromInt(event.Data.Amount).Div(decimal.NewFromInt(100))
	if !amount.IsPositive() {
		utils.Logger.WithField("reference", event.Data.Reference).Warn("charge event with non-positive amount ignored")
		return nil
	}

	if _, err := s.wallets.Credit(ctx, userID, amount); err != nil {
		return err
	}
	_, err = s.ledger.Append(ctx, models.Transaction{
		UserID:    userID,
		Type:      models.TypeFund,
		Amount:    amount,
		Status:    models.StatusSuccess,
		Reference: event.Data.Reference,
	})
	if err != nil {
		if _, debitErr := s.wallets.Debit(context.WithoutCancel(ctx), userID, amount); debitErr != nil {
			utils.Logger.WithField("user_id", userID).WithField("reference", event.Data.Reference).
				Errorf("OPERATOR ACTION REQUIRED: failed to reverse webhook credit after ledger append failure: %v", debitErr)
		}
		return err
	}
	return nil
}

func metadataUserID(metadata map[string]interface{}) (int, bool) {
	switch v := metadata["userId"].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err != nil || id == 0 {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}
