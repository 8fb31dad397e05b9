package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"kudipay/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func transferEvent(name, code string) WebhookEvent {
	var e WebhookEvent
	e.Event = name
	e.Data.TransferCode = code
	return e
}

func chargeEvent(reference string, amountKobo int64, userID interface{}) WebhookEvent {
	var e WebhookEvent
	e.Event = "charge.success"
	e.Data.Reference = reference
	e.Data.Amount = amountKobo
	e.Data.Status = "success"
	e.Data.Metadata = map[string]interface{}{"userId": userID}
	return e
}

// amountEq matches a decimal argument by numeric value, since the reconciler
// derives naira amounts from kobo and the exponent may differ.
func amountEq(s string) interface{} {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(a decimal.Decimal) bool { return a.Equal(want) })
}

func newTestWebhookService(store WalletStore, ledger TransactionLedger, users UserDirectory) (*WebhookService, chan string) {
	notified := make(chan string, 1)
	svc := NewWebhookService(store, ledger, users)
	svc.notify = func(to, firstName, amount, reference string, date time.Time) error {
		notified <- to
		return nil
	}
	return svc, notified
}

func TestWebhookService_TransferEvents(t *testing.T) {
	t.Run("success event advances the pending transaction and notifies the owner", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		users := new(MockUsers)

		ledger.On("AdvanceStatus", mock.Anything, "TRF_xyz", models.StatusSuccess).Return(models.Advanced, nil)
		ledger.On("GetByGatewayRef", mock.Anything, "TRF_xyz").Return(models.Transaction{
			ID: 7, UserID: 1, Amount: decimal.RequireFromString("500"), Reference: "EXT-1",
		}, nil)
		users.On("FindByID", mock.Anything, 1).Return(models.User{ID: 1, FirstName: "Ada", Email: "ada@example.com"}, nil)

		svc, notified := newTestWebhookService(store, ledger, users)
		err := svc.HandleEvent(context.Background(), transferEvent("transfer.success", "TRF_xyz"))

		assert.NoError(t, err)
		ledger.AssertExpectations(t)
		select {
		case to := <-notified:
			assert.Equal(t, "ada@example.com", to)
		case <-time.After(time.Second):
			t.Fatal("settlement notification was never sent")
		}
	})

	t.Run("duplicate success delivery is a no-op", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		users := new(MockUsers)
		ledger.On("AdvanceStatus", mock.Anything, "TRF_xyz", models.StatusSuccess).Return(models.AlreadyFinal, nil)

		svc, notified := newTestWebhookService(store, ledger, users)
		err := svc.HandleEvent(context.Background(), transferEvent("transfer.success", "TRF_xyz"))

		assert.NoError(t, err)
		select {
		case <-notified:
			t.Fatal("duplicate delivery must not re-notify")
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("failure event after settlement does not revert the status", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		users := new(MockUsers)
		// The ledger's pending-only transition reports AlreadyFinal; the
		// reconciler must treat that as done, not as an error.
		ledger.On("AdvanceStatus", mock.Anything, "TRF_xyz", models.StatusFailed).Return(models.AlreadyFinal, nil)

		svc, _ := newTestWebhookService(store, ledger, users)
		err := svc.HandleEvent(context.Background(), transferEvent("transfer.reversed", "TRF_xyz"))

		assert.NoError(t, err)
		ledger.AssertExpectations(t)
	})

	t.Run("failure-category events target failed", func(t *testing.T) {
		for _, name := range []string{"transfer.failed", "transfer.reversed", "transfer.abandoned", "transfer.dispute"} {
			ledger := new(MockLedger)
			ledger.On("AdvanceStatus", mock.Anything, "TRF_1", models.StatusFailed).Return(models.Advanced, nil)

			svc, _ := newTestWebhookService(new(MockWalletStore), ledger, new(MockUsers))
			assert.NoError(t, svc.HandleEvent(context.Background(), transferEvent(name, "TRF_1")))
			ledger.AssertExpectations(t)
		}
	})

	t.Run("in-flight events keep the transaction pending", func(t *testing.T) {
		for _, name := range []string{"transfer.pending", "transfer.queue", "transfer.processing", "transfer.otp"} {
			ledger := new(MockLedger)
			ledger.On("AdvanceStatus", mock.Anything, "TRF_1", models.StatusPending).Return(models.Advanced, nil)

			svc, _ := newTestWebhookService(new(MockWalletStore), ledger, new(MockUsers))
			assert.NoError(t, svc.HandleEvent(context.Background(), transferEvent(name, "TRF_1")))
			ledger.AssertExpectations(t)
		}
	})

	t.Run("unknown transfer code is acknowledged, not retried", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("AdvanceStatus", mock.Anything, "TRF_nope", models.StatusSuccess).
			Return(models.AdvanceResult(0), models.ErrTransactionNotFound)

		svc, _ := newTestWebhookService(new(MockWalletStore), ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), transferEvent("transfer.success", "TRF_nope"))

		assert.NoError(t, err)
	})

	t.Run("storage failure propagates so the gateway redelivers", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("AdvanceStatus", mock.Anything, "TRF_1", models.StatusSuccess).
			Return(models.AdvanceResult(0), errors.New("db down"))

		svc, _ := newTestWebhookService(new(MockWalletStore), ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), transferEvent("transfer.success", "TRF_1"))

		assert.Error(t, err)
	})

	t.Run("unrecognized events are ignored without a ledger call", func(t *testing.T) {
		ledger := new(MockLedger)
		svc, _ := newTestWebhookService(new(MockWalletStore), ledger, new(MockUsers))

		err := svc.HandleEvent(context.Background(), transferEvent("subscription.create", "TRF_1"))

		assert.NoError(t, err)
		ledger.AssertNotCalled(t, "AdvanceStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestWebhookService_ChargeEvents(t *testing.T) {
	t.Run("confirmed charge credits the wallet once", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		ledger.On("ExistsByReference", mock.Anything, "ps-ref-1").Return(false, nil)
		store.On("Credit", mock.Anything, 9, amountEq("250")).Return(d("250"), nil)
		ledger.On("Append", mock.Anything, mock.MatchedBy(func(txn models.Transaction) bool {
			return txn.UserID == 9 &&
				txn.Type == models.TypeFund &&
				txn.Status == models.StatusSuccess &&
				txn.Reference == "ps-ref-1"
		})).Return(1, nil)

		svc, _ := newTestWebhookService(store, ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), chargeEvent("ps-ref-1", 25000, float64(9)))

		assert.NoError(t, err)
		store.AssertExpectations(t)
		ledger.AssertExpectations(t)
	})

	t.Run("redelivered charge is deduplicated by reference", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		ledger.On("ExistsByReference", mock.Anything, "ps-ref-1").Return(true, nil)

		svc, _ := newTestWebhookService(store, ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), chargeEvent("ps-ref-1", 25000, float64(9)))

		assert.NoError(t, err)
		store.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("charge without usable metadata is acknowledged without crediting", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		ledger.On("ExistsByReference", mock.Anything, "ps-ref-2").Return(false, nil)

		svc, _ := newTestWebhookService(store, ledger, new(MockUsers))
		event := chargeEvent("ps-ref-2", 25000, nil)

		assert.NoError(t, svc.HandleEvent(context.Background(), event))
		store.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("userId arriving as a string still resolves", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		ledger.On("ExistsByReference", mock.Anything, "ps-ref-3").Return(false, nil)
		store.On("Credit", mock.Anything, 4, amountEq("100")).Return(d("100"), nil)
		ledger.On("Append", mock.Anything, mock.Anything).Return(1, nil)

		svc, _ := newTestWebhookService(store, ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), chargeEvent("ps-ref-3", 10000, "4"))

		assert.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("append failure reverses the credit and reports the error", func(t *testing.T) {
		store := new(MockWalletStore)
		ledger := new(MockLedger)
		ledger.On("ExistsByReference", mock.Anything, "ps-ref-4").Return(false, nil)
		store.On("Credit", mock.Anything, 9, amountEq("250")).Return(d("250"), nil)
		ledger.On("Append", mock.Anything, mock.Anything).Return(0, errors.New("insert failed"))
		store.On("Debit", mock.Anything, 9, amountEq("250")).Return(d("0"), nil)

		svc, _ := newTestWebhookService(store, ledger, new(MockUsers))
		err := svc.HandleEvent(context.Background(), chargeEvent("ps-ref-4", 25000, float64(9)))

		assert.Error(t, err)
		store.AssertExpectations(t)
	})
}
