package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"kudipay/internal/services"
	"kudipay/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler() *Handler {
	wallets := stubWallets{}
	ledger := &stubLedger{}
	users := stubUsers{}
	return NewHandler(
		services.NewWalletService(wallets, ledger),
		services.NewTransferService(wallets, ledger, users),
		nil,
	)
}

func authedRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := context.WithValue(req.Context(), utils.ContextKey("userId"), float64(7))
	return req.WithContext(ctx)
}

func TestFundWallet(t *testing.T) {
	t.Run("credits and returns the new balance", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()

		handler.FundWallet(rec, authedRequest(http.MethodPost, "/wallet/fund", `{"amount":"250"}`))

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Status  string `json:"status"`
			Balance string `json:"balance"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, "250", resp.Balance)
	})

	t.Run("rejects a non-positive amount", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()

		handler.FundWallet(rec, authedRequest(http.MethodPost, "/wallet/fund", `{"amount":"0"}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown fields in the body", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()

		handler.FundWallet(rec, authedRequest(http.MethodPost, "/wallet/fund", `{"amount":"250","admin":true}`))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("requires an authenticated caller", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/wallet/fund", strings.NewReader(`{"amount":"250"}`))

		handler.FundWallet(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects GET", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()

		handler.FundWallet(rec, authedRequest(http.MethodGet, "/wallet/fund", ""))

		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestTransfer(t *testing.T) {
	t.Run("unknown recipient account maps to 404", func(t *testing.T) {
		handler := newTestHandler()
		rec := httptest.NewRecorder()

		handler.Transfer(rec, authedRequest(http.MethodPost, "/wallet/transfer",
			`{"amount":"100","account_number":"0000000000"}`))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestGetBalance(t *testing.T) {
	handler := newTestHandler()
	rec := httptest.NewRecorder()

	handler.GetBalance(rec, authedRequest(http.MethodGet, "/wallet/balance", ""))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Balance string `json:"balance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp.Balance)
}
