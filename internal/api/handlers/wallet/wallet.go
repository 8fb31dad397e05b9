package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"kudipay/internal/models"
	"kudipay/internal/services"
	"kudipay/pkg/utils"

	"github.com/shopspring/decimal"
)

// Handler holds the orchestrators behind the wallet endpoints.
type Handler struct {
	wallets   *services.WalletService
	transfers *services.TransferService
	external  *services.ExternalTransferService
}

func NewHandler(wallets *services.WalletService, transfers *services.TransferService, external *services.ExternalTransferService) *Handler {
	return &Handler{wallets: wallets, transfers: transfers, external: external}
}

func callerID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	return int(idFloat), true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeBalance(w http.ResponseWriter, balance decimal.Decimal) {
	utils.WriteJSON(w, struct {
		Status  string          `json:"status"`
		Balance decimal.Decimal `json:"balance"`
	}{Status: "success", Balance: balance})
}

func writeServiceError(w http.ResponseWriter, err error) {
	var commitErr *models.PostGatewayCommitError
	var gwErr *models.GatewayError
	switch {
	case errors.Is(err, models.ErrInvalidAmount) || errors.Is(err, models.ErrValidation):
		utils.WriteError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, models.ErrInsufficientFunds):
		utils.WriteError(w, "insufficient balance", http.StatusBadRequest)
	case errors.Is(err, models.ErrRecipientNotFound):
		utils.WriteError(w, "recipient not found", http.StatusNotFound)
	case errors.As(err, &commitErr):
		// Gateway accepted, local books did not follow. Support already got
		// the operator log line; the caller must not simply retry.
		utils.WriteError(w, "transfer was accepted by the bank but could not be recorded; contact support before retrying", http.StatusInternalServerError)
	case errors.As(err, &gwErr):
		if gwErr.Ambiguous {
			utils.WriteError(w, "the bank did not confirm the request; check its status before retrying", http.StatusBadGateway)
		} else {
			utils.WriteError(w, fmt.Sprintf("bank transfer failed: %s", gwErr.Message), http.StatusBadGateway)
		}
	default:
		utils.Logger.Errorf("wallet operation failed: %v", err)
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	balance, err := h.wallets.Balance(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) FundWallet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Reference string          `json:"reference"`
		Note      string          `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	balance, err := h.wallets.Fund(r.Context(), userID, req.Amount, req.Reference, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) WithdrawToBank(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Reference string          `json:"reference"`
		Note      string          `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	balance, err := h.wallets.Withdraw(r.Context(), userID, req.Amount, req.Reference, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount        decimal.Decimal `json:"amount"`
		AccountNumber string          `json:"account_number"`
		Reference     string          `json:"reference"`
		Note          string          `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	balance, err := h.transfers.Transfer(r.Context(), userID, req.AccountNumber, req.Amount, req.Reference, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) PayBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Biller    string          `json:"biller"`
		Reference string          `json:"reference"`
		Note      string          `json:"note"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	balance, err := h.wallets.PayBill(r.Context(), userID, req.Amount, req.Biller, req.Reference, req.Note)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) BuyAirtime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount    decimal.Decimal `json:"amount"`
		Phone     string          `json:"phone"`
		Network   string          `json:"network"`
		Reference string          `json:"reference"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	balance, err := h.wallets.BuyAirtime(r.Context(), userID, req.Amount, req.Phone, req.Network, req.Reference)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeBalance(w, balance)
}

func (h *Handler) ExternalBankTransfer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	var req struct {
		Amount        decimal.Decimal `json:"amount"`
		AccountNumber string          `json:"account_number"`
		BankCode      string          `json:"bank_code"`
		Reference     string          `json:"reference"`
		Reason        string          `json:"reason"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	defer r.Body.Close()

	result, err := h.external.Transfer(r.Context(), services.ExternalTransferRequest{
		UserID:        userID,
		AccountNumber: req.AccountNumber,
		BankCode:      req.BankCode,
		Amount:        req.Amount,
		Reference:     req.Reference,
		Reason:        req.Reason,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.WriteJSON(w, struct {
		Status        string          `json:"status"`
		Message       string          `json:"message"`
		TransactionID int             `json:"transaction_id"`
		Balance       decimal.Decimal `json:"balance"`
	}{
		Status:        "success",
		Message:       "transfer initiated",
		TransactionID: result.TransactionID,
		Balance:       result.Balance,
	})
}
