package transactions

import (
	"errors"
	"net/http"
	"strconv"

	"kudipay/internal/models"
	"kudipay/internal/services"
	"kudipay/pkg/utils"
)

type Handler struct {
	wallets *services.WalletService
}

func NewHandler(wallets *services.WalletService) *Handler {
	return &Handler{wallets: wallets}
}

// GetAllUserTransactions returns the caller's transaction history,
// newest-first, paginated.
func (h *Handler) GetAllUserTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	page, limit := utils.GetPaginationParams(r)

	transactions, err := h.wallets.History(r.Context(), userID, page, limit)
	if err != nil {
		utils.Logger.Errorf("error fetching transactions: %v", err)
		utils.WriteError(w, "error fetching transactions", http.StatusInternalServerError)
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	response := struct {
		Status   string               `json:"status"`
		Count    int                  `json:"count"`
		Page     int                  `json:"page"`
		PageSize int                  `json:"page_size"`
		Data     []models.Transaction `json:"data"`
	}{
		Status:   "success",
		Count:    len(transactions),
		Page:     page,
		PageSize: limit,
		Data:     transactions,
	}

	utils.WriteJSON(w, response)
}

// GetTransactionById returns one transaction scoped to the caller.
func (h *Handler) GetTransactionById(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	idStr := r.PathValue("id")
	transactionID, err := strconv.Atoi(idStr)
	if err != nil {
		utils.WriteError(w, "invalid transaction ID", http.StatusBadRequest)
		return
	}

	idFloat, ok := r.Context().Value(utils.ContextKey("userId")).(float64)
	if !ok {
		utils.WriteError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	userID := int(idFloat)

	transaction, err := h.wallets.GetTransaction(r.Context(), transactionID, userID)
	if err != nil {
		if errors.Is(err, models.ErrTransactionNotFound) {
			utils.WriteError(w, "no transaction found", http.StatusNotFound)
			return
		}
		utils.Logger.Errorf("error fetching transaction: %v", err)
		utils.WriteError(w, "error fetching transaction", http.StatusInternalServerError)
		return
	}

	response := struct {
		Status string             `json:"status"`
		Data   models.Transaction `json:"data"`
	}{
		Status: "success",
		Data:   transaction,
	}

	utils.WriteJSON(w, response)
}
