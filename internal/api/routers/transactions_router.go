package routers

import (
	"net/http"

	"kudipay/internal/api/handlers/transactions"
)

func transactionsRouter(h *transactions.Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/transactions/user", h.GetAllUserTransactions)

	mux.HandleFunc("/transactions/{id}/user", h.GetTransactionById)

	return mux
}
