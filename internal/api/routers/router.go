package routers

import (
	"net/http"

	"kudipay/internal/api/handlers/transactions"
	"kudipay/internal/api/handlers/wallet"
)

func MainRouter(wh *wallet.Handler, webhook *wallet.WebhookHandler, th *transactions.Handler) *http.ServeMux {

	mux := http.NewServeMux()

	wRouter := walletRouter(wh, webhook)
	mux.Handle("/wallet/", wRouter)

	tRouter := transactionsRouter(th)
	mux.Handle("/transactions/", tRouter)

	return mux
}
