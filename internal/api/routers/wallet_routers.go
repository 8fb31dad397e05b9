package routers

import (
	"net/http"

	"kudipay/internal/api/handlers/wallet"
)

func walletRouter(h *wallet.Handler, webhook *wallet.WebhookHandler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/wallet/balance", h.GetBalance)
	mux.HandleFunc("/wallet/fund", h.FundWallet)
	mux.HandleFunc("/wallet/withdraw", h.WithdrawToBank)
	mux.HandleFunc("/wallet/transfer", h.Transfer)
	mux.HandleFunc("/wallet/pay-bill", h.PayBill)
	mux.HandleFunc("/wallet/airtime", h.BuyAirtime)
	mux.HandleFunc("/wallet/external-transfer", h.ExternalBankTransfer)

	mux.HandleFunc("/wallet/webhook", webhook.Handle)

	return mux
}
