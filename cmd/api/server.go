package main

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"os"

	"kudipay/internal/api/handlers/transactions"
	"kudipay/internal/api/handlers/wallet"
	mw "kudipay/internal/api/middlewares"
	"kudipay/internal/api/routers"
	"kudipay/internal/repositories"
	"kudipay/internal/repositories/sqlconnect"
	"kudipay/internal/services"
	"kudipay/pkg/cron"
	"kudipay/pkg/utils"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	utils.InitLogger()

	db, err := sqlconnect.ConnectDb()
	if err != nil {
		utils.Logger.Fatal("DB connection failed: ", err)
	}

	paystack, err := services.NewPaystackClient(services.PaystackConfig{
		SecretKey: os.Getenv("PAYSTACK_SECRET_KEY"),
	})
	if err != nil {
		utils.Logger.Fatal("Paystack client init failed: ", err)
	}

	wallets := repositories.NewWalletStore(db)
	ledger := repositories.NewTransactionLedger(db)
	users := repositories.NewUserStore(db)

	walletSvc := services.NewWalletService(wallets, ledger)
	transferSvc := services.NewTransferService(wallets, ledger, users)
	externalSvc := services.NewExternalTransferService(wallets, ledger, users, paystack)
	webhookSvc := services.NewWebhookService(wallets, ledger, users)

	walletHandler := wallet.NewHandler(walletSvc, transferSvc, externalSvc)
	webhookHandler := wallet.NewWebhookHandler(os.Getenv("PAYSTACK_SECRET_KEY"), webhookSvc)
	txnHandler := transactions.NewHandler(walletSvc)

	c := cron.StartCronJob(db)
	defer c.Stop()

	port := os.Getenv("SERVER_PORT")

	router := routers.MainRouter(walletHandler, webhookHandler, txnHandler)
	jwtMiddleware := mw.MiddlewaresExcludePaths(mw.JWTMiddleware, "/wallet/webhook")
	secureMux := jwtMiddleware(mw.SecurityHeaders(router))

	server := &http.Server{
		Addr:    port,
		Handler: secureMux,
		TLSConfig: &tls.Config{
			MinVersion: tls.VersionTLS12,
		},
	}

	fmt.Println("Server is running on port", port)

	cert := os.Getenv("CERT_FILE")
	key := os.Getenv("KEY_FILE")
	if cert != "" && key != "" {
		err = server.ListenAndServeTLS(cert, key)
	} else {
		err = server.ListenAndServe()
	}
	if err != nil {
		log.Fatalln("Error starting the server", err)
	}
}
