package wallet

import (
	"encoding/json"
	"io"
	"net/http"

	"kudipay/internal/services"
	"kudipay/pkg/utils"
)

// WebhookHandler receives Paystack notifications. The signature is checked
// over the exact raw bytes before anything is parsed; a 200 tells Paystack to
// stop redelivering, a 5xx invites another attempt.
type WebhookHandler struct {
	secret string
	svc    *services.WebhookService
}

func NewWebhookHandler(secret string, svc *services.WebhookService) *WebhookHandler {
	return &WebhookHandler{secret: secret, svc: svc}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		utils.WriteError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		utils.WriteError(w, "failed to read request body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	sig := r.Header.Get("X-Paystack-Signature")
	if !utils.VerifyPaystackSignature(h.secret, sig, body) {
		utils.Logger.Warn("invalid paystack signature")
		utils.WriteError(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	var event services.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		utils.WriteError(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := h.svc.HandleEvent(r.Context(), event); err != nil {
		utils.Logger.Errorf("failed to process paystack event %s: %v", event.Event, err)
		utils.WriteError(w, "failed to process event", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}
