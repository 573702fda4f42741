// Package server exposes the engine's HTTP surface: the payment gateway's
// confirmation webhook and a health endpoint. Request routing stays thin;
// signature verification and charge initiation belong to the gateway
// integration outside this core.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tundeajayi/esusu/internal/service"
)

// PaymentEvent is the gateway's "payment confirmed" payload.
type PaymentEvent struct {
	// ContributionID references the contribution the charge settles.
	ContributionID string `json:"contribution_id"`

	// TransactionRef is the gateway's transaction reference, recorded on
	// the contribution for reconciliation.
	TransactionRef string `json:"transaction_ref"`
}

// WebhookHandler receives payment confirmations and feeds them to the
// payment processor.
type WebhookHandler struct {
	payments *service.PaymentService
}

// NewWebhookHandler creates a WebhookHandler.
func NewWebhookHandler(payments *service.PaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

// HandlePaymentConfirmed processes a gateway confirmation. It always answers
// 200 to a well-formed request, even when processing fails: the gateway's
// retry policy is not a correctness mechanism here, and failures are logged
// for manual reconciliation instead.
func (h *WebhookHandler) HandlePaymentConfirmed(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var event PaymentEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		slog.Warn("malformed webhook payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if event.ContributionID == "" {
		slog.Warn("webhook payload missing contribution_id")
		http.Error(w, "contribution_id required", http.StatusBadRequest)
		return
	}

	processed, err := h.payments.ProcessContributionPayment(r.Context(), event.ContributionID, event.TransactionRef)
	if err != nil {
		slog.Error("payment confirmation processing failed",
			"contribution_id", event.ContributionID,
			"transaction_ref", event.TransactionRef,
			"error", err,
		)
	} else if !processed {
		slog.Info("payment confirmation was a no-op", "contribution_id", event.ContributionID)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "received"})
}

// HandleHealth reports liveness.
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
