package payment

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/smilesniffer/ticketing-backend/internal/transport"
)

// Fixed response bodies for the gateway. The gateway must never see a non-2xx
// for a syntactically valid callback, or it will resend it under its own
// retry policy.
const (
	ackBody          = "Callback received and processed successfully."
	malformedBody    = "Invalid data format"
	persistErrorBody = "Failed to process callback"
)

// WebhookHandler is the single network-facing receiver for gateway callbacks.
// It is stateless; each inbound request walks Received -> Validated ->
// Persisted -> Acknowledged, or short-circuits to Rejected with a 400.
type WebhookHandler struct {
	*transport.BaseHandler
	paymentService ServiceAPI
	logger         *slog.Logger
}

func NewWebhookHandler(baseHandler *transport.BaseHandler, paymentService ServiceAPI, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    baseHandler,
		paymentService: paymentService,
		logger:         logger,
	}
}

func (h *WebhookHandler) HandleMpesaCallback(w http.ResponseWriter, r *http.Request) {
	var envelope STKCallbackEnvelope
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil {
		h.logger.Error("invalid callback data format", "error", err)
		h.writePlainText(w, http.StatusBadRequest, malformedBody)
		return
	}

	callback := envelope.Body.STKCallback
	if callback == nil {
		h.logger.Error("callback missing Body.stkCallback")
		h.writePlainText(w, http.StatusBadRequest, malformedBody)
		return
	}

	h.logger.Info("received mpesa callback",
		"checkout_request_id", callback.CheckoutRequestID,
		"result_code", callback.ResultCode)

	if err := h.paymentService.RecordCallback(r.Context(), callback); err != nil {
		// exhausted persistence retries; a 5xx invites the gateway to resend
		h.logger.Error("failed to record callback",
			"error", err,
			"checkout_request_id", callback.CheckoutRequestID)
		h.writePlainText(w, http.StatusInternalServerError, persistErrorBody)
		return
	}

	h.writePlainText(w, http.StatusOK, ackBody)
}

func (h *WebhookHandler) writePlainText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(body)); err != nil {
		h.logger.Error("failed to write callback response", "error", err)
	}
}
