package payment

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	"github.com/smilesniffer/ticketing-backend/internal/transport"
	"github.com/smilesniffer/ticketing-backend/pkg/logger"

	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	InitiatePayment(ctx context.Context, dto *InitiatePaymentDTO) (*InitiatePaymentResponse, error)
	GetPaymentByCheckoutID(checkoutRequestID string) (*paymentmodel.Payment, error)
	RecordCallback(ctx context.Context, cb *STKCallback) error
	ListCallbacks(limit, offset int) ([]*paymentmodel.MpesaCallback, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

// InitiatePayment triggers an STK push for a ticket purchase. The synchronous
// reply only acknowledges the push; the payment outcome arrives later on the
// callback endpoint.
func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var dto InitiatePaymentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("InitiatePayment: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.InitiatePayment(r.Context(), &dto)
	if err != nil {
		h.Logger.Error("InitiatePayment: service error", "error", err, "ticket_id", dto.TicketID)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("InitiatePayment: stk push accepted",
		"ticket_id", dto.TicketID,
		"checkout_request_id", resp.CheckoutRequestID)

	h.WriteJSON(w, http.StatusAccepted, resp)
}

func (h *Handler) GetPayment(w http.ResponseWriter, r *http.Request) {
	checkoutRequestID := chi.URLParam(r, "checkoutRequestID")
	if checkoutRequestID == "" {
		h.WriteError(w, http.StatusBadRequest, "missing checkout request ID")
		return
	}

	payment, err := h.Service.GetPaymentByCheckoutID(checkoutRequestID)
	if err != nil {
		h.Logger.Error("GetPayment: service error", "error", err, "checkout_request_id", checkoutRequestID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, payment)
}

// ListCallbacks exposes the append-only callback log, newest first.
func (h *Handler) ListCallbacks(w http.ResponseWriter, r *http.Request) {
	limit := 20
	offset := 0

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	callbacks, err := h.Service.ListCallbacks(limit, offset)
	if err != nil {
		h.Logger.Error("ListCallbacks: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"callbacks": callbacks,
		"limit":     limit,
		"offset":    offset,
	})
}
