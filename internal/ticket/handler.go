package ticket

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
	"github.com/smilesniffer/ticketing-backend/internal/transport"
	"github.com/smilesniffer/ticketing-backend/pkg/logger"

	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	CreateTicket(dto *CreateTicketDTO) (*ticketmodel.Ticket, error)
	GetTicketByID(id int64) (*ticketmodel.Ticket, error)
	GetAllTickets(limit, offset int) ([]*ticketmodel.Ticket, error)
	ValidateTicket(dto *ValidateTicketDTO) (*ValidateTicketResponse, error)
	AttachIllustration(ticketID int64, dto *AttachIllustrationDTO) (*ticketmodel.Ticket, error)
	DeleteTicket(id int64) error
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

func (h *Handler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var dto CreateTicketDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateTicket: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.Service.CreateTicket(&dto)
	if err != nil {
		h.Logger.Error("CreateTicket: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("CreateTicket: ticket created", "ticket_id", ticket.ID)
	h.WriteJSON(w, http.StatusCreated, ticket)
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	ticket, err := h.Service.GetTicketByID(id)
	if err != nil {
		h.Logger.Error("GetTicket: service error", "error", err, "ticket_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) GetAllTickets(w http.ResponseWriter, r *http.Request) {
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

	tickets, err := h.Service.GetAllTickets(limit, offset)
	if err != nil {
		h.Logger.Error("GetAllTickets: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"limit":   limit,
		"offset":  offset,
	})
}

// ValidateTicket answers whether a scanned QR payload belongs to a known,
// still-valid ticket.
func (h *Handler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var dto ValidateTicketDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ValidateTicket: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.ValidateTicket(&dto)
	if err != nil {
		h.Logger.Error("ValidateTicket: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) AttachIllustration(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	var dto AttachIllustrationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AttachIllustration: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.Service.AttachIllustration(id, &dto)
	if err != nil {
		h.Logger.Error("AttachIllustration: service error", "error", err, "ticket_id", id)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ticket)
}

func (h *Handler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteTicket(id); err != nil {
		h.Logger.Error("DeleteTicket: service error", "error", err, "ticket_id", id)
		h.HandleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid ticket ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid ticket ID")
		return 0, false
	}
	return id, true
}
