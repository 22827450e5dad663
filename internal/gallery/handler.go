package gallery

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	gallerymodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/gallery"
	"github.com/smilesniffer/ticketing-backend/internal/transport"
	"github.com/smilesniffer/ticketing-backend/pkg/logger"
)

type ServiceAPI interface {
	AddPicture(dto *AddPictureDTO) (*gallerymodel.Picture, error)
	ActivePictures(limit, offset int) ([]*gallerymodel.Picture, error)
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

func (h *Handler) AddPicture(w http.ResponseWriter, r *http.Request) {
	var dto AddPictureDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("AddPicture: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	picture, err := h.Service.AddPicture(&dto)
	if err != nil {
		h.Logger.Error("AddPicture: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, picture)
}

func (h *Handler) GetPictures(w http.ResponseWriter, r *http.Request) {
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

	pictures, err := h.Service.ActivePictures(limit, offset)
	if err != nil {
		h.Logger.Error("GetPictures: service error", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pictures": pictures,
		"limit":    limit,
		"offset":   offset,
	})
}
