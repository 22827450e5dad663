package ticket

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	errs "github.com/smilesniffer/ticketing-backend/internal"
	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
	"gorm.io/gorm"
)

type TicketService struct {
	repository RepositoryAPI
	logger     *slog.Logger
}

func NewTicketService(repository RepositoryAPI, logger *slog.Logger) *TicketService {
	return &TicketService{
		repository: repository,
		logger:     logger,
	}
}

func (s *TicketService) CreateTicket(dto *CreateTicketDTO) (*ticketmodel.Ticket, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("ticket validation failed", "error", err)
		return nil, err
	}

	qrCodeData := dto.QRCodeData
	if qrCodeData == "" {
		qrCodeData = uuid.NewString()
	}

	ticket := &ticketmodel.Ticket{
		Title:       dto.Title,
		Description: dto.Description,
		QRCodeData:  qrCodeData,
		Price:       dto.Price,
		EventTime:   dto.EventTime,
		Place:       dto.Place,
		AttireStyle: dto.AttireStyle,
		OpenTime:    dto.OpenTime,
		CloseTime:   dto.CloseTime,
		TicketType:  dto.TicketType,
		ExpiresAt:   dto.ExpiresAt,
		IsValid:     true,
	}

	if err := s.repository.Create(ticket); err != nil {
		s.logger.Error("failed to create ticket", "error", err, "title", dto.Title)
		return nil, errs.NewInternalError("failed to create ticket", err)
	}

	s.logger.Info("ticket created", "ticket_id", ticket.ID, "title", ticket.Title)
	return ticket, nil
}

func (s *TicketService) GetTicketByID(id int64) (*ticketmodel.Ticket, error) {
	ticket, err := s.repository.GetByID(id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errs.ErrTicketNotFound
		}
		return nil, errs.NewInternalError("failed to fetch ticket", err)
	}
	return ticket, nil
}

func (s *TicketService) GetAllTickets(limit, offset int) ([]*ticketmodel.Ticket, error) {
	tickets, err := s.repository.GetAll(limit, offset)
	if err != nil {
		return nil, errs.NewInternalError("failed to fetch tickets", err)
	}
	return tickets, nil
}

// ValidateTicket checks a decoded QR payload against the store. The QR decode
// itself happens on the scanning device; this service only sees the text.
func (s *TicketService) ValidateTicket(dto *ValidateTicketDTO) (*ValidateTicketResponse, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ticket, err := s.repository.GetByQRCodeData(dto.QRCodeData)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &ValidateTicketResponse{Valid: false, Reason: "no ticket matches this code"}, nil
		}
		return nil, errs.NewInternalError("failed to validate ticket", err)
	}

	if !ticket.IsValid {
		return &ValidateTicketResponse{Valid: false, TicketID: ticket.ID, Reason: "ticket has been invalidated"}, nil
	}
	if ticket.ExpiresAt != nil && ticket.ExpiresAt.Before(time.Now()) {
		return &ValidateTicketResponse{Valid: false, TicketID: ticket.ID, Reason: "ticket has expired"}, nil
	}

	return &ValidateTicketResponse{Valid: true, TicketID: ticket.ID, Title: ticket.Title}, nil
}

// AttachIllustration records the object-storage URL of an uploaded
// illustration; the upload itself happens outside this service.
func (s *TicketService) AttachIllustration(ticketID int64, dto *AttachIllustrationDTO) (*ticketmodel.Ticket, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.GetTicketByID(ticketID); err != nil {
		return nil, err
	}

	if err := s.repository.UpdateIllustration(ticketID, dto.IllustrationURL, dto.ExpirationDate); err != nil {
		s.logger.Error("failed to attach illustration", "error", err, "ticket_id", ticketID)
		return nil, errs.NewInternalError("failed to attach illustration", err)
	}

	s.logger.Info("illustration attached", "ticket_id", ticketID)
	return s.GetTicketByID(ticketID)
}

func (s *TicketService) DeleteTicket(id int64) error {
	if _, err := s.GetTicketByID(id); err != nil {
		return err
	}

	if err := s.repository.Delete(id); err != nil {
		s.logger.Error("failed to delete ticket", "error", err, "ticket_id", id)
		return errs.NewInternalError("failed to delete ticket", err)
	}

	s.logger.Info("ticket deleted", "ticket_id", id)
	return nil
}
