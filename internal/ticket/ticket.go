package ticket

import (
	"time"

	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
)

// RepositoryAPI is the persistence surface for tickets.
type RepositoryAPI interface {
	Create(t *ticketmodel.Ticket) error
	GetByID(id int64) (*ticketmodel.Ticket, error)
	GetByQRCodeData(qrCodeData string) (*ticketmodel.Ticket, error)
	GetAll(limit, offset int) ([]*ticketmodel.Ticket, error)
	UpdateIllustration(id int64, url string, expiry *time.Time) error
	Delete(id int64) error
}
