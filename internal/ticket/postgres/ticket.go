package postgres

import (
	"time"

	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
	ticketpkg "github.com/smilesniffer/ticketing-backend/internal/ticket"
	"gorm.io/gorm"
)

type TicketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) ticketpkg.RepositoryAPI {
	return &TicketRepository{
		db: db,
	}
}

func (r *TicketRepository) Create(t *ticketmodel.Ticket) error {
	return r.db.Create(t).Error
}

func (r *TicketRepository) GetByID(id int64) (*ticketmodel.Ticket, error) {
	var t ticketmodel.Ticket
	err := r.db.First(&t, id).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) GetByQRCodeData(qrCodeData string) (*ticketmodel.Ticket, error) {
	var t ticketmodel.Ticket
	err := r.db.Where("qr_code_data = ?", qrCodeData).First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TicketRepository) GetAll(limit, offset int) ([]*ticketmodel.Ticket, error) {
	var tickets []*ticketmodel.Ticket
	err := r.db.Order("created_at DESC").Limit(limit).Offset(offset).Find(&tickets).Error
	return tickets, err
}

func (r *TicketRepository) UpdateIllustration(id int64, url string, expiry *time.Time) error {
	updates := map[string]interface{}{
		"illustration_url": url,
		"updated_at":       time.Now(),
	}
	if expiry != nil {
		updates["illustration_expiry"] = *expiry
	}
	return r.db.Model(&ticketmodel.Ticket{}).Where("id = ?", id).Updates(updates).Error
}

func (r *TicketRepository) Delete(id int64) error {
	return r.db.Delete(&ticketmodel.Ticket{}, id).Error
}
