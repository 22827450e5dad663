package ticket

import (
	"time"

	errors "github.com/smilesniffer/ticketing-backend/internal"
	"github.com/smilesniffer/ticketing-backend/internal/core/common/validation"
)

type CreateTicketDTO struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Price       string `json:"price"`
	EventTime   string `json:"event_time"`
	Place       string `json:"place"`
	AttireStyle string `json:"attire_style"`
	OpenTime    string `json:"open_time"`
	CloseTime   string `json:"close_time"`
	TicketType  string `json:"ticket_type"`
	// QRCodeData may be left empty, in which case the service mints one.
	QRCodeData string     `json:"qr_code_data,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (d *CreateTicketDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("title", d.Title).Required().MaxLength(200)
	validator.Field("price", d.Price).Required().NumericString(errors.ErrCodeInvalidAmount)
	validator.Field("description", d.Description).MaxLength(2000)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ValidateTicketDTO struct {
	QRCodeData string `json:"qr_code_data"`
}

func (d *ValidateTicketDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("qr_code_data", d.QRCodeData).Required()

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type ValidateTicketResponse struct {
	Valid    bool   `json:"valid"`
	TicketID int64  `json:"ticket_id,omitempty"`
	Title    string `json:"title,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

type AttachIllustrationDTO struct {
	IllustrationURL string     `json:"illustration_url"`
	ExpirationDate  *time.Time `json:"expiration_date,omitempty"`
}

func (d *AttachIllustrationDTO) Validate() error {
	validator := validation.NewValidator()
	validator.Field("illustration_url", d.IllustrationURL).Required().MaxLength(2048)

	if d.ExpirationDate != nil {
		validator.Field("expiration_date", *d.ExpirationDate).NotPast()
	}

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
