package ticket

import "time"

type Ticket struct {
	ID          int64  `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"column:title;not null"`
	Description string `json:"description" gorm:"column:description"`
	QRCodeData  string `json:"qr_code_data" gorm:"column:qr_code_data;not null;uniqueIndex"`
	// Price is the ticket price as a decimal string; it is passed through to
	// the payment gateway unconverted.
	Price       string `json:"price" gorm:"column:price;not null"`
	EventTime   string `json:"event_time" gorm:"column:event_time"`
	Place       string `json:"place" gorm:"column:place"`
	AttireStyle string `json:"attire_style" gorm:"column:attire_style"`
	OpenTime    string `json:"open_time" gorm:"column:open_time"`
	CloseTime   string `json:"close_time" gorm:"column:close_time"`
	TicketType  string `json:"ticket_type" gorm:"column:ticket_type"`

	IllustrationURL    *string    `json:"illustration_url,omitempty" gorm:"column:illustration_url"`
	IllustrationExpiry *time.Time `json:"illustration_expiry,omitempty" gorm:"column:illustration_expiry"`

	ExpiresAt *time.Time `json:"expires_at,omitempty" gorm:"column:expires_at"`
	IsValid   bool       `json:"is_valid" gorm:"column:is_valid;default:true"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Ticket) TableName() string {
	return "tickets"
}
