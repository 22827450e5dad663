package payment

import (
	"encoding/json"
	"time"
)

const (
	StatusPending  = "pending"
	StatusRejected = "rejected"
	StatusFailed   = "failed"
)

// Payment records one STK push initiation attempt. The gateway-minted
// CheckoutRequestID is the only handle that could ever tie a later callback
// back to this row; no automatic join is performed (see DESIGN.md).
type Payment struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	TicketID          int64           `json:"ticket_id" gorm:"column:ticket_id;not null"`
	AccountReference  string          `json:"account_reference" gorm:"column:account_reference;not null"`
	PhoneNumber       string          `json:"phone_number" gorm:"column:phone_number;not null"`
	Amount            string          `json:"amount" gorm:"column:amount;not null"`
	Status            string          `json:"status" gorm:"column:status;default:pending"`
	CheckoutRequestID string          `json:"checkout_request_id" gorm:"column:checkout_request_id;index"`
	MerchantRequestID string          `json:"merchant_request_id" gorm:"column:merchant_request_id"`
	ResponseCode      string          `json:"response_code" gorm:"column:response_code"`
	ResponseDesc      string          `json:"response_desc" gorm:"column:response_desc"`
	GatewayResponse   json.RawMessage `json:"gateway_response,omitempty" gorm:"column:gateway_response;type:jsonb"`
	CreatedAt         time.Time       `json:"created_at" gorm:"column:created_at;default:now()"`
	UpdatedAt         time.Time       `json:"updated_at" gorm:"column:updated_at;default:now()"`
}

func (Payment) TableName() string {
	return "payments"
}

// MpesaCallback is one row in the append-only callback log. Rows are never
// updated or deleted; the raw stkCallback object is stored verbatim alongside
// the extracted result fields.
type MpesaCallback struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	MerchantRequestID string          `json:"merchant_request_id" gorm:"column:merchant_request_id"`
	CheckoutRequestID string          `json:"checkout_request_id" gorm:"column:checkout_request_id;index"`
	ResultCode        int             `json:"result_code" gorm:"column:result_code;not null"`
	ResultDesc        string          `json:"result_desc" gorm:"column:result_desc"`
	Payload           json.RawMessage `json:"payload" gorm:"column:payload;type:jsonb"`
	ReceivedAt        time.Time       `json:"received_at" gorm:"column:received_at;default:now()"`
}

func (MpesaCallback) TableName() string {
	return "mpesa_callbacks"
}
