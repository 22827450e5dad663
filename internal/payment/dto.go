package payment

import (
	"regexp"

	errors "github.com/smilesniffer/ticketing-backend/internal"
	"github.com/smilesniffer/ticketing-backend/internal/core/common/validation"
)

// phonePattern accepts Kenyan mobile numbers in +2547XXXXXXXX or 07XXXXXXXX
// form; anything else is rejected before a single network call is made.
var phonePattern = regexp.MustCompile(`^(\+254|0)7[0-9]{8}$`)

type InitiatePaymentDTO struct {
	TicketID    int64  `json:"ticket_id"`
	PhoneNumber string `json:"phone_number"`
}

func (d *InitiatePaymentDTO) Validate() error {
	validator := validation.NewValidator()

	validator.Field("ticket_id", d.TicketID).Required()
	validator.Field("phone_number", d.PhoneNumber).
		Required().
		Matches(phonePattern, "phone number must match +2547XXXXXXXX or 07XXXXXXXX", errors.ErrCodeInvalidPhone)

	if appErr := validator.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

type InitiatePaymentResponse struct {
	PaymentID           int64  `json:"payment_id"`
	CheckoutRequestID   string `json:"checkout_request_id"`
	ResponseDescription string `json:"response_description"`
	CustomerMessage     string `json:"customer_message,omitempty"`
}

// Callback envelope as delivered by the gateway. The only structural
// guarantee the contract makes is that Body.stkCallback exists.

type CallbackMetadataItem struct {
	Name  string      `json:"Name"`
	Value interface{} `json:"Value,omitempty"`
}

type CallbackMetadata struct {
	Item []CallbackMetadataItem `json:"Item"`
}

type STKCallback struct {
	MerchantRequestID string            `json:"MerchantRequestID"`
	CheckoutRequestID string            `json:"CheckoutRequestID"`
	ResultCode        int               `json:"ResultCode"`
	ResultDesc        string            `json:"ResultDesc"`
	CallbackMetadata  *CallbackMetadata `json:"CallbackMetadata,omitempty"`
}

type STKCallbackEnvelope struct {
	Body struct {
		STKCallback *STKCallback `json:"stkCallback"`
	} `json:"Body"`
}
