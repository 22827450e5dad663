package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypePaymentCompleted = "payment.completed"
	EventTypePaymentFailed    = "payment.failed"
)

// PaymentCompletedEvent is published when the gateway reports a successful
// push payment (ResultCode 0). Downstream reconciliation, e.g. marking a
// ticket paid, subscribes here.
type PaymentCompletedEvent struct {
	BaseEvent
	CheckoutRequestID string
	MerchantRequestID string
	ResultDesc        string
}

func NewPaymentCompletedEvent(checkoutRequestID, merchantRequestID, resultDesc string) *PaymentCompletedEvent {
	return &PaymentCompletedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypePaymentCompleted,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"checkout_request_id": checkoutRequestID,
				"merchant_request_id": merchantRequestID,
				"result_desc":         resultDesc,
			},
		},
		CheckoutRequestID: checkoutRequestID,
		MerchantRequestID: merchantRequestID,
		ResultDesc:        resultDesc,
	}
}

// PaymentFailedEvent is published when the gateway reports a non-zero
// ResultCode. No retry is triggered; the gateway owns retry semantics for
// failed pushes.
type PaymentFailedEvent struct {
	BaseEvent
	CheckoutRequestID string
	MerchantRequestID string
	ResultCode        int
	ResultDesc        string
}

func NewPaymentFailedEvent(checkoutRequestID, merchantRequestID string, resultCode int, resultDesc string) *PaymentFailedEvent {
	return &PaymentFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.NewString(),
			Type:      EventTypePaymentFailed,
			Timestamp: time.Now().UTC(),
			Data: map[string]interface{}{
				"checkout_request_id": checkoutRequestID,
				"merchant_request_id": merchantRequestID,
				"result_code":         resultCode,
				"result_desc":         resultDesc,
			},
		},
		CheckoutRequestID: checkoutRequestID,
		MerchantRequestID: merchantRequestID,
		ResultCode:        resultCode,
		ResultDesc:        resultDesc,
	}
}
