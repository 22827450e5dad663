package payment

import (
	"context"
	"fmt"

	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
	"github.com/smilesniffer/ticketing-backend/internal/payment/daraja"
)

const accountReferencePrefix = "TICKET_ID_"

// AccountReference derives the gateway account reference for a ticket
// purchase. The callback payload does not echo it back, so it cannot be used
// as a reconciliation key.
func AccountReference(ticketID int64) string {
	return fmt.Sprintf("%s%d", accountReferencePrefix, ticketID)
}

// RepositoryAPI is the persistence surface the payment service needs.
type RepositoryAPI interface {
	CreatePayment(p *paymentmodel.Payment) error
	GetByCheckoutRequestID(checkoutRequestID string) (*paymentmodel.Payment, error)
	AppendCallback(cb *paymentmodel.MpesaCallback) error
	ListCallbacks(limit, offset int) ([]*paymentmodel.MpesaCallback, error)
}

// Gateway is the outbound payment gateway surface; satisfied by
// *daraja.Client and by fakes in tests.
type Gateway interface {
	STKPush(ctx context.Context, params daraja.PushParams) (*daraja.STKPushResponse, error)
}

// TicketReader resolves the ticket being paid for.
type TicketReader interface {
	GetTicketByID(id int64) (*ticketmodel.Ticket, error)
}
