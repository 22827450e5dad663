package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	errors "github.com/smilesniffer/ticketing-backend/internal"
	"github.com/smilesniffer/ticketing-backend/internal/core/common/validation"
	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	"github.com/smilesniffer/ticketing-backend/internal/core/events"
	"github.com/smilesniffer/ticketing-backend/internal/payment/daraja"
)

// persistRetries bounds how often the callback append is retried before the
// receiver answers 500 and lets the gateway resend.
const persistRetries = 3

type PaymentService struct {
	gateway    Gateway
	repository RepositoryAPI
	tickets    TicketReader
	eventBus   *events.EventBus
	logger     *slog.Logger
}

func NewPaymentService(gateway Gateway, repository RepositoryAPI, tickets TicketReader, eventBus *events.EventBus, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		gateway:    gateway,
		repository: repository,
		tickets:    tickets,
		eventBus:   eventBus,
		logger:     logger,
	}
}

// InitiatePayment turns a ticket purchase intent into one STK push. Nothing
// is persisted until the gateway has answered; a caller abandoning the call
// mid-flight leaves no local state behind.
func (s *PaymentService) InitiatePayment(ctx context.Context, dto *InitiatePaymentDTO) (*InitiatePaymentResponse, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("payment initiation validation failed", "error", err)
		return nil, err
	}

	ticket, err := s.tickets.GetTicketByID(dto.TicketID)
	if err != nil {
		s.logger.Error("ticket lookup failed", "error", err, "ticket_id", dto.TicketID)
		return nil, err
	}

	priceCheck := validation.NewValidator()
	priceCheck.Field("price", ticket.Price).Required().NumericString(errors.ErrCodeInvalidAmount)
	if appErr := priceCheck.Validate(); appErr != nil {
		s.logger.Error("ticket has no payable price", "ticket_id", ticket.ID)
		return nil, appErr
	}

	params := daraja.PushParams{
		PhoneNumber:      dto.PhoneNumber,
		Amount:           ticket.Price,
		AccountReference: AccountReference(ticket.ID),
		Description:      fmt.Sprintf("Payment for ticket %s", ticket.Title),
	}

	resp, err := s.gateway.STKPush(ctx, params)
	if err != nil {
		// transport and HTTP-level failures arrive here already typed;
		// nothing is recorded for them
		return nil, err
	}

	record := &paymentmodel.Payment{
		TicketID:          ticket.ID,
		AccountReference:  params.AccountReference,
		PhoneNumber:       dto.PhoneNumber,
		Amount:            ticket.Price,
		CheckoutRequestID: resp.CheckoutRequestID,
		MerchantRequestID: resp.MerchantRequestID,
		ResponseCode:      resp.ResponseCode,
		ResponseDesc:      resp.ResponseDescription,
	}
	if raw, marshalErr := json.Marshal(resp); marshalErr == nil {
		record.GatewayResponse = raw
	}

	if resp.ResponseCode != "0" {
		record.Status = paymentmodel.StatusRejected
		if createErr := s.repository.CreatePayment(record); createErr != nil {
			s.logger.Error("failed to record rejected payment attempt",
				"error", createErr, "ticket_id", ticket.ID)
		}
		s.logger.Info("stk push declined by gateway",
			"ticket_id", ticket.ID,
			"response_code", resp.ResponseCode,
			"response_description", resp.ResponseDescription)
		return nil, errors.NewGatewayRejectedError(resp.ResponseCode, resp.ResponseDescription)
	}

	record.Status = paymentmodel.StatusPending
	if createErr := s.repository.CreatePayment(record); createErr != nil {
		// the push is already in flight at the gateway; surface the record
		// failure but keep the checkout id so the caller is not blind
		s.logger.Error("failed to record pending payment",
			"error", createErr,
			"checkout_request_id", resp.CheckoutRequestID)
	}

	s.logger.Info("stk push accepted",
		"ticket_id", ticket.ID,
		"payment_id", record.ID,
		"checkout_request_id", resp.CheckoutRequestID)

	return &InitiatePaymentResponse{
		PaymentID:           record.ID,
		CheckoutRequestID:   resp.CheckoutRequestID,
		ResponseDescription: resp.ResponseDescription,
		CustomerMessage:     resp.CustomerMessage,
	}, nil
}

func (s *PaymentService) GetPaymentByCheckoutID(checkoutRequestID string) (*paymentmodel.Payment, error) {
	p, err := s.repository.GetByCheckoutRequestID(checkoutRequestID)
	if err != nil {
		return nil, errors.ErrPaymentNotFound
	}
	return p, nil
}

// RecordCallback appends one gateway callback to the append-only log. No
// dedup and no correlation lookup happen here; every syntactically valid
// callback is stored as its own row.
func (s *PaymentService) RecordCallback(ctx context.Context, cb *STKCallback) error {
	payload, err := json.Marshal(cb)
	if err != nil {
		return errors.NewInternalError("failed to marshal callback payload", err)
	}

	row := &paymentmodel.MpesaCallback{
		MerchantRequestID: cb.MerchantRequestID,
		CheckoutRequestID: cb.CheckoutRequestID,
		ResultCode:        cb.ResultCode,
		ResultDesc:        cb.ResultDesc,
		Payload:           payload,
	}

	var appendErr error
	for attempt := 1; attempt <= persistRetries; attempt++ {
		appendErr = s.repository.AppendCallback(row)
		if appendErr == nil {
			break
		}
		s.logger.Error("callback append failed",
			"error", appendErr,
			"attempt", attempt,
			"checkout_request_id", cb.CheckoutRequestID)
	}
	if appendErr != nil {
		return errors.NewInternalError("failed to persist callback", appendErr)
	}

	if cb.ResultCode == 0 {
		s.logger.Info("transaction successful",
			"checkout_request_id", cb.CheckoutRequestID,
			"result_desc", cb.ResultDesc)
		s.eventBus.Publish(ctx, events.NewPaymentCompletedEvent(cb.CheckoutRequestID, cb.MerchantRequestID, cb.ResultDesc))
	} else {
		s.logger.Info("transaction failed",
			"checkout_request_id", cb.CheckoutRequestID,
			"result_code", cb.ResultCode,
			"result_desc", cb.ResultDesc)
		s.eventBus.Publish(ctx, events.NewPaymentFailedEvent(cb.CheckoutRequestID, cb.MerchantRequestID, cb.ResultCode, cb.ResultDesc))
	}

	return nil
}

// ListCallbacks exposes the raw callback log for operational inspection.
func (s *PaymentService) ListCallbacks(limit, offset int) ([]*paymentmodel.MpesaCallback, error) {
	return s.repository.ListCallbacks(limit, offset)
}
