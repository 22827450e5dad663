package payment_test

import (
	"context"
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/smilesniffer/ticketing-backend/internal"
	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	ticketmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/ticket"
	"github.com/smilesniffer/ticketing-backend/internal/core/events"
	"github.com/smilesniffer/ticketing-backend/internal/payment"
	"github.com/smilesniffer/ticketing-backend/internal/payment/daraja"
)

var _ = ginkgo.Describe("AccountReference", func() {
	ginkgo.It("prefixes the ticket id", func() {
		gomega.Expect(payment.AccountReference(42)).To(gomega.Equal("TICKET_ID_42"))
	})
})

var _ = ginkgo.Describe("PaymentService", func() {
	var (
		gateway *fakeGateway
		repo    *fakeRepository
		tickets *fakeTicketReader
		service *payment.PaymentService
	)

	acceptedResponse := func() *daraja.STKPushResponse {
		return &daraja.STKPushResponse{
			MerchantRequestID:   "29115-34620561-1",
			CheckoutRequestID:   "ws_CO_191220191020363925",
			ResponseCode:        "0",
			ResponseDescription: "Success. Request accepted for processing",
			CustomerMessage:     "Success. Request accepted for processing",
		}
	}

	ginkgo.BeforeEach(func() {
		gateway = &fakeGateway{response: acceptedResponse()}
		repo = &fakeRepository{}
		tickets = &fakeTicketReader{
			ticket: &ticketmodel.Ticket{
				ID:    42,
				Title: "Jazz Night",
				Price: "500",
			},
		}
		lg := testLogger()
		service = payment.NewPaymentService(gateway, repo, tickets, events.NewEventBus(lg), lg)
	})

	ginkgo.Describe("InitiatePayment", func() {
		ginkgo.It("rejects malformed phone numbers before any gateway call", func() {
			invalid := []string{
				"",
				"12345",
				"0712345",
				"07123456789",
				"0612345678",
				"+254812345678",
				"254712345678",
				"+2547123456789",
				"07 12345678",
			}
			for _, phone := range invalid {
				_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
					TicketID:    42,
					PhoneNumber: phone,
				})
				gomega.Expect(err).To(gomega.HaveOccurred(), "phone %q should be rejected", phone)

				appErr, ok := apperrors.IsAppError(err)
				gomega.Expect(ok).To(gomega.BeTrue())
				gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
			}
			gomega.Expect(gateway.callCount()).To(gomega.Equal(0))
			gomega.Expect(repo.paymentCount()).To(gomega.Equal(0))
		})

		ginkgo.It("accepts both local and international phone forms", func() {
			for _, phone := range []string{"0712345678", "+254712345678"} {
				_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
					TicketID:    42,
					PhoneNumber: phone,
				})
				gomega.Expect(err).ToNot(gomega.HaveOccurred(), "phone %q should be accepted", phone)
			}
			gomega.Expect(gateway.callCount()).To(gomega.Equal(2))
		})

		ginkgo.It("fails on an unknown ticket without calling the gateway", func() {
			_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    999,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrTicketNotFound))
			gomega.Expect(gateway.callCount()).To(gomega.Equal(0))
		})

		ginkgo.It("fails on a non-numeric ticket price without calling the gateway", func() {
			tickets.ticket.Price = "free"

			_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    42,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeValidation))
			gomega.Expect(gateway.callCount()).To(gomega.Equal(0))
		})

		ginkgo.It("derives the push parameters from the ticket", func() {
			_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    42,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())

			gomega.Expect(gateway.lastParams.AccountReference).To(gomega.Equal("TICKET_ID_42"))
			gomega.Expect(gateway.lastParams.Amount).To(gomega.Equal("500"))
			gomega.Expect(gateway.lastParams.Description).To(gomega.ContainSubstring("Jazz Night"))
		})

		ginkgo.It("records a pending payment when the gateway accepts the push", func() {
			resp, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    42,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(resp.CheckoutRequestID).To(gomega.Equal("ws_CO_191220191020363925"))

			gomega.Expect(repo.paymentCount()).To(gomega.Equal(1))
			gomega.Expect(repo.payments[0].Status).To(gomega.Equal(paymentmodel.StatusPending))
			gomega.Expect(repo.payments[0].CheckoutRequestID).To(gomega.Equal("ws_CO_191220191020363925"))
		})

		ginkgo.It("records a rejected payment and surfaces the gateway description verbatim", func() {
			gateway.response = &daraja.STKPushResponse{
				CheckoutRequestID:   "ws_CO_1",
				ResponseCode:        "1",
				ResponseDescription: "The balance is insufficient for the transaction",
			}

			_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    42,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Code).To(gomega.Equal(apperrors.ErrCodeGatewayRejected))

			details, ok := appErr.Details.(map[string]string)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(details["response_description"]).To(gomega.Equal("The balance is insufficient for the transaction"))

			gomega.Expect(repo.paymentCount()).To(gomega.Equal(1))
			gomega.Expect(repo.payments[0].Status).To(gomega.Equal(paymentmodel.StatusRejected))
		})

		ginkgo.It("records nothing when the gateway is unreachable", func() {
			gateway.err = apperrors.NewTransportError("failed to reach stk push endpoint", errors.New("connection refused"))

			_, err := service.InitiatePayment(context.Background(), &payment.InitiatePaymentDTO{
				TicketID:    42,
				PhoneNumber: "0712345678",
			})
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeTransport))
			gomega.Expect(repo.paymentCount()).To(gomega.Equal(0))
		})
	})

	ginkgo.Describe("GetPaymentByCheckoutID", func() {
		ginkgo.It("maps a miss to the payment not found error", func() {
			_, err := service.GetPaymentByCheckoutID("ws_CO_missing")
			gomega.Expect(err).To(gomega.MatchError(apperrors.ErrPaymentNotFound))
		})
	})

	ginkgo.Describe("RecordCallback", func() {
		callback := func() *payment.STKCallback {
			return &payment.STKCallback{
				MerchantRequestID: "29115-34620561-1",
				CheckoutRequestID: "ws_CO_191220191020363925",
				ResultCode:        0,
				ResultDesc:        "The service request is processed successfully.",
			}
		}

		ginkgo.It("appends exactly one row per callback", func() {
			err := service.RecordCallback(context.Background(), callback())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.callbackCount()).To(gomega.Equal(1))
			gomega.Expect(repo.callbacks[0].ResultCode).To(gomega.Equal(0))
			gomega.Expect(repo.callbacks[0].Payload).ToNot(gomega.BeEmpty())
		})

		ginkgo.It("retries a failing append and succeeds within the budget", func() {
			repo.appendErr = errors.New("connection reset")
			repo.appendFailures = 2

			err := service.RecordCallback(context.Background(), callback())
			gomega.Expect(err).ToNot(gomega.HaveOccurred())
			gomega.Expect(repo.appendAttempts).To(gomega.Equal(3))
			gomega.Expect(repo.callbackCount()).To(gomega.Equal(1))
		})

		ginkgo.It("gives up after three failed append attempts", func() {
			repo.appendErr = errors.New("database is down")
			repo.appendFailures = -1

			err := service.RecordCallback(context.Background(), callback())
			gomega.Expect(err).To(gomega.HaveOccurred())

			appErr, ok := apperrors.IsAppError(err)
			gomega.Expect(ok).To(gomega.BeTrue())
			gomega.Expect(appErr.Type).To(gomega.Equal(apperrors.ErrorTypeInternal))
			gomega.Expect(repo.appendAttempts).To(gomega.Equal(3))
			gomega.Expect(repo.callbackCount()).To(gomega.Equal(0))
		})
	})
})
