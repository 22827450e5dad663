package payment_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi"
	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	apperrors "github.com/smilesniffer/ticketing-backend/internal"
	paymentmodel "github.com/smilesniffer/ticketing-backend/internal/core/datamodel/payment"
	"github.com/smilesniffer/ticketing-backend/internal/payment"
)

type mockPaymentService struct {
	initiateResp *payment.InitiatePaymentResponse
	initiateErr  error
	getResp      *paymentmodel.Payment
	getErr       error
	listResp     []*paymentmodel.MpesaCallback
	listErr      error
}

func (m *mockPaymentService) InitiatePayment(_ context.Context, _ *payment.InitiatePaymentDTO) (*payment.InitiatePaymentResponse, error) {
	return m.initiateResp, m.initiateErr
}

func (m *mockPaymentService) GetPaymentByCheckoutID(_ string) (*paymentmodel.Payment, error) {
	return m.getResp, m.getErr
}

func (m *mockPaymentService) RecordCallback(_ context.Context, _ *payment.STKCallback) error {
	return nil
}

func (m *mockPaymentService) ListCallbacks(_, _ int) ([]*paymentmodel.MpesaCallback, error) {
	return m.listResp, m.listErr
}

var _ = ginkgo.Describe("Payment Handler", func() {
	var (
		service *mockPaymentService
		router  *chi.Mux
	)

	ginkgo.BeforeEach(func() {
		service = &mockPaymentService{}
		handler := payment.NewHandler(service)
		router = chi.NewRouter()
		router.Post("/payments/stk-push", handler.InitiatePayment)
		router.Get("/payments/{checkoutRequestID}", handler.GetPayment)
		router.Get("/payments-callbacks", handler.ListCallbacks)
	})

	ginkgo.Describe("InitiatePayment", func() {
		ginkgo.It("answers 202 when the push is accepted", func() {
			service.initiateResp = &payment.InitiatePaymentResponse{
				PaymentID:           1,
				CheckoutRequestID:   "ws_CO_191220191020363925",
				ResponseDescription: "Success. Request accepted for processing",
			}

			req := httptest.NewRequest(http.MethodPost, "/payments/stk-push",
				strings.NewReader(`{"ticket_id": 42, "phone_number": "0712345678"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusAccepted))

			var resp payment.InitiatePaymentResponse
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &resp)).To(gomega.Succeed())
			gomega.Expect(resp.CheckoutRequestID).To(gomega.Equal("ws_CO_191220191020363925"))
		})

		ginkgo.It("answers 400 on an unreadable body", func() {
			req := httptest.NewRequest(http.MethodPost, "/payments/stk-push", strings.NewReader(`{`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		})

		ginkgo.It("answers 400 with field details on a validation failure", func() {
			service.initiateErr = apperrors.NewValidationFieldError("phone_number",
				"phone number must match +2547XXXXXXXX or 07XXXXXXXX", apperrors.ErrCodeInvalidPhone)

			req := httptest.NewRequest(http.MethodPost, "/payments/stk-push",
				strings.NewReader(`{"ticket_id": 42, "phone_number": "nope"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("phone_number"))
		})

		ginkgo.It("answers 422 when the gateway declined the push", func() {
			service.initiateErr = apperrors.NewGatewayRejectedError("1", "The balance is insufficient for the transaction")

			req := httptest.NewRequest(http.MethodPost, "/payments/stk-push",
				strings.NewReader(`{"ticket_id": 42, "phone_number": "0712345678"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusUnprocessableEntity))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("The balance is insufficient for the transaction"))
		})

		ginkgo.It("answers 502 when the gateway was unreachable", func() {
			service.initiateErr = apperrors.NewTransportError("failed to reach stk push endpoint", nil)

			req := httptest.NewRequest(http.MethodPost, "/payments/stk-push",
				strings.NewReader(`{"ticket_id": 42, "phone_number": "0712345678"}`))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadGateway))
		})
	})

	ginkgo.Describe("GetPayment", func() {
		ginkgo.It("returns the payment record", func() {
			service.getResp = &paymentmodel.Payment{
				ID:                1,
				CheckoutRequestID: "ws_CO_191220191020363925",
				Status:            paymentmodel.StatusPending,
			}

			req := httptest.NewRequest(http.MethodGet, "/payments/ws_CO_191220191020363925", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
			gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("ws_CO_191220191020363925"))
		})

		ginkgo.It("answers 404 for an unknown checkout request ID", func() {
			service.getErr = apperrors.ErrPaymentNotFound

			req := httptest.NewRequest(http.MethodGet, "/payments/ws_CO_missing", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
		})
	})

	ginkgo.Describe("ListCallbacks", func() {
		ginkgo.It("returns the callback log with paging echoed back", func() {
			service.listResp = []*paymentmodel.MpesaCallback{
				{ID: 2, CheckoutRequestID: "ws_CO_2", ResultCode: 1032},
				{ID: 1, CheckoutRequestID: "ws_CO_1", ResultCode: 0},
			}

			req := httptest.NewRequest(http.MethodGet, "/payments-callbacks?limit=10", nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

			var body struct {
				Callbacks []*paymentmodel.MpesaCallback `json:"callbacks"`
				Limit     int                           `json:"limit"`
			}
			gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(gomega.Succeed())
			gomega.Expect(body.Callbacks).To(gomega.HaveLen(2))
			gomega.Expect(body.Limit).To(gomega.Equal(10))
		})
	})
})
