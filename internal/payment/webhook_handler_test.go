package payment_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/smilesniffer/ticketing-backend/internal/core/events"
	"github.com/smilesniffer/ticketing-backend/internal/payment"
	"github.com/smilesniffer/ticketing-backend/internal/transport"
)

const successCallbackBody = `{
	"Body": {
		"stkCallback": {
			"MerchantRequestID": "29115-34620561-1",
			"CheckoutRequestID": "ws_CO_191220191020363925",
			"ResultCode": 0,
			"ResultDesc": "The service request is processed successfully.",
			"CallbackMetadata": {
				"Item": [
					{"Name": "Amount", "Value": 500.00},
					{"Name": "MpesaReceiptNumber", "Value": "NLJ7RT61SV"},
					{"Name": "TransactionDate", "Value": 20191219102115},
					{"Name": "PhoneNumber", "Value": 254712345678}
				]
			}
		}
	}
}`

var _ = ginkgo.Describe("WebhookHandler", func() {
	var (
		repo    *fakeRepository
		handler *payment.WebhookHandler
	)

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/mpesa-callback", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		handler.HandleMpesaCallback(rec, req)
		return rec
	}

	ginkgo.BeforeEach(func() {
		repo = &fakeRepository{}
		lg := testLogger()
		service := payment.NewPaymentService(&fakeGateway{}, repo, &fakeTicketReader{}, events.NewEventBus(lg), lg)
		handler = payment.NewWebhookHandler(transport.NewBaseHandler(lg), service, lg)
	})

	ginkgo.It("persists a successful callback and acknowledges with 200 plain text", func() {
		rec := post(successCallbackBody)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Header().Get("Content-Type")).To(gomega.HavePrefix("text/plain"))
		gomega.Expect(rec.Body.String()).To(gomega.Equal("Callback received and processed successfully."))

		gomega.Expect(repo.callbackCount()).To(gomega.Equal(1))
		row := repo.callbacks[0]
		gomega.Expect(row.CheckoutRequestID).To(gomega.Equal("ws_CO_191220191020363925"))
		gomega.Expect(row.MerchantRequestID).To(gomega.Equal("29115-34620561-1"))
		gomega.Expect(row.ResultCode).To(gomega.Equal(0))
	})

	ginkgo.It("stores the raw callback payload alongside the extracted fields", func() {
		post(successCallbackBody)

		gomega.Expect(repo.callbackCount()).To(gomega.Equal(1))

		var stored payment.STKCallback
		gomega.Expect(json.Unmarshal(repo.callbacks[0].Payload, &stored)).To(gomega.Succeed())
		gomega.Expect(stored.ResultDesc).To(gomega.Equal("The service request is processed successfully."))
		gomega.Expect(stored.CallbackMetadata).ToNot(gomega.BeNil())
		gomega.Expect(stored.CallbackMetadata.Item).To(gomega.HaveLen(4))
	})

	ginkgo.It("rejects an empty object with 400 and persists nothing", func() {
		rec := post(`{}`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(rec.Body.String()).To(gomega.Equal("Invalid data format"))
		gomega.Expect(repo.callbackCount()).To(gomega.Equal(0))
	})

	ginkgo.It("rejects an envelope without stkCallback with 400 and persists nothing", func() {
		rec := post(`{"Body": {}}`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(rec.Body.String()).To(gomega.Equal("Invalid data format"))
		gomega.Expect(repo.callbackCount()).To(gomega.Equal(0))
	})

	ginkgo.It("rejects a body that is not JSON with 400 and persists nothing", func() {
		rec := post(`this is not json`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
		gomega.Expect(repo.callbackCount()).To(gomega.Equal(0))
	})

	ginkgo.It("persists a cancellation callback with its result description intact", func() {
		rec := post(`{
			"Body": {
				"stkCallback": {
					"MerchantRequestID": "29115-34620561-2",
					"CheckoutRequestID": "ws_CO_191220191020363926",
					"ResultCode": 1032,
					"ResultDesc": "Request cancelled by user"
				}
			}
		}`)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
		gomega.Expect(rec.Body.String()).To(gomega.Equal("Callback received and processed successfully."))

		gomega.Expect(repo.callbackCount()).To(gomega.Equal(1))
		row := repo.callbacks[0]
		gomega.Expect(row.ResultCode).To(gomega.Equal(1032))
		gomega.Expect(row.ResultDesc).To(gomega.Equal("Request cancelled by user"))
	})

	ginkgo.It("answers 500 when persistence keeps failing", func() {
		repo.appendErr = errors.New("database is down")
		repo.appendFailures = -1

		rec := post(successCallbackBody)

		gomega.Expect(rec.Code).To(gomega.Equal(http.StatusInternalServerError))
		gomega.Expect(rec.Body.String()).To(gomega.Equal("Failed to process callback"))
		gomega.Expect(repo.callbackCount()).To(gomega.Equal(0))
	})

	ginkgo.It("appends exactly one row per callback under concurrent delivery", func() {
		const deliveries = 25

		var wg sync.WaitGroup
		codes := make([]int, deliveries)
		for i := 0; i < deliveries; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				body := fmt.Sprintf(`{
					"Body": {
						"stkCallback": {
							"MerchantRequestID": "merchant-%d",
							"CheckoutRequestID": "ws_CO_%d",
							"ResultCode": 0,
							"ResultDesc": "The service request is processed successfully."
						}
					}
				}`, n, n)
				rec := post(body)
				codes[n] = rec.Code
			}(i)
		}
		wg.Wait()

		for _, code := range codes {
			gomega.Expect(code).To(gomega.Equal(http.StatusOK))
		}
		gomega.Expect(repo.callbackCount()).To(gomega.Equal(deliveries))

		seen := make(map[string]int)
		for _, row := range repo.callbacks {
			seen[row.CheckoutRequestID]++
		}
		gomega.Expect(seen).To(gomega.HaveLen(deliveries))
		for id, count := range seen {
			gomega.Expect(count).To(gomega.Equal(1), "checkout request %s appended more than once", id)
		}
	})
})
