package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/smilesniffer/ticketing-backend/internal/gallery"
	"github.com/smilesniffer/ticketing-backend/internal/payment"
	"github.com/smilesniffer/ticketing-backend/internal/ticket"
	"github.com/smilesniffer/ticketing-backend/internal/transport/middleware"
	"github.com/smilesniffer/ticketing-backend/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, ticketHandler *ticket.Handler, galleryHandler *gallery.Handler, paymentHandler *payment.Handler, webhookHandler *payment.WebhookHandler, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// The gateway calls back on this exact path; it lives outside the API
	// prefix because it is configured verbatim at the gateway side.
	if webhookHandler != nil {
		router.Post("/mpesa-callback", webhookHandler.HandleMpesaCallback)
	}

	router.Route("/api/v1", func(r chi.Router) {
		// Health check route
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if ticketHandler != nil {
			r.Route("/tickets", func(tr chi.Router) {
				tr.Post("/", ticketHandler.CreateTicket)
				tr.Get("/", ticketHandler.GetAllTickets)
				tr.Get("/{id}", ticketHandler.GetTicket)
				tr.Delete("/{id}", ticketHandler.DeleteTicket)
				tr.Post("/{id}/illustration", ticketHandler.AttachIllustration)
				tr.Post("/validate", ticketHandler.ValidateTicket)
			})
		}

		if galleryHandler != nil {
			r.Route("/pictures", func(gr chi.Router) {
				gr.Post("/", galleryHandler.AddPicture)
				gr.Get("/", galleryHandler.GetPictures)
			})
		}

		if paymentHandler != nil {
			r.Route("/payments", func(pr chi.Router) {
				pr.Post("/stk-push", paymentHandler.InitiatePayment)
				pr.Get("/{checkoutRequestID}", paymentHandler.GetPayment)
				pr.Get("/callbacks", paymentHandler.ListCallbacks)
			})
		}
	})
}
