package orderdesk

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", handler.Health)
	r.Post("/create", handler.CreateOrder)
	r.Post("/create-quote", handler.CreateQuote)
	r.Get("/api/payment-status/{token}", handler.PaymentStatus)
	r.Get("/api/order/{token}", handler.GetOrder)
	return r
}
