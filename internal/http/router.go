package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter assembles the HTTP surface the terminal UI talks to.
func NewRouter(cartH *CartHandler, checkoutH *CheckoutHandler, syncH *SyncHandler, metricsH http.Handler, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(OperatorMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metricsH)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/tables/{table_id}", func(r chi.Router) {
			r.Post("/select", cartH.SelectTable)
			r.Get("/cart", cartH.GetCartByTable)
			r.Post("/checkout", checkoutH.Checkout)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartH.GetCart)
			r.Delete("/", cartH.ClearCart)
			r.Post("/items", cartH.AddItem)
			r.Put("/items/{product_id}", cartH.UpdateQuantity)
			r.Post("/items/{product_id}/increase", cartH.IncreaseQuantity)
			r.Post("/items/{product_id}/decrease", cartH.DecreaseQuantity)
			r.Delete("/items/{product_id}", cartH.RemoveItem)
			r.Put("/discount", cartH.SetDiscount)
			r.Put("/payment", cartH.SetPayment)
			r.Post("/persist", cartH.PersistCart)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Get("/status", syncH.Status)
			r.Post("/flush", syncH.Flush)
		})
	})

	return r
}
