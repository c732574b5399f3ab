package api

import (
	"net/http"

	"github.com/fastprodman/creditledger/internal/infra/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter builds the chi router with every ledger endpoint registered.
func NewRouter(l Ledger, rc Reconciler) http.Handler {
	h := NewHandler(l, rc)
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", metrics.Handler())

	r.Post("/accounts", h.OpenAccountHandler)

	r.Route("/accounts/{accountId}", func(r chi.Router) {
		r.Get("/", h.StatusHandler)
		r.Get("/entries", h.HistoryHandler)

		r.Post("/holds", h.orderHandler(l.Hold))
		r.Post("/releases", h.orderHandler(l.Release))
		r.Post("/charges", h.orderHandler(l.Charge))
		r.Post("/refunds", h.orderHandler(l.Refund))
		r.Post("/adjustments", h.AdjustmentHandler)

		r.Put("/limit", h.SetLimitHandler)
		r.Put("/frozen", h.SetFrozenHandler)

		r.Get("/reconciliation", h.VerifyHandler)
		r.Post("/reconciliation", h.RepairHandler)

		r.Post("/limit-requests", h.RequestIncreaseHandler)
	})

	r.Get("/limit-requests", h.ListRequestsHandler)
	r.Get("/limit-requests/{requestId}", h.GetRequestHandler)
	r.Post("/limit-requests/{requestId}/decision", h.DecideRequestHandler)

	return r
}
