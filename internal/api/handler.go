package api

import (
	"context"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/azzamfsta/Pharmacy-Management-System/internal/auth"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/metrics"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/pos"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/report"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/store"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store    *store.Store
	tokens   *auth.TokenManager
	sessions *pos.SessionStore
	reports  *report.Service
	catalog  *pos.CachedCatalog
	logger   *log.Logger
}

// New constructs a Handler.
func New(st *store.Store, tokens *auth.TokenManager, sessions *pos.SessionStore, reports *report.Service, catalog *pos.CachedCatalog, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Handler{store: st, tokens: tokens, sessions: sessions, reports: reports, catalog: catalog, logger: logger}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", h.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.login)
		r.Group(func(protected chi.Router) {
			protected.Use(h.authMiddleware)
			protected.Post("/logout", h.logout)
			protected.Get("/me", h.me)
		})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Post("/users", h.createUser)
		pr.Get("/payment-methods", h.paymentMethods)

		pr.Route("/medicines", func(r chi.Router) {
			r.Get("/", h.listMedicines)
			r.Post("/", h.createMedicine)
			r.Post("/import", h.importMedicines)
			r.Get("/{id}", h.getMedicine)
			r.Put("/{id}", h.updateMedicine)
			r.Post("/{id}/stock", h.restockMedicine)
			r.Delete("/{id}", h.deleteMedicine)
		})

		pr.Route("/inventory", func(r chi.Router) {
			r.Get("/summary", h.inventorySummary)
			r.Get("/shortages", h.shortages)
		})

		pr.Route("/groups", func(r chi.Router) {
			r.Get("/", h.listGroups)
			r.Post("/", h.createGroup)
			r.Delete("/{name}", h.deleteGroup)
		})

		pr.Route("/suppliers", func(r chi.Router) {
			r.Get("/", h.listSuppliers)
			r.Post("/", h.createSupplier)
			r.Get("/{id}", h.getSupplier)
			r.Put("/{id}", h.updateSupplier)
			r.Delete("/{id}", h.deleteSupplier)
		})

		pr.Get("/dashboard", h.dashboard)

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/summary", h.reportSummary)
			r.Get("/sales", h.salesReport)
			r.Get("/sales/export.xlsx", h.exportSales)
			r.Get("/payments", h.paymentsReport)
		})

		pr.Route("/pos/sessions", func(r chi.Router) {
			r.Post("/", h.openSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Delete("/", h.closeSession)
				r.Get("/catalog", h.searchCatalog)
				r.Post("/items", h.addItem)
				r.Delete("/items/{index}", h.removeItem)
				r.Get("/items/{index}/label", h.printLabel)
				r.Put("/customer", h.setCustomer)
				r.Post("/checkout", h.checkout)
				r.Get("/invoice", h.printInvoice)
			})
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
