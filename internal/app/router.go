package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-erp/meridian-erp/internal/auth"
	"github.com/meridian-erp/meridian-erp/internal/catalog"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/observability"
	"github.com/meridian-erp/meridian-erp/internal/parties"
	"github.com/meridian-erp/meridian-erp/internal/pos"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Metrics        *observability.Metrics

	AuthHandler     *auth.Handler
	TokenIssuer     *auth.TokenIssuer
	CatalogHandler  *catalog.Handler
	CustomerHandler *parties.Handler
	SupplierHandler *parties.Handler
	POSHandler      *pos.Handler

	QuotationHandler       *documents.Handler
	SalesOrderHandler      *documents.Handler
	SalesInvoiceHandler    *documents.Handler
	PurchaseOrderHandler   *documents.Handler
	PurchaseInvoiceHandler *documents.Handler
}

// NewRouter constructs the chi.Router with the default middleware chain and
// the console, document and POS surfaces mounted.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	r.Mount("/auth", params.AuthHandler.Routes())
	r.Mount("/catalog", params.CatalogHandler.Routes())

	r.Route("/sales", func(r chi.Router) {
		r.Mount("/customers", params.CustomerHandler.Routes())
		r.Mount("/quotations", params.QuotationHandler.Routes())
		r.Mount("/orders", params.SalesOrderHandler.Routes())
		r.Mount("/invoices", params.SalesInvoiceHandler.Routes())
	})

	r.Route("/purchasing", func(r chi.Router) {
		r.Mount("/suppliers", params.SupplierHandler.Routes())
		r.Mount("/orders", params.PurchaseOrderHandler.Routes())
		r.Mount("/invoices", params.PurchaseInvoiceHandler.Routes())
	})

	r.Route("/pos", func(r chi.Router) {
		r.Use(params.TokenIssuer.Middleware)
		r.Mount("/", params.POSHandler.Routes())
	})

	return r
}
