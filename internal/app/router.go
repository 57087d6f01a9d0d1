package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/elvenwooddev-web/designquote/internal/auth"
	"github.com/elvenwooddev-web/designquote/internal/catalog/categories"
	"github.com/elvenwooddev-web/designquote/internal/catalog/products"
	"github.com/elvenwooddev-web/designquote/internal/catalog/units"
	"github.com/elvenwooddev-web/designquote/internal/clients"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
	"github.com/elvenwooddev-web/designquote/internal/quotes"
	"github.com/elvenwooddev-web/designquote/internal/templates"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	AuthService       *auth.Service
	AuthHandler       *auth.Handler
	QuotesHandler     *quotes.Handler
	ClientsHandler    *clients.Handler
	ProductsHandler   *products.Handler
	CategoriesHandler *categories.Handler
	UnitsHandler      *units.Handler
	TemplatesHandler  *templates.Handler
}

// NewRouter constructs the chi.Router with DesignQuote defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/auth", func(ar chi.Router) {
			ar.Group(func(pub chi.Router) {
				pub.Use(httprate.LimitByIP(params.Config.LoginRateLimit, params.Config.LoginRateWindow))
				params.AuthHandler.MountPublicRoutes(pub)
			})
			ar.Group(func(priv chi.Router) {
				priv.Use(params.AuthService.RequireUser)
				params.AuthHandler.MountRoutes(priv)
			})
		})

		api.Group(func(priv chi.Router) {
			priv.Use(params.AuthService.RequireUser)
			priv.Route("/quotes", params.QuotesHandler.MountRoutes)
			priv.Route("/clients", params.ClientsHandler.MountRoutes)
			priv.Route("/products", params.ProductsHandler.MountRoutes)
			priv.Route("/categories", params.CategoriesHandler.MountRoutes)
			priv.Route("/units", params.UnitsHandler.MountRoutes)
			priv.Route("/templates", params.TemplatesHandler.MountRoutes)
		})
	})

	return r
}
