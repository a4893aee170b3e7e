// Package app contains the application setup for the storefront core.
package app

import (
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/availability"
	"github.com/abgdnv/storefront/internal/cart"
	"github.com/abgdnv/storefront/internal/commerce"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/abgdnv/storefront/pkg/messaging"
	"github.com/abgdnv/storefront/pkg/server"

	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Backend *commerce.Client
	Checker *availability.Reconciler
	Carts   *cart.Service
	Logger  *slog.Logger
}

func SetupDependencies(backend *commerce.Client, publisher messaging.Publisher, logger *slog.Logger) *Dependencies {
	checker := availability.NewReconciler(backend, backend)
	carts := cart.NewService(checker, backend, publisher)

	return &Dependencies{
		Backend: backend,
		Checker: checker,
		Carts:   carts,
		Logger:  logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the storefront application.
// Used by tests to set up the handler without binding a listener.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cfg)
	return mux
}

// wireRoutes sets up the HTTP routes for the storefront application.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	handler := rest.NewHandler(deps.Backend, deps.Carts, deps.Checker, cfg.Search.CategorySeparator, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the storefront application.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
