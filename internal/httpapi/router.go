package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"bigcommerce-sdk/internal/api"
	"bigcommerce-sdk/internal/auth"
	"bigcommerce-sdk/internal/carts"
	"bigcommerce-sdk/internal/webhook"
	"bigcommerce-sdk/pkg/bigcommerce"
	"bigcommerce-sdk/pkg/config"
)

type Dependencies struct {
	Cfg    config.Config
	Stores auth.Registry

	// Client is the unbound SDK client; store routes rebind it per request.
	Client bigcommerce.Client

	// Exchanger overrides the token endpoint, mostly for tests.
	Exchanger bigcommerce.OAuthExchanger
	Journal   webhook.Journal
	Audit     auth.Auditor
	Log       *zap.Logger
}

func NewRouter(deps Dependencies) http.Handler {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(api.RequestLogger(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authHandlers := auth.Handlers{
		Cfg:       deps.Cfg.BigCommerce,
		Stores:    deps.Stores,
		Exchanger: deps.Exchanger,
		Client:    deps.Client,
		Audit:     deps.Audit,
		Log:       log,
	}
	if deps.Cfg.PublicBaseURL != "" {
		authHandlers.Hooks = auth.HookRegistration{
			URL:    deps.Cfg.PublicBaseURL + "/v1/webhooks",
			Secret: deps.Cfg.BigCommerce.WebhookSecret,
			Scopes: webhook.Scopes,
		}
	}
	webhookHandler := webhook.Handler{
		Secret:  deps.Cfg.BigCommerce.WebhookSecret,
		Stores:  deps.Stores,
		Journal: deps.Journal,
		Log:     log,
	}
	cartHandlers := carts.Handlers{Client: deps.Client, Log: log}

	r.Route("/v1", func(r chi.Router) {
		// App callbacks registered in the BigCommerce developer portal.
		r.Get("/auth/callback", authHandlers.Callback)
		r.Get("/auth/load", authHandlers.Load)
		r.Get("/auth/uninstall", authHandlers.Uninstall)

		r.Post("/webhooks", webhookHandler.ServeHTTP)

		// Storefront routes, scoped to an installed store. A sub-router so
		// preflights reach the CORS middleware before method matching.
		r.Route("/carts", func(r chi.Router) {
			r.Use(api.CORSMiddleware(api.CORSOptions{
				AllowedOrigins: deps.Cfg.AllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			}))
			r.Use(api.StoreAuth(deps.Stores, log))

			r.Get("/{cartID}", cartHandlers.Get)
			r.Post("/{cartID}/redirect_urls", cartHandlers.RedirectURLs)
		})
	})

	return r
}
