// Command web is the storefront for London's Imports: a server-rendered
// catalog, cart, and checkout flow that pays through the Paystack inline
// popup against the backend REST API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"londonsimports.org/imports-web/internal/api"
	"londonsimports.org/imports-web/internal/checkout"
	"londonsimports.org/imports-web/internal/cms"
	"londonsimports.org/imports-web/internal/config"
	mw "londonsimports.org/imports-web/internal/middleware"
	"londonsimports.org/imports-web/internal/paystack"
)

var (
	cfg       config.Config
	logger    *zap.Logger
	apiClient *api.Client
	content   *cms.Store
	popup     paystack.Builder
	devMode   bool
)

func main() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		panic(err)
	}
	logger = newLogger(cfg)
	defer func() { _ = logger.Sync() }()

	devMode = !cfg.IsProduction()
	mw.ConfigureSessions(cfg.SessionSigningKey, cfg.IsProduction(), logger)

	apiClient = api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(time.Duration(cfg.API.Timeout)*time.Second),
		api.WithLogger(logger.Named("api")),
	)
	content = cms.NewStore(cfg.ContentDir)
	popup = paystack.Builder{PublicKey: cfg.Paystack.PublicKey, Currency: cfg.Paystack.Currency}

	if !devMode {
		tc, err := parseTemplates()
		if err != nil {
			logger.Fatal("parse templates", zap.Error(err))
		}
		tmplCache = tc
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("web listening", zap.String("addr", cfg.Addr), zap.Bool("dev", devMode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	var zc zap.Config
	if cfg.IsProduction() {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	l, err := zc.Build()
	if err != nil {
		panic(err)
	}
	return l
}

func router() chi.Router {
	r := chi.NewRouter()
	r.Use(chiMid.RequestID)
	// RealIP trusts X-Forwarded-For; only deploy behind a proxy that sets it.
	r.Use(chiMid.RealIP)
	r.Use(chiMid.Recoverer)
	r.Use(chiMid.Compress(5))
	r.Use(chiMid.Timeout(30 * time.Second))
	r.Use(mw.HTMX)
	r.Use(mw.Session)
	r.Use(mw.Auth)
	r.Use(mw.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	assetsDir := filepath.Join(cfg.PublicDir, "assets")
	r.Handle("/assets/*", http.StripPrefix("/assets", mw.AssetsWithCache(assetsDir, "")))

	r.Get("/", HomeHandler)
	r.Get("/products", ProductsHandler)
	r.Get("/products/{slug}", ProductHandler)
	r.Get("/pages/{slug}", ContentPageHandler)

	r.Get("/login", LoginPageHandler)
	r.Post("/login", LoginSubmitHandler)
	r.Post("/logout", LogoutHandler)

	r.Group(func(r chi.Router) {
		r.Use(mw.RequireAuth)
		r.Use(mw.CSRF)

		r.Get("/cart", CartHandler)
		r.Get("/orders", OrdersHandler)
		r.Get("/orders/{number}", OrderDetailHandler)

		r.Get("/checkout", CheckoutPageHandler)
		r.Post("/checkout", CheckoutSubmitHandler)
		r.Post("/checkout/verify", CheckoutVerifyHandler)
		r.Post("/checkout/cancelled", CheckoutCancelledHandler)
		r.Get("/checkout/success", CheckoutSuccessHandler)
	})

	return r
}

// newCheckoutDriver builds a per-request flow driver. The backend is scoped
// to the session's token; the presenter collects effects for the response.
func newCheckoutDriver(p *responsePresenter, scriptReady bool) *checkout.Driver {
	m := checkout.NewMachine(checkout.Options{
		Popup:       popup,
		ScriptReady: scriptReady,
	})
	return checkout.NewDriver(m, apiClient, p, logger.Named("checkout"))
}
