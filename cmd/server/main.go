// Command server wires the gatherly service: the JSON events API, the
// websocket chat hub, and the authentication stack both share.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gatherly/gatherly/auth"
	"github.com/gatherly/gatherly/authz"
	"github.com/gatherly/gatherly/events"
	"github.com/gatherly/gatherly/hub"
	"github.com/gatherly/gatherly/validator"
)

type config struct {
	Addr          string        `env:"ADDR,default=:8080"`
	SigningSecret string        `env:"SIGNING_SECRET,required"`
	HubPathPrefix string        `env:"HUB_PATH_PREFIX,default=/chat"`
	HubOrigins    []string      `env:"HUB_ALLOWED_ORIGINS"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE,default=10s"`
}

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()
	logger := auth.NewZapLogger(zl.Sugar())

	var cfg config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}

	// A missing signing secret is fatal here, at startup, never
	// surfaced per-request.
	key, err := validator.LoadSigningKey(cfg.SigningSecret)
	if err != nil {
		zl.Fatal("signing key", zap.Error(err))
	}

	tokenValidator, err := validator.New(key.KeyFunc(), validator.HS256)
	if err != nil {
		zl.Fatal("validator", zap.Error(err))
	}

	metrics := auth.NewPrometheusMetrics()

	// Header first; the access_token query parameter is honored only
	// under the hub prefix, where upgrade requests cannot set headers.
	authn, err := auth.New(tokenValidator,
		auth.WithTokenExtractor(auth.MultiTokenExtractor(
			auth.AuthHeaderTokenExtractor,
			auth.HubParameterTokenExtractor(cfg.HubPathPrefix, "access_token"),
		)),
		auth.WithLogger(logger),
		auth.WithMetrics(metrics),
	)
	if err != nil {
		zl.Fatal("auth middleware", zap.Error(err))
	}

	store := events.NewStore()

	hostPolicy, err := authz.NewOwnershipPolicy(authz.PolicyIsEventHost, store.HostLookup)
	if err != nil {
		zl.Fatal("host policy", zap.Error(err))
	}
	registry := authz.NewRegistry()
	if err := registry.Register(hostPolicy); err != nil {
		zl.Fatal("policy registry", zap.Error(err))
	}
	policies := authz.NewMiddleware(registry, authz.WithLogger(logger), authz.WithMetrics(metrics))
	requireHost := policies.Require(authz.PolicyIsEventHost, "id")

	handler := events.NewHandler(store, logger)
	chatHub := hub.New(authn, hub.WithLogger(logger), hub.WithOriginPatterns(cfg.HubOrigins))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /api/events", authn.CheckAuth(http.HandlerFunc(handler.Create)))
	mux.Handle("GET /api/events", authn.CheckAuth(http.HandlerFunc(handler.List)))
	mux.Handle("PUT /api/events/{id}", authn.CheckAuth(requireHost(http.HandlerFunc(handler.Update))))
	mux.Handle("DELETE /api/events/{id}", authn.CheckAuth(requireHost(http.HandlerFunc(handler.Delete))))

	mux.Handle("GET "+cfg.HubPathPrefix+"/{event}", chatHub.Handler())

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		zl.Info("listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	zl.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown", zap.Error(err))
	}
}
