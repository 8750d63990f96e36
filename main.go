package main

import (
	"context"
	"embed"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/multierr"

	"github.com/debemdeboas/sorteio-admin/internal/api"
	"github.com/debemdeboas/sorteio-admin/internal/auth"
	"github.com/debemdeboas/sorteio-admin/internal/cache"
	"github.com/debemdeboas/sorteio-admin/internal/config"
	"github.com/debemdeboas/sorteio-admin/internal/db"
	"github.com/debemdeboas/sorteio-admin/internal/logger"
	"github.com/debemdeboas/sorteio-admin/internal/model"
	"github.com/debemdeboas/sorteio-admin/internal/repository"
	"github.com/debemdeboas/sorteio-admin/internal/session"
	"github.com/debemdeboas/sorteio-admin/internal/sse"
)

//go:embed static/* templates/*
var content embed.FS

// App owns everything that has to be released on shutdown.
type App struct {
	store   repository.DocumentRepository
	clients *sse.Clients
	sess    *session.Session
	handler http.Handler
}

func (a *App) Close() error {
	return multierr.Combine(
		a.clients.CloseAll(),
		a.store.Close(),
	)
}

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l)
	db.SetLogger(l)
	repository.SetLogger(l)
	session.SetLogger(l)
	auth.SetLogger(l)
	api.SetLogger(l)
}

func newAuthProvider(cfg *config.Config, l zerolog.Logger) (auth.AuthProvider, *auth.Ed25519AuthProvider, error) {
	if !cfg.Features.Authentication.Enabled {
		l.Warn().Msg("Authentication disabled, every request can edit processes")
		return auth.OpenProvider{}, nil, nil
	}

	p, err := auth.NewEd25519AuthProvider(os.Getenv("ADMIN_ED25519_PUBKEY"), "Authorization")
	if err != nil {
		return nil, nil, err
	}
	return p, p, nil
}

// newApp wires the store, the session and the HTTP handler chain.
func newApp(ctx context.Context, cfg *config.Config, store repository.DocumentRepository, assets fs.FS, l zerolog.Logger) (*App, error) {
	provider, ed25519Provider, err := newAuthProvider(cfg, l)
	if err != nil {
		return nil, err
	}

	clients := sse.NewClients()
	sess := session.New(store, session.Options{
		Lookup:       session.LookupMode(cfg.Store.Lookup),
		StrictLookup: cfg.Store.StrictLookup,
		OnPublish: func(sel model.PublishedSelection) {
			clients.Broadcast(api.PublishedEvent(sel))
		},
	})
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}

	h, err := api.NewHandler(sess, clients, provider, assets)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	if err := h.Register(mux); err != nil {
		return nil, err
	}
	if ed25519Provider != nil {
		auth.RegisterEd25519AuthRoutes(mux, ed25519Provider)
	}

	n, err := cache.HashStatic(assets, config.StaticLocalDir, config.StaticURLPath)
	if err != nil {
		return nil, err
	}
	l.Debug().Int("files", n).Msg("Hashed static assets")

	handler := logger.Middleware(l)(provider.WithHeaderAuthorization()(secureHeaders(cacheIt(mux.ServeHTTP))))

	return &App{
		store:   store,
		clients: clients,
		sess:    sess,
		handler: handler,
	}, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		// Environment variables may come from the process instead.
		os.Stderr.WriteString("No .env file loaded\n")
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	bootLogger := logger.New("info")
	config.SetLogger(bootLogger)
	if err := config.LoadConfig(configPath); err != nil {
		bootLogger.Fatal().Err(err).Str("path", configPath).Msg("Failed to load config")
	}
	cfg := config.AppConfig

	l := logger.New(cfg.Logging.Level)
	setLoggers(l)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg.Store)
	if err != nil {
		l.Fatal().Err(err).Msgf(config.ErrInitializeStoreFmt, err)
	}

	app, err := newApp(ctx, cfg, store, content, l)
	if err != nil {
		store.Close()
		l.Fatal().Err(err).Msg("Failed to start")
	}

	srv := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           app.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return l.WithContext(context.Background()) },
	}

	go func() {
		l.Info().Str("addr", srv.Addr).Int("processes", len(app.sess.ListProcesses())).Msg("Listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	l.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Event streams only end when their clients are closed, so they go first.
	err = multierr.Combine(app.clients.CloseAll(), srv.Shutdown(shutdownCtx), app.store.Close())
	if err != nil {
		l.Error().Err(err).Msg("Unclean shutdown")
	}
}

func cacheIt(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(config.HCacheControl, config.CacheNone)

		if hash, ok := cache.GetStaticHash(r.URL.Path); ok {
			w.Header().Set(config.HCacheControl, config.CacheStatic)
			w.Header().Set(config.HETag, hash)
		}

		h(w, r)
	}
}

func secureHeaders(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "same-origin")

		h(w, r)
	}
}
