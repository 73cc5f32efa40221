package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cardadmin/apiserver/config"
	"github.com/cardadmin/apiserver/internal/auth"
	"github.com/cardadmin/apiserver/internal/db"
	"github.com/cardadmin/apiserver/internal/handlers"
	"github.com/cardadmin/apiserver/internal/logging"
	"github.com/cardadmin/apiserver/internal/mq"
	"github.com/cardadmin/apiserver/internal/services"
	"github.com/cardadmin/apiserver/internal/storage"
	"github.com/cardadmin/apiserver/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Deps are the collaborators the HTTP routes are built from.
type Deps struct {
	Cards          *services.CardService
	Users          *services.UserService
	Verifier       *auth.CredentialVerifier
	Signer         *auth.TokenSigner
	Log            logging.Logger
	AllowedOrigins []string
}

// Server wraps the HTTP server and router.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	events     *mq.CardEvents
	users      *services.UserService
	cards      *services.CardService
	log        logging.Logger
}

type options struct {
	memory bool
}

// Option customises New.
type Option func(*options)

// WithMemoryStore keeps users and cards in process memory instead of postgres.
func WithMemoryStore() Option {
	return func(o *options) { o.memory = true }
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config, log logging.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logging.Discard()
	}

	signer, err := auth.NewTokenSigner(cfg.JWTSecret)
	if err != nil {
		return nil, errors.New("JWT_SECRET is required")
	}

	var (
		dbConn   *sql.DB
		cardRepo services.CardRepository
		userRepo interface {
			services.UserRepository
			auth.IdentityLookup
		}
	)
	if o.memory {
		cardRepo = store.NewMemoryCardRepository()
		userRepo = store.NewMemoryUserRepository()
	} else {
		dbConn, err = db.Open(ctx, cfg)
		if err != nil {
			return nil, err
		}
		cardRepo = store.NewCardRepository(dbConn)
		userRepo = store.NewUserRepository(dbConn)
	}

	backend, err := mq.Open(ctx, cfg.Events)
	if err != nil {
		closeDB(dbConn)
		return nil, fmt.Errorf("open events backend: %w", err)
	}
	events := mq.NewCardEvents(backend, cfg.Events.Channel)

	objects, err := storage.Open(ctx, cfg.Feed)
	if err != nil {
		_ = events.Close()
		closeDB(dbConn)
		return nil, fmt.Errorf("open feed storage: %w", err)
	}
	feed := storage.NewFeed(objects, cfg.Feed.Key)
	if err := feed.EnsureBucket(ctx); err != nil {
		_ = events.Close()
		closeDB(dbConn)
		return nil, fmt.Errorf("ensure feed bucket: %w", err)
	}

	cardService := services.NewCardService(cardRepo, events, feed, log)
	userService := services.NewUserService(userRepo)

	router := NewRouter(Deps{
		Cards:          cardService,
		Users:          userService,
		Verifier:       auth.NewCredentialVerifier(userRepo),
		Signer:         signer,
		Log:            log,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 4000
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		db:         dbConn,
		events:     events,
		users:      userService,
		cards:      cardService,
		log:        log,
	}, nil
}

// NewRouter mounts every route on a fresh chi router.
func NewRouter(deps Deps) *chi.Mux {
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}
	origins := deps.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.RequestLogger(&middleware.DefaultLogFormatter{
			Logger:  slog.NewLogLogger(slogHandler(log), slog.LevelInfo),
			NoColor: true,
		}),
		middleware.Timeout(60*time.Second),
		cors.Handler(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", auth.TokenHeader},
			ExposedHeaders: []string{auth.TokenHeader},
			MaxAge:         300,
		}),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Route("/login", func(r chi.Router) {
		handlers.LoginRouter(r, deps.Verifier, deps.Signer, log)
	})
	router.Route("/users", func(r chi.Router) {
		handlers.UserRouter(r, deps.Users, deps.Signer, log)
	})
	router.Route("/cards", func(r chi.Router) {
		handlers.CardRouter(r, deps.Cards, deps.Signer, log)
	})
	return router
}

func slogHandler(log logging.Logger) slog.Handler {
	if s, ok := log.(*logging.SlogLogger); ok {
		return s.Slog().Handler()
	}
	return slog.Default().Handler()
}

func closeDB(conn *sql.DB) {
	if conn != nil {
		_ = conn.Close()
	}
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Seed creates the bootstrap admin and default cards.
func (s *Server) Seed(ctx context.Context) (services.SeedReport, error) {
	return services.Seed(ctx, s.users, s.cards, services.DefaultSeedAdmin, services.DefaultCards)
}

// Start runs the HTTP server. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info(context.Background(), "server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the backends.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.httpServer.Shutdown(ctx)
	if s.events != nil {
		_ = s.events.Close()
	}
	closeDB(s.db)
	return err
}
