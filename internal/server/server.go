package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/getaway-genius/apiserver/config"
	"github.com/getaway-genius/apiserver/internal/cache"
	"github.com/getaway-genius/apiserver/internal/db"
	"github.com/getaway-genius/apiserver/internal/events"
	"github.com/getaway-genius/apiserver/internal/geo"
	"github.com/getaway-genius/apiserver/internal/handlers"
	"github.com/getaway-genius/apiserver/internal/mq"
	"github.com/getaway-genius/apiserver/internal/services"
	"github.com/getaway-genius/apiserver/internal/storage"
	"github.com/getaway-genius/apiserver/internal/store"
	"github.com/getaway-genius/apiserver/internal/token"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server wraps the HTTP server and its shared resources.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	issuer, err := token.NewIssuer(cfg.Auth.AccessTokenSecret, cfg.Auth.RefreshTokenSecret)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	broker, err := mq.FromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	imageStorage, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	if imageStorage != nil {
		if err := imageStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, err
		}
	}

	publisher := events.NewPublisher(broker)

	userRepo := store.NewUserRepository(dbConn)
	tripRepo := store.NewTripRepository(dbConn)
	instanceRepo := store.NewInstanceRepository(dbConn)
	wishlistRepo := store.NewWishlistRepository(dbConn)

	userService := services.NewUserService(userRepo)
	tripService := services.NewTripService(tripRepo, publisher)
	instanceService := services.NewInstanceService(instanceRepo, tripRepo, publisher)
	wishlistService := services.NewWishlistService(wishlistRepo, tripRepo)

	geoClient := geo.NewClient(cfg.Geo, cache.New(cfg.Geo.CacheTTL, cache.DefaultMaxEntries), nil)

	authMiddleware := handlers.RequireAuth(issuer)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.NotFound(handlers.NotFoundHandler)
	router.MethodNotAllowed(handlers.MethodNotAllowedHandler)

	router.Get("/healthz", handlers.Healthz)
	router.Route("/api/user", func(r chi.Router) {
		handlers.UserRouter(r, userService, issuer, cfg.IsProduction())
	})
	router.Route("/api/trips", func(r chi.Router) {
		handlers.TripRouter(r, tripService, instanceService, authMiddleware)
	})
	router.Route("/api/wishlist", func(r chi.Router) {
		handlers.WishlistRouter(r, wishlistService, userService, authMiddleware)
	})
	router.Route("/api/images", func(r chi.Router) {
		handlers.ImageRouter(r, imageStorage, authMiddleware)
	})
	router.Route("/api/geo", func(r chi.Router) {
		handlers.GeoRouter(r, geoClient, authMiddleware)
	})

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
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
		broker:     broker,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	return s.httpServer.Close()
}
