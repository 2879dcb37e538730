package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/staybook/apiserver/config"
	"github.com/staybook/apiserver/internal/cache"
	"github.com/staybook/apiserver/internal/db"
	"github.com/staybook/apiserver/internal/handlers"
	"github.com/staybook/apiserver/internal/mq"
	"github.com/staybook/apiserver/internal/services"
	"github.com/staybook/apiserver/internal/storage"
	"github.com/staybook/apiserver/internal/store"
	"golang.org/x/time/rate"
)

// Server wraps the HTTP server and router together with the backends
// it owns.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	broker     *mq.MQ
	availCache *cache.AvailabilityCache
	log        zerolog.Logger
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	log := zerolog.New(os.Stdout).With().Timestamp().Str("component", "server").Logger()

	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		_ = dbConn.Close()
		return nil, errors.New("JWT_SECRET is required")
	}

	broker, err := mq.FromConfig(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init mq failed: %w", err)
	}

	objStorage, err := storage.FromConfig(ctx, cfg)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init storage failed: %w", err)
	}
	if objStorage != nil {
		if err := objStorage.EnsureBucket(ctx); err != nil {
			_ = dbConn.Close()
			return nil, fmt.Errorf("ensure bucket failed: %w", err)
		}
	}

	availCache, err := cache.New(ctx, cfg.Redis, log)
	if err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("init redis failed: %w", err)
	}

	// Disabled backends stay untyped nils so the services' nil checks
	// hold.
	var photos services.PhotoStore
	if objStorage != nil {
		photos = objStorage
	}
	var events services.EventPublisher
	if broker != nil {
		events = broker
	}
	var availability services.AvailabilityCache
	if availCache != nil {
		availability = availCache
	}

	userRepo := store.NewUserRepository(dbConn)
	hotelRepo := store.NewHotelRepository(dbConn)
	bookingRepo := store.NewBookingRepository(dbConn)

	userService := services.NewUserService(userRepo, services.BcryptHasher{})
	hotelService := services.NewHotelService(hotelRepo, photos, availability, log)
	bookingService := services.NewBookingService(bookingRepo, hotelService, events, availability, log)

	authMiddleware := handlers.RequireAuth(jwtSecret)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}).Handler)
	router.Use(rateLimit(20, 40))

	router.Get("/healthz", handlers.Healthz)
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, jwtSecret)
	})
	router.Route("/hotels", func(r chi.Router) {
		handlers.HotelRouter(r, hotelService, bookingService, userService, authMiddleware)
	})
	router.Route("/bookings", func(r chi.Router) {
		handlers.BookingRouter(r, bookingService, userService, authMiddleware)
	})
	router.Route("/photos", func(r chi.Router) {
		handlers.PhotoRouter(r, hotelService)
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
		availCache: availCache,
		log:        log,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpServer.Addr).Msg("listening")
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown and releases owned backends.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	if s.availCache != nil {
		_ = s.availCache.Close()
	}
	return s.httpServer.Close()
}

// rateLimit applies a per-client token bucket keyed on remote IP.
// Idle limiters are dropped after an hour.
func rateLimit(rps float64, burst int) func(http.Handler) http.Handler {
	type client struct {
		limiter  *rate.Limiter
		lastSeen time.Time
	}

	var (
		mu      sync.Mutex
		clients = make(map[string]*client)
	)

	limiterFor := func(ip string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()

		c, ok := clients[ip]
		if !ok {
			c = &client{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[ip] = c
		}
		c.lastSeen = time.Now()

		for k, v := range clients {
			if time.Since(v.lastSeen) > time.Hour {
				delete(clients, k)
			}
		}
		return c.limiter
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if !limiterFor(ip).Allow() {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
