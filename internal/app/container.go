package app

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/turf-booking-backend/internal/api"
	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
	"github.com/nekogravitycat/turf-booking-backend/internal/config"
	"github.com/nekogravitycat/turf-booking-backend/internal/events"
	"github.com/nekogravitycat/turf-booking-backend/internal/file"
	"github.com/nekogravitycat/turf-booking-backend/internal/logging"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/storage"
	"github.com/nekogravitycat/turf-booking-backend/internal/schedule"
	"github.com/nekogravitycat/turf-booking-backend/internal/sweeper"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
	"github.com/nekogravitycat/turf-booking-backend/internal/user"
)

// Publisher is an event sink that holds a broker connection.
type Publisher interface {
	booking.EventPublisher
	Close() error
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router         *gin.Engine
	JWTManager     *auth.JWTManager
	BookingService booking.Service
	Sweeper        *sweeper.Sweeper
	Publisher      Publisher
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool, log zerolog.Logger) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasher(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)
	clock := schedule.SystemClock{Location: cfg.Location}

	publisher, err := newPublisher(cfg, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewLocalStorage(cfg.StoragePath)
	if err != nil {
		_ = publisher.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	// User Module
	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, passwordHasher, logging.Component(log, "user"))

	// File Module
	fileRepo := file.NewRepository(pool)
	fileService := file.NewService(fileRepo, store, logging.Component(log, "file"))

	// Turf Module
	turfRepo := turf.NewPgxRepository(pool)
	turfService := turf.NewService(turfRepo)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(bookingRepo, turfService, clock, publisher, logging.Component(log, "booking"))

	sw := sweeper.New(bookingService, cfg.SweepInterval, logging.Component(log, "sweeper"))

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Log:            log,
		DB:             pool,
		UserService:    userService,
		TurfService:    turfService,
		BookingService: bookingService,
		FileService:    fileService,
		Sweeper:        sw,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:         router,
		JWTManager:     jwtManager,
		BookingService: bookingService,
		Sweeper:        sw,
		Publisher:      publisher,
	}, nil
}

func newPublisher(cfg *config.Config, log zerolog.Logger) (Publisher, error) {
	if cfg.RabbitURL == "" {
		log.Info().Msg("RABBIT_URL not set, booking events disabled")
		return events.Noop{}, nil
	}
	p, err := events.NewRabbitPublisher(cfg.RabbitURL, cfg.RabbitExchange)
	if err != nil {
		return nil, fmt.Errorf("init event publisher: %w", err)
	}
	return p, nil
}

// Close releases resources the container opened.
func (c *Container) Close() error {
	return c.Publisher.Close()
}
