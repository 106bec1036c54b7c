package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/nekogravitycat/turf-booking-backend/internal/auth"
	"github.com/nekogravitycat/turf-booking-backend/internal/booking"
	bookingHttp "github.com/nekogravitycat/turf-booking-backend/internal/booking/http"
	"github.com/nekogravitycat/turf-booking-backend/internal/file"
	fileHttp "github.com/nekogravitycat/turf-booking-backend/internal/file/http"
	"github.com/nekogravitycat/turf-booking-backend/internal/logging"
	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/request"
	"github.com/nekogravitycat/turf-booking-backend/internal/turf"
	turfHttp "github.com/nekogravitycat/turf-booking-backend/internal/turf/http"
	"github.com/nekogravitycat/turf-booking-backend/internal/user"
	userHttp "github.com/nekogravitycat/turf-booking-backend/internal/user/http"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config carries the services and settings the router is assembled from.
type Config struct {
	IsProduction   bool
	ProdOrigins    string
	MaxUploadBytes int64
	Log            zerolog.Logger
	DB             Pinger

	UserService    user.Service
	TurfService    turf.Service
	BookingService booking.Service
	FileService    file.Service
	Sweeper        bookingHttp.SweepRunner
	JWTManager     *auth.JWTManager
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	request.RegisterValidators()

	r := gin.New()

	// Global Middleware:
	// - Logger: one structured line per request.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(logging.GinLogger(cfg.Log), logging.Recovery(cfg.Log))

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = allowedOrigins(cfg.IsProduction, cfg.ProdOrigins)
	if len(corsConfig.AllowOrigins) == 0 {
		// cors.New panics on an empty origin list.
		corsConfig.AllowOriginFunc = func(string) bool { return false }
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/healthz", healthz(cfg.DB))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	fileHandler := fileHttp.NewHandler(cfg.FileService)
	turfHandler := turfHttp.NewHandler(cfg.TurfService, fileHandler, cfg.MaxUploadBytes)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.Sweeper)

	// Register API routes under /api
	apiGroup := r.Group("/api")
	{
		userHttp.RegisterRoutes(apiGroup, userHandler, authMiddleware)
		turfHttp.RegisterRoutes(apiGroup, turfHandler, authMiddleware)
		bookingHttp.RegisterRoutes(apiGroup, bookingHandler, authMiddleware)
		fileHttp.RegisterRoutes(apiGroup, fileHandler)
	}

	return r
}

func allowedOrigins(isProduction bool, prodOrigins string) []string {
	if !isProduction {
		return []string{"http://localhost:3000", "http://localhost:5173"}
	}
	var origins []string
	for _, o := range strings.Split(prodOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
