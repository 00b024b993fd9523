package server

import (
	"backend-velohub/internal/admin"
	"backend-velohub/internal/auth"
	"backend-velohub/internal/config"
	"backend-velohub/internal/event"
	"backend-velohub/internal/gallery"
	"backend-velohub/internal/notify"
	"backend-velohub/internal/ride"
	"backend-velohub/internal/route"
	"backend-velohub/internal/strava"
	"backend-velohub/internal/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New(fiber.Config{BodyLimit: 20 * 1024 * 1024})
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

// Close releases the stream hub subscription.
func (s *Server) Close() error {
	return s.Stream.Close()
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	route.RegisterRoutes(s.App.Group("/routes"), route.NewService(s.DB, metricsCache(s), s.Cfg.ProfileMaxPoints), jwtMiddleware)
	event.RegisterRoutes(s.App.Group("/events"), event.NewService(s.DB, announcer(s)), jwtMiddleware)
	ride.RegisterRoutes(s.App.Group("/rides"), ride.NewService(s.DB, s.Stream), jwtMiddleware)
	gallery.RegisterRoutes(s.App.Group("/gallery"), gallery.NewService(s.DB, s.Cfg.StorageBaseURL), jwtMiddleware)
	admin.RegisterRoutes(s.App.Group("/admin"), admin.NewService(s.DB), jwtMiddleware, auth.RequireRole(auth.RoleAdmin))
	strava.RegisterRoutes(s.App.Group("/strava"), stravaService(s), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}

// The helpers below return untyped nils so services see a nil interface
// when the backing infrastructure is not configured.

func metricsCache(s *Server) route.MetricsCache {
	if s.Redis == nil {
		return nil
	}
	return route.NewRedisMetricsCache(s.Redis, s.Cfg.AnalysisCacheTTL)
}

func announcer(s *Server) event.Announcer {
	if s.DB == nil {
		return nil
	}
	a := notify.NewAnnouncer(s.Cfg, s.DB)
	if a == nil {
		return nil
	}
	return a
}

func stravaService(s *Server) *strava.Service {
	client := strava.NewClient(s.Cfg.StravaBaseURL, s.Cfg.StravaClientID, s.Cfg.StravaClientSecret, nil)
	if s.Redis == nil {
		return strava.NewService(client, nil)
	}
	return strava.NewService(client, strava.NewRedisTokenCache(s.Redis))
}
