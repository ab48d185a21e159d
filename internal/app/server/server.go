package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkmint/linkmint/internal/app/service"
	inthttp "github.com/linkmint/linkmint/internal/http/handler"
	"github.com/linkmint/linkmint/internal/http/middleware"
	httpUtil "github.com/linkmint/linkmint/internal/http/util"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Dependencies bundles infrastructure and services required by the HTTP
// server.
type Dependencies struct {
	Logger    *zap.Logger
	Postgres  *pgxpool.Pool
	Redis     *redis.Client
	NATS      *nats.Conn
	JetStream nats.JetStreamContext

	Clicks      service.ClickService
	Conversions service.ConversionService
	Links       service.LinkService

	Markers       *httpUtil.MarkerSigner
	SeenCookieTTL time.Duration
}

// Server wraps the Fiber application and its dependencies.
type Server struct {
	app  *fiber.App
	deps Dependencies
}

// New creates a new HTTP server instance with default routes.
func New(deps Dependencies) *Server {
	app := fiber.New()

	s := &Server{
		app:  app,
		deps: deps,
	}

	s.registerMiddleware()
	s.registerRoutes()
	return s
}

// Listen starts the Fiber server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the Fiber server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) registerMiddleware() {
	s.app.Use(middleware.RequestID())
	s.app.Use(middleware.Recovery(s.deps.Logger))
	s.app.Use(middleware.Logger(s.deps.Logger))
	s.app.Use(middleware.CORS())
	if s.deps.Redis != nil {
		s.app.Use(middleware.RateLimit(s.deps.Redis, middleware.DefaultRateLimitConfig(), s.deps.Logger))
	}
}

func (s *Server) registerRoutes() {
	trackHandler := inthttp.NewTrackHandler(inthttp.TrackDeps{
		Logger:        s.deps.Logger,
		Clicks:        s.deps.Clicks,
		Postgres:      s.deps.Postgres,
		Markers:       s.deps.Markers,
		SeenCookieTTL: s.deps.SeenCookieTTL,
	})
	trackHandler.Register(s.app)

	conversionHandler := inthttp.NewConversionHandler(inthttp.ConversionDeps{
		Logger:      s.deps.Logger,
		Conversions: s.deps.Conversions,
	})
	conversionHandler.Register(s.app)

	apiHandler := inthttp.NewAPIHandler(inthttp.APIDeps{
		Logger:      s.deps.Logger,
		LinkService: s.deps.Links,
	})
	apiHandler.Register(s.app)
}
