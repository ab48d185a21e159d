package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/linkmint/linkmint/config"
	appmodel "github.com/linkmint/linkmint/internal/app/model"
	apprepository "github.com/linkmint/linkmint/internal/app/repository"
	appserver "github.com/linkmint/linkmint/internal/app/server"
	appservice "github.com/linkmint/linkmint/internal/app/service"
	httpUtil "github.com/linkmint/linkmint/internal/http/util"
	"github.com/linkmint/linkmint/internal/infra/logger"
	infraNATS "github.com/linkmint/linkmint/internal/infra/nats"
	infraPostgres "github.com/linkmint/linkmint/internal/infra/postgres"
	infraPrometheus "github.com/linkmint/linkmint/internal/infra/prometheus"
	infraRedis "github.com/linkmint/linkmint/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.Int("redis_port", cfg.Redis.Port),
		zap.String("nats_host", cfg.NATS.Host),
		zap.Int("nats_port", cfg.NATS.Port),
		zap.Duration("dedup_window", cfg.Tracking.DedupWindow),
		zap.String("listen_addr", cfg.Tracking.ListenAddr),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.Publisher{},
		&appmodel.Offer{},
		&appmodel.OfferPublisher{},
		&appmodel.Link{},
		&appmodel.Click{},
		&appmodel.Conversion{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()

	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Fatal("Failed to connect to NATS", zap.Error(err))
	}
	defer natsConn.Drain()
	log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))

	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	if cfg.Tracking.CookieSecret == "" {
		log.Warn("Tracking cookie secret is not set; seen markers are disabled")
	}

	publisherRepo := apprepository.NewPublisherRepository(gormDB)
	offerRepo := apprepository.NewOfferRepository(gormDB)
	cachedOffers := apprepository.NewCachedOfferRepository(offerRepo, redisClient, cfg.Tracking.OfferCacheTTL, log)
	linkRepo := apprepository.NewLinkRepository(gormDB)
	clickRepo := apprepository.NewClickRepository(gormDB)
	conversionRepo := apprepository.NewConversionRepository(gormDB)

	resolver := appservice.NewIdentityResolver(publisherRepo)
	events := appservice.NewTrackingPublisher(js)
	dedup := appservice.NewDedupCache(redisClient, cfg.Tracking.DedupWindow, log)

	clickService := appservice.NewClickService(appservice.ClickServiceDeps{
		Logger:      log,
		Resolver:    resolver,
		Offers:      cachedOffers,
		Clicks:      clickRepo,
		Dedup:       dedup,
		Events:      events,
		DedupWindow: cfg.Tracking.DedupWindow,
	})

	conversionService := appservice.NewConversionService(appservice.ConversionServiceDeps{
		Logger:      log,
		Clicks:      clickRepo,
		Links:       linkRepo,
		Offers:      offerRepo,
		Conversions: conversionRepo,
		Events:      events,
	})

	linkService := appservice.NewLinkService(linkRepo, offerRepo, publisherRepo, resolver)

	statsConsumer := appservice.NewStatsConsumer(js, log, linkRepo)
	if err := statsConsumer.Start(); err != nil {
		log.Fatal("Failed to start stats consumer", zap.Error(err))
	}
	defer statsConsumer.Stop()

	server := appserver.New(appserver.Dependencies{
		Logger:    log,
		Postgres:  pool,
		Redis:     redisClient,
		NATS:      natsConn,
		JetStream: js,

		Clicks:      clickService,
		Conversions: conversionService,
		Links:       linkService,

		Markers:       httpUtil.NewMarkerSigner([]byte(cfg.Tracking.CookieSecret), cfg.Tracking.SeenCookieTTL),
		SeenCookieTTL: cfg.Tracking.SeenCookieTTL,
	})

	if err := server.Listen(cfg.Tracking.ListenAddr); err != nil {
		log.Fatal("Fiber server exited", zap.Error(err))
	}
}
