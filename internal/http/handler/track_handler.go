package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/linkmint/linkmint/internal/app/service"
	httpUtil "github.com/linkmint/linkmint/internal/http/util"
	"go.uber.org/zap"
)

// TrackDeps groups dependencies required by the click tracking handler.
type TrackDeps struct {
	Logger        *zap.Logger
	Clicks        service.ClickService
	Postgres      *pgxpool.Pool
	Markers       *httpUtil.MarkerSigner
	SeenCookieTTL time.Duration
}

// TrackHandler implements click ingestion and the advertiser redirect.
type TrackHandler struct {
	logger        *zap.Logger
	clicks        service.ClickService
	postgres      *pgxpool.Pool
	markers       *httpUtil.MarkerSigner
	seenCookieTTL time.Duration
}

// NewTrackHandler creates a tracking handler with the provided dependencies.
func NewTrackHandler(deps TrackDeps) *TrackHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackHandler{
		logger:        logger,
		clicks:        deps.Clicks,
		postgres:      deps.Postgres,
		markers:       deps.Markers,
		seenCookieTTL: deps.SeenCookieTTL,
	}
}

// Register wires tracking routes onto the provided router.
func (h *TrackHandler) Register(router fiber.Router) {
	router.Get("/", h.Health)
	router.Get("/health", h.Health)
	router.Get("/c", h.Track)
}

// Health reports liveness and verifies datastore connectivity.
func (h *TrackHandler) Health(c *fiber.Ctx) error {
	status := "ok"
	database := "ok"

	if h.postgres != nil {
		parent := c.UserContext()
		if parent == nil {
			parent = context.Background()
		}
		ctx, cancel := context.WithTimeout(parent, 2*time.Second)
		defer cancel()
		if err := h.postgres.Ping(ctx); err != nil {
			h.logger.Warn("health check database ping failed", zap.Error(err))
			status = "degraded"
			database = "unreachable"
		}
	}

	code := fiber.StatusOK
	if status != "ok" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(fiber.Map{
		"service":  "linkmint",
		"status":   status,
		"database": database,
		"time":     time.Now().UTC().Format(time.RFC3339),
	})
}

// Track handles GET /c?pub=<id|email>&offer=<id>&link=<id> and answers with
// a 302 to the advertiser URL carrying the correlation token.
func (h *TrackHandler) Track(c *fiber.Ctx) error {
	offerID := int64(c.QueryInt("offer"))

	input := service.RecordClickInput{
		PublisherRef: c.Query("pub"),
		OfferID:      offerID,
		LinkID:       c.Query("link"),
		IP:           c.IP(),
		UserAgent:    c.Get("User-Agent"),
		SeenMarkerValid: func(publisherID string) bool {
			marker := c.Cookies(httpUtil.CookieName(publisherID, offerID))
			if marker == "" {
				return false
			}
			return h.markers.Validate(publisherID, offerID, marker) == nil
		},
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := h.clicks.RecordClick(ctx, input)
	if err != nil {
		h.logger.Warn("click rejected",
			zap.String("pub", input.PublisherRef),
			zap.Int64("offer_id", offerID),
			zap.Error(err))
		return fail(c, err)
	}

	if result.SetSeenMarker {
		h.setSeenCookie(c, result.Click.PublisherID, offerID)
	}

	return c.Redirect(result.RedirectURL, fiber.StatusFound)
}

func (h *TrackHandler) setSeenCookie(c *fiber.Ctx, publisherID string, offerID int64) {
	marker, err := h.markers.Issue(publisherID, offerID)
	if err != nil {
		// A missing cookie secret degrades to database-only dedup.
		h.logger.Warn("failed to issue seen marker", zap.Error(err))
		return
	}

	c.Cookie(&fiber.Cookie{
		Name:     httpUtil.CookieName(publisherID, offerID),
		Value:    marker,
		Expires:  time.Now().Add(h.seenCookieTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
