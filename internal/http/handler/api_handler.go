package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/linkmint/linkmint/internal/app/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// APIDeps groups dependencies required by the link provisioning API.
type APIDeps struct {
	Logger      *zap.Logger
	LinkService service.LinkService
}

// APIHandler implements the tracking-link provisioning endpoints.
type APIHandler struct {
	logger      *zap.Logger
	linkService service.LinkService
}

// NewAPIHandler creates an API handler with the provided dependencies.
func NewAPIHandler(deps APIDeps) *APIHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &APIHandler{
		logger:      logger,
		linkService: deps.LinkService,
	}
}

// Register wires API routes onto the provided router.
func (h *APIHandler) Register(router fiber.Router) {
	api := router.Group("/api")
	{
		links := api.Group("/links")
		{
			links.Post("/", h.CreateLink)
			links.Get("/", h.ListLinks)
			links.Get("/:id", h.GetLink)
		}
	}
}

// CreateLinkRequest represents the request body for provisioning a link.
type CreateLinkRequest struct {
	OfferID           int64   `json:"offer_id"`
	Publisher         string  `json:"publisher"`
	Name              string  `json:"name,omitempty"`
	CommissionPercent *string `json:"commission_percent,omitempty"`
}

// LinkResponse represents a tracking link in API responses.
type LinkResponse struct {
	ID                string    `json:"id"`
	OfferID           int64     `json:"offer_id"`
	PublisherID       string    `json:"publisher_id"`
	Name              string    `json:"name"`
	CommissionPercent *string   `json:"commission_percent,omitempty"`
	ClickCount        int64     `json:"click_count"`
	ConversionCount   int64     `json:"conversion_count"`
	CreatedAt         time.Time `json:"created_at"`
}

func linkResponse(link *model.Link) LinkResponse {
	resp := LinkResponse{
		ID:              link.ID,
		OfferID:         link.OfferID,
		PublisherID:     link.PublisherID,
		Name:            link.Name,
		ClickCount:      link.ClickCount,
		ConversionCount: link.ConversionCount,
		CreatedAt:       link.CreatedAt,
	}
	if link.CommissionPercent != nil {
		pct := link.CommissionPercent.StringFixed(2)
		resp.CommissionPercent = &pct
	}
	return resp
}

// CreateLink handles POST /api/links
func (h *APIHandler) CreateLink(c *fiber.Ctx) error {
	var req CreateLinkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.Publisher == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "publisher is required",
		})
	}

	input := service.CreateLinkInput{
		OfferID:      req.OfferID,
		PublisherRef: req.Publisher,
		Name:         req.Name,
	}
	if req.CommissionPercent != nil {
		pct, err := decimal.NewFromString(*req.CommissionPercent)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "commission_percent is not a valid decimal",
			})
		}
		input.CommissionPercent = &pct
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, err := h.linkService.CreateLink(ctx, input)
	if err != nil {
		h.logger.Warn("failed to create link", zap.Error(err))
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(linkResponse(link))
}

// ListLinks handles GET /api/links?publisher=<id|email>
func (h *APIHandler) ListLinks(c *fiber.Ctx) error {
	publisher := c.Query("publisher")
	if publisher == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "publisher is required",
		})
	}

	limit := 20
	if parsed := c.QueryInt("limit"); parsed > 0 && parsed <= 100 {
		limit = parsed
	}
	offset := 0
	if parsed := c.QueryInt("offset"); parsed > 0 {
		offset = parsed
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	links, err := h.linkService.ListLinks(ctx, publisher, limit, offset)
	if err != nil {
		h.logger.Warn("failed to list links", zap.Error(err))
		return fail(c, err)
	}

	response := make([]LinkResponse, len(links))
	for i := range links {
		response[i] = linkResponse(&links[i])
	}

	return c.JSON(fiber.Map{
		"links":  response,
		"limit":  limit,
		"offset": offset,
		"count":  len(response),
	})
}

// GetLink handles GET /api/links/:id
func (h *APIHandler) GetLink(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "id is required",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	link, err := h.linkService.GetLink(ctx, id)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(linkResponse(link))
}
