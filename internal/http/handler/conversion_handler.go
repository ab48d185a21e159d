package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/internal/app/service"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ConversionDeps groups dependencies required by conversion handlers.
type ConversionDeps struct {
	Logger      *zap.Logger
	Conversions service.ConversionService
}

// ConversionHandler implements the postback and webhook conversion flows.
type ConversionHandler struct {
	logger      *zap.Logger
	conversions service.ConversionService
}

// NewConversionHandler creates a conversion handler with the provided
// dependencies.
func NewConversionHandler(deps ConversionDeps) *ConversionHandler {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversionHandler{
		logger:      logger,
		conversions: deps.Conversions,
	}
}

// Register wires conversion routes onto the provided router.
func (h *ConversionHandler) Register(router fiber.Router) {
	router.Get("/postback", h.Postback)
	router.Post("/webhook/conversion", h.Webhook)
}

// ConversionResponse is the JSON body returned for a recorded conversion.
type ConversionResponse struct {
	ID         int64  `json:"id"`
	OfferID    int64  `json:"offer_id"`
	Amount     string `json:"amount"`
	Commission string `json:"commission"`
	Status     string `json:"status"`
}

// Postback handles GET /postback?token=<uuid>&offer=<id>&amount=<decimal>,
// the direct conversion signal keyed by the click correlation token.
func (h *ConversionHandler) Postback(c *fiber.Ctx) error {
	input := service.TokenConversionInput{
		Token:   c.Query("token"),
		OfferID: int64(c.QueryInt("offer")),
	}

	if raw := c.Query("amount"); raw != "" {
		amount, err := decimal.NewFromString(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "amount is not a valid decimal",
			})
		}
		input.Amount = &amount
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	conv, err := h.conversions.AttributeByToken(ctx, input)
	if err != nil {
		h.logger.Warn("postback rejected", zap.String("token", input.Token), zap.Error(err))
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ConversionResponse{
		ID:         conv.ID,
		OfferID:    conv.OfferID,
		Amount:     conv.Amount.StringFixed(2),
		Commission: conv.CommissionAmount.StringFixed(2),
		Status:     conv.Status,
	})
}

// WebhookRequest is the body of the advertiser conversion webhook.
type WebhookRequest struct {
	LinkID         string `json:"link_id"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

// Webhook handles POST /webhook/conversion, the link-keyed conversion signal
// fired by advertisers that do not carry the correlation token through.
func (h *ConversionHandler) Webhook(c *fiber.Ctx) error {
	var req WebhookRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	ctx := c.UserContext()
	if ctx == nil {
		ctx = context.Background()
	}

	conv, err := h.conversions.AttributeByLink(ctx, service.LinkConversionInput{
		LinkID:         req.LinkID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.logger.Warn("webhook rejected", zap.String("link_id", req.LinkID), zap.Error(err))
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(ConversionResponse{
		ID:         conv.ID,
		OfferID:    conv.OfferID,
		Amount:     conv.Amount.StringFixed(2),
		Commission: conv.CommissionAmount.StringFixed(2),
		Status:     conv.Status,
	})
}
