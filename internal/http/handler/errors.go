package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/linkmint/linkmint/internal/app/repository"
	"github.com/linkmint/linkmint/internal/app/service"
)

// statusForError maps domain errors onto the HTTP taxonomy: missing or
// malformed input is 400, absent entities are 404, duplicate attribution is
// 409, terminated offers are 410 and everything else is a 500.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingPublisher),
		errors.Is(err, service.ErrMissingOffer),
		errors.Is(err, service.ErrMissingToken),
		errors.Is(err, service.ErrMissingLink),
		errors.Is(err, service.ErrOfferMismatch):
		return fiber.StatusBadRequest, err.Error()
	case errors.Is(err, repository.ErrPublisherNotFound),
		errors.Is(err, repository.ErrOfferNotFound),
		errors.Is(err, repository.ErrLinkNotFound),
		errors.Is(err, repository.ErrClickNotFound),
		errors.Is(err, repository.ErrCommissionRuleNotFound):
		return fiber.StatusNotFound, notFoundMessage(err)
	case errors.Is(err, repository.ErrDuplicateConversion):
		return fiber.StatusConflict, "conversion already recorded"
	case errors.Is(err, service.ErrOfferNotActive):
		return fiber.StatusGone, "offer is no longer active"
	default:
		return fiber.StatusInternalServerError, "internal server error"
	}
}

func notFoundMessage(err error) string {
	switch {
	case errors.Is(err, repository.ErrPublisherNotFound):
		return "publisher not found"
	case errors.Is(err, repository.ErrOfferNotFound):
		return "offer not found"
	case errors.Is(err, repository.ErrLinkNotFound):
		return "link not found"
	case errors.Is(err, repository.ErrClickNotFound):
		return "click not found"
	default:
		return "commission rule not found"
	}
}

func fail(c *fiber.Ctx, err error) error {
	status, msg := statusForError(err)
	return c.Status(status).JSON(fiber.Map{
		"error": msg,
	})
}
