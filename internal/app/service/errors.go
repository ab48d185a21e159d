package service

import "errors"

// Validation errors surfaced to handlers as HTTP 400.
var (
	ErrMissingPublisher = errors.New("publisher identifier is required")
	ErrMissingOffer     = errors.New("offer id is required")
	ErrMissingToken     = errors.New("correlation token is required")
	ErrMissingLink      = errors.New("link id is required")
	ErrOfferMismatch    = errors.New("offer does not match the originating click")
)

// ErrOfferNotActive is returned when the target offer has been terminated.
var ErrOfferNotActive = errors.New("offer is no longer active")
