package service

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/linkmint/linkmint/internal/app/model"
	"github.com/nats-io/nats.go"
)

// EventPublisher emits post-commit tracking events. Implementations are
// best-effort: a failed publish never fails the request that produced it.
type EventPublisher interface {
	PublishClick(click *model.Click) error
	PublishConversion(conv *model.Conversion) error
}

// TrackingPublisher publishes tracking events to NATS JetStream.
type TrackingPublisher struct {
	js nats.JetStreamContext
}

// NewTrackingPublisher creates a new tracking event publisher.
func NewTrackingPublisher(js nats.JetStreamContext) *TrackingPublisher {
	return &TrackingPublisher{js: js}
}

// PublishClick publishes a click event to the stream.
func (p *TrackingPublisher) PublishClick(click *model.Click) error {
	event := model.TrackingEvent{
		ID:          uuid.NewString(),
		Kind:        model.TrackingEventClick,
		PublisherID: click.PublisherID,
		OfferID:     click.OfferID,
		ClickToken:  click.Token,
		Unique:      click.IsUnique,
		Timestamp:   time.Now(),
	}
	if click.LinkID != nil {
		event.LinkID = *click.LinkID
	}
	return p.publish(event)
}

// PublishConversion publishes a conversion event to the stream.
func (p *TrackingPublisher) PublishConversion(conv *model.Conversion) error {
	event := model.TrackingEvent{
		ID:          uuid.NewString(),
		Kind:        model.TrackingEventConversion,
		PublisherID: conv.PublisherID,
		OfferID:     conv.OfferID,
		Timestamp:   time.Now(),
	}
	if conv.LinkID != nil {
		event.LinkID = *conv.LinkID
	}
	if conv.ClickToken != nil {
		event.ClickToken = *conv.ClickToken
	}
	return p.publish(event)
}

func (p *TrackingPublisher) publish(event model.TrackingEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	_, err = p.js.Publish(model.TrackingStreamSubject, data)
	return err
}
