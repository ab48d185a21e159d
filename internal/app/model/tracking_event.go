package model

import "time"

// Tracking event kinds carried on the JetStream pipeline.
const (
	TrackingEventClick      = "click"
	TrackingEventConversion = "conversion"
)

// TrackingEvent is the post-commit notification published for every recorded
// click and conversion. The stats consumer folds these into link counters and
// prometheus metrics; rows in Postgres stay authoritative.
type TrackingEvent struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	PublisherID string    `json:"publisher_id"`
	OfferID     int64     `json:"offer_id"`
	LinkID      string    `json:"link_id,omitempty"`
	ClickToken  string    `json:"click_token,omitempty"`
	Unique      bool      `json:"unique,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

const (
	TrackingStreamName     = "TRACKING"
	TrackingStreamSubject  = "tracking.events"
	TrackingConsumerName   = "link-stats"
	TrackingStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
