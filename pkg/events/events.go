package events

import (
	"time"

	"github.com/google/uuid"
)

// RatingCreatedEvent is the wire contract between the rating and notification
// services. It is serialized as the UTF-8 JSON message body and is immutable
// once published. There is no schema versioning: both sides must agree exactly.
// The uuid fields make a malformed identifier a deserialization failure, so
// the consumer discards it instead of requeueing it forever.
type RatingCreatedEvent struct {
	ID                uuid.UUID `json:"id"`
	ServiceProviderID uuid.UUID `json:"serviceProviderId"`
	CustomerID        uuid.UUID `json:"customerId"`
	Score             int       `json:"score"`
	Comment           *string   `json:"comment"`
	CreatedAt         time.Time `json:"createdAt"`
}
