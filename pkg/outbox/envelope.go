package outbox

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EnvelopeVersion is the layout Emit writes and consumers must accept.
const EnvelopeVersion = 1

// ActorRef names whoever caused the event. Background jobs leave UserID
// empty and put their job name in Role.
type ActorRef struct {
	UserID     uuid.UUID  `json:"userId"`
	Role       string     `json:"role,omitempty"`
	SupplierID *uuid.UUID `json:"supplierId,omitempty"`
}

// SystemActor is the ActorRef for work done by a named background job.
func SystemActor(job string) *ActorRef {
	return &ActorRef{Role: job}
}

// PayloadEnvelope is the JSON stored in outbox_events.payload and published
// verbatim as the message body.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// Validate checks the fields every consumer relies on.
func (e PayloadEnvelope) Validate() error {
	if e.Version != EnvelopeVersion {
		return fmt.Errorf("unsupported envelope version %d", e.Version)
	}
	if e.EventID == "" {
		return errors.New("envelope missing eventId")
	}
	if data := bytes.TrimSpace(e.Data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("envelope missing data")
	}
	return nil
}

// DecodeData unmarshals the data field into v.
func (e PayloadEnvelope) DecodeData(v any) error {
	return json.Unmarshal(e.Data, v)
}
