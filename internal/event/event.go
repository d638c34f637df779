package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedPayload is returned when an ingress payload is not a JSON object.
// Callers drop the record and log; a malformed payload is never fatal to the stream.
var ErrMalformedPayload = errors.New("malformed event payload")

// AdEvent is the validated domain record for one advertising interaction.
//
// Decoding is deliberately permissive: user_id and event_timestamp may be
// absent here and are only enforced by the hot-path formatter. The cold path
// writes NULLs for them unchanged.
type AdEvent struct {
	EventID        string   `json:"event_id"`
	UserID         string   `json:"user_id"`
	EventType      string   `json:"event_type"`
	ProductID      string   `json:"product_id"`
	EventTimestamp *float64 `json:"event_timestamp"`
	Revenue        float64  `json:"revenue"`
}

// HasTimestamp reports whether the producer supplied an event_timestamp.
func (e *AdEvent) HasTimestamp() bool {
	return e.EventTimestamp != nil
}

// Decode parses a raw ingress payload into an AdEvent.
//
// The payload must be a JSON object; anything else (truncated JSON, arrays,
// bare scalars, null) yields ErrMalformedPayload. Missing revenue defaults to
// 0.0 and missing product_id to the empty string via the zero values.
func Decode(raw []byte) (*AdEvent, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedPayload
	}

	var e AdEvent
	if err := json.Unmarshal(trimmed, &e); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	return &e, nil
}
