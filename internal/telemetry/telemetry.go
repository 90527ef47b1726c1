// Package telemetry records fire-and-forget diagnostic events about student
// interaction. Delivery is best-effort everywhere: a failed sink is logged
// and never blocks or retries.
package telemetry

import (
	"context"
	"encoding/json"
	"log"
)

// Sink records one event. typ names the event ("QuestionAnswered",
// "AssessmentCompleted"), key is its natural key (the assessment id).
type Sink interface {
	Record(ctx context.Context, typ, key string, payload any) error
}

// Multi fans an event out to every sink; per-sink failures are logged and
// the rest still receive it.
type Multi []Sink

func (m Multi) Record(ctx context.Context, typ, key string, payload any) error {
	for _, s := range m {
		if err := s.Record(ctx, typ, key, payload); err != nil {
			log.Printf("telemetry: %T: %v", s, err)
		}
	}
	return nil
}

func marshalPayload(payload any) (string, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
