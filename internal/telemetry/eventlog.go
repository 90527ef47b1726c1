package telemetry

import (
	"context"
	"database/sql"
	"time"
)

// EventLog appends events to the append-only event_log table.
type EventLog struct{ db *sql.DB }

func NewEventLog(db *sql.DB) *EventLog { return &EventLog{db: db} }

func (r *EventLog) Record(ctx context.Context, typ, key string, payload any) error {
	data, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4)`,
		typ, key, data, time.Now().Unix())
	return err
}
