// Package stream consumes entity change events from Kafka and applies them
// to the index engine, keeping the index consistent with the persistence
// layer after the warm start. The persistence layer translates soft deletes
// into delete events before they reach this topic.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kwhittaker/estatesearch/internal/index"
	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/pkg/kafka"
	"github.com/kwhittaker/estatesearch/pkg/metrics"
)

// Entity names carried by ChangeEvent.
const (
	EntityTask     = "task"
	EntityActivity = "activity"
	EntityListing  = "listing"
	EntityProperty = "property"
	EntityRealtor  = "realtor"
)

// ChangeEvent is the JSON payload the persistence layer publishes whenever
// a searchable entity is created, edited, or deleted. Exactly one record
// field matching Entity is set for insert and update ops; delete carries
// only the id.
type ChangeEvent struct {
	Op     document.ChangeOp `json:"op"`
	Entity string            `json:"entity"`
	ID     string            `json:"id"`

	Task     *document.TaskRecord     `json:"task,omitempty"`
	Activity *document.ActivityRecord `json:"activity,omitempty"`
	Listing  *document.ListingRecord  `json:"listing,omitempty"`
	Property *document.PropertyRecord `json:"property,omitempty"`
	Realtor  *document.RealtorRecord  `json:"realtor,omitempty"`
}

// ToChange converts the wire event into an index change via the adapter for
// its entity kind.
func (ev ChangeEvent) ToChange() (document.Change, error) {
	if ev.Op == document.OpDelete {
		if ev.ID == "" {
			return document.Change{}, fmt.Errorf("delete event missing id")
		}
		return document.Delete(ev.ID), nil
	}

	var doc document.Doc
	switch ev.Entity {
	case EntityTask:
		if ev.Task == nil {
			return document.Change{}, fmt.Errorf("%s event for task missing record", ev.Op)
		}
		doc = document.FromTask(*ev.Task)
	case EntityActivity:
		if ev.Activity == nil {
			return document.Change{}, fmt.Errorf("%s event for activity missing record", ev.Op)
		}
		doc = document.FromActivity(*ev.Activity)
	case EntityListing:
		if ev.Listing == nil {
			return document.Change{}, fmt.Errorf("%s event for listing missing record", ev.Op)
		}
		doc = document.FromListing(*ev.Listing)
	case EntityProperty:
		if ev.Property == nil {
			return document.Change{}, fmt.Errorf("%s event for property missing record", ev.Op)
		}
		doc = document.FromProperty(*ev.Property)
	case EntityRealtor:
		if ev.Realtor == nil {
			return document.Change{}, fmt.Errorf("%s event for realtor missing record", ev.Op)
		}
		doc = document.FromRealtor(*ev.Realtor)
	default:
		return document.Change{}, fmt.Errorf("unknown entity %q", ev.Entity)
	}

	switch ev.Op {
	case document.OpInsert:
		return document.Insert(doc), nil
	case document.OpUpdate:
		return document.Update(doc), nil
	default:
		return document.Change{}, fmt.Errorf("unknown op %q", ev.Op)
	}
}

// Invalidator clears cached query results after the index mutates. A nil
// Invalidator disables invalidation.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// HandleChange returns a Kafka MessageHandler that applies each change
// event to the engine. Malformed events are logged and skipped rather than
// redelivered; they will never become valid.
func HandleChange(engine *index.Engine, inv Invalidator, m *metrics.Metrics) kafka.MessageHandler {
	logger := slog.Default().With("component", "change-stream")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ChangeEvent](value)
		if err != nil {
			logger.Error("failed to decode change event", "error", err, "key", string(key))
			return nil
		}
		change, err := event.ToChange()
		if err != nil {
			logger.Error("malformed change event skipped", "error", err, "key", string(key))
			return nil
		}

		engine.Apply(change)
		logger.Debug("change applied", "op", event.Op, "entity", event.Entity, "id", event.ID)

		if m != nil {
			m.ChangesAppliedTotal.WithLabelValues(string(event.Op)).Inc()
			st := engine.Stats()
			m.IndexDocuments.Set(float64(st.Docs))
			m.IndexTokens.Set(float64(st.Tokens))
		}
		if inv != nil {
			if err := inv.Invalidate(ctx); err != nil {
				logger.Warn("cache invalidation failed", "error", err)
			}
		}
		return nil
	}
}
