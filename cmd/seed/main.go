// Command seed creates the entity tables, loads a small development dataset
// into Postgres, and publishes matching insert events on the change topic so
// a running search service picks the rows up without a restart.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
	"github.com/kwhittaker/estatesearch/internal/stream"
	"github.com/kwhittaker/estatesearch/pkg/config"
	"github.com/kwhittaker/estatesearch/pkg/kafka"
	"github.com/kwhittaker/estatesearch/pkg/logger"
	"github.com/kwhittaker/estatesearch/pkg/postgres"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT,
		status TEXT NOT NULL,
		status_display TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS activities (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		notes TEXT,
		status TEXT NOT NULL,
		status_display TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		city TEXT,
		status TEXT NOT NULL,
		status_display TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS properties (
		id TEXT PRIMARY KEY,
		address TEXT NOT NULL,
		city TEXT,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS realtors (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		agency TEXT,
		city TEXT,
		updated_at TIMESTAMPTZ NOT NULL,
		deleted_at TIMESTAMPTZ
	)`,
}

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	publish := flag.Bool("publish", true, "publish insert events to the change topic")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	pg, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("postgres unavailable", "error", err)
		os.Exit(1)
	}
	defer pg.Close()

	ctx := context.Background()
	for _, stmt := range schema {
		if _, err := pg.DB.ExecContext(ctx, stmt); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
	}

	now := time.Now().UTC()
	events := fixtures(now)

	err = pg.InTx(ctx, func(tx *sql.Tx) error {
		for _, ev := range events {
			if err := insertRecord(ctx, tx, ev); err != nil {
				return fmt.Errorf("inserting %s %s: %w", ev.Entity, ev.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
	slog.Info("seeded database", "rows", len(events))

	if !*publish {
		return
	}
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.SearchChanges)
	defer producer.Close()

	batch := make([]kafka.Event, 0, len(events))
	for _, ev := range events {
		batch = append(batch, kafka.Event{Key: ev.ID, Value: ev})
	}
	if err := producer.PublishBatch(ctx, batch); err != nil {
		slog.Error("publishing change events failed", "error", err)
		os.Exit(1)
	}
	slog.Info("published change events", "count", len(batch), "topic", cfg.Kafka.Topics.SearchChanges)
}

func insertRecord(ctx context.Context, tx *sql.Tx, ev stream.ChangeEvent) error {
	switch ev.Entity {
	case stream.EntityTask:
		r := ev.Task
		_, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, title, description, status, status_display, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title, description = EXCLUDED.description,
				status = EXCLUDED.status, status_display = EXCLUDED.status_display,
				updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
			r.ID, r.Title, r.Description, r.StatusRaw, r.StatusDisplay, r.UpdatedAt)
		return err
	case stream.EntityActivity:
		r := ev.Activity
		_, err := tx.ExecContext(ctx, `
			INSERT INTO activities (id, title, notes, status, status_display, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				title = EXCLUDED.title, notes = EXCLUDED.notes,
				status = EXCLUDED.status, status_display = EXCLUDED.status_display,
				updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
			r.ID, r.Title, r.Notes, r.StatusRaw, r.StatusDisplay, r.UpdatedAt)
		return err
	case stream.EntityListing:
		r := ev.Listing
		_, err := tx.ExecContext(ctx, `
			INSERT INTO listings (id, address, city, status, status_display, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO UPDATE SET
				address = EXCLUDED.address, city = EXCLUDED.city,
				status = EXCLUDED.status, status_display = EXCLUDED.status_display,
				updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
			r.ID, r.Address, r.City, r.StatusRaw, r.StatusDisplay, r.UpdatedAt)
		return err
	case stream.EntityProperty:
		r := ev.Property
		_, err := tx.ExecContext(ctx, `
			INSERT INTO properties (id, address, city, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET
				address = EXCLUDED.address, city = EXCLUDED.city,
				updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
			r.ID, r.Address, r.City, r.UpdatedAt)
		return err
	case stream.EntityRealtor:
		r := ev.Realtor
		_, err := tx.ExecContext(ctx, `
			INSERT INTO realtors (id, name, agency, city, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name, agency = EXCLUDED.agency, city = EXCLUDED.city,
				updated_at = EXCLUDED.updated_at, deleted_at = NULL`,
			r.ID, r.Name, r.Agency, r.City, r.UpdatedAt)
		return err
	default:
		return fmt.Errorf("unknown entity %q", ev.Entity)
	}
}

func fixtures(now time.Time) []stream.ChangeEvent {
	return []stream.ChangeEvent{
		{Op: document.OpInsert, Entity: stream.EntityTask, ID: "task-1001", Task: &document.TaskRecord{
			ID: "task-1001", Title: "Replace window hinge", Description: "North bedroom window does not close fully",
			StatusRaw: "open", StatusDisplay: "Open", UpdatedAt: now.Add(-2 * time.Hour),
		}},
		{Op: document.OpInsert, Entity: stream.EntityTask, ID: "task-1002", Task: &document.TaskRecord{
			ID: "task-1002", Title: "Annual boiler inspection", Description: "Certify before the heating season",
			StatusRaw: "in_progress", StatusDisplay: "In progress", UpdatedAt: now.Add(-30 * time.Minute),
		}},
		{Op: document.OpInsert, Entity: stream.EntityActivity, ID: "act-2001", Activity: &document.ActivityRecord{
			ID: "act-2001", Title: "Viewing scheduled", Notes: "Couple interested in the garden apartment",
			StatusRaw: "planned", StatusDisplay: "Planned", UpdatedAt: now.Add(-45 * time.Minute),
		}},
		{Op: document.OpInsert, Entity: stream.EntityListing, ID: "lst-3001", Listing: &document.ListingRecord{
			ID: "lst-3001", Address: "Kirkegata 12B", City: "Oslo",
			StatusRaw: "for_sale", StatusDisplay: "For sale", UpdatedAt: now.Add(-3 * time.Hour),
		}},
		{Op: document.OpInsert, Entity: stream.EntityListing, ID: "lst-3002", Listing: &document.ListingRecord{
			ID: "lst-3002", Address: "Strandveien 4", City: "Trondheim",
			StatusRaw: "rented", StatusDisplay: "Rented", UpdatedAt: now.Add(-10 * time.Minute),
		}},
		{Op: document.OpInsert, Entity: stream.EntityProperty, ID: "prp-4001", Property: &document.PropertyRecord{
			ID: "prp-4001", Address: "Fjellgata 8", City: "Bergen", UpdatedAt: now.Add(-6 * time.Hour),
		}},
		{Op: document.OpInsert, Entity: stream.EntityRealtor, ID: "rea-5001", Realtor: &document.RealtorRecord{
			ID: "rea-5001", Name: "Åse Strøm", Agency: "Fjord Eiendom", City: "Bergen", UpdatedAt: now.Add(-24 * time.Hour),
		}},
	}
}
