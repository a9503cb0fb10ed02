// Package loader reads the warm-start snapshot from PostgreSQL. It projects
// each entity table down to the minimal record shape the index adapters
// accept; soft-deleted rows are excluded at the query level so they never
// reach the index.
package loader

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/kwhittaker/estatesearch/internal/index/document"
)

// Loader fetches snapshot collections from the application database.
type Loader struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Loader over the given database handle.
func New(db *sql.DB) *Loader {
	return &Loader{
		db:     db,
		logger: slog.Default().With("component", "snapshot-loader"),
	}
}

// Load fetches every entity collection and assembles the warm-start
// snapshot.
func (l *Loader) Load(ctx context.Context) (document.Snapshot, error) {
	start := time.Now()
	var snap document.Snapshot
	var err error

	if snap.Tasks, err = l.loadTasks(ctx); err != nil {
		return document.Snapshot{}, fmt.Errorf("loading tasks: %w", err)
	}
	if snap.Activities, err = l.loadActivities(ctx); err != nil {
		return document.Snapshot{}, fmt.Errorf("loading activities: %w", err)
	}
	if snap.Listings, err = l.loadListings(ctx); err != nil {
		return document.Snapshot{}, fmt.Errorf("loading listings: %w", err)
	}
	if snap.Properties, err = l.loadProperties(ctx); err != nil {
		return document.Snapshot{}, fmt.Errorf("loading properties: %w", err)
	}
	if snap.Realtors, err = l.loadRealtors(ctx); err != nil {
		return document.Snapshot{}, fmt.Errorf("loading realtors: %w", err)
	}

	l.logger.Info("snapshot loaded",
		"tasks", len(snap.Tasks),
		"activities", len(snap.Activities),
		"listings", len(snap.Listings),
		"properties", len(snap.Properties),
		"realtors", len(snap.Realtors),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return snap, nil
}

func (l *Loader) loadTasks(ctx context.Context) ([]document.TaskRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(description, ''), status, status_display, updated_at
		FROM tasks
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.TaskRecord
	for rows.Next() {
		var r document.TaskRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Description, &r.StatusRaw, &r.StatusDisplay, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Loader) loadActivities(ctx context.Context) ([]document.ActivityRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, title, COALESCE(notes, ''), status, status_display, updated_at
		FROM activities
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.ActivityRecord
	for rows.Next() {
		var r document.ActivityRecord
		if err := rows.Scan(&r.ID, &r.Title, &r.Notes, &r.StatusRaw, &r.StatusDisplay, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Loader) loadListings(ctx context.Context) ([]document.ListingRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, address, COALESCE(city, ''), status, status_display, updated_at
		FROM listings
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.ListingRecord
	for rows.Next() {
		var r document.ListingRecord
		if err := rows.Scan(&r.ID, &r.Address, &r.City, &r.StatusRaw, &r.StatusDisplay, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Loader) loadProperties(ctx context.Context) ([]document.PropertyRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, address, COALESCE(city, ''), updated_at
		FROM properties
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.PropertyRecord
	for rows.Next() {
		var r document.PropertyRecord
		if err := rows.Scan(&r.ID, &r.Address, &r.City, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (l *Loader) loadRealtors(ctx context.Context) ([]document.RealtorRecord, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(agency, ''), COALESCE(city, ''), updated_at
		FROM realtors
		WHERE deleted_at IS NULL`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []document.RealtorRecord
	for rows.Next() {
		var r document.RealtorRecord
		if err := rows.Scan(&r.ID, &r.Name, &r.Agency, &r.City, &r.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
