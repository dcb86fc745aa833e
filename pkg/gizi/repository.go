// Package gizi declares the contracts between the pure assessment
// packages and their I/O implementations: persistence, photo analysis,
// reference data loading and the exposed APIs.
package gizi

import (
	"context"
	"time"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
)

// Session is an assistant conversation about one child.
type Session struct {
	ID        string    `json:"id"`
	ChildID   string    `json:"child_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Repository persists children, measurements, intake logs and assistant
// sessions. Writes are append-only: nothing is updated in place, a
// child correction is stored as a new version.
//
// Lookups of missing records return an error with code
// errcode.NotFoundError.
type Repository interface {
	// Init creates the storage schema if it does not exist yet.
	Init(ctx context.Context) error

	// SaveChild stores a new version of a child profile.
	SaveChild(ctx context.Context, c child.Child) error

	// Child returns the latest version of a child.
	Child(ctx context.Context, id string) (child.Child, error)

	// ChildVersions returns all versions of a child, oldest first.
	ChildVersions(ctx context.Context, id string) ([]child.Child, error)

	// Children returns the latest version of every child ordered by name.
	Children(ctx context.Context) ([]child.Child, error)

	// AppendMeasurement stores an accepted measurement.
	AppendMeasurement(ctx context.Context, r history.Record) error

	// Measurements returns all records of a child ordered by timestamp
	// and sequence.
	Measurements(ctx context.Context, childID string) ([]history.Record, error)

	// AppendIntake stores a logged intake entry.
	AppendIntake(ctx context.Context, e nutrient.IntakeEntry) error

	// Intake returns all intake entries of a child in logging order.
	Intake(ctx context.Context, childID string) ([]nutrient.IntakeEntry, error)

	// SaveSession stores a new assistant session.
	SaveSession(ctx context.Context, s Session) error

	// Session returns a session by ID.
	Session(ctx context.Context, id string) (Session, error)

	// AppendMessage stores one chat turn.
	AppendMessage(ctx context.Context, m assistant.Message) error

	// Messages returns the turns of a session ordered by timestamp and
	// sequence.
	Messages(ctx context.Context, sessionID string) ([]assistant.Message, error)

	// Close releases storage resources.
	Close() error
}
