// Package tool provides the database context provider consulted by the
// agent before every model call.
//
// Initialization is explicit and staged:
//
//	uninitialized → introspecting → generating → ready
//
// A cached diagram jumps straight to ready without touching the database.
// Any failure parks the tool in the failed state and is reported as an
// *InitError naming the stage; the tool still serves table names.
package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/DachengChen/erdchat/applog"
	"github.com/DachengChen/erdchat/db"
	"github.com/DachengChen/erdchat/erd"
	"go.uber.org/zap"
)

// State is the initialization state of a DatabaseTool.
type State int

const (
	StateUninitialized State = iota
	StateIntrospecting
	StateGenerating
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIntrospecting:
		return "introspecting"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// InitError reports which initialization stage failed.
type InitError struct {
	Stage State
	Err   error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("database tool %s: %v", e.Stage, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// DatabaseTool serves the cached ERD, or table names when there is none.
type DatabaseTool struct {
	q    db.Querier
	gen  *erd.Generator
	path string
	log  *zap.Logger

	mu      sync.Mutex
	state   State
	diagram string
}

// NewDatabaseTool wires the tool; it does no I/O until Initialize.
func NewDatabaseTool(q db.Querier, gen *erd.Generator, log *zap.Logger) *DatabaseTool {
	log = applog.OrNop(log)
	return &DatabaseTool{q: q, gen: gen, path: gen.Path(), log: log}
}

// Name identifies the tool.
func (t *DatabaseTool) Name() string {
	return "database"
}

// State reports the current initialization state.
func (t *DatabaseTool) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Diagram returns the loaded diagram, or "" when there is none.
func (t *DatabaseTool) Diagram() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.diagram
}

// Initialize loads the cached diagram or builds it from a live
// introspection. It is a no-op once the tool is ready.
func (t *DatabaseTool) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StateReady {
		return nil
	}

	text, err := erd.Load(t.path)
	switch {
	case err == nil:
		t.diagram = text
		t.state = StateReady
		t.log.Info("erd loaded", zap.String("path", t.path))
		return nil
	case errors.Is(err, erd.ErrNotCached):
		t.log.Warn("erd file not found", zap.String("path", t.path))
	default:
		// Unreadable cache: treat as absent and rebuild.
		t.log.Warn("erd file unreadable", zap.String("path", t.path), zap.Error(err))
	}

	return t.build(ctx)
}

// Regenerate rebuilds the diagram even if a cached copy exists.
func (t *DatabaseTool) Regenerate(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.build(ctx)
}

// build runs introspection and generation; callers hold t.mu.
func (t *DatabaseTool) build(ctx context.Context) error {
	t.state = StateIntrospecting
	names, err := db.FetchTableNames(ctx, t.q)
	if err != nil {
		return t.fail(err)
	}
	t.log.Info("found tables", zap.Strings("tables", names))

	snap, err := db.FetchTableDetails(ctx, t.q, names)
	if err != nil {
		return t.fail(err)
	}

	t.state = StateGenerating
	if _, err := t.gen.Generate(ctx, snap); err != nil {
		return t.fail(err)
	}

	// Re-read so what we serve is exactly what is on disk.
	text, err := erd.Load(t.path)
	if err != nil {
		return t.fail(err)
	}
	t.diagram = text
	t.state = StateReady
	return nil
}

func (t *DatabaseTool) fail(err error) error {
	ie := &InitError{Stage: t.state, Err: err}
	t.state = StateFailed
	t.log.Error("initialization failed", zap.Stringer("stage", ie.Stage), zap.Error(err))
	return ie
}

// Context returns the cached diagram verbatim. Without one it falls back
// to a comma-joined list of table names; if that query fails too there
// is no context.
func (t *DatabaseTool) Context(ctx context.Context) (string, bool) {
	if d := t.Diagram(); d != "" {
		return d, true
	}

	names, err := db.FetchTableNames(ctx, t.q)
	if err != nil {
		t.log.Error("error getting database context", zap.Error(err))
		return "", false
	}
	return strings.Join(names, ", "), true
}
