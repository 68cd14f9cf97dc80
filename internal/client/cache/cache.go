// Package cache keeps a local copy of one server-owned collection and
// mutates it on the user's behalf.
//
// Toggles are optimistic: the flag and its counter move together before the
// request is sent, and a failed request flips the record back, the counter
// following the flag.
// Create and Update adopt the record the server returns. Remove is gated by
// a Confirmer and only touches the local list after the server agreed.
// Load is the only full resync; a failed Load leaves the cache as it was.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/dmara/internal/client/client"
	"github.com/dmitrijs2005/dmara/internal/client/events"
	"github.com/dmitrijs2005/dmara/internal/client/session"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

var (
	ErrUnsupported  = errors.New("operation not supported by this collection")
	ErrUnknownField = errors.New("unknown toggle field")
	ErrBadOrder     = errors.New("reorder must list every record exactly once")
)

// Endpoint is the remote side of one collection. Collections that lack an
// operation return ErrUnsupported from it.
type Endpoint[T, P any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, in P) (T, error)
	Update(ctx context.Context, id int64, in P) (T, error)
	Delete(ctx context.Context, id int64) error
	Toggle(ctx context.Context, id int64, field string) error
}

// Toggle describes a boolean field and the counter that follows it. Count
// is nil for flags without a counter.
type Toggle[T any] struct {
	Flag  func(*T) *bool
	Count func(*T) *int
}

type Schema[T, P any] struct {
	ID       func(T) int64
	Toggles  map[string]Toggle[T]
	Validate func(P) error
}

// Confirmer is asked before a record is removed.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

type NoticeKind string

const (
	NoticeRollback        NoticeKind = "rollback"
	NoticeReorderReverted NoticeKind = "reorder_reverted"
)

// Notice is raised when a change the user already saw had to be undone.
type Notice struct {
	Collection string
	Kind       NoticeKind
	ID         int64
	Field      string
	Err        error
}

func (n Notice) String() string {
	switch n.Kind {
	case NoticeRollback:
		return fmt.Sprintf("could not update %s of %s #%d (%s); change undone", n.Field, n.Collection, n.ID, client.Reason(n.Err))
	default:
		return fmt.Sprintf("could not save %s order (%s); order restored", n.Collection, client.Reason(n.Err))
	}
}

type options struct {
	logger logging.Logger
}

type Option func(*options)

func WithLogger(l logging.Logger) Option { return func(o *options) { o.logger = l } }

type Cache[T, P any] struct {
	mu      sync.Mutex
	records []T
	loaded  bool

	name   string
	ep     Endpoint[T, P]
	schema Schema[T, P]
	tokens session.TokenSource
	logger logging.Logger

	changes events.Emitter[[]T]
	notices events.Emitter[Notice]
}

func New[T, P any](name string, ep Endpoint[T, P], schema Schema[T, P], tokens session.TokenSource, opts ...Option) *Cache[T, P] {
	o := options{logger: logging.Nop()}
	for _, fn := range opts {
		fn(&o)
	}
	return &Cache[T, P]{
		name:   name,
		ep:     ep,
		schema: schema,
		tokens: tokens,
		logger: o.logger.With("collection", name),
	}
}

func (c *Cache[T, P]) Name() string { return c.name }

// OnChange registers fn to receive a copy of the list after every change.
func (c *Cache[T, P]) OnChange(fn func([]T)) (off func()) { return c.changes.On(fn) }

// OnNotice registers fn to receive rollback notices.
func (c *Cache[T, P]) OnNotice(fn func(Notice)) (off func()) { return c.notices.On(fn) }

func (c *Cache[T, P]) authenticated(ctx context.Context) bool {
	_, ok := c.tokens.Token(ctx)
	return ok
}

func (c *Cache[T, P]) publish() {
	c.changes.Emit(c.Snapshot())
}

// Snapshot returns a copy of the cached list.
func (c *Cache[T, P]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Cache[T, P]) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Cache[T, P]) Get(id int64) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(id); i >= 0 {
		return c.records[i], true
	}
	var zero T
	return zero, false
}

// indexOf must be called with mu held.
func (c *Cache[T, P]) indexOf(id int64) int {
	for i := range c.records {
		if c.schema.ID(c.records[i]) == id {
			return i
		}
	}
	return -1
}

// Load replaces the list with the server's. On failure the previous list is
// kept and the error is returned for display only.
func (c *Cache[T, P]) Load(ctx context.Context) error {
	if !c.authenticated(ctx) {
		return client.ErrUnauthenticated
	}
	recs, err := c.ep.List(ctx)
	if err != nil {
		c.logger.Warn(ctx, "load failed, keeping cached list", "error", err)
		return fmt.Errorf("load %s: %w", c.name, err)
	}

	c.mu.Lock()
	c.records = make([]T, len(recs))
	copy(c.records, recs)
	c.loaded = true
	c.mu.Unlock()

	c.logger.Debug(ctx, "loaded", "count", len(recs))
	c.publish()
	return nil
}

// flip inverts the flag of rec and moves its counter the same way.
func flip[T any](tg Toggle[T], rec *T) {
	flag := tg.Flag(rec)
	*flag = !*flag
	if tg.Count == nil {
		return
	}
	if *flag {
		*tg.Count(rec)++
	} else {
		*tg.Count(rec)--
	}
}

// Toggle flips field on record id immediately and then asks the server to do
// the same. The state is read at call time, so rapid toggles compose. The
// server's answer only acknowledges; it never overwrites local fields.
func (c *Cache[T, P]) Toggle(ctx context.Context, id int64, field string) error {
	tg, ok := c.schema.Toggles[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !c.authenticated(ctx) {
		return client.ErrUnauthenticated
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%s #%d: %w", c.name, id, client.ErrNotFound)
	}
	flip(tg, &c.records[i])
	c.mu.Unlock()
	c.publish()

	err := c.ep.Toggle(ctx, id, field)
	if err == nil {
		c.logger.Debug(ctx, "toggle confirmed", "id", id, "field", field)
		return nil
	}

	// Undo from the current state; another toggle may have landed meanwhile.
	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		flip(tg, &c.records[i])
	}
	c.mu.Unlock()

	c.logger.Warn(ctx, "toggle failed, rolled back", "id", id, "field", field, "error", err)
	c.publish()
	c.notices.Emit(Notice{Collection: c.name, Kind: NoticeRollback, ID: id, Field: field, Err: err})
	return err
}

// Set moves field on record id to value, optimistically like Toggle. A record
// already at value is left alone and no request is sent. On failure the
// change is undone only if the flag still holds value.
func (c *Cache[T, P]) Set(ctx context.Context, id int64, field string, value bool) error {
	tg, ok := c.schema.Toggles[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	if !c.authenticated(ctx) {
		return client.ErrUnauthenticated
	}

	c.mu.Lock()
	i := c.indexOf(id)
	if i < 0 {
		c.mu.Unlock()
		return fmt.Errorf("%s #%d: %w", c.name, id, client.ErrNotFound)
	}
	if *tg.Flag(&c.records[i]) == value {
		c.mu.Unlock()
		return nil
	}
	flip(tg, &c.records[i])
	c.mu.Unlock()
	c.publish()

	err := c.ep.Toggle(ctx, id, field)
	if err == nil {
		return nil
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 && *tg.Flag(&c.records[i]) == value {
		flip(tg, &c.records[i])
	}
	c.mu.Unlock()

	c.logger.Warn(ctx, "set failed, rolled back", "id", id, "field", field, "error", err)
	c.publish()
	c.notices.Emit(Notice{Collection: c.name, Kind: NoticeRollback, ID: id, Field: field, Err: err})
	return err
}

func (c *Cache[T, P]) validate(in P) error {
	if c.schema.Validate == nil {
		return nil
	}
	return c.schema.Validate(in)
}

// Create submits in and prepends the record the server returns.
func (c *Cache[T, P]) Create(ctx context.Context, in P) (T, error) {
	var zero T
	if err := c.validate(in); err != nil {
		return zero, err
	}
	if !c.authenticated(ctx) {
		return zero, client.ErrUnauthenticated
	}

	rec, err := c.ep.Create(ctx, in)
	if err != nil {
		c.logger.Warn(ctx, "create failed", "error", err)
		return zero, err
	}

	c.mu.Lock()
	c.records = append([]T{rec}, c.records...)
	c.mu.Unlock()

	c.logger.Info(ctx, "created", "id", c.schema.ID(rec))
	c.publish()
	return rec, nil
}

// Update submits in and replaces record id in place with the server's copy.
func (c *Cache[T, P]) Update(ctx context.Context, id int64, in P) (T, error) {
	var zero T
	if err := c.validate(in); err != nil {
		return zero, err
	}
	if !c.authenticated(ctx) {
		return zero, client.ErrUnauthenticated
	}

	rec, err := c.ep.Update(ctx, id, in)
	if err != nil {
		c.logger.Warn(ctx, "update failed", "id", id, "error", err)
		return zero, err
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.records[i] = rec
	}
	c.mu.Unlock()

	c.publish()
	return rec, nil
}

// Remove deletes record id after confirm agrees. It reports whether the
// record was removed; a declined confirmation is not an error.
func (c *Cache[T, P]) Remove(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	if !c.authenticated(ctx) {
		return false, client.ErrUnauthenticated
	}
	if _, ok := c.Get(id); !ok {
		return false, fmt.Errorf("%s #%d: %w", c.name, id, client.ErrNotFound)
	}
	if confirm == nil || !confirm.Confirm(ctx, fmt.Sprintf("Delete %s #%d?", c.name, id)) {
		return false, nil
	}

	if err := c.ep.Delete(ctx, id); err != nil {
		c.logger.Warn(ctx, "remove failed", "id", id, "error", err)
		return false, err
	}

	c.mu.Lock()
	if i := c.indexOf(id); i >= 0 {
		c.records = append(c.records[:i], c.records[i+1:]...)
	}
	c.mu.Unlock()

	c.logger.Info(ctx, "removed", "id", id)
	c.publish()
	return true, nil
}

// Reorder puts the records in the order of ids, then calls persist with the
// new list. If persist fails the previous order is restored.
func (c *Cache[T, P]) Reorder(ctx context.Context, ids []int64, persist func(context.Context, []T) error) error {
	if !c.authenticated(ctx) {
		return client.ErrUnauthenticated
	}

	c.mu.Lock()
	if len(ids) != len(c.records) {
		c.mu.Unlock()
		return ErrBadOrder
	}
	prev := make([]T, len(c.records))
	copy(prev, c.records)

	next := make([]T, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		i := c.indexOf(id)
		if i < 0 || seen[id] {
			c.mu.Unlock()
			return ErrBadOrder
		}
		seen[id] = true
		next = append(next, c.records[i])
	}
	c.records = next
	c.mu.Unlock()
	c.publish()

	if persist == nil {
		return nil
	}
	snapshot := c.Snapshot()
	if err := persist(ctx, snapshot); err != nil {
		c.mu.Lock()
		c.records = prev
		c.mu.Unlock()
		c.logger.Warn(ctx, "reorder failed, restored", "error", err)
		c.publish()
		c.notices.Emit(Notice{Collection: c.name, Kind: NoticeReorderReverted, Err: err})
		return err
	}
	return nil
}
