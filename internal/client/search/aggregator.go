// Package search turns keystrokes into debounced, category-wide searches.
//
// Every keystroke bumps a generation counter. A response is applied only if
// its generation is still current, so late answers to old queries are
// dropped and never overwrite newer results.
package search

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/events"
	"github.com/dmitrijs2005/dmara/internal/client/models"
	"github.com/dmitrijs2005/dmara/internal/logging"
)

const DefaultDelay = 300 * time.Millisecond

type State int

const (
	Idle State = iota
	Pending
	Fetching
	Displaying
	Closed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Fetching:
		return "fetching"
	case Displaying:
		return "displaying"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

type Key int

const (
	KeyUp Key = iota
	KeyDown
	KeyEnter
	KeyEsc
)

var (
	ErrClosed      = errors.New("search is closed")
	ErrNoSelection = errors.New("nothing to select")
)

// View is what a renderer needs. Highlight is -1 when nothing is
// highlighted.
type View struct {
	State     State
	Category  models.Category
	Query     string
	Results   []Result
	Highlight int
	Err       error
}

type config struct {
	delay       time.Duration
	sched       Scheduler
	parallelism int
	logger      logging.Logger
	skip        func(Result) bool
}

type Option func(*config)

func WithDelay(d time.Duration) Option     { return func(c *config) { c.delay = d } }
func WithScheduler(s Scheduler) Option     { return func(c *config) { c.sched = s } }
func WithParallelism(n int) Option         { return func(c *config) { c.parallelism = n } }
func WithLogger(l logging.Logger) Option   { return func(c *config) { c.logger = l } }
func WithSkip(fn func(Result) bool) Option { return func(c *config) { c.skip = fn } }

type Aggregator struct {
	fetcher   Fetcher
	catalogue models.Catalogue
	cfg       config
	debounce  *Debouncer

	mu        sync.Mutex
	base      context.Context
	category  models.Category
	date      string
	state     State
	query     string
	gen       uint64
	results   []Result
	highlight int
	err       error
	cancel    context.CancelFunc

	views events.Emitter[View]
}

func NewAggregator(f Fetcher, catalogue models.Catalogue, opts ...Option) *Aggregator {
	cfg := config{delay: DefaultDelay, logger: logging.Nop()}
	for _, o := range opts {
		o(&cfg)
	}
	return &Aggregator{
		fetcher:   f,
		catalogue: catalogue,
		cfg:       cfg,
		debounce:  NewDebouncer(cfg.delay, cfg.sched),
		base:      context.Background(),
		state:     Closed,
		highlight: -1,
	}
}

// OnView registers fn to receive the view after every state change.
func (a *Aggregator) OnView(fn func(View)) (off func()) { return a.views.On(fn) }

func (a *Aggregator) View() View {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.viewLocked()
}

func (a *Aggregator) viewLocked() View {
	rs := make([]Result, len(a.results))
	copy(rs, a.results)
	return View{
		State:     a.state,
		Category:  a.category,
		Query:     a.query,
		Results:   rs,
		Highlight: a.highlight,
		Err:       a.err,
	}
}

func (a *Aggregator) publish() { a.views.Emit(a.View()) }

// Open starts a search session for category. date (YYYY-MM-DD) is passed to
// match searches. Requests run under ctx until Close.
func (a *Aggregator) Open(ctx context.Context, category models.Category, date string) error {
	if len(a.catalogue.Subtypes(category)) == 0 {
		return ErrUnknownCategory
	}
	a.mu.Lock()
	a.stopLocked()
	a.base = ctx
	a.category = category
	a.date = date
	a.state = Idle
	a.query = ""
	a.results = nil
	a.err = nil
	a.highlight = -1
	a.mu.Unlock()
	a.publish()
	return nil
}

// stopLocked invalidates any pending or in-flight search.
func (a *Aggregator) stopLocked() {
	a.gen++
	a.debounce.Cancel()
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// Input records the new query text. A non-blank query is searched once the
// input has been quiet for the debounce delay.
func (a *Aggregator) Input(text string) error {
	a.mu.Lock()
	if a.state == Closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.stopLocked()
	a.query = text
	a.highlight = -1
	a.err = nil

	if strings.TrimSpace(text) == "" {
		a.state = Idle
		a.results = nil
		a.mu.Unlock()
		a.publish()
		return nil
	}

	a.state = Pending
	gen := a.gen
	a.debounce.Trigger(func() { a.fire(gen) })
	a.mu.Unlock()
	a.publish()
	return nil
}

func (a *Aggregator) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.state == Closed {
		a.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(a.base)
	a.cancel = cancel
	a.state = Fetching
	category, query, date := a.category, strings.TrimSpace(a.query), a.date
	a.mu.Unlock()
	a.publish()

	subs := a.catalogue.Subtypes(category)
	res, partial, err := fanOut(ctx, a.fetcher, subs, category, query, date, a.cfg.parallelism, a.cfg.logger)

	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		cancel()
		a.cfg.logger.Debug(ctx, "discarding stale results", "query", query)
		return
	}
	a.cancel = nil
	cancel()

	if partial != nil {
		a.cfg.logger.Warn(ctx, "some searches failed", "category", string(category), "error", partial)
	}
	a.state = Displaying
	a.highlight = -1
	if err != nil {
		a.results = nil
		a.err = err
	} else {
		a.results = dedupe(res, a.cfg.skip)
		a.err = nil
	}
	a.mu.Unlock()
	a.publish()
}

// Key applies a navigation key. Enter returns the chosen result with ok set.
func (a *Aggregator) Key(k Key) (r Result, ok bool) {
	switch k {
	case KeyEsc:
		a.Close()
		return Result{}, false
	case KeyEnter:
		a.mu.Lock()
		i := a.highlight
		if i < 0 {
			i = 0
		}
		a.mu.Unlock()
		r, err := a.Select(i)
		return r, err == nil
	}

	a.mu.Lock()
	n := len(a.results)
	if a.state != Displaying || n == 0 {
		a.mu.Unlock()
		return Result{}, false
	}
	switch {
	case k == KeyDown:
		a.highlight = (a.highlight + 1) % n
	case a.highlight < 0:
		a.highlight = n - 1
	default:
		a.highlight = (a.highlight - 1 + n) % n
	}
	a.mu.Unlock()
	a.publish()
	return Result{}, false
}

// Select closes the search and returns result i.
func (a *Aggregator) Select(i int) (Result, error) {
	a.mu.Lock()
	if a.state == Closed {
		a.mu.Unlock()
		return Result{}, ErrClosed
	}
	if a.state != Displaying || i < 0 || i >= len(a.results) {
		a.mu.Unlock()
		return Result{}, ErrNoSelection
	}
	r := a.results[i]
	a.closeLocked()
	a.mu.Unlock()
	a.publish()
	return r, nil
}

func (a *Aggregator) closeLocked() {
	a.stopLocked()
	a.state = Closed
	a.query = ""
	a.results = nil
	a.err = nil
	a.highlight = -1
}

// Close ends the session and drops pending and in-flight searches.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.state == Closed {
		a.mu.Unlock()
		return
	}
	a.closeLocked()
	a.mu.Unlock()
	a.publish()
}
