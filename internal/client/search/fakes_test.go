package search

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/dmara/internal/client/models"
)

type fakeTimer struct {
	s       *fakeScheduler
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// fakeScheduler only runs callbacks when the test calls Fire.
type fakeScheduler struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(_ time.Duration, f func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{s: s, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Fire runs every pending callback on the calling goroutine.
func (s *fakeScheduler) Fire() {
	s.mu.Lock()
	var due []func()
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t.f)
		}
	}
	s.mu.Unlock()
	for _, f := range due {
		f()
	}
}

type call struct {
	Code  models.Code
	Query string
	Date  string
}

type fakeFetcher struct {
	mu    sync.Mutex
	calls []call
	hits  map[models.Code][]string
	errs  map[models.Code]error

	// byQuery answers per query text and takes precedence over hits.
	byQuery map[string][]string
	// hook runs before answering, outside the lock.
	hook    func(ctx context.Context, c call)
}

func (f *fakeFetcher) Search(ctx context.Context, code models.Code, query, date string) ([]json.RawMessage, error) {
	c := call{Code: code, Query: query, Date: date}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(ctx, c)
	}
	if err := f.errs[code]; err != nil {
		return nil, err
	}
	hits := f.hits[code]
	if q, ok := f.byQuery[query]; ok {
		hits = q
	}
	out := make([]json.RawMessage, 0, len(hits))
	for _, h := range hits {
		out = append(out, json.RawMessage(h))
	}
	return out, nil
}

func (f *fakeFetcher) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func media(code models.Code, id int, name string) string {
	return fmt.Sprintf(`{"id":"%s_%d","name":%q,"image":"https://img/%d.jpg","type":%q}`, code, id, name, id, code)
}
