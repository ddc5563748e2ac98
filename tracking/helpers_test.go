/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package tracking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

var startTime = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: startTime}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward and runs every timer that came due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type sentCall struct {
	path    string
	payload interface{}
}

type recordingSender struct {
	mu       sync.Mutex
	calls    []sentCall
	failures int
}

func (s *recordingSender) Track(_ context.Context, path string, payload interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 && (path == PathTrackDetailedEvent || path == PathTrackBulkEvents) {
		s.failures--
		return errors.New("receiver unavailable")
	}
	s.calls = append(s.calls, sentCall{path: path, payload: payload})
	return nil
}

func (s *recordingSender) byPath(path string) []sentCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sentCall
	for _, c := range s.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}

// events flattens every delivered tracking event in delivery order.
func (s *recordingSender) events() []model.TrackingEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.TrackingEvent
	for _, c := range s.calls {
		switch p := c.payload.(type) {
		case model.TrackingEvent:
			out = append(out, p)
		case model.BulkEvents:
			out = append(out, p.Events...)
		}
	}
	return out
}

func eventTypes(events []model.TrackingEvent) []model.EventType {
	out := make([]model.EventType, len(events))
	for i, e := range events {
		out[i] = e.EventType
	}
	return out
}

func newTestTracker(t *testing.T) (*Tracker, *recordingSender, *fakeClock, *MemoryStore) {
	t.Helper()
	sender := &recordingSender{}
	clock := newFakeClock()
	store := NewMemoryStore()
	tr, err := New(DefaultConfig(), sender, store, store, WithClock(clock))
	require.NoError(t, err)
	return tr, sender, clock, store
}
