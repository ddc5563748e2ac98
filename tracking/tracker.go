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

// Package tracking records what a visitor does in the onboarding wizard and ships it to
// the tracking receiver in batches.
//
// TODO: switch Config.RequiresConsent on once the cookie banner writes to ConsentStore.
package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/craigmalenga/valifi-batch-sub000/wizard"
)

const (
	PathTrackVisitor       = "/tracking/track-visitor"
	PathTrackDetailedEvent = "/tracking/track-detailed-event"
	PathTrackBulkEvents    = "/tracking/track-bulk-events"
	PathTrackFormEvent     = "/tracking/track-form-event"
	PathTrackConversion    = "/tracking/track-conversion"
	PathUpdateVisitorData  = "/tracking/update-visitor-data"
)

var (
	// ErrTrackingDisabled is returned by New when the session or visitor id cannot be established.
	ErrTrackingDisabled = errors.New("tracking disabled: missing session or visitor id")
	// ErrNoConsent is returned by New when consent is required and has not been given.
	ErrNoConsent = errors.New("tracking disabled: no consent")
)

var (
	_ wizard.StepObserver = (*Tracker)(nil)
	_ wizard.Milestones   = (*Tracker)(nil)
)

// Config holds the tracker timings.
type Config struct {
	FlushDelay          time.Duration
	InactivityThreshold time.Duration
	ScrollDebounce      time.Duration
	VisitorCookieDays   int
	SendTimeout         time.Duration
	RequiresConsent     bool
}

// DefaultConfig returns the standard timings: a 5s batch window, 30s inactivity,
// 500ms scroll debounce and a one year visitor cookie.
func DefaultConfig() Config {
	return Config{
		FlushDelay:          5 * time.Second,
		InactivityThreshold: 30 * time.Second,
		ScrollDebounce:      500 * time.Millisecond,
		VisitorCookieDays:   365,
		SendTimeout:         10 * time.Second,
	}
}

// ConfigFrom builds a Config from the tracking section of the service configuration.
func ConfigFrom(cfg config.TrackingConfig) Config {
	c := DefaultConfig()
	if cfg.FlushDelay.Duration > 0 {
		c.FlushDelay = cfg.FlushDelay.Duration
	}
	if cfg.InactivityThreshold.Duration > 0 {
		c.InactivityThreshold = cfg.InactivityThreshold.Duration
	}
	if cfg.ScrollDebounce.Duration > 0 {
		c.ScrollDebounce = cfg.ScrollDebounce.Duration
	}
	if cfg.VisitorCookieDays > 0 {
		c.VisitorCookieDays = cfg.VisitorCookieDays
	}
	c.RequiresConsent = cfg.RequiresConsent
	return c
}

// Sender delivers a payload to a tracking path. *gateway.Client implements it.
type Sender interface {
	Track(ctx context.Context, path string, payload interface{}) error
}

// Timer is a pending callback that can be cancelled.
type Timer interface {
	Stop() bool
}

// Clock supplies the current time and delayed callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Tracker queues tracking events for one page session and delivers them in batches.
// Critical events flush the queue at once; any other event arms a single flush timer.
// A failed delivery puts the batch back at the head of the queue for the next flush.
type Tracker struct {
	cfg       Config
	sender    Sender
	clock     Clock
	logger    logrus.FieldLogger
	sessions  SessionStore
	consent   ConsentStore
	sessionID string
	visitorID string

	mu          sync.Mutex
	queue       []model.TrackingEvent
	flushTimer  Timer
	currentStep wizard.StepID
	stepStarted map[wizard.StepID]time.Time
	fieldFocus  map[string]time.Time

	maxScroll       int
	scrollTimer     Timer
	lastActivity    time.Time
	inactivityTimer Timer

	inflight sync.WaitGroup
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(c Clock) Option {
	return func(t *Tracker) {
		t.clock = c
	}
}

// WithLogger sets the logger used for delivery and observer failures.
func WithLogger(logger logrus.FieldLogger) Option {
	return func(t *Tracker) {
		t.logger = logger
	}
}

// WithConsent supplies the consent store checked when cfg.RequiresConsent is set.
func WithConsent(store ConsentStore) Option {
	return func(t *Tracker) {
		t.consent = store
	}
}

// New bootstraps the session and visitor ids and returns a tracker. When either id cannot be
// established it returns ErrTrackingDisabled and nothing should be recorded for the page view.
func New(cfg Config, sender Sender, sessions SessionStore, cookies CookieJar, opts ...Option) (*Tracker, error) {
	t := &Tracker{
		cfg:         cfg,
		sender:      sender,
		clock:       realClock{},
		logger:      logrus.StandardLogger(),
		sessions:    sessions,
		stepStarted: make(map[wizard.StepID]time.Time),
		fieldFocus:  make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(t)
	}
	if cfg.RequiresConsent && (t.consent == nil || !t.consent.HasConsent()) {
		return nil, ErrNoConsent
	}

	var err error
	if t.sessionID, err = sessionID(sessions); err != nil {
		t.logger.WithError(err).Error("tracking disabled for this page view")
		return nil, err
	}
	if t.visitorID, err = visitorID(cookies, t.clock.Now(), t.cfg.VisitorCookieDays); err != nil {
		t.logger.WithError(err).Error("tracking disabled for this page view")
		return nil, err
	}
	t.lastActivity = t.clock.Now()
	return t, nil
}

// SessionID returns the tab scoped session id.
func (t *Tracker) SessionID() string {
	return t.sessionID
}

// VisitorID returns the long lived visitor id.
func (t *Tracker) VisitorID() string {
	return t.visitorID
}

// Track queues an event of the given type. data is flattened into the event on the wire.
func (t *Tracker) Track(eventType model.EventType, data map[string]interface{}) {
	if eventType == "" {
		t.logger.Warn("track called without an event type")
		return
	}
	t.enqueue(model.TrackingEvent{
		SessionID: t.sessionID,
		VisitorID: t.visitorID,
		EventType: eventType,
		Timestamp: t.timestamp(),
		Data:      data,
	})
}

func (t *Tracker) timestamp() string {
	return t.clock.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func (t *Tracker) enqueue(e model.TrackingEvent) {
	t.mu.Lock()
	t.queue = append(t.queue, e)
	if e.EventType.IsCritical() {
		t.mu.Unlock()
		t.background(t.Flush)
		return
	}
	if t.flushTimer == nil {
		t.flushTimer = t.clock.AfterFunc(t.cfg.FlushDelay, func() {
			t.Flush(context.Background())
		})
	}
	t.mu.Unlock()
}

// Flush delivers everything queued so far: one event to the single event endpoint, more than
// one as a bulk request. On failure the batch is put back ahead of anything queued since.
// Delivery errors are logged, never returned.
func (t *Tracker) Flush(ctx context.Context) {
	t.mu.Lock()
	if len(t.queue) == 0 {
		t.mu.Unlock()
		return
	}
	batch := t.queue
	t.queue = nil
	if t.flushTimer != nil {
		t.flushTimer.Stop()
		t.flushTimer = nil
	}
	t.mu.Unlock()

	ctx, cancel := t.sendContext(ctx)
	defer cancel()

	var err error
	path := PathTrackDetailedEvent
	if len(batch) == 1 {
		err = t.sender.Track(ctx, path, batch[0])
	} else {
		path = PathTrackBulkEvents
		err = t.sender.Track(ctx, path, model.BulkEvents{SessionID: t.sessionID, Events: batch})
	}
	if err == nil {
		return
	}

	t.logger.WithFields(logrus.Fields{
		"path":   path,
		"events": len(batch),
	}).WithError(err).Warn("failed to send tracking events, requeued")

	t.mu.Lock()
	requeued := make([]model.TrackingEvent, 0, len(batch)+len(t.queue))
	requeued = append(requeued, batch...)
	t.queue = append(requeued, t.queue...)
	t.mu.Unlock()
}

// Pending returns a copy of the events waiting to be delivered.
func (t *Tracker) Pending() []model.TrackingEvent {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]model.TrackingEvent, len(t.queue))
	copy(out, t.queue)
	return out
}

// Wait blocks until every background delivery started so far has finished.
func (t *Tracker) Wait() {
	t.inflight.Wait()
}

// Unload stops the timers and makes a final delivery attempt.
func (t *Tracker) Unload(ctx context.Context) {
	t.mu.Lock()
	for _, timer := range []Timer{t.scrollTimer, t.inactivityTimer} {
		if timer != nil {
			timer.Stop()
		}
	}
	t.scrollTimer, t.inactivityTimer = nil, nil
	t.mu.Unlock()

	t.Flush(ctx)
	t.Wait()
}

func (t *Tracker) sendContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if t.cfg.SendTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, t.cfg.SendTimeout)
}

func (t *Tracker) background(fn func(ctx context.Context)) {
	t.inflight.Add(1)
	go func() {
		defer t.inflight.Done()
		defer t.guard("delivery")
		fn(context.Background())
	}()
}

// send posts payload directly, outside the event queue. Failures are logged and dropped.
func (t *Tracker) send(path string, payload interface{}) {
	t.background(func(ctx context.Context) {
		ctx, cancel := t.sendContext(ctx)
		defer cancel()
		if err := t.sender.Track(ctx, path, payload); err != nil {
			t.logger.WithField("path", path).WithError(err).Warn("tracking request failed")
		}
	})
}

func (t *Tracker) step() wizard.StepID {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentStep
}
