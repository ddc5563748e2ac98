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
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/craigmalenga/valifi-batch-sub000/wizard"
)

// Page describes the page a tracker was started on.
type Page struct {
	URL      string
	Referrer string
	Title    string
}

// guard keeps a failing observer from reaching the caller.
func (t *Tracker) guard(signal string) {
	if r := recover(); r != nil {
		t.logger.WithFields(logrus.Fields{
			"signal": signal,
			"panic":  r,
		}).Error("tracking observer failed")
	}
}

func seconds(d time.Duration) int {
	return int(math.Round(d.Seconds()))
}

func (t *Tracker) withStep(data map[string]interface{}) map[string]interface{} {
	if data == nil {
		data = make(map[string]interface{}, 1)
	}
	if step := t.step(); step != "" {
		data["current_step"] = string(step)
	}
	return data
}

// PageLoad records the landing data once per session, starts inactivity tracking and queues a
// page_view.
func (t *Tracker) PageLoad(page Page) {
	defer t.guard("page_load")

	t.captureInitialData(page)
	t.Activity()

	path := page.URL
	if u, err := url.Parse(page.URL); err == nil && u.Path != "" {
		path = u.Path
	}
	t.Track(model.EventPageView, map[string]interface{}{
		"page":  path,
		"title": page.Title,
	})
}

func (t *Tracker) captureInitialData(page Page) {
	if t.sessions.Get(initialSentKey) == "true" {
		return
	}
	if err := t.sessions.Set(initialSentKey, "true"); err != nil {
		t.logger.WithError(err).Warn("failed to mark initial tracking as sent")
	}
	t.send(PathTrackVisitor, model.VisitorRecord{
		SessionID:   t.sessionID,
		VisitorID:   t.visitorID,
		Attribution: AttributionFromURL(page.URL, page.Referrer),
		LandingPage: page.URL,
		Referrer:    page.Referrer,
		Timestamp:   t.timestamp(),
	})
}

// StepChanged records the time spent on the previous step, the new step view and the form
// lifecycle stage. It is registered with wizard.Machine.Subscribe.
func (t *Tracker) StepChanged(from, to wizard.StepID) {
	defer t.guard("step_changed")

	now := t.clock.Now()
	t.mu.Lock()
	started, seen := t.stepStarted[from]
	t.stepStarted[to] = now
	t.currentStep = to
	t.mu.Unlock()

	if from != "" && seen {
		t.Track(model.EventStepComplete, map[string]interface{}{
			"step_name":  string(from),
			"time_spent": seconds(now.Sub(started)),
			"next_step":  string(to),
		})
	}
	view := map[string]interface{}{"step_name": string(to)}
	if from != "" {
		view["previous_step"] = string(from)
	}
	t.Track(model.EventStepView, view)

	if to == wizard.Step1 {
		t.FormEvent(model.FormEventStart, string(wizard.Step1))
	} else {
		t.FormEvent(model.FormEventProgress, string(to))
	}
}

// FormEvent reports a form lifecycle stage straight to the receiver.
func (t *Tracker) FormEvent(eventType, stage string) {
	t.send(PathTrackFormEvent, model.FormEvent{
		SessionID: t.sessionID,
		EventType: eventType,
		FormStage: stage,
	})
}

// FieldFocus records that a field gained focus.
func (t *Tracker) FieldFocus(name, fieldType string) {
	defer t.guard("field_focus")

	t.mu.Lock()
	t.fieldFocus[name] = t.clock.Now()
	t.mu.Unlock()

	t.Track(model.EventFieldInteraction, t.withStep(map[string]interface{}{
		"field_name": name,
		"field_type": fieldType,
	}))
}

// FieldBlur records a completed field with the seconds spent in it. Fields left empty are
// ignored.
func (t *Tracker) FieldBlur(name, value string) {
	defer t.guard("field_blur")

	if strings.TrimSpace(value) == "" {
		return
	}
	t.mu.Lock()
	focused, ok := t.fieldFocus[name]
	t.mu.Unlock()

	spent := 0
	if ok {
		spent = seconds(t.clock.Now().Sub(focused))
	}
	t.Track(model.EventFieldComplete, t.withStep(map[string]interface{}{
		"field_name": name,
		"time_spent": spent,
	}))
}

// CheckboxChanged records a consent checkbox change.
func (t *Tracker) CheckboxChanged(checkboxID string, checked bool) {
	defer t.guard("checkbox_changed")

	t.Track(model.EventConsentChange, t.withStep(map[string]interface{}{
		"consent_type":  ClassifyConsent(checkboxID),
		"consent_value": checked,
		"checkbox_id":   checkboxID,
	}))
}

// ValidationFailed records a field that failed validation.
func (t *Tracker) ValidationFailed(field, message string) {
	defer t.guard("validation_failed")

	t.Track(model.EventFieldValidationError, t.withStep(map[string]interface{}{
		"field_name":         field,
		"validation_message": message,
	}))
}

// Scrolled records scroll depth once scrolling has been quiet for the debounce period.
// Only a new maximum depth is reported.
func (t *Tracker) Scrolled(offset, scrollHeight, viewportHeight float64) {
	defer t.guard("scrolled")

	percent := 100
	if height := scrollHeight - viewportHeight; height > 0 {
		percent = int(math.Round(offset / height * 100))
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scrollTimer != nil {
		t.scrollTimer.Stop()
	}
	t.scrollTimer = t.clock.AfterFunc(t.cfg.ScrollDebounce, func() {
		t.recordScroll(percent)
	})
}

func (t *Tracker) recordScroll(percent int) {
	defer t.guard("scroll_depth")

	t.mu.Lock()
	if percent <= t.maxScroll {
		t.mu.Unlock()
		return
	}
	t.maxScroll = percent
	step := string(t.currentStep)
	t.mu.Unlock()

	if step == "" {
		step = "page"
	}
	t.Track(model.EventScrollDepth, map[string]interface{}{
		"step_name": step,
		"depth":     percent,
	})
}

// Activity is called on every mouse, key, scroll or touch interaction. A gap longer than the
// inactivity threshold is recorded, and a timer reports the next one as it happens.
func (t *Tracker) Activity() {
	defer t.guard("activity")

	now := t.clock.Now()
	threshold := t.cfg.InactivityThreshold

	t.mu.Lock()
	if t.inactivityTimer != nil {
		t.inactivityTimer.Stop()
	}
	idle := now.Sub(t.lastActivity)
	t.lastActivity = now
	t.inactivityTimer = t.clock.AfterFunc(threshold, func() {
		defer t.guard("inactivity")
		t.Track(model.EventInactivePeriod, t.withStep(map[string]interface{}{
			"duration": seconds(threshold),
		}))
	})
	t.mu.Unlock()

	if idle > threshold {
		t.Track(model.EventInactivePeriod, t.withStep(map[string]interface{}{
			"duration": seconds(idle),
		}))
	}
}

// VisibilityChanged records the tab being hidden or shown again.
func (t *Tracker) VisibilityChanged(visible bool) {
	defer t.guard("visibility_changed")

	t.Track(model.EventTabVisibilityChange, t.withStep(map[string]interface{}{
		"visible": visible,
	}))
}
