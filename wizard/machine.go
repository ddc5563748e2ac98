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

package wizard

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// ErrUnknownStep is returned when a step id is not part of Order.
var ErrUnknownStep = errors.New("unknown step")

// Renderer shows and hides step screens and draws the progress indicator.
type Renderer interface {
	ShowStep(id StepID)
	HideStep(id StepID)
	SetProgress(markers []ProgressMarker, percent int)
}

// FieldSource reads the values of the form fields currently visible.
type FieldSource interface {
	VisibleFields() map[string]string
}

// StepObserver is notified after every step transition.
type StepObserver interface {
	StepChanged(from, to StepID)
}

// StepObserverFunc adapts a function to StepObserver.
type StepObserverFunc func(from, to StepID)

func (f StepObserverFunc) StepChanged(from, to StepID) {
	f(from, to)
}

type nopRenderer struct{}

func (nopRenderer) ShowStep(StepID)                   {}
func (nopRenderer) HideStep(StepID)                   {}
func (nopRenderer) SetProgress([]ProgressMarker, int) {}

// Machine moves State between steps. It does not enforce forward gates; Flow does.
type Machine struct {
	state     *State
	renderer  Renderer
	fields    FieldSource
	observers []StepObserver
	logger    logrus.FieldLogger
}

// MachineOption configures a Machine.
type MachineOption func(*Machine)

// WithLogger sets the logger used for observer failures.
func WithLogger(logger logrus.FieldLogger) MachineOption {
	return func(m *Machine) {
		m.logger = logger
	}
}

// NewMachine returns a machine over state. A nil renderer or field source is allowed.
func NewMachine(state *State, renderer Renderer, fields FieldSource, opts ...MachineOption) *Machine {
	if renderer == nil {
		renderer = nopRenderer{}
	}
	m := &Machine{
		state:    state,
		renderer: renderer,
		fields:   fields,
		logger:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// State returns the state the machine drives.
func (m *Machine) State() *State {
	return m.state
}

// Subscribe registers an observer for step transitions.
func (m *Machine) Subscribe(o StepObserver) {
	m.observers = append(m.observers, o)
}

// ShowStep makes id the current step. Every non-empty visible field is saved to FormData
// before the switch, every other step is hidden and the progress markers are redrawn.
func (m *Machine) ShowStep(id StepID) error {
	if !id.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownStep, id)
	}

	from := m.state.CurrentStep
	m.snapshotFields()

	for _, s := range Order {
		if s != id {
			m.renderer.HideStep(s)
		}
	}
	m.renderer.ShowStep(id)
	m.state.CurrentStep = id
	m.renderer.SetProgress(Progress(id), ProgressPercent(id))

	m.notify(from, id)
	return nil
}

// Back shows the step before the current one. It is always allowed.
func (m *Machine) Back() error {
	if m.state.CurrentStep == "" {
		return m.ShowStep(Step1)
	}
	return m.ShowStep(m.state.CurrentStep.Previous())
}

func (m *Machine) snapshotFields() {
	if m.fields == nil {
		return
	}
	for name, value := range m.fields.VisibleFields() {
		if value != "" {
			m.state.SetField(name, value)
		}
	}
}

func (m *Machine) notify(from, to StepID) {
	for _, o := range m.observers {
		m.notifyOne(o, from, to)
	}
}

func (m *Machine) notifyOne(o StepObserver, from, to StepID) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.WithFields(logrus.Fields{
				"from":  from,
				"to":    to,
				"panic": r,
			}).Error("step observer failed")
		}
	}()
	o.StepChanged(from, to)
}
