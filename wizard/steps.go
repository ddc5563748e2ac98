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

// Package wizard drives the multi-step onboarding form: step ordering and
// progress, per-step validation, and the flow that gates forward navigation
// on validation and verification results from the backend.
package wizard

import "math"

// StepID identifies one screen of the wizard.
type StepID string

const (
	Step1        StepID = "step1"
	Step2        StepID = "step2"
	Step3        StepID = "step3"
	Step4        StepID = "step4"
	StepMobileID StepID = "mobileid"
	StepIdentity StepID = "identity"
	Step5        StepID = "step5"
	Step6        StepID = "step6"
)

// Order is the fixed linear order of the wizard.
var Order = []StepID{Step1, Step2, Step3, Step4, StepMobileID, StepIdentity, Step5, Step6}

// IndexOf returns the position of id in Order, or -1.
func IndexOf(id StepID) int {
	for i, s := range Order {
		if s == id {
			return i
		}
	}
	return -1
}

// Valid reports whether id is part of Order.
func (id StepID) Valid() bool {
	return IndexOf(id) >= 0
}

// Previous returns the step before id, or id itself for the first step.
func (id StepID) Previous() StepID {
	i := IndexOf(id)
	if i <= 0 {
		return id
	}
	return Order[i-1]
}

// Next returns the step after id, or id itself for the last step.
func (id StepID) Next() StepID {
	i := IndexOf(id)
	if i < 0 || i == len(Order)-1 {
		return id
	}
	return Order[i+1]
}

// MarkerState is the progress indicator state of one step.
type MarkerState int

const (
	MarkerNone MarkerState = iota
	MarkerActive
	MarkerCompleted
)

func (m MarkerState) String() string {
	switch m {
	case MarkerActive:
		return "active"
	case MarkerCompleted:
		return "completed"
	default:
		return "none"
	}
}

// ProgressMarker is the indicator of one step relative to the current step.
type ProgressMarker struct {
	Step  StepID
	State MarkerState
}

// Progress returns one marker per step in Order: steps before current are completed,
// current is active and later steps are unmarked.
func Progress(current StepID) []ProgressMarker {
	idx := IndexOf(current)
	markers := make([]ProgressMarker, len(Order))
	for i, s := range Order {
		state := MarkerNone
		switch {
		case idx < 0:
		case i < idx:
			state = MarkerCompleted
		case i == idx:
			state = MarkerActive
		}
		markers[i] = ProgressMarker{Step: s, State: state}
	}
	return markers
}

// ProgressPercent is the share of Order completed when current is shown, rounded.
func ProgressPercent(current StepID) int {
	idx := IndexOf(current)
	if idx < 0 {
		return 0
	}
	return int(math.Round(float64(idx) / float64(len(Order)-1) * 100))
}
