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
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowStep(t *testing.T) {
	renderer := newRecordingRenderer()
	fields := mapFields{"first_name": "Jane", "middle_name": ""}
	m := NewMachine(NewState(), renderer, fields)

	require.NoError(t, m.ShowStep(Step3))

	s := m.State()
	assert.Equal(t, Step3, s.CurrentStep)
	assert.Equal(t, "Jane", s.Field("first_name"))
	_, ok := s.FormData["middle_name"]
	assert.False(t, ok, "empty fields are not saved")

	assert.Equal(t, []StepID{Step3}, renderer.shown)
	assert.Zero(t, renderer.hidden[Step3])
	for _, id := range Order {
		if id != Step3 {
			assert.Equal(t, 1, renderer.hidden[id], id)
		}
	}
	assert.Equal(t, 29, renderer.progress)
	assert.Equal(t, MarkerActive, renderer.markers[2].State)
}

func TestShowStepUnknown(t *testing.T) {
	m := NewMachine(NewState(), nil, nil)
	err := m.ShowStep("step9")
	assert.True(t, errors.Is(err, ErrUnknownStep))
	assert.Equal(t, StepID(""), m.State().CurrentStep)
}

func TestBack(t *testing.T) {
	m := NewMachine(NewState(), nil, nil)
	require.NoError(t, m.ShowStep(StepIdentity))
	require.NoError(t, m.Back())
	assert.Equal(t, StepMobileID, m.State().CurrentStep)

	require.NoError(t, m.ShowStep(Step1))
	require.NoError(t, m.Back())
	assert.Equal(t, Step1, m.State().CurrentStep)
}

func TestObserversAreNotified(t *testing.T) {
	m := NewMachine(NewState(), nil, nil)
	var transitions [][2]StepID
	m.Subscribe(StepObserverFunc(func(from, to StepID) {
		transitions = append(transitions, [2]StepID{from, to})
	}))

	require.NoError(t, m.ShowStep(Step1))
	require.NoError(t, m.ShowStep(Step2))

	assert.Equal(t, [][2]StepID{{"", Step1}, {Step1, Step2}}, transitions)
}

func TestObserverPanicDoesNotBlockTransition(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)

	m := NewMachine(NewState(), nil, nil, WithLogger(logger))
	m.Subscribe(StepObserverFunc(func(from, to StepID) {
		panic("tracking down")
	}))
	called := false
	m.Subscribe(StepObserverFunc(func(from, to StepID) {
		called = true
	}))

	require.NoError(t, m.ShowStep(Step2))
	assert.Equal(t, Step2, m.State().CurrentStep)
	assert.True(t, called)
	assert.Contains(t, buf.String(), "step observer failed")
}

func TestStateReset(t *testing.T) {
	s := NewState()
	s.Lenders = testLenders()
	s.SetField("email", "a@b.co")
	s.OTPVerified = true
	s.CurrentStep = Step4

	s.Reset()

	assert.Empty(t, s.FormData)
	assert.False(t, s.OTPVerified)
	assert.Equal(t, StepID(""), s.CurrentStep)
	assert.Len(t, s.Lenders, 3)
}
