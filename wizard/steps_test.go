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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrder(t *testing.T) {
	assert.Equal(t, []StepID{Step1, Step2, Step3, Step4, StepMobileID, StepIdentity, Step5, Step6}, Order)
	assert.Less(t, IndexOf(StepMobileID), IndexOf(StepIdentity))
	assert.Less(t, IndexOf(StepIdentity), IndexOf(Step5))
	assert.Equal(t, -1, IndexOf("step7"))
}

func TestNextPrevious(t *testing.T) {
	tests := []struct {
		id       StepID
		next     StepID
		previous StepID
	}{
		{Step1, Step2, Step1},
		{Step3, Step4, Step2},
		{Step4, StepMobileID, Step3},
		{StepMobileID, StepIdentity, Step4},
		{StepIdentity, Step5, StepMobileID},
		{Step6, Step6, Step5},
	}
	for _, tt := range tests {
		t.Run(string(tt.id), func(t *testing.T) {
			assert.Equal(t, tt.next, tt.id.Next())
			assert.Equal(t, tt.previous, tt.id.Previous())
		})
	}
}

func TestProgress(t *testing.T) {
	markers := Progress(StepMobileID)
	assert.Len(t, markers, len(Order))
	for i, m := range markers {
		switch {
		case i < 4:
			assert.Equal(t, MarkerCompleted, m.State, m.Step)
		case i == 4:
			assert.Equal(t, MarkerActive, m.State, m.Step)
		default:
			assert.Equal(t, MarkerNone, m.State, m.Step)
		}
	}

	for _, m := range Progress("nope") {
		assert.Equal(t, MarkerNone, m.State)
	}
	assert.Equal(t, "completed", MarkerCompleted.String())
}

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 0, ProgressPercent(Step1))
	assert.Equal(t, 29, ProgressPercent(Step3))
	assert.Equal(t, 57, ProgressPercent(StepMobileID))
	assert.Equal(t, 100, ProgressPercent(Step6))
	assert.Equal(t, 0, ProgressPercent(""))
}
