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

package valifi

import (
	"github.com/posthog/posthog-go"
	"github.com/sirupsen/logrus"
)

// capture sends one analytics event. It does nothing when no analytics client is set.
// Events without a visitor id are attributed to the session.
//
// Parameters:
// - distinctID string: The visitor id the event belongs to.
// - event string: The event name.
// - sessionID string: The visitor session id, always added as a property.
// - data map[string]interface{}: Extra event properties.
func (v *Valifi) capture(distinctID, event, sessionID string, data map[string]interface{}) {
	if v.analytics == nil {
		return
	}
	if distinctID == "" {
		distinctID = sessionID
	}

	props := posthog.NewProperties().Set("session_id", sessionID)
	for k, val := range data {
		props.Set(k, val)
	}

	err := v.analytics.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Timestamp:  v.now().UTC(),
		Properties: props,
	})
	if err != nil {
		logrus.WithError(err).WithField("event", event).Warn("analytics capture failed")
	}
}
