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

package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EventType tags a tracking event.
type EventType string

const (
	EventPageView             EventType = "page_view"
	EventStepView             EventType = "step_view"
	EventStepComplete         EventType = "step_complete"
	EventFieldInteraction     EventType = "field_interaction"
	EventFieldComplete        EventType = "field_complete"
	EventConsentChange        EventType = "consent_change"
	EventFieldValidationError EventType = "field_validation_error"
	EventScrollDepth          EventType = "scroll_depth"
	EventInactivePeriod       EventType = "inactive_period"
	EventTabVisibilityChange  EventType = "tab_visibility_change"
	EventCreditCheck          EventType = "credit_check"
	EventIdentityVerification EventType = "identity_verification"
	EventOTPStatus            EventType = "otp_status"
	EventSignature            EventType = "signature"
	EventTerms                EventType = "terms"
	EventProfessionalRep      EventType = "professional_rep"
	EventFCADisclosure        EventType = "fca_disclosure"
	EventManualLender         EventType = "manual_lender"
	EventFormComplete         EventType = "form_complete"
	EventConversion           EventType = "conversion"
)

var criticalEvents = map[EventType]bool{
	EventCreditCheck:          true,
	EventIdentityVerification: true,
	EventSignature:            true,
	EventFormComplete:         true,
	EventConversion:           true,
	EventStepComplete:         true,
}

// IsCritical reports whether events of this type skip the batching delay.
func (t EventType) IsCritical() bool {
	return criticalEvents[t]
}

// TrackingEvent is a single telemetry record. Event specific fields live in Data and are
// flattened next to the identity fields on the wire.
type TrackingEvent struct {
	SessionID string
	VisitorID string
	EventType EventType
	Timestamp string
	Data      map[string]interface{}
}

var reservedEventKeys = []string{"session_id", "visitor_id", "event_type", "timestamp"}

// MarshalJSON writes the event as one flat object. Identity fields win over Data keys of the same name.
func (e TrackingEvent) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(e.Data)+len(reservedEventKeys))
	for k, v := range e.Data {
		out[k] = v
	}
	out["session_id"] = e.SessionID
	out["visitor_id"] = e.VisitorID
	out["event_type"] = e.EventType
	out["timestamp"] = e.Timestamp
	return json.Marshal(out)
}

// UnmarshalJSON splits a flat event object back into identity fields and Data.
func (e *TrackingEvent) UnmarshalJSON(b []byte) error {
	var raw map[string]interface{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	e.SessionID = stringValue(raw["session_id"])
	e.VisitorID = stringValue(raw["visitor_id"])
	e.EventType = EventType(stringValue(raw["event_type"]))
	e.Timestamp = stringValue(raw["timestamp"])
	for _, k := range reservedEventKeys {
		delete(raw, k)
	}
	e.Data = raw
	return nil
}

// String returns the named data field as a string, or "" when absent.
func (e TrackingEvent) String(key string) string {
	return stringValue(e.Data[key])
}

// Bool returns the named data field as a bool. Strings "true" and "1" count as true.
func (e TrackingEvent) Bool(key string) bool {
	switch v := e.Data[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// Int returns the named data field as an int, truncating fractional values.
func (e TrackingEvent) Int(key string) int {
	switch v := e.Data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		f, _ := v.Float64()
		return int(f)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return int(f)
	}
	return 0
}

// Strings returns the named data field as a string slice.
func (e TrackingEvent) Strings(key string) []string {
	switch v := e.Data[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, stringValue(item))
		}
		return out
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	}
	return nil
}

func stringValue(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return fmt.Sprint(s)
	}
}

// BulkEvents is the payload of the bulk delivery endpoint.
type BulkEvents struct {
	SessionID string          `json:"session_id"`
	Events    []TrackingEvent `json:"events"`
}
