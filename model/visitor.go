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

import "encoding/json"

// VisitorRecord is the first-visit snapshot sent once per session.
type VisitorRecord struct {
	SessionID string `json:"session_id"`
	VisitorID string `json:"visitor_id"`
	Attribution
	LandingPage string `json:"landing_page"`
	Referrer    string `json:"referrer"`
	Timestamp   string `json:"timestamp"`
}

// Device is the coarse device classification derived from a user agent.
type Device struct {
	Type    string `json:"device_type"`
	Browser string `json:"browser"`
}

// FormEvent is a form lifecycle notification: start, progress, complete or abandon.
type FormEvent struct {
	SessionID string   `json:"session_id"`
	EventType string   `json:"event_type"`
	FormStage string   `json:"form_stage"`
	LeadIDs   []string `json:"lead_ids,omitempty"`
}

// Conversion marks a session as converted into one or more leads.
type Conversion struct {
	SessionID string   `json:"session_id"`
	VisitorID string   `json:"visitor_id,omitempty"`
	LeadIDs   []string `json:"lead_ids"`
}

// VisitorDataUpdate is a partial profile update. Nil fields are left untouched.
type VisitorDataUpdate struct {
	SessionID           string          `json:"session_id"`
	VisitorID           string          `json:"visitor_id,omitempty"`
	Title               *string         `json:"title,omitempty"`
	FirstName           *string         `json:"first_name,omitempty"`
	LastName            *string         `json:"last_name,omitempty"`
	Email               *string         `json:"email,omitempty"`
	Mobile              *string         `json:"mobile,omitempty"`
	DateOfBirth         *string         `json:"date_of_birth,omitempty"`
	BuildingNumber      *string         `json:"building_number,omitempty"`
	BuildingName        *string         `json:"building_name,omitempty"`
	Flat                *string         `json:"flat,omitempty"`
	Street              *string         `json:"street,omitempty"`
	District            *string         `json:"district,omitempty"`
	PostTown            *string         `json:"post_town,omitempty"`
	County              *string         `json:"county,omitempty"`
	PostCode            *string         `json:"post_code,omitempty"`
	PreviousAddresses   json.RawMessage `json:"previous_addresses,omitempty"`
	FormProgressPercent *int            `json:"form_progress_percent,omitempty"`
	LastSavedStep       *string         `json:"last_saved_step,omitempty"`
	ResumeToken         *string         `json:"resume_token,omitempty"`
	ResumeLinkSent      *bool           `json:"resume_link_sent,omitempty"`
	FormDataSnapshot    json.RawMessage `json:"form_data_snapshot,omitempty"`
}

// ResumeLink is returned once a resume link has been recorded as sent.
type ResumeLink struct {
	Success     bool   `json:"success"`
	ResumeToken string `json:"resume_token"`
	Mobile      string `json:"mobile"`
}
