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
	"errors"
	"regexp"

	"github.com/craigmalenga/valifi-batch-sub000/config"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var sessionIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{8,64}$`)

var formEventTypes = []interface{}{
	model.FormEventStart,
	model.FormEventProgress,
	model.FormEventComplete,
	model.FormEventAbandon,
}

// Limits bounds the size of tracking payloads.
type Limits struct {
	MaxFieldLength int
	MaxBulkEvents  int
}

func LimitsFromConfig(conf config.TrackingConfig) Limits {
	return Limits{MaxFieldLength: conf.MaxFieldLength, MaxBulkEvents: conf.MaxBulkEvents}
}

func sessionIDRules() []validation.Rule {
	return []validation.Rule{
		validation.Required,
		validation.Match(sessionIDPattern).Error("invalid session_id format"),
	}
}

func (l Limits) short() validation.Rule {
	return validation.RuneLength(0, l.MaxFieldLength)
}

// TrackVisitor is the body of /tracking/track-visitor.
type TrackVisitor struct {
	model.VisitorRecord
}

func (v *TrackVisitor) Validate(l Limits) error {
	a := v.Attribution
	return validation.Errors{
		"session_id":     validation.Validate(v.SessionID, sessionIDRules()...),
		"visitor_id":     validation.Validate(v.VisitorID, l.short()),
		"source":         validation.Validate(a.Source, l.short()),
		"medium":         validation.Validate(a.Medium, l.short()),
		"campaign":       validation.Validate(a.Campaign, l.short()),
		"term":           validation.Validate(a.Term, l.short()),
		"content":        validation.Validate(a.Content, l.short()),
		"fb_campaign_id": validation.Validate(a.FBCampaignID, l.short()),
		"fb_adset_id":    validation.Validate(a.FBAdsetID, l.short()),
		"gclid":          validation.Validate(a.GCLID, l.short()),
	}.Filter()
}

// ValidateEvent checks a single detailed event.
func ValidateEvent(e model.TrackingEvent, l Limits) error {
	return validation.Errors{
		"session_id": validation.Validate(e.SessionID, sessionIDRules()...),
		"visitor_id": validation.Validate(e.VisitorID, l.short()),
		"event_type": validation.Validate(string(e.EventType), validation.Required, l.short()),
	}.Filter()
}

// ValidateBulk checks a batch of events. Events inherit the batch session id.
func ValidateBulk(b model.BulkEvents, l Limits) error {
	return validation.Errors{
		"session_id": validation.Validate(b.SessionID, sessionIDRules()...),
		"events": validation.Validate(b.Events,
			validation.Required,
			validation.Length(1, l.MaxBulkEvents).Error("too many events in batch"),
		),
	}.Filter()
}

func ValidateFormEvent(f model.FormEvent, l Limits) error {
	return validation.Errors{
		"session_id": validation.Validate(f.SessionID, sessionIDRules()...),
		"event_type": validation.Validate(f.EventType, validation.Required, validation.In(formEventTypes...)),
		"form_stage": validation.Validate(f.FormStage, l.short()),
	}.Filter()
}

func ValidateConversion(c model.Conversion, l Limits) error {
	return validation.Errors{
		"session_id": validation.Validate(c.SessionID, sessionIDRules()...),
		"visitor_id": validation.Validate(c.VisitorID, l.short()),
	}.Filter()
}

// ErrMissingSessionID is returned for profile updates without a session.
var ErrMissingSessionID = errors.New("Missing session_id")

func ValidateVisitorData(u model.VisitorDataUpdate) error {
	if u.SessionID == "" {
		return ErrMissingSessionID
	}
	return validation.Errors{
		"session_id": validation.Validate(u.SessionID, sessionIDRules()...),
	}.Filter()
}

// ResumeLinkRequest is the body of /tracking/send-resume-link.
type ResumeLinkRequest struct {
	SessionID string `json:"session_id"`
}

func (r *ResumeLinkRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.SessionID, sessionIDRules()...),
	)
}
