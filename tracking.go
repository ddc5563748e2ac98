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
	"context"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/internal/apierror"
	"github.com/craigmalenga/valifi-batch-sub000/model"
	"github.com/sirupsen/logrus"
)

// TrackVisitor records a page load. A new session takes every attribution
// field; an existing one only fills gaps. The client IP is stored hashed.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - rec model.VisitorRecord: The identifiers and attribution sent by the page.
// - userAgent string: The request's User-Agent, used for device type and browser.
// - clientIP string: The caller's address.
//
// Returns:
// - *model.VisitorSession: The session after the update.
// - error: An error if the session could not be locked, loaded or saved.
func (v *Valifi) TrackVisitor(ctx context.Context, rec model.VisitorRecord, userAgent, clientIP string) (*model.VisitorSession, error) {
	ctx, span := tracer.Start(ctx, "Tracking visitor")
	defer span.End()

	if rec.VisitorID == "" {
		rec.VisitorID = model.NewIdentifier()
	}
	device := ParseUserAgent(userAgent)
	hashedIP := model.HashIP(clientIP)

	return v.updateSession(ctx, rec.SessionID, rec.VisitorID, true, func(s *model.VisitorSession, isNew bool) {
		s.ApplyVisit(rec, device, hashedIP, isNew, v.now())
	})
}

// TrackDetailedEvent folds one event into its session, creating the session
// when needed. Critical events are forwarded to analytics when enabled.
func (v *Valifi) TrackDetailedEvent(ctx context.Context, event model.TrackingEvent) error {
	ctx, span := tracer.Start(ctx, "Tracking detailed event")
	defer span.End()

	session, err := v.updateSession(ctx, event.SessionID, event.VisitorID, true, func(s *model.VisitorSession, _ bool) {
		s.ApplyEvent(event, v.now())
	})
	if err != nil {
		span.RecordError(err)
		return err
	}

	if v.cfg.Tracking.ForwardCriticalToPH && event.EventType.IsCritical() {
		v.capture(session.VisitorID, string(event.EventType), event.SessionID, event.Data)
	}
	return nil
}

// TrackBulkEvents applies a batch and reports how many events it carried.
func (v *Valifi) TrackBulkEvents(ctx context.Context, bulk model.BulkEvents) (int, error) {
	ctx, span := tracer.Start(ctx, "Tracking bulk events")
	defer span.End()

	_, err := v.updateSession(ctx, bulk.SessionID, "", true, func(s *model.VisitorSession, _ bool) {
		s.ApplyBulk(bulk.Events, v.now())
	})
	if err != nil {
		return 0, err
	}
	return len(bulk.Events), nil
}

// TrackFormEvent records a form lifecycle transition. Unknown sessions are
// ignored and reported with found == false.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - event model.FormEvent: The form event (start, progress, complete or abandon).
//
// Returns:
// - bool: Whether the session existed.
// - error: An error if the session could not be updated.
func (v *Valifi) TrackFormEvent(ctx context.Context, event model.FormEvent) (bool, error) {
	session, err := v.updateSession(ctx, event.SessionID, "", false, func(s *model.VisitorSession, _ bool) {
		s.ApplyFormEvent(event, v.now())
	})
	if err != nil {
		return false, err
	}
	if session != nil {
		logrus.WithFields(logrus.Fields{
			"session_id": event.SessionID,
			"event_type": event.EventType,
			"form_stage": event.FormStage,
		}).Info("tracked form event")
	}
	return session != nil, nil
}

// ConversionPayload is the data of the conversion webhook.
type ConversionPayload struct {
	SessionID   string             `json:"session_id"`
	VisitorID   string             `json:"visitor_id,omitempty"`
	LeadIDs     []string           `json:"lead_ids"`
	TimeOnSite  int                `json:"time_on_site,omitempty"`
	Attribution *model.Attribution `json:"attribution,omitempty"`
	ConvertedAt string             `json:"converted_at"`
}

// TrackConversion marks the session converted, then queues the conversion
// webhook and analytics capture. The webhook is sent for unknown sessions too.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - conversion model.Conversion: The converted session, its visitor and the lead ids.
//
// Returns:
// - bool: Whether the session existed.
// - error: An error if the session could not be updated.
func (v *Valifi) TrackConversion(ctx context.Context, conversion model.Conversion) (bool, error) {
	ctx, span := tracer.Start(ctx, "Tracking conversion")
	defer span.End()

	session, err := v.updateSession(ctx, conversion.SessionID, conversion.VisitorID, false, func(s *model.VisitorSession, _ bool) {
		s.ApplyConversion(conversion, v.now())
	})
	if err != nil {
		return false, err
	}

	payload := ConversionPayload{
		SessionID:   conversion.SessionID,
		VisitorID:   conversion.VisitorID,
		LeadIDs:     conversion.LeadIDs,
		ConvertedAt: v.now().UTC().Format(time.RFC3339),
	}
	distinctID := conversion.VisitorID
	if session != nil {
		payload.VisitorID = session.VisitorID
		payload.TimeOnSite = session.TimeOnSite
		attribution := session.Attribution
		payload.Attribution = &attribution
		distinctID = session.VisitorID
	}

	if err := v.SendWebhook(ctx, NewWebhook{Event: EventConversion, Payload: payload}); err != nil {
		logrus.WithError(err).WithField("session_id", conversion.SessionID).Error("failed to queue conversion webhook")
	}
	v.capture(distinctID, string(model.EventConversion), conversion.SessionID, map[string]interface{}{
		"lead_ids":     conversion.LeadIDs,
		"time_on_site": payload.TimeOnSite,
	})
	return session != nil, nil
}

// UpdateVisitorData stores a progressive profile update.
func (v *Valifi) UpdateVisitorData(ctx context.Context, update model.VisitorDataUpdate) error {
	_, err := v.updateSession(ctx, update.SessionID, update.VisitorID, true, func(s *model.VisitorSession, _ bool) {
		s.ApplyUpdate(update, v.now())
	})
	return err
}

// SendResumeLink marks the resume link as sent and returns what the SMS
// needs. An unknown session is reported as an apierror not-found error.
//
// Parameters:
// - ctx context.Context: The context for the operation.
// - sessionID string: The visitor session to resume.
//
// Returns:
// - *model.ResumeLink: The resume token and the mobile number to text.
// - error: An error if the session does not exist or could not be saved.
func (v *Valifi) SendResumeLink(ctx context.Context, sessionID string) (*model.ResumeLink, error) {
	session, err := v.updateSession(ctx, sessionID, "", false, func(s *model.VisitorSession, _ bool) {
		s.MarkResumeLinkSent(v.now())
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apierror.NewAPIError(apierror.ErrNotFound, "Session not found", nil)
	}
	return &model.ResumeLink{
		Success:     true,
		ResumeToken: session.ResumeToken,
		Mobile:      session.Profile.Mobile,
	}, nil
}
