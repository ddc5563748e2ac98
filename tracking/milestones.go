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
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// IdentityVerification records the outcome of the identity check.
func (t *Tracker) IdentityVerification(status string) {
	t.Track(model.EventIdentityVerification, t.withStep(map[string]interface{}{"status": status}))
}

// OTPStatus records a passcode being sent or verified.
func (t *Tracker) OTPStatus(status string) {
	t.Track(model.EventOTPStatus, t.withStep(map[string]interface{}{"status": status}))
}

// CreditCheck records a credit check stage: initiated, stored or completed.
func (t *Tracker) CreditCheck(status string, data map[string]interface{}) {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["status"] = status
	t.Track(model.EventCreditCheck, t.withStep(payload))
}

func (t *Tracker) Signature(status string) {
	t.Track(model.EventSignature, t.withStep(map[string]interface{}{"status": status}))
}

func (t *Tracker) Terms(action string) {
	t.Track(model.EventTerms, t.withStep(map[string]interface{}{"action": action}))
}

// ProfessionalRep records the representatives the applicant already uses.
func (t *Tracker) ProfessionalRep(selected []string, disengagementReason string) {
	data := map[string]interface{}{"selected_reps": selected, "disengagement_reason": nil}
	if disengagementReason != "" {
		data["disengagement_reason"] = disengagementReason
	}
	t.Track(model.EventProfessionalRep, t.withStep(data))
}

// FCADisclosure records the disclosure being viewed or a choice being made on it.
func (t *Tracker) FCADisclosure(action string, data map[string]interface{}) {
	payload := make(map[string]interface{}, len(data)+2)
	for k, v := range data {
		payload[k] = v
	}
	payload["action"] = action
	t.Track(model.EventFCADisclosure, t.withStep(payload))
}

func (t *Tracker) ManualLender(name string) {
	t.Track(model.EventManualLender, t.withStep(map[string]interface{}{"lender_name": name}))
}

// Conversion records the submitted claim: a critical conversion event, the conversion itself
// and the completed form stage.
func (t *Tracker) Conversion(leadIDs []string) {
	t.Track(model.EventConversion, t.withStep(map[string]interface{}{"lead_ids": leadIDs}))
	t.send(PathTrackConversion, model.Conversion{
		SessionID: t.sessionID,
		VisitorID: t.visitorID,
		LeadIDs:   leadIDs,
	})
	t.send(PathTrackFormEvent, model.FormEvent{
		SessionID: t.sessionID,
		EventType: model.FormEventComplete,
		FormStage: string(t.step()),
		LeadIDs:   leadIDs,
	})
}

// SyncVisitorData sends the progressive profile update for this session.
func (t *Tracker) SyncVisitorData(update model.VisitorDataUpdate) {
	update.SessionID = t.sessionID
	update.VisitorID = t.visitorID
	t.send(PathUpdateVisitorData, update)
}
