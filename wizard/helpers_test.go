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
	"context"
	"sync"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

var testNow = time.Date(2025, 3, 3, 9, 30, 0, 0, time.UTC)

type recordingRenderer struct {
	shown    []StepID
	hidden   map[StepID]int
	markers  []ProgressMarker
	progress int
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{hidden: make(map[StepID]int)}
}

func (r *recordingRenderer) ShowStep(id StepID) { r.shown = append(r.shown, id) }
func (r *recordingRenderer) HideStep(id StepID) { r.hidden[id]++ }
func (r *recordingRenderer) SetProgress(markers []ProgressMarker, percent int) {
	r.markers = markers
	r.progress = percent
}

type mapFields map[string]string

func (m mapFields) VisibleFields() map[string]string { return m }

type fakeGateway struct {
	mu sync.Mutex

	addresses  []gateway.PostalAddress
	otpSent    bool
	otpValid   string
	mobileID   *gateway.MobileIDResult
	identity   *gateway.IdentityResult
	report     *gateway.CreditReport
	reportErr  error
	leadResult *model.LeadResult
	lenders    []model.Lender
	lendersErr error

	// onVerifyOTP runs while the code check is in flight.
	onVerifyOTP func()

	otpRequests  []string
	applicants   []gateway.Applicant
	uploadedLead *model.Lead
}

func (g *fakeGateway) LookupAddress(_ context.Context, postCode string) ([]gateway.PostalAddress, error) {
	out := make([]gateway.PostalAddress, len(g.addresses))
	copy(out, g.addresses)
	return out, nil
}

func (g *fakeGateway) RequestOTP(_ context.Context, mobile string) (*gateway.OTPResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.otpRequests = append(g.otpRequests, mobile)
	return &gateway.OTPResult{Status: g.otpSent}, nil
}

func (g *fakeGateway) VerifyOTP(_ context.Context, _, code string) (*gateway.OTPResult, error) {
	if g.onVerifyOTP != nil {
		g.onVerifyOTP()
	}
	return &gateway.OTPResult{Status: code == g.otpValid}, nil
}

func (g *fakeGateway) CheckMobileID(_ context.Context, a gateway.Applicant) (*gateway.MobileIDResult, error) {
	g.applicants = append(g.applicants, a)
	return g.mobileID, nil
}

func (g *fakeGateway) ValidateIdentity(_ context.Context, a gateway.Applicant) (*gateway.IdentityResult, error) {
	g.applicants = append(g.applicants, a)
	return g.identity, nil
}

func (g *fakeGateway) GetCreditReport(_ context.Context, a gateway.Applicant) (*gateway.CreditReport, error) {
	g.applicants = append(g.applicants, a)
	return g.report, g.reportErr
}

func (g *fakeGateway) UploadSummary(_ context.Context, lead model.Lead) (*model.LeadResult, error) {
	g.uploadedLead = &lead
	return g.leadResult, nil
}

func (g *fakeGateway) ListLenders(context.Context) ([]model.Lender, error) {
	return g.lenders, g.lendersErr
}

type milestoneCall struct {
	kind   string
	status string
	data   map[string]interface{}
}

type recordingMilestones struct {
	calls   []milestoneCall
	updates []model.VisitorDataUpdate
}

func (m *recordingMilestones) add(kind, status string, data map[string]interface{}) {
	m.calls = append(m.calls, milestoneCall{kind: kind, status: status, data: data})
}

func (m *recordingMilestones) IdentityVerification(status string) {
	m.add("identity_verification", status, nil)
}
func (m *recordingMilestones) OTPStatus(status string) { m.add("otp_status", status, nil) }
func (m *recordingMilestones) CreditCheck(status string, data map[string]interface{}) {
	m.add("credit_check", status, data)
}
func (m *recordingMilestones) Signature(status string) { m.add("signature", status, nil) }
func (m *recordingMilestones) Terms(action string)     { m.add("terms", action, nil) }
func (m *recordingMilestones) ProfessionalRep(selected []string, reason string) {
	m.add("professional_rep", reason, nil)
}
func (m *recordingMilestones) FCADisclosure(action string, data map[string]interface{}) {
	m.add("fca_disclosure", action, data)
}
func (m *recordingMilestones) ManualLender(name string)    { m.add("manual_lender", name, nil) }
func (m *recordingMilestones) Conversion(leadIDs []string) { m.add("conversion", "", nil) }
func (m *recordingMilestones) SyncVisitorData(u model.VisitorDataUpdate) {
	m.updates = append(m.updates, u)
}

func (m *recordingMilestones) statuses(kind string) []string {
	var out []string
	for _, c := range m.calls {
		if c.kind == kind {
			out = append(out, c.status)
		}
	}
	return out
}

func validPersonalFields() mapFields {
	return mapFields{
		"title":      "Mr",
		"first_name": "John",
		"last_name":  "Smith",
		"dob_day":    "5",
		"dob_month":  "7",
		"dob_year":   "1980",
		"email":      "john.smith@example.com",
	}
}

func testLenders() []model.Lender {
	return []model.Lender{
		{Name: "Barclays", Filename: "barclays.png"},
		{Name: "Black Horse", Filename: "black-horse.png", MatchingNames: "Lloyds Black Horse"},
		{Name: "Santander Consumer Finance", Filename: "santander.png"},
	}
}
