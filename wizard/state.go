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
	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// Addresses holds the current address and up to two previous ones.
type Addresses struct {
	Current   model.Address
	Previous1 model.Address
	Previous2 model.Address
}

// Consents records the applicant's answers to the consent questions.
type Consents struct {
	CreditSearch         bool
	MotorFinance         bool
	IrresponsibleLending bool
	Choice               bool
	ChoiceReason         string
	OtherReasonText      string
	Terms                bool

	// FCADisclosureViewed is set the first time the choice consent is given.
	FCADisclosureViewed bool
}

// State is the application state of one wizard session. It lives for the page session only.
type State struct {
	CurrentStep StepID
	// FormData accumulates the last seen value of every field across steps.
	FormData map[string]string

	OTPSent          bool
	OTPVerified      bool
	MobileIDVerified bool
	IdentityVerified bool
	ChangingMobile   bool

	TrustAssessment *gateway.TrustAssessment
	IdentityScore   float64

	Addresses Addresses

	Lenders            []model.Lender
	FoundAccounts      []model.CreditAccount
	AdditionalAccounts []model.CreditAccount
	CreditReport       *gateway.CreditReport
	CMCDetected        bool
	PDFURL             string

	Consents            Consents
	ProfessionalReps    []string
	DisengagementReason string
	SignatureBase64     string

	Attribution model.Attribution
	LeadIDs     []string
	Submitted   bool
}

// NewState returns an empty state positioned before the first step.
func NewState() *State {
	return &State{FormData: make(map[string]string)}
}

// Field returns the last seen value of a form field.
func (s *State) Field(name string) string {
	return s.FormData[name]
}

// SetField records value for a form field.
func (s *State) SetField(name, value string) {
	if s.FormData == nil {
		s.FormData = make(map[string]string)
	}
	s.FormData[name] = value
}

// Reset clears everything collected so far. The reference lender list is kept.
func (s *State) Reset() {
	lenders := s.Lenders
	attribution := s.Attribution
	*s = State{FormData: make(map[string]string), Lenders: lenders, Attribution: attribution}
}

// CreditReportRetrieved reports whether step 5 has a credit report to show.
func (s *State) CreditReportRetrieved() bool {
	return s.CreditReport != nil
}

// Accounts returns the found accounts followed by the manually added ones.
func (s *State) Accounts() []model.CreditAccount {
	all := make([]model.CreditAccount, 0, len(s.FoundAccounts)+len(s.AdditionalAccounts))
	all = append(all, s.FoundAccounts...)
	return append(all, s.AdditionalAccounts...)
}
