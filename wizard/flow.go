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
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/craigmalenga/valifi-batch-sub000/gateway"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

var (
	// ErrStepGated is returned by Next when the current step's gate is closed.
	ErrStepGated          = errors.New("step gated")
	ErrOTPNotSent         = errors.New("OTP has not been sent")
	ErrOTPNotVerified     = errors.New("mobile number has not been verified")
	ErrInvalidOTPCode     = errors.New("Please enter the 6-digit code")
	ErrOTPRejected        = errors.New("Invalid verification code")
	ErrConsentRequired    = errors.New("Please confirm your consent to proceed.")
	ErrMobileIDFailed     = errors.New("mobile trust check has not passed")
	ErrIdentityNotVerifed = errors.New("identity has not been verified")
	ErrNoCreditReport     = errors.New("credit report has not been retrieved")
	ErrLastStep           = errors.New("already on the last step")
	ErrPostcodeRequired   = errors.New("Please enter a postcode")
	ErrAlreadySubmitted   = errors.New("claim already submitted")
	ErrIncomplete         = errors.New("Missing required personal information. Please complete all steps.")
	ErrClaimIncomplete    = errors.New("claim is not ready to submit")
)

const (
	// FCADisclosureVersion identifies the disclosure text shown with the choice consent.
	FCADisclosureVersion = "v1.0-2025-10-09"
	// ChoiceReasonOther is the choice reason that needs free text.
	ChoiceReasonOther = "Other"
)

// ClaimType is a kind of claim the applicant can ask to bring.
type ClaimType int

const (
	MotorFinanceClaim ClaimType = iota
	IrresponsibleLendingClaim
)

// IncompleteClaimError lists what still has to be answered before the claim can be submitted.
type IncompleteClaimError struct {
	Reasons []string
}

func (e *IncompleteClaimError) Error() string {
	return fmt.Sprintf("%s: %s", ErrClaimIncomplete, strings.Join(e.Reasons, "; "))
}

func (e *IncompleteClaimError) Unwrap() error {
	return ErrClaimIncomplete
}

// Gateway is the part of the backend the flow calls.
type Gateway interface {
	LookupAddress(ctx context.Context, postCode string) ([]gateway.PostalAddress, error)
	RequestOTP(ctx context.Context, mobile string) (*gateway.OTPResult, error)
	VerifyOTP(ctx context.Context, mobile, code string) (*gateway.OTPResult, error)
	CheckMobileID(ctx context.Context, applicant gateway.Applicant) (*gateway.MobileIDResult, error)
	ValidateIdentity(ctx context.Context, applicant gateway.Applicant) (*gateway.IdentityResult, error)
	GetCreditReport(ctx context.Context, applicant gateway.Applicant) (*gateway.CreditReport, error)
	UploadSummary(ctx context.Context, lead model.Lead) (*model.LeadResult, error)
	ListLenders(ctx context.Context) ([]model.Lender, error)
}

// Milestones receives journey milestones as they happen. The event tracker implements it.
type Milestones interface {
	IdentityVerification(status string)
	OTPStatus(status string)
	CreditCheck(status string, data map[string]interface{})
	Signature(status string)
	Terms(action string)
	ProfessionalRep(selected []string, disengagementReason string)
	FCADisclosure(action string, data map[string]interface{})
	ManualLender(name string)
	Conversion(leadIDs []string)
	SyncVisitorData(update model.VisitorDataUpdate)
}

type nopMilestones struct{}

func (nopMilestones) IdentityVerification(string)                  {}
func (nopMilestones) OTPStatus(string)                             {}
func (nopMilestones) CreditCheck(string, map[string]interface{})   {}
func (nopMilestones) Signature(string)                             {}
func (nopMilestones) Terms(string)                                 {}
func (nopMilestones) ProfessionalRep([]string, string)             {}
func (nopMilestones) FCADisclosure(string, map[string]interface{}) {}
func (nopMilestones) ManualLender(string)                          {}
func (nopMilestones) Conversion([]string)                          {}
func (nopMilestones) SyncVisitorData(model.VisitorDataUpdate)      {}

// AddressSlot selects which address an address lookup result fills.
type AddressSlot int

const (
	CurrentAddress AddressSlot = iota
	PreviousAddress1
	PreviousAddress2
)

// Flow connects the step machine to the backend and enforces the forward gates.
type Flow struct {
	machine    *Machine
	gw         Gateway
	milestones Milestones
	logger     logrus.FieldLogger
	now        func() time.Time
}

// FlowOption configures a Flow.
type FlowOption func(*Flow)

// WithClock overrides the time source used for date of birth checks and timestamps.
func WithClock(now func() time.Time) FlowOption {
	return func(f *Flow) {
		f.now = now
	}
}

// WithFlowLogger sets the flow's logger.
func WithFlowLogger(logger logrus.FieldLogger) FlowOption {
	return func(f *Flow) {
		f.logger = logger
	}
}

// NewFlow returns a flow over machine. milestones may be nil.
func NewFlow(machine *Machine, gw Gateway, milestones Milestones, opts ...FlowOption) *Flow {
	if milestones == nil {
		milestones = nopMilestones{}
	}
	f := &Flow{
		machine:    machine,
		gw:         gw,
		milestones: milestones,
		logger:     logrus.StandardLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Flow) state() *State {
	return f.machine.State()
}

// Start loads the reference lender list and shows the first step. A lender list failure is
// logged and leaves the list empty.
func (f *Flow) Start(ctx context.Context) error {
	lenders, err := f.gw.ListLenders(ctx)
	if err != nil {
		f.logger.WithError(err).Warn("failed to load lenders")
		lenders = nil
	}
	f.state().Lenders = lenders
	return f.machine.ShowStep(Step1)
}

// Next moves forward one step when the current step's gate is open. A closed gate returns an
// error wrapping ErrStepGated and leaves the current step unchanged.
func (f *Flow) Next(ctx context.Context) error {
	s := f.state()
	f.machine.snapshotFields()

	current := s.CurrentStep
	if current == "" {
		return f.show(Step1)
	}
	if err := f.gate(current); err != nil {
		return fmt.Errorf("%w %s: %w", ErrStepGated, current, err)
	}
	return f.show(current.Next())
}

// Back moves to the previous step without any gate.
func (f *Flow) Back() error {
	return f.machine.Back()
}

func (f *Flow) show(id StepID) error {
	if err := f.machine.ShowStep(id); err != nil {
		return err
	}
	f.milestones.SyncVisitorData(f.VisitorUpdate())
	return nil
}

func (f *Flow) gate(step StepID) error {
	s := f.state()
	switch step {
	case Step1:
		return ValidateStep1(PersonalDetailsFromForm(s.FormData), f.now())
	case Step2:
		s.Addresses.Current = addressFromForm(s.FormData, s.Addresses.Current)
		return ValidateStep2(s.Addresses.Current)
	case Step3:
		if err := ValidateStep3(s.Field("mobile")); err != nil {
			return err
		}
		if !s.OTPSent {
			return ErrOTPNotSent
		}
		if !s.OTPVerified {
			return ErrOTPNotVerified
		}
	case Step4:
		if !s.Consents.CreditSearch {
			return ErrConsentRequired
		}
	case StepMobileID:
		if !s.MobileIDVerified {
			return ErrMobileIDFailed
		}
	case StepIdentity:
		if !s.IdentityVerified {
			return ErrIdentityNotVerifed
		}
	case Step5:
		if !s.CreditReportRetrieved() {
			return ErrNoCreditReport
		}
	case Step6:
		return ErrLastStep
	}
	return nil
}

func addressFromForm(form map[string]string, fallback model.Address) model.Address {
	pick := func(key, current string) string {
		if v, ok := form[key]; ok {
			return strings.TrimSpace(v)
		}
		return current
	}
	return model.Address{
		BuildingNumber: pick("building_number", fallback.BuildingNumber),
		BuildingName:   pick("building_name", fallback.BuildingName),
		Flat:           pick("flat", fallback.Flat),
		Street:         pick("street", fallback.Street),
		District:       pick("district", fallback.District),
		County:         pick("county", fallback.County),
		PostTown:       pick("post_town", fallback.PostTown),
		PostCode:       pick("post_code", fallback.PostCode),
	}
}

// LookupAddress upper-cases postCode, looks it up and returns the results in natural order.
func (f *Flow) LookupAddress(ctx context.Context, postCode string) ([]gateway.PostalAddress, error) {
	postCode = strings.ToUpper(strings.TrimSpace(postCode))
	if postCode == "" {
		return nil, ErrPostcodeRequired
	}
	addresses, err := f.gw.LookupAddress(ctx, postCode)
	if err != nil {
		return nil, err
	}
	SortAddresses(addresses)
	return addresses, nil
}

// SelectAddress fills slot from a lookup result. The current address is also written to the
// form fields.
func (f *Flow) SelectAddress(addr gateway.PostalAddress, slot AddressSlot) model.Address {
	s := f.state()
	a := ToAddress(addr)
	switch slot {
	case PreviousAddress1:
		s.Addresses.Previous1 = a
	case PreviousAddress2:
		s.Addresses.Previous2 = a
	default:
		s.Addresses.Current = a
		s.SetField("building_number", a.BuildingNumber)
		s.SetField("building_name", a.BuildingName)
		s.SetField("flat", a.Flat)
		s.SetField("street", a.Street)
		s.SetField("district", a.District)
		s.SetField("county", a.County)
		s.SetField("post_town", a.PostTown)
		s.SetField("post_code", a.PostCode)
	}
	return a
}

// SendOTP validates the mobile number and asks the backend to text a passcode.
func (f *Flow) SendOTP(ctx context.Context) error {
	s := f.state()
	f.machine.snapshotFields()
	mobile := s.Field("mobile")
	if err := ValidateStep3(mobile); err != nil {
		return err
	}
	s.SetField("mobile", FormatUKMobile(mobile))

	result, err := f.gw.RequestOTP(ctx, ToInternational(mobile))
	if err != nil {
		return err
	}
	if !result.Sent() {
		return ErrOTPNotSent
	}
	s.OTPSent = true
	s.OTPVerified = false
	f.milestones.OTPStatus("sent")
	return nil
}

// VerifyOTP checks a six digit code and, when it matches, marks the mobile number verified.
// The flow moves on to step 4 only if step 3 is still showing once the backend has answered.
func (f *Flow) VerifyOTP(ctx context.Context, code string) error {
	s := f.state()
	code = strings.TrimSpace(code)
	if len(code) != 6 || DigitsOnly(code) != code {
		return ErrInvalidOTPCode
	}
	if !s.OTPSent {
		return ErrOTPNotSent
	}

	mobile := s.Field("mobile")
	result, err := f.gw.VerifyOTP(ctx, ToInternational(mobile), code)
	if err != nil {
		return err
	}
	if !result.Verified() {
		return ErrOTPRejected
	}
	// The number may have been changed while the code was being checked.
	if !s.OTPSent || s.Field("mobile") != mobile {
		return ErrOTPNotSent
	}
	s.OTPVerified = true
	f.milestones.OTPStatus("verified")

	// Only advance if the applicant is still waiting on step 3.
	if s.CurrentStep != Step3 {
		return nil
	}
	return f.show(Step4)
}

// ChangeMobile goes back to step 3 and clears the OTP state so a new number can be verified.
func (f *Flow) ChangeMobile() error {
	s := f.state()
	s.ChangingMobile = true
	s.OTPSent = false
	s.OTPVerified = false
	s.MobileIDVerified = false
	delete(s.FormData, "mobile")
	delete(s.FormData, "otp")
	return f.machine.ShowStep(Step3)
}

// CheckMobileID runs the mobile trust check and records its assessment.
func (f *Flow) CheckMobileID(ctx context.Context) (*gateway.TrustAssessment, error) {
	s := f.state()
	result, err := f.gw.CheckMobileID(ctx, f.Applicant())
	if err != nil {
		return nil, err
	}
	s.TrustAssessment = result.TrustAssessment
	s.MobileIDVerified = result.Passed()
	return result.TrustAssessment, nil
}

// ValidateIdentity runs the identity check and reports whether it passed.
func (f *Flow) ValidateIdentity(ctx context.Context) (bool, error) {
	s := f.state()
	result, err := f.gw.ValidateIdentity(ctx, f.Applicant())
	if err != nil {
		return false, err
	}
	if !result.Verified() {
		s.IdentityVerified = false
		f.milestones.IdentityVerification("failed")
		return false, nil
	}
	s.IdentityVerified = true
	s.IdentityScore = result.IdentityScore
	f.milestones.IdentityVerification("completed")
	return true, nil
}

// RetrieveCreditReport fetches the credit report and returns the reconciled lender views. On
// failure the found accounts are cleared and the error is returned with the empty views.
func (f *Flow) RetrieveCreditReport(ctx context.Context) ([]model.LenderView, error) {
	s := f.state()
	f.milestones.CreditCheck("initiated", nil)

	applicant := f.Applicant()
	applicant.ClientReference = ClientReference(PersonalDetailsFromForm(s.FormData))

	report, err := f.gw.GetCreditReport(ctx, applicant)
	if err != nil {
		s.FoundAccounts = nil
		return f.DisplayLenders(), err
	}

	s.CreditReport = report
	s.PDFURL = report.Data.PDFURL
	if s.PDFURL != "" {
		f.milestones.CreditCheck("stored", map[string]interface{}{"s3_url": s.PDFURL})
	}
	s.CMCDetected = report.CMCDetected()
	s.FoundAccounts = report.Accounts()
	f.milestones.CreditCheck("completed", map[string]interface{}{
		"lenders_count": len(s.FoundAccounts),
		"cmc_detected":  s.CMCDetected,
	})
	return f.DisplayLenders(), nil
}

// DisplayLenders returns every found and manually added account prepared for display.
func (f *Flow) DisplayLenders() []model.LenderView {
	s := f.state()
	return LenderViews(s.FoundAccounts, s.AdditionalAccounts, s.Lenders)
}

// AddManualLender records a lender the applicant remembers but the credit file did not show.
func (f *Flow) AddManualLender(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	s := f.state()
	s.AdditionalAccounts = append(s.AdditionalAccounts, model.CreditAccount{Name: name, Manual: true})
	f.milestones.ManualLender(name)
}

// SelectProfessionalReps records existing representation and the reason for leaving it.
func (f *Flow) SelectProfessionalReps(reps []string, disengagementReason string) {
	s := f.state()
	s.ProfessionalReps = reps
	s.DisengagementReason = disengagementReason
	f.milestones.ProfessionalRep(reps, disengagementReason)
}

// SetCreditSearchConsent records the answer to the soft credit search question that gates
// step 4.
func (f *Flow) SetCreditSearchConsent(given bool) {
	f.state().Consents.CreditSearch = given
}

// SetChoiceConsent records whether the applicant wants their claim managed for them. The
// disclosure is reported as viewed the first time consent is given. Withdrawing consent
// clears the choice reason.
func (f *Flow) SetChoiceConsent(given bool) {
	c := &f.state().Consents
	c.Choice = given
	if !given {
		c.ChoiceReason = ""
		c.OtherReasonText = ""
		return
	}
	if !c.FCADisclosureViewed {
		c.FCADisclosureViewed = true
		f.milestones.FCADisclosure("viewed", map[string]interface{}{"version": FCADisclosureVersion})
	}
}

// SetChoiceReason records why the applicant chose us. Any reason other than ChoiceReasonOther
// drops previously entered free text.
func (f *Flow) SetChoiceReason(reason string) {
	c := &f.state().Consents
	c.ChoiceReason = reason
	f.milestones.FCADisclosure("choice_selected", map[string]interface{}{
		"reason":    reason,
		"has_other": reason == ChoiceReasonOther,
	})
	if reason != ChoiceReasonOther {
		c.OtherReasonText = ""
	}
}

// SetOtherReasonText stores the free text given with ChoiceReasonOther.
func (f *Flow) SetOtherReasonText(text string) {
	f.state().Consents.OtherReasonText = text
}

// SetClaimType selects or clears one claim type.
func (f *Flow) SetClaimType(claim ClaimType, selected bool) {
	c := &f.state().Consents
	switch claim {
	case MotorFinanceClaim:
		c.MotorFinance = selected
	case IrresponsibleLendingClaim:
		c.IrresponsibleLending = selected
	}
}

// SubmitReadiness returns what still blocks the final submission, in the order the page
// shows it. An empty result means the claim can be submitted.
func (f *Flow) SubmitReadiness() []string {
	s := f.state()
	c := s.Consents
	var reasons []string
	if !c.Choice {
		reasons = append(reasons, "Please confirm you want us to manage your claim")
	}
	if c.ChoiceReason == "" || (c.ChoiceReason == ChoiceReasonOther && strings.TrimSpace(c.OtherReasonText) == "") {
		reasons = append(reasons, "Please select why you chose us")
	}
	if !c.MotorFinance && !c.IrresponsibleLending {
		reasons = append(reasons, "Please select at least one claim type")
	}
	if len(s.ProfessionalReps) > 0 && strings.TrimSpace(s.DisengagementReason) == "" {
		reasons = append(reasons, "Please provide reason for changing representation")
	}
	if !c.Terms {
		reasons = append(reasons, "Please accept the Terms & Conditions")
	}
	if s.SignatureBase64 == "" {
		reasons = append(reasons, "Please provide your signature")
	}
	return reasons
}

// Sign stores the applicant's signature.
func (f *Flow) Sign(signatureBase64 string) {
	f.state().SignatureBase64 = signatureBase64
	f.milestones.Signature("provided")
}

// AcceptTerms records that the terms were accepted.
func (f *Flow) AcceptTerms() {
	f.state().Consents.Terms = true
	f.milestones.Terms("accepted")
}

// Submit uploads the final claim summary once. Missing personal details return ErrIncomplete;
// unanswered consents or a missing signature return an *IncompleteClaimError.
func (f *Flow) Submit(ctx context.Context) (*model.LeadResult, error) {
	s := f.state()
	if s.Submitted {
		return nil, ErrAlreadySubmitted
	}
	f.machine.snapshotFields()

	lead := f.BuildLead()
	if lead.FirstName == "" || lead.LastName == "" || lead.Email == "" {
		return nil, ErrIncomplete
	}
	if reasons := f.SubmitReadiness(); len(reasons) > 0 {
		return nil, &IncompleteClaimError{Reasons: reasons}
	}

	result, err := f.gw.UploadSummary(ctx, lead)
	if err != nil {
		return nil, err
	}
	if !result.Success {
		message := result.Error
		if message == "" {
			message = "submission was not accepted"
		}
		return result, &gateway.Error{Path: gateway.PathUploadSummary, Message: message}
	}

	s.Submitted = true
	s.LeadIDs = result.LeadIDs
	f.milestones.Conversion(result.LeadIDs)
	return result, nil
}

// Applicant builds the identity check request from the collected data.
func (f *Flow) Applicant() gateway.Applicant {
	s := f.state()
	p := PersonalDetailsFromForm(s.FormData)
	applicant := gateway.Applicant{
		Title:       p.Title,
		FirstName:   p.FirstName,
		MiddleName:  p.MiddleName,
		LastName:    p.LastName,
		DateOfBirth: p.DateOfBirth.ISO(),
		Mobile:      DigitsOnly(s.Field("mobile")),
		Email:       p.Email,
		Address:     s.Addresses.Current,
	}
	if !s.Addresses.Previous1.IsZero() {
		prev := s.Addresses.Previous1
		applicant.PreviousAddress = &prev
	}
	if !s.Addresses.Previous2.IsZero() {
		prev := s.Addresses.Previous2
		applicant.PreviousPreviousAddress = &prev
	}
	return applicant
}

// ClientReference is FIR-LAS-YYYYMMDD: the first three letters of the first and last names,
// upper-cased, followed by the date of birth.
func ClientReference(p PersonalDetails) string {
	return fmt.Sprintf("%s-%s-%s", prefix3(p.FirstName), prefix3(p.LastName), strings.ReplaceAll(p.DateOfBirth.ISO(), "-", ""))
}

func prefix3(s string) string {
	r := []rune(strings.ToUpper(s))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}

// BuildLead assembles the final claim summary.
func (f *Flow) BuildLead() model.Lead {
	s := f.state()
	p := PersonalDetailsFromForm(s.FormData)
	current := s.Addresses.Current
	phone := FormatUKMobile(s.Field("mobile"))

	lead := model.Lead{
		Title:                       p.Title,
		FirstName:                   p.FirstName,
		LastName:                    p.LastName,
		Email:                       p.Email,
		DateOfBirth:                 p.DateOfBirth.UK(),
		Phone1:                      phone,
		Mobile:                      phone,
		AddressLine:                 current.Line(),
		TownCity:                    current.PostTown,
		Postcode:                    current.PostCode,
		BuildingNumber:              current.BuildingNumber,
		BuildingName:                current.BuildingName,
		Flat:                        current.Flat,
		Street:                      current.Street,
		PostTown:                    current.PostTown,
		PostCode:                    current.PostCode,
		IdentityScore:               s.IdentityScore,
		IdentityVerified:            s.IdentityVerified,
		ChoiceConsent:               s.Consents.Choice,
		ChoiceReason:                s.Consents.ChoiceReason,
		OtherReasonText:             s.Consents.OtherReasonText,
		MotorFinanceConsent:         s.Consents.MotorFinance,
		IrresponsibleLendingConsent: s.Consents.IrresponsibleLending,
		SelectedProfessionalReps:    s.ProfessionalReps,
		DisengagementReason:         s.DisengagementReason,
		SignatureBase64:             s.SignatureBase64,
		TermsAccepted:               s.Consents.Terms,
		FoundLenders:                s.FoundAccounts,
		AdditionalLenders:           s.AdditionalAccounts,
		Accounts:                    s.Accounts(),
		PDFURL:                      s.PDFURL,
		Source:                      orDefault(s.Attribution.Source, "direct"),
		Medium:                      orDefault(s.Attribution.Medium, "none"),
		Term:                        s.Attribution.Term,
		Campaign:                    s.Attribution.Campaign,
		SubmissionTimestamp:         f.now().UTC().Format(time.RFC3339),
	}
	if s.CreditReport != nil {
		lead.CreditResponse = s.CreditReport.Raw
	}
	if !s.Addresses.Previous1.IsZero() {
		prev := s.Addresses.Previous1
		lead.PreviousAddress = &prev
	}
	if !s.Addresses.Previous2.IsZero() {
		prev := s.Addresses.Previous2
		lead.PreviousPreviousAddress = &prev
	}
	return lead
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// VisitorUpdate builds the progressive profile update sent after every step change.
func (f *Flow) VisitorUpdate() model.VisitorDataUpdate {
	s := f.state()
	p := PersonalDetailsFromForm(s.FormData)
	current := s.Addresses.Current
	progress := ProgressPercent(s.CurrentStep)
	step := string(s.CurrentStep)
	mobile := strings.TrimSpace(s.Field("mobile"))

	update := model.VisitorDataUpdate{
		Title:               &p.Title,
		FirstName:           &p.FirstName,
		LastName:            &p.LastName,
		Email:               &p.Email,
		Mobile:              &mobile,
		BuildingNumber:      &current.BuildingNumber,
		BuildingName:        &current.BuildingName,
		Flat:                &current.Flat,
		Street:              &current.Street,
		District:            &current.District,
		PostTown:            &current.PostTown,
		County:              &current.County,
		PostCode:            &current.PostCode,
		FormProgressPercent: &progress,
		LastSavedStep:       &step,
	}
	if dob := p.DateOfBirth.ISO(); dob != "" {
		update.DateOfBirth = &dob
	}
	if snapshot, err := json.Marshal(s.FormData); err == nil {
		update.FormDataSnapshot = snapshot
	}
	previous := map[string]model.Address{}
	if !s.Addresses.Previous1.IsZero() {
		previous["previous1"] = s.Addresses.Previous1
	}
	if !s.Addresses.Previous2.IsZero() {
		previous["previous2"] = s.Addresses.Previous2
	}
	if len(previous) > 0 {
		if b, err := json.Marshal(previous); err == nil {
			update.PreviousAddresses = b
		}
	}
	return update
}
