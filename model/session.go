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
	"time"
)

// Attribution holds the marketing parameters captured on the first page load of a session.
type Attribution struct {
	Source         string `json:"source"`
	Medium         string `json:"medium"`
	Campaign       string `json:"campaign"`
	Term           string `json:"term"`
	Content        string `json:"content"`
	FBCampaignID   string `json:"fb_campaign_id"`
	FBCampaignName string `json:"fb_campaign_name"`
	FBAdsetID      string `json:"fb_adset_id"`
	FBAdsetName    string `json:"fb_adset_name"`
	FBAdID         string `json:"fb_ad_id"`
	FBAdName       string `json:"fb_ad_name"`
	FBPlacement    string `json:"fb_placement"`
	FBPlatform     string `json:"fb_platform"`
	GCLID          string `json:"gclid"`
	GoogleKeyword  string `json:"google_keyword"`
}

// FillEmpty copies every non-empty field of other into a whose matching field is still empty.
func (a *Attribution) FillEmpty(other Attribution) {
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&a.Source, other.Source)
	fill(&a.Medium, other.Medium)
	fill(&a.Campaign, other.Campaign)
	fill(&a.Term, other.Term)
	fill(&a.Content, other.Content)
	fill(&a.FBCampaignID, other.FBCampaignID)
	fill(&a.FBCampaignName, other.FBCampaignName)
	fill(&a.FBAdsetID, other.FBAdsetID)
	fill(&a.FBAdsetName, other.FBAdsetName)
	fill(&a.FBAdID, other.FBAdID)
	fill(&a.FBAdName, other.FBAdName)
	fill(&a.FBPlacement, other.FBPlacement)
	fill(&a.FBPlatform, other.FBPlatform)
	fill(&a.GCLID, other.GCLID)
	fill(&a.GoogleKeyword, other.GoogleKeyword)
}

// Journey records the onboarding milestones reached by a session.
type Journey struct {
	IdentityVerifiedAt       *time.Time      `json:"identity_verified_at,omitempty"`
	SignatureAt              *time.Time      `json:"signature_at,omitempty"`
	CreditReportStored       bool            `json:"credit_report_stored"`
	CreditReportURL          string          `json:"credit_report_url,omitempty"`
	CreditResponseReceived   bool            `json:"credit_response_received"`
	LendersFoundCount        int             `json:"lenders_found_count"`
	CMCDetected              bool            `json:"cmc_detected"`
	TermsAccepted            bool            `json:"terms_accepted"`
	TermsScrolledToBottom    bool            `json:"terms_scrolled_to_bottom"`
	ProfessionalRepsSelected []string        `json:"professional_reps_selected,omitempty"`
	DisengagementReason      string          `json:"disengagement_reason,omitempty"`
	FCADisclosureViewed      bool            `json:"fca_disclosure_viewed"`
	FCADisclosureVersion     string          `json:"fca_disclosure_version,omitempty"`
	FCAReasonSelected        string          `json:"fca_reason_selected,omitempty"`
	FCAHasOtherReason        bool            `json:"fca_has_other_reason"`
	ManualLendersAdded       int             `json:"manual_lenders_added"`
	ManualLenders            []string        `json:"manual_lenders,omitempty"`
	ConsentStates            map[string]bool `json:"consent_states,omitempty"`
	MaxScrollDepth           int             `json:"max_scroll_depth"`
	InactiveSeconds          int             `json:"inactive_seconds"`
	TabVisibilityChanges     int             `json:"tab_visibility_changes"`
	ValidationErrors         int             `json:"validation_errors"`
}

// Profile is the applicant data saved progressively while the wizard is filled in.
type Profile struct {
	Title               string          `json:"title,omitempty"`
	FirstName           string          `json:"first_name,omitempty"`
	LastName            string          `json:"last_name,omitempty"`
	Email               string          `json:"email,omitempty"`
	Mobile              string          `json:"mobile,omitempty"`
	DateOfBirth         string          `json:"date_of_birth,omitempty"`
	BuildingNumber      string          `json:"building_number,omitempty"`
	BuildingName        string          `json:"building_name,omitempty"`
	Flat                string          `json:"flat,omitempty"`
	Street              string          `json:"street,omitempty"`
	District            string          `json:"district,omitempty"`
	PostTown            string          `json:"post_town,omitempty"`
	County              string          `json:"county,omitempty"`
	PostCode            string          `json:"post_code,omitempty"`
	PreviousAddresses   json.RawMessage `json:"previous_addresses,omitempty"`
	FormDataSnapshot    json.RawMessage `json:"form_data_snapshot,omitempty"`
	FormProgressPercent int             `json:"form_progress_percent,omitempty"`
	LastSavedStep       string          `json:"last_saved_step,omitempty"`
	ResumeTokenCreated  *time.Time      `json:"resume_token_created,omitempty"`
	ResumeLinkSentAt    *time.Time      `json:"resume_link_sent_at,omitempty"`
}

// VisitorSession is the server side aggregate of everything tracked for one browser session.
type VisitorSession struct {
	SessionID            string      `json:"session_id"`
	VisitorID            string      `json:"visitor_id"`
	FirstVisit           time.Time   `json:"first_visit"`
	LastActivity         time.Time   `json:"last_activity"`
	UKHour               int         `json:"uk_hour"`
	UKDayOfWeek          int         `json:"uk_day_of_week"`
	UKDate               string      `json:"uk_date"`
	Attribution          Attribution `json:"attribution"`
	LandingPage          string      `json:"landing_page"`
	Referrer             string      `json:"referrer"`
	DeviceType           string      `json:"device_type"`
	Browser              string      `json:"browser"`
	IPAddress            string      `json:"ip_address"`
	PagesViewed          int         `json:"pages_viewed"`
	TimeOnSite           int         `json:"time_on_site"`
	FormStarted          bool        `json:"form_started"`
	FormCompleted        bool        `json:"form_completed"`
	FormAbandonmentStage string      `json:"form_abandonment_stage"`
	LeadIDs              []string    `json:"lead_ids"`
	ConversionTimestamp  *time.Time  `json:"conversion_timestamp,omitempty"`
	LastCompletedStep    string      `json:"last_completed_step"`
	LastActiveField      string      `json:"last_active_field"`
	TotalInteractions    int         `json:"total_interactions"`
	CreditCheckInitiated bool        `json:"credit_check_initiated"`
	IdentityVerified     bool        `json:"identity_verified"`
	OTPSent              bool        `json:"otp_sent"`
	OTPVerified          bool        `json:"otp_verified"`
	SignatureProvided    bool        `json:"signature_provided"`
	ResumeToken          string      `json:"resume_token"`
	ResumeLinkSent       bool        `json:"resume_link_sent"`
	Journey              Journey     `json:"journey"`
	Profile              Profile     `json:"profile"`
	CreatedAt            time.Time   `json:"created_at"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// NewVisitorSession returns an empty session stamped with now in both UTC and UK local time.
func NewVisitorSession(sessionID, visitorID string, now time.Time) *VisitorSession {
	if visitorID == "" {
		visitorID = "unknown"
	}
	uk := UKTime(now)
	return &VisitorSession{
		SessionID:    sessionID,
		VisitorID:    visitorID,
		FirstVisit:   now.UTC(),
		LastActivity: now.UTC(),
		UKHour:       uk.Hour(),
		UKDayOfWeek:  mondayFirstWeekday(uk.Weekday()),
		UKDate:       uk.Format("2006-01-02"),
		PagesViewed:  1,
		CreatedAt:    now.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// mondayFirstWeekday maps Go's Sunday based weekday to 0 = Monday ... 6 = Sunday.
func mondayFirstWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// Touch records activity at now and refreshes the time on site.
func (s *VisitorSession) Touch(now time.Time) {
	s.LastActivity = now.UTC()
	s.UpdatedAt = now.UTC()
	if !s.FirstVisit.IsZero() {
		s.TimeOnSite = int(now.Sub(s.FirstVisit).Seconds())
	}
}

// ApplyEvent folds a single detailed tracking event into the session.
func (s *VisitorSession) ApplyEvent(e TrackingEvent, now time.Time) {
	switch e.EventType {
	case EventStepView:
		if e.String("step_name") != "" {
			s.LastCompletedStep = e.String("previous_step")
		}
	case EventStepComplete:
		if step := e.String("step_name"); step != "" {
			s.LastCompletedStep = step
		}
	case EventFieldInteraction:
		if field := e.String("field_name"); field != "" {
			s.LastActiveField = field
			s.TotalInteractions++
		}
	case EventConsentChange:
		if consent := e.String("consent_type"); consent != "" {
			if s.Journey.ConsentStates == nil {
				s.Journey.ConsentStates = make(map[string]bool)
			}
			s.Journey.ConsentStates[consent] = e.Bool("consent_value")
		}
	case EventFieldValidationError:
		s.Journey.ValidationErrors++
	case EventScrollDepth:
		if depth := e.Int("depth"); depth > s.Journey.MaxScrollDepth {
			s.Journey.MaxScrollDepth = depth
		}
	case EventInactivePeriod:
		s.Journey.InactiveSeconds += e.Int("duration")
	case EventTabVisibilityChange:
		s.Journey.TabVisibilityChanges++
	case EventIdentityVerification:
		if e.String("status") == "completed" {
			s.IdentityVerified = true
			at := now.UTC()
			s.Journey.IdentityVerifiedAt = &at
		}
	case EventOTPStatus:
		switch e.String("status") {
		case "sent":
			s.OTPSent = true
		case "verified":
			s.OTPVerified = true
		}
	case EventCreditCheck:
		switch e.String("status") {
		case "initiated":
			s.CreditCheckInitiated = true
		case "completed":
			s.Journey.CreditResponseReceived = true
			s.Journey.LendersFoundCount = e.Int("lenders_count")
			s.Journey.CMCDetected = e.Bool("cmc_detected")
		case "stored":
			s.Journey.CreditReportStored = true
			s.Journey.CreditReportURL = e.String("s3_url")
		}
	case EventSignature:
		if e.String("status") == "provided" {
			s.SignatureProvided = true
			at := now.UTC()
			s.Journey.SignatureAt = &at
		}
	case EventTerms:
		switch e.String("action") {
		case "scrolled_to_bottom":
			s.Journey.TermsScrolledToBottom = true
		case "accepted":
			s.Journey.TermsAccepted = true
		}
	case EventProfessionalRep:
		s.Journey.ProfessionalRepsSelected = e.Strings("selected_reps")
		s.Journey.DisengagementReason = e.String("disengagement_reason")
	case EventFCADisclosure:
		switch e.String("action") {
		case "viewed":
			s.Journey.FCADisclosureViewed = true
			s.Journey.FCADisclosureVersion = e.String("version")
		case "choice_selected":
			s.Journey.FCAReasonSelected = e.String("reason")
			s.Journey.FCAHasOtherReason = e.Bool("has_other")
		}
	case EventManualLender:
		if name := e.String("lender_name"); name != "" {
			s.Journey.ManualLendersAdded++
			s.Journey.ManualLenders = append(s.Journey.ManualLenders, name)
		}
	case EventPageView:
		s.PagesViewed++
	}
	s.Touch(now)
}

// ApplyBulk folds a batch of events into the session. Only step completions and field
// interactions are recorded from bulk deliveries.
func (s *VisitorSession) ApplyBulk(events []TrackingEvent, now time.Time) {
	for _, e := range events {
		switch e.EventType {
		case EventStepComplete:
			s.LastCompletedStep = e.String("step_name")
		case EventFieldInteraction:
			s.LastActiveField = e.String("field_name")
			s.TotalInteractions++
		}
	}
	s.LastActivity = now.UTC()
	s.UpdatedAt = now.UTC()
}

// Form lifecycle event names accepted by the form event endpoint.
const (
	FormEventStart    = "start"
	FormEventProgress = "progress"
	FormEventComplete = "complete"
	FormEventAbandon  = "abandon"
)

// ApplyFormEvent records a form lifecycle transition.
func (s *VisitorSession) ApplyFormEvent(f FormEvent, now time.Time) {
	switch f.EventType {
	case FormEventStart:
		s.FormStarted = true
	case FormEventComplete:
		s.markConverted(f.LeadIDs, now)
	case FormEventAbandon:
		s.FormAbandonmentStage = f.FormStage
	}
	s.Touch(now)
}

// ApplyConversion marks the session converted with the given lead ids.
func (s *VisitorSession) ApplyConversion(c Conversion, now time.Time) {
	s.markConverted(c.LeadIDs, now)
	s.Touch(now)
}

func (s *VisitorSession) markConverted(leadIDs []string, now time.Time) {
	at := now.UTC()
	s.FormCompleted = true
	s.ConversionTimestamp = &at
	s.LeadIDs = leadIDs
}

// ApplyVisit records a page load. New sessions take every field, existing sessions only fill
// attribution gaps and refresh device details.
func (s *VisitorSession) ApplyVisit(v VisitorRecord, device Device, hashedIP string, isNew bool, now time.Time) {
	if isNew {
		s.Attribution = v.Attribution
		if s.Attribution.Source == "" {
			s.Attribution.Source = "direct"
		}
		s.LandingPage = v.LandingPage
		s.Referrer = v.Referrer
	} else {
		s.Attribution.FillEmpty(v.Attribution)
		if s.LandingPage == "" {
			s.LandingPage = v.LandingPage
		}
		if s.Referrer == "" {
			s.Referrer = v.Referrer
		}
	}
	s.DeviceType = device.Type
	s.Browser = device.Browser
	s.IPAddress = hashedIP
	s.LastActivity = now.UTC()
	s.UpdatedAt = now.UTC()
}

// ApplyUpdate copies every field present in the progressive update onto the session.
func (s *VisitorSession) ApplyUpdate(u VisitorDataUpdate, now time.Time) {
	p := &s.Profile
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&p.FirstName, u.FirstName)
	set(&p.LastName, u.LastName)
	set(&p.Email, u.Email)
	set(&p.Mobile, u.Mobile)
	set(&p.Title, u.Title)
	if u.DateOfBirth != nil {
		if dob, err := time.Parse("2006-01-02", *u.DateOfBirth); err == nil {
			p.DateOfBirth = dob.Format("2006-01-02")
		}
	}
	set(&p.BuildingNumber, u.BuildingNumber)
	set(&p.BuildingName, u.BuildingName)
	set(&p.Flat, u.Flat)
	set(&p.Street, u.Street)
	set(&p.District, u.District)
	set(&p.PostTown, u.PostTown)
	set(&p.County, u.County)
	set(&p.PostCode, u.PostCode)
	set(&p.LastSavedStep, u.LastSavedStep)
	if len(u.PreviousAddresses) > 0 {
		p.PreviousAddresses = u.PreviousAddresses
	}
	if len(u.FormDataSnapshot) > 0 {
		p.FormDataSnapshot = snapshotJSON(u.FormDataSnapshot)
	}
	if u.FormProgressPercent != nil {
		p.FormProgressPercent = *u.FormProgressPercent
	}
	if u.ResumeToken != nil {
		s.ResumeToken = *u.ResumeToken
		at := now.UTC()
		p.ResumeTokenCreated = &at
	}
	if u.ResumeLinkSent != nil {
		s.ResumeLinkSent = *u.ResumeLinkSent
		if *u.ResumeLinkSent {
			at := now.UTC()
			p.ResumeLinkSentAt = &at
		}
	}
	s.LastActivity = now.UTC()
	s.UpdatedAt = now.UTC()
}

// MarkResumeLinkSent flags that the resume link went out at now.
func (s *VisitorSession) MarkResumeLinkSent(now time.Time) {
	at := now.UTC()
	s.ResumeLinkSent = true
	s.Profile.ResumeLinkSentAt = &at
	s.UpdatedAt = at
}

// snapshotJSON accepts either an object or a JSON encoded string holding an object.
func snapshotJSON(raw json.RawMessage) json.RawMessage {
	var encoded string
	if err := json.Unmarshal(raw, &encoded); err == nil {
		if json.Valid([]byte(encoded)) {
			return json.RawMessage(encoded)
		}
		quoted, _ := json.Marshal(encoded)
		return quoted
	}
	return raw
}
