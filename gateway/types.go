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

package gateway

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// Text is a string field the backend sometimes sends as a JSON number.
type Text string

func (t *Text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	if string(b) == "null" {
		*t = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// PostalAddress is one address returned by the postcode lookup.
type PostalAddress struct {
	Number      Text   `json:"number,omitempty"`
	Name        Text   `json:"name,omitempty"`
	SubBuilding string `json:"subBuilding,omitempty"`
	Flat        Text   `json:"flat,omitempty"`
	House       string `json:"house,omitempty"`
	Street1     string `json:"street1,omitempty"`
	District    string `json:"district,omitempty"`
	County      string `json:"county,omitempty"`
	PostTown    string `json:"postTown,omitempty"`
	Postcode    string `json:"postcode,omitempty"`
}

// OTPResult is the answer to an OTP request or verification.
type OTPResult struct {
	Status bool `json:"status"`
	Data   struct {
		Result string `json:"result"`
	} `json:"data"`
	Error string `json:"error,omitempty"`
}

// Sent reports whether the passcode went out.
func (r *OTPResult) Sent() bool {
	return r.Data.Result == "SENT" || r.Status
}

// Verified reports whether the submitted passcode matched.
func (r *OTPResult) Verified() bool {
	return r.Data.Result == "PASS" || r.Data.Result == "VERIFIED" || r.Status
}

// Applicant carries the identity and address fields the checks run against.
type Applicant struct {
	Title       string `json:"title"`
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dateOfBirth"`
	Mobile      string `json:"mobile"`
	Email       string `json:"email"`
	model.Address
	PreviousAddress         *model.Address `json:"previousAddress,omitempty"`
	PreviousPreviousAddress *model.Address `json:"previousPreviousAddress,omitempty"`
	ClientReference         string         `json:"clientReference,omitempty"`
}

// Recommendation values of a trust assessment.
const (
	RecommendationPositive = "POSITIVE"
	RecommendationNeutral  = "NEUTRAL"
	RecommendationNegative = "NEGATIVE"
)

// TrustAssessment correlates a mobile number with the claimed identity.
type TrustAssessment struct {
	Recommendation string       `json:"recommendation"`
	Details        TrustDetails `json:"details"`
}

// TrustDetails holds the match counts behind a trust assessment.
type TrustDetails struct {
	IdentityMatches   int `json:"identityMatches"`
	LinkedMatches     int `json:"linkedMatches"`
	AddressMatches    int `json:"addressMatches"`
	UnknownIdentities int `json:"unknownIdentities"`
	UnknownAddresses  int `json:"unknownAddresses"`
}

// MobileIDResult is the answer to a mobile trust check.
type MobileIDResult struct {
	Success         bool             `json:"success"`
	TrustAssessment *TrustAssessment `json:"trustAssessment,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// Passed reports whether the check succeeded without a negative recommendation.
func (r *MobileIDResult) Passed() bool {
	if !r.Success {
		return false
	}
	return r.TrustAssessment == nil || !strings.EqualFold(r.TrustAssessment.Recommendation, RecommendationNegative)
}

// IdentityResult is the answer to an identity validation.
type IdentityResult struct {
	Success       bool    `json:"success"`
	Passed        bool    `json:"passed"`
	IdentityScore float64 `json:"identityScore"`
	MinimumScore  float64 `json:"minimumScore"`
	Data          struct {
		SummaryReport struct {
			Data struct {
				OtherChecks struct {
					IdentityResult string `json:"IdentityResult"`
				} `json:"OtherChecks"`
			} `json:"data"`
		} `json:"summaryReport"`
	} `json:"data"`
	ValifiResponse json.RawMessage `json:"valifiResponse,omitempty"`
	Raw            json.RawMessage `json:"-"`
}

// Verified reports whether the identity check passed, either through the top level flags or
// the summary report's identity result.
func (r *IdentityResult) Verified() bool {
	if r.Success && r.Passed {
		return true
	}
	return strings.EqualFold(r.Data.SummaryReport.Data.OtherChecks.IdentityResult, "pass")
}

// CreditReport is the answer to a credit report query.
type CreditReport struct {
	Data struct {
		Accounts        []model.CreditAccount `json:"accounts"`
		SummaryReport   *SummaryReport        `json:"summaryReport,omitempty"`
		SummaryReportV2 *SummaryReport        `json:"summaryReportV2,omitempty"`
		PDFReport       string                `json:"pdfReport,omitempty"`
		PDFURL          string                `json:"pdfUrl,omitempty"`
	} `json:"data"`
	Raw json.RawMessage `json:"-"`
}

// SummaryReport is the account summary section of a credit report.
type SummaryReport struct {
	Accounts []model.CreditAccount `json:"accounts"`
}

func (r *CreditReport) mergeAccounts() {
	v2 := r.Data.SummaryReportV2
	if v2 == nil {
		return
	}
	if v2.Accounts != nil {
		r.Data.Accounts = v2.Accounts
	}
	if r.Data.SummaryReport != nil && len(r.Data.SummaryReport.Accounts) > 0 {
		merged := make([]model.CreditAccount, 0, len(r.Data.Accounts)+len(r.Data.SummaryReport.Accounts))
		merged = append(merged, r.Data.Accounts...)
		r.Data.Accounts = append(merged, r.Data.SummaryReport.Accounts...)
	}
}

// Accounts returns the finance accounts found on the report.
func (r *CreditReport) Accounts() []model.CreditAccount {
	if len(r.Data.Accounts) > 0 {
		return r.Data.Accounts
	}
	if r.Data.SummaryReport != nil {
		return r.Data.SummaryReport.Accounts
	}
	return nil
}

// CMCDetected reports whether a claims management company already searched the file.
func (r *CreditReport) CMCDetected() bool {
	return bytes.Contains(bytes.ToLower(r.Raw), []byte("valifi"))
}
