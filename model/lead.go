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
	"strings"
)

// Address is a UK postal address in the shape the applicant form collects it.
type Address struct {
	BuildingNumber string `json:"building_number"`
	BuildingName   string `json:"building_name"`
	Flat           string `json:"flat"`
	Street         string `json:"street"`
	District       string `json:"district,omitempty"`
	County         string `json:"county,omitempty"`
	PostTown       string `json:"post_town"`
	PostCode       string `json:"post_code"`
}

// Line joins building number, building name, flat and street into one address line.
func (a Address) Line() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{a.BuildingNumber, a.BuildingName, a.Flat, a.Street} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// IsZero reports whether the address has no postcode.
func (a Address) IsZero() bool {
	return strings.TrimSpace(a.PostCode) == ""
}

// Lead is the final claim summary uploaded once the applicant signs.
type Lead struct {
	SessionID       string   `json:"session_id,omitempty"`
	Title           string   `json:"title"`
	FirstName       string   `json:"firstName"`
	LastName        string   `json:"lastName"`
	Email           string   `json:"email"`
	DateOfBirth     string   `json:"dateOfBirth"`
	Phone1          string   `json:"phone1"`
	Mobile          string   `json:"mobile"`
	AddressLine     string   `json:"address"`
	TownCity        string   `json:"towncity"`
	Postcode        string   `json:"postcode"`
	BuildingNumber  string   `json:"building_number"`
	BuildingName    string   `json:"building_name"`
	Flat            string   `json:"flat"`
	Street          string   `json:"street"`
	PostTown        string   `json:"post_town"`
	PostCode        string   `json:"post_code"`
	PreviousAddress *Address `json:"previousAddress,omitempty"`
	// PreviousPreviousAddress is the address before PreviousAddress.
	PreviousPreviousAddress *Address `json:"previousPreviousAddress,omitempty"`

	IdentityScore    float64         `json:"identityScore"`
	IdentityVerified bool            `json:"identityVerified"`
	CreditResponse   json.RawMessage `json:"valifiResponse,omitempty"`

	ChoiceConsent               bool     `json:"belmondChoiceConsent"`
	ChoiceReason                string   `json:"choiceReason"`
	OtherReasonText             string   `json:"otherReasonText"`
	MotorFinanceConsent         bool     `json:"motorFinanceConsent"`
	IrresponsibleLendingConsent bool     `json:"irresponsibleLendingConsent"`
	SelectedProfessionalReps    []string `json:"selectedProfessionalReps"`
	DisengagementReason         string   `json:"disengagementReason"`
	SignatureBase64             string   `json:"signatureBase64"`
	TermsAccepted               bool     `json:"termsAccepted"`

	FoundLenders      []CreditAccount `json:"foundLenders"`
	AdditionalLenders []CreditAccount `json:"additionalLenders"`
	Accounts          []CreditAccount `json:"accounts"`
	PDFURL            string          `json:"pdfUrl"`

	Source   string `json:"source"`
	Medium   string `json:"medium"`
	Term     string `json:"term"`
	Campaign string `json:"campaign"`

	SubmissionTimestamp string `json:"submissionTimestamp"`
}

// LeadResult is the backend's answer to a lead upload.
type LeadResult struct {
	Success bool     `json:"success"`
	Error   string   `json:"error,omitempty"`
	LeadIDs []string `json:"lead_ids,omitempty"`
}
