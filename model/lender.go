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

import "strings"

// Lender is an entry of the reference lender list.
type Lender struct {
	Name          string `json:"name"`
	Filename      string `json:"filename,omitempty"`
	MatchingNames string `json:"matching_names,omitempty"`
}

// Aliases returns the lender's name followed by every comma separated matching name,
// trimmed, with empty entries removed.
func (l Lender) Aliases() []string {
	aliases := make([]string, 0, 4)
	if name := strings.TrimSpace(l.Name); name != "" {
		aliases = append(aliases, name)
	}
	for _, alias := range strings.Split(l.MatchingNames, ",") {
		if alias = strings.TrimSpace(alias); alias != "" {
			aliases = append(aliases, alias)
		}
	}
	return aliases
}

// CreditAccount is one finance agreement read from a credit report, or added by hand.
type CreditAccount struct {
	LenderName   string `json:"lenderName,omitempty"`
	Name         string `json:"name,omitempty"`
	DisplayName  string `json:"displayName,omitempty"`
	AccountType  string `json:"accountType,omitempty"`
	StartDate    string `json:"startDate,omitempty"`
	DateEligible *bool  `json:"dateEligible,omitempty"`
	Manual       bool   `json:"-"`
}

// ReportedName is the lender name as the credit file states it.
func (a CreditAccount) ReportedName() string {
	switch {
	case a.DisplayName != "":
		return a.DisplayName
	case a.Name != "":
		return a.Name
	case a.LenderName != "":
		return a.LenderName
	}
	return "Unknown Lender"
}

// Eligible reports whether the agreement falls inside the claim date range. Accounts without
// an explicit flag are eligible.
func (a CreditAccount) Eligible() bool {
	return a.DateEligible == nil || *a.DateEligible
}

// LenderCategory groups lenders on the review step.
type LenderCategory string

const (
	CategoryProceeding    LenderCategory = "proceeding"
	CategoryOutsideRange  LenderCategory = "outside_range"
	CategoryNotInDatabase LenderCategory = "not_in_database"
)

// LenderView is a credit account prepared for display.
type LenderView struct {
	Name      string         `json:"name"`
	Source    string         `json:"source"`
	StartDate string         `json:"start_date,omitempty"`
	LogoFile  string         `json:"logo_file,omitempty"`
	Score     float64        `json:"score"`
	Category  LenderCategory `json:"category"`
}
