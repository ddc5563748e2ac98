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
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// LookupAddress returns the addresses registered at postCode.
func (c *Client) LookupAddress(ctx context.Context, postCode string) ([]PostalAddress, error) {
	var resp struct {
		Addresses []PostalAddress `json:"addresses"`
	}
	_, err := c.do(ctx, http.MethodPost, PathLookupAddress, map[string]string{"postCode": postCode}, &resp, "Address lookup failed")
	if err != nil {
		return nil, err
	}
	return resp.Addresses, nil
}

// RequestOTP asks the backend to text a one time passcode to mobile.
func (c *Client) RequestOTP(ctx context.Context, mobile string) (*OTPResult, error) {
	var result OTPResult
	if _, err := c.do(ctx, http.MethodPost, PathOTPRequest, map[string]string{"mobile": mobile}, &result, "Failed to send OTP"); err != nil {
		return nil, err
	}
	return &result, nil
}

// VerifyOTP checks code against the passcode sent to mobile.
func (c *Client) VerifyOTP(ctx context.Context, mobile, code string) (*OTPResult, error) {
	var result OTPResult
	if _, err := c.do(ctx, http.MethodPost, PathOTPVerify, map[string]string{"mobile": mobile, "code": code}, &result, "OTP verification failed"); err != nil {
		return nil, err
	}
	return &result, nil
}

// CheckMobileID runs the mobile trust check for the applicant.
func (c *Client) CheckMobileID(ctx context.Context, applicant Applicant) (*MobileIDResult, error) {
	var result MobileIDResult
	if _, err := c.do(ctx, http.MethodPost, PathMobileIDCheck, applicant, &result, "Mobile check failed"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ValidateIdentity runs the identity check for the applicant.
func (c *Client) ValidateIdentity(ctx context.Context, applicant Applicant) (*IdentityResult, error) {
	var result IdentityResult
	body, err := c.do(ctx, http.MethodPost, PathValidateIdentity, applicant, &result, "Identity validation failed")
	if err != nil {
		return nil, err
	}
	result.Raw = body
	return &result, nil
}

// GetCreditReport retrieves the applicant's credit report. Accounts from summaryReportV2 and
// summaryReport are merged into Data.Accounts.
func (c *Client) GetCreditReport(ctx context.Context, applicant Applicant) (*CreditReport, error) {
	var report CreditReport
	body, err := c.do(ctx, http.MethodPost, PathCreditReport, applicant, &report, "Credit report failed")
	if err != nil {
		return nil, err
	}
	report.Raw = body
	report.mergeAccounts()
	return &report, nil
}

// UploadSummary submits the final claim summary.
func (c *Client) UploadSummary(ctx context.Context, lead model.Lead) (*model.LeadResult, error) {
	var result model.LeadResult
	if _, err := c.do(ctx, http.MethodPost, PathUploadSummary, lead, &result, "Submission failed"); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListLenders returns the reference lender list sorted by name. Entries without any usable
// name are dropped.
func (c *Client) ListLenders(ctx context.Context) ([]model.Lender, error) {
	body, err := c.do(ctx, http.MethodGet, PathLenders, nil, nil, "Failed to load lenders")
	if err != nil {
		return nil, err
	}

	entries, err := decodeLenderEntries(body)
	if err != nil {
		return nil, &Error{Path: PathLenders, StatusCode: http.StatusOK, Message: "Failed to load lenders", Err: err}
	}

	lenders := make([]model.Lender, 0, len(entries))
	for _, e := range entries {
		name := strings.TrimSpace(firstNonEmpty(e.Name, e.DisplayName, e.FLGLenderName, e.FLGName))
		if name == "" {
			continue
		}
		lenders = append(lenders, model.Lender{Name: name, Filename: e.Filename, MatchingNames: e.MatchingNames})
	}
	sort.SliceStable(lenders, func(i, j int) bool {
		return strings.ToLower(lenders[i].Name) < strings.ToLower(lenders[j].Name)
	})
	return lenders, nil
}

type lenderEntry struct {
	Name          string `json:"name"`
	DisplayName   string `json:"display_name"`
	FLGLenderName string `json:"flg_lender_name"`
	FLGName       string `json:"flg_name"`
	Filename      string `json:"filename"`
	MatchingNames string `json:"matching_names"`
}

// decodeLenderEntries accepts either a bare array or an object with a lenders array.
func decodeLenderEntries(body []byte) ([]lenderEntry, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var entries []lenderEntry
		err := json.Unmarshal(trimmed, &entries)
		return entries, err
	}
	var wrapped struct {
		Lenders []lenderEntry `json:"lenders"`
	}
	err := json.Unmarshal(trimmed, &wrapped)
	return wrapped.Lenders, err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
