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

// Package gateway is the client for the onboarding backend: address lookup, OTP,
// mobile trust checks, identity validation, credit reports, lead upload, the
// reference lender list and best-effort tracking delivery.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/craigmalenga/valifi-batch-sub000/internal/request"
)

const (
	PathLookupAddress    = "/lookup-address"
	PathOTPRequest       = "/otp/request"
	PathOTPVerify        = "/otp/verify"
	PathMobileIDCheck    = "/mobile-id/check"
	PathValidateIdentity = "/validate-identity"
	PathCreditReport     = "/query"
	PathUploadSummary    = "/upload_summary"
	PathLenders          = "/lenders"
)

// Error is a non-success response from the backend.
type Error struct {
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s (status %d)", e.Path, e.Message, e.StatusCode)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Client calls the backend. It never retries and never caches.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets the per request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.httpClient.Timeout = d
	}
}

// NewClient returns a client for the backend at baseURL. An empty baseURL makes every path
// relative, which suits same-origin deployments.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// do sends payload to path and decodes a 2xx body into out. fallback is the message used when
// the backend does not supply one.
func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}, fallback string) ([]byte, error) {
	req, err := request.NewJSONRequest(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return nil, &Error{Path: path, Message: fallback, Err: err}
	}

	resp, body, err := request.Send(c.httpClient, req)
	if err != nil {
		return nil, &Error{Path: path, Message: fallback, Err: err}
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		message := fallback
		var eb errorBody
		if json.Unmarshal(body, &eb) == nil {
			if eb.Error != "" {
				message = eb.Error
			} else if eb.Message != "" {
				message = eb.Message
			}
		}
		return body, &Error{Path: path, StatusCode: resp.StatusCode, Message: message}
	}

	if out != nil && len(body) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			return body, &Error{Path: path, StatusCode: resp.StatusCode, Message: fallback, Err: fmt.Errorf("failed to decode response: %w", err)}
		}
	}
	return body, nil
}

// Track posts a tracking payload to path. Only transport failures and non-2xx statuses are
// reported; the response body is ignored.
func (c *Client) Track(ctx context.Context, path string, payload interface{}) error {
	_, err := c.do(ctx, http.MethodPost, path, payload, nil, "Tracking request failed")
	return err
}
