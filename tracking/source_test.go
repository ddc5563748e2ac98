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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectSource(t *testing.T) {
	tests := map[string]string{
		"":                                  "direct",
		"https://m.facebook.com/":           "facebook",
		"https://l.fb.com/x":                "facebook",
		"https://www.google.co.uk/search":   "google",
		"https://www.bing.com/search?q=car": "bing",
		"https://www.linkedin.com/feed":     "linkedin",
		"https://news.example.com/story":    "referral",
	}
	for referrer, want := range tests {
		assert.Equal(t, want, DetectSource(referrer), referrer)
	}
}

func TestAttributionFromURL(t *testing.T) {
	a := AttributionFromURL(
		"https://claim.example.com/?utm_source=fb&utm_medium=paid&utm_campaign=spring&campaign_id=123&adset_id=456&fb_ad_id=789&site_source_name=ig&gclid=abc&keyword=car+finance",
		"https://m.facebook.com/",
	)
	assert.Equal(t, "fb", a.Source)
	assert.Equal(t, "paid", a.Medium)
	assert.Equal(t, "spring", a.Campaign)
	assert.Equal(t, "123", a.FBCampaignID)
	assert.Equal(t, "456", a.FBAdsetID)
	assert.Equal(t, "789", a.FBAdID)
	assert.Equal(t, "ig", a.FBPlatform)
	assert.Equal(t, "abc", a.GCLID)
	assert.Equal(t, "car finance", a.GoogleKeyword)

	a = AttributionFromURL("https://claim.example.com/", "https://www.google.com/")
	assert.Equal(t, "google", a.Source)
	assert.Empty(t, a.Medium)
}

func TestClassifyConsent(t *testing.T) {
	tests := map[string]string{
		"motorFinanceConsent":         "motor_finance",
		"motor_checkbox":              "motor_finance",
		"irl_checkbox":                "irresponsible_lending",
		"irresponsibleLendingConsent": "irresponsible_lending",
		"choice_consent_checkbox":     "choice_consent",
		"marketing_consent":           "marketing_consent",
		"termsAccepted":               "terms",
		"credit_search":               "credit_check",
		"newsletter":                  "unknown",
	}
	for id, want := range tests {
		assert.Equal(t, want, ClassifyConsent(id), id)
	}
}
