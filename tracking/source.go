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
	"net/url"
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// DetectSource names the traffic source from the referrer when no utm_source is given.
func DetectSource(referrer string) string {
	switch {
	case referrer == "":
		return "direct"
	case strings.Contains(referrer, "facebook.com"), strings.Contains(referrer, "fb.com"):
		return "facebook"
	case strings.Contains(referrer, "google."):
		return "google"
	case strings.Contains(referrer, "bing.com"):
		return "bing"
	case strings.Contains(referrer, "linkedin.com"):
		return "linkedin"
	default:
		return "referral"
	}
}

// AttributionFromURL reads UTM, Facebook and Google ad parameters from the landing page URL.
func AttributionFromURL(landingPage, referrer string) model.Attribution {
	var q url.Values
	if u, err := url.Parse(landingPage); err == nil {
		q = u.Query()
	}
	first := func(keys ...string) string {
		for _, k := range keys {
			if v := q.Get(k); v != "" {
				return v
			}
		}
		return ""
	}

	source := first("utm_source")
	if source == "" {
		source = DetectSource(referrer)
	}
	return model.Attribution{
		Source:         source,
		Medium:         first("utm_medium"),
		Term:           first("utm_term"),
		Campaign:       first("utm_campaign"),
		Content:        first("utm_content"),
		FBCampaignID:   first("fb_campaign_id", "campaign_id"),
		FBAdsetID:      first("fb_adset_id", "adset_id"),
		FBAdID:         first("fb_ad_id", "ad_id"),
		FBPlacement:    first("fb_placement", "placement"),
		FBPlatform:     first("fb_platform", "site_source_name"),
		FBCampaignName: first("fb_campaign_name"),
		FBAdsetName:    first("fb_adset_name"),
		FBAdName:       first("fb_ad_name"),
		GCLID:          first("gclid"),
		GoogleKeyword:  first("keyword"),
	}
}

// ClassifyConsent maps a checkbox id to the consent it records.
func ClassifyConsent(checkboxID string) string {
	switch {
	case strings.Contains(checkboxID, "motor"):
		return "motor_finance"
	case strings.Contains(checkboxID, "irl"), checkboxID == "irresponsibleLendingConsent":
		return "irresponsible_lending"
	case strings.Contains(checkboxID, "consent"):
		id := strings.Replace(checkboxID, "_checkbox", "", 1)
		return strings.Replace(id, "Consent", "", 1)
	case strings.Contains(checkboxID, "terms"):
		return "terms"
	case strings.Contains(checkboxID, "credit"):
		return "credit_check"
	default:
		return "unknown"
	}
}
