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
	"regexp"
	"strings"
)

var (
	emailRegexp    = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	ukMobileRegexp = regexp.MustCompile(`^(07\d{9}|447\d{9}|00447\d{9})$`)
	nonDigits      = regexp.MustCompile(`\D`)
)

// IsValidEmail reports whether email has the local@domain.tld shape.
func IsValidEmail(email string) bool {
	return emailRegexp.MatchString(email)
}

// DigitsOnly strips every non digit character.
func DigitsOnly(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// IsValidUKMobile accepts 07 + 9 digits, 447 + 9 digits or 00447 + 9 digits once
// non digits are removed.
func IsValidUKMobile(mobile string) bool {
	return ukMobileRegexp.MatchString(DigitsOnly(mobile))
}

// FormatUKMobile strips non digits and rewrites the 0044 and 44 prefixes to the local
// leading 0 form. Anything else is returned cleaned but otherwise unchanged.
func FormatUKMobile(mobile string) string {
	cleaned := DigitsOnly(mobile)
	switch {
	case strings.HasPrefix(cleaned, "0044"):
		return "0" + cleaned[4:]
	case strings.HasPrefix(cleaned, "44"):
		return "0" + cleaned[2:]
	}
	return cleaned
}

// ToInternational rewrites a UK mobile to the 44 prefixed form used by the OTP service.
func ToInternational(mobile string) string {
	local := FormatUKMobile(mobile)
	if strings.HasPrefix(local, "0") {
		return "44" + local[1:]
	}
	return local
}
