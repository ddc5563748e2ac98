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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

// DateOfBirth is the three part date entered on step 1.
type DateOfBirth struct {
	Day   string
	Month string
	Year  string
}

// Complete reports whether all three parts are present.
func (d DateOfBirth) Complete() bool {
	return d.Day != "" && d.Month != "" && d.Year != ""
}

// ISO formats the date as YYYY-MM-DD.
func (d DateOfBirth) ISO() string {
	if !d.Complete() {
		return ""
	}
	return fmt.Sprintf("%s-%s-%s", d.Year, pad2(d.Month), pad2(d.Day))
}

// UK formats the date as DD/MM/YYYY.
func (d DateOfBirth) UK() string {
	if !d.Complete() {
		return ""
	}
	return fmt.Sprintf("%s/%s/%s", pad2(d.Day), pad2(d.Month), d.Year)
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// PersonalDetails are the step 1 fields.
type PersonalDetails struct {
	Title       string      `json:"title"`
	FirstName   string      `json:"first_name"`
	MiddleName  string      `json:"middle_name"`
	LastName    string      `json:"last_name"`
	DateOfBirth DateOfBirth `json:"dob"`
	Email       string      `json:"email"`
}

// PersonalDetailsFromForm reads step 1 fields from form data, trimming names and email.
func PersonalDetailsFromForm(form map[string]string) PersonalDetails {
	return PersonalDetails{
		Title:      form["title"],
		FirstName:  strings.TrimSpace(form["first_name"]),
		MiddleName: strings.TrimSpace(form["middle_name"]),
		LastName:   strings.TrimSpace(form["last_name"]),
		DateOfBirth: DateOfBirth{
			Day:   strings.TrimSpace(form["dob_day"]),
			Month: strings.TrimSpace(form["dob_month"]),
			Year:  strings.TrimSpace(form["dob_year"]),
		},
		Email: strings.TrimSpace(form["email"]),
	}
}

func dateOfBirthRule(now time.Time) validation.RuleFunc {
	return func(value interface{}) error {
		dob, ok := value.(DateOfBirth)
		if !ok {
			return errors.New("invalid date of birth")
		}
		if !dob.Complete() {
			return errors.New("Please enter complete date of birth")
		}
		year, err := strconv.Atoi(dob.Year)
		if len(dob.Year) != 4 || err != nil || year < 1900 || year > now.Year() {
			return errors.New("Please enter a valid year")
		}
		return nil
	}
}

// ValidateStep1 checks title, names, date of birth and email. now bounds the birth year.
func ValidateStep1(p PersonalDetails, now time.Time) error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required.Error("Please select a title")),
		validation.Field(&p.FirstName,
			validation.Required.Error("First name is required"),
			validation.RuneLength(2, 0).Error("First name must be at least 2 characters"),
		),
		validation.Field(&p.LastName,
			validation.Required.Error("Last name is required"),
			validation.RuneLength(2, 0).Error("Last name must be at least 2 characters"),
		),
		validation.Field(&p.DateOfBirth, validation.By(dateOfBirthRule(now))),
		validation.Field(&p.Email,
			validation.Required.Error("Email address is required"),
			validation.Match(emailRegexp).Error("Please enter a valid email address"),
		),
	)
}

// ValidateStep2 checks that street, town and postcode are filled in.
func ValidateStep2(a model.Address) error {
	a.Street = strings.TrimSpace(a.Street)
	a.PostTown = strings.TrimSpace(a.PostTown)
	a.PostCode = strings.TrimSpace(a.PostCode)
	return validation.ValidateStruct(&a,
		validation.Field(&a.Street, validation.Required.Error("Street is required")),
		validation.Field(&a.PostTown, validation.Required.Error("Town/City is required")),
		validation.Field(&a.PostCode, validation.Required.Error("Post code is required")),
	)
}

// ValidateStep3 checks the mobile number.
func ValidateStep3(mobile string) error {
	mobile = strings.TrimSpace(mobile)
	err := validation.Validate(mobile,
		validation.Required.Error("Mobile number is required"),
		validation.By(func(value interface{}) error {
			if !IsValidUKMobile(value.(string)) {
				return errors.New("Please enter a valid UK mobile number")
			}
			return nil
		}),
	)
	return validation.Errors{"mobile": err}.Filter()
}
