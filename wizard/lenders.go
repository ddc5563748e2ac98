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
	"github.com/craigmalenga/valifi-batch-sub000/matcher"
	"github.com/craigmalenga/valifi-batch-sub000/model"
)

const (
	sourceCreditFile = "Valifi"
	sourceManual     = "Manual"
)

// LenderViews reconciles found and manually added accounts against the reference list.
// Matched accounts show the reference name and logo; unmatched ones keep the reported
// name and have no logo. Matched credit file accounts outside the date range are
// categorised separately; manual entries are always eligible.
func LenderViews(found, manual []model.CreditAccount, lenders []model.Lender) []model.LenderView {
	views := make([]model.LenderView, 0, len(found)+len(manual))
	add := func(account model.CreditAccount, isManual bool) {
		reported := account.ReportedName()
		view := model.LenderView{
			Name:      reported,
			Source:    sourceCreditFile,
			StartDate: account.StartDate,
			Category:  model.CategoryNotInDatabase,
		}
		if isManual {
			view.Source = sourceManual
		}
		if match, ok := matcher.FindBestLender(reported, lenders); ok {
			view.Name = match.Lender.Name
			view.LogoFile = match.Lender.Filename
			view.Score = match.Score
			if isManual || account.Eligible() {
				view.Category = model.CategoryProceeding
			} else {
				view.Category = model.CategoryOutsideRange
			}
		}
		views = append(views, view)
	}
	for _, a := range found {
		add(a, false)
	}
	for _, a := range manual {
		add(a, true)
	}
	return views
}

// GroupLenderViews splits views by category, keeping their order.
func GroupLenderViews(views []model.LenderView) map[model.LenderCategory][]model.LenderView {
	groups := make(map[model.LenderCategory][]model.LenderView, 3)
	for _, v := range views {
		groups[v.Category] = append(groups[v.Category], v)
	}
	return groups
}
