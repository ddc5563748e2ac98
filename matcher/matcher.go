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

// Package matcher reconciles lender names reported on credit files against the
// reference lender list using Levenshtein similarity.
package matcher

import (
	"strings"

	"github.com/craigmalenga/valifi-batch-sub000/model"
)

const (
	// Threshold is the minimum similarity for a reported name to be reconciled to a lender.
	Threshold = 0.8

	exactScore     = 1.0
	substringScore = 0.9
)

// EditDistance returns the Levenshtein distance between a and b counted in runes.
// Memory use is a single row sized to the shorter string.
func EditDistance(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) < len(rb) {
		ra, rb = rb, ra
	}
	if len(rb) == 0 {
		return len(ra)
	}

	row := make([]int, len(rb)+1)
	for j := range row {
		row[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		diagonal := row[0]
		row[0] = i
		for j := 1; j <= len(rb); j++ {
			above := row[j]
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			row[j] = min(row[j]+1, row[j-1]+1, diagonal+cost)
			diagonal = above
		}
	}
	return row[len(rb)]
}

// Similarity returns (maxLen - distance) / maxLen, or 1 when both strings are empty.
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if len([]rune(longer)) < len([]rune(shorter)) {
		longer, shorter = shorter, longer
	}
	maxLen := len([]rune(longer))
	if maxLen == 0 {
		return 1
	}
	return float64(maxLen-EditDistance(longer, shorter)) / float64(maxLen)
}

// Match is the best reference lender found for a reported name.
type Match struct {
	Lender model.Lender
	Score  float64
}

// Score rates how well reported matches candidate after case folding: 1 for equal names,
// 0.9 when one contains the other, otherwise their similarity.
func Score(reported, candidate string) float64 {
	r, c := strings.ToLower(reported), strings.ToLower(candidate)
	switch {
	case r == c:
		return exactScore
	case strings.Contains(r, c) || strings.Contains(c, r):
		return substringScore
	default:
		return Similarity(r, c)
	}
}

// FindBestLender returns the lender whose name or matching names score highest against
// reported. The first exact match ends the search; otherwise the first lender to reach the
// highest score wins. ok is false when no score reaches Threshold.
func FindBestLender(reported string, lenders []model.Lender) (match Match, ok bool) {
	for _, lender := range lenders {
		for _, alias := range lender.Aliases() {
			score := Score(reported, alias)
			if score == exactScore {
				return Match{Lender: lender, Score: score}, true
			}
			if score > match.Score {
				match = Match{Lender: lender, Score: score}
			}
		}
	}
	if match.Score < Threshold {
		return Match{}, false
	}
	return match, true
}
