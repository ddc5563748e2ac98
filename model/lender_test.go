package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wacul/ptr"
)

func TestLenderAliases(t *testing.T) {
	lender := Lender{Name: " Barclays Bank ", MatchingNames: "Barclays, Barclaycard,, Barclays Partner Finance "}
	assert.Equal(t, []string{"Barclays Bank", "Barclays", "Barclaycard", "Barclays Partner Finance"}, lender.Aliases())
	assert.Empty(t, Lender{}.Aliases())
}

func TestCreditAccountReportedName(t *testing.T) {
	assert.Equal(t, "Display", CreditAccount{DisplayName: "Display", Name: "Name", LenderName: "Lender"}.ReportedName())
	assert.Equal(t, "Name", CreditAccount{Name: "Name", LenderName: "Lender"}.ReportedName())
	assert.Equal(t, "Lender", CreditAccount{LenderName: "Lender"}.ReportedName())
	assert.Equal(t, "Unknown Lender", CreditAccount{}.ReportedName())
}

func TestCreditAccountEligible(t *testing.T) {
	assert.True(t, CreditAccount{}.Eligible())
	assert.True(t, CreditAccount{DateEligible: ptr.Bool(true)}.Eligible())
	assert.False(t, CreditAccount{DateEligible: ptr.Bool(false)}.Eligible())
}
