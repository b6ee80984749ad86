package model

import (
	"fmt"
	"strings"
)

// FilingStatus selects which bracket table and standard deduction apply.
type FilingStatus string

const (
	// StatusSingle is an unmarried filer.
	StatusSingle FilingStatus = "single"
	// StatusMarriedJoint is a married couple filing one joint return.
	StatusMarriedJoint FilingStatus = "married_joint"
	// StatusMarriedSeparate is a married filer filing on their own.
	StatusMarriedSeparate FilingStatus = "married_separate"
	// StatusHeadOfHousehold is an unmarried filer supporting a qualifying dependent.
	StatusHeadOfHousehold FilingStatus = "head_of_household"
)

// FilingStatuses lists every status in display order.
var FilingStatuses = []FilingStatus{
	StatusSingle,
	StatusMarriedJoint,
	StatusMarriedSeparate,
	StatusHeadOfHousehold,
}

var filingStatusAliases = map[string]FilingStatus{
	"single":            StatusSingle,
	"s":                 StatusSingle,
	"married_joint":     StatusMarriedJoint,
	"married-joint":     StatusMarriedJoint,
	"joint":             StatusMarriedJoint,
	"mfj":               StatusMarriedJoint,
	"married_separate":  StatusMarriedSeparate,
	"married-separate":  StatusMarriedSeparate,
	"separate":          StatusMarriedSeparate,
	"mfs":               StatusMarriedSeparate,
	"head_of_household": StatusHeadOfHousehold,
	"head-of-household": StatusHeadOfHousehold,
	"hoh":               StatusHeadOfHousehold,
}

// ParseFilingStatus converts user input into a FilingStatus.
func ParseFilingStatus(s string) (FilingStatus, error) {
	status, ok := filingStatusAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("unknown filing status %q", s)
	}
	return status, nil
}

// Label returns a human readable name for the status.
func (s FilingStatus) Label() string {
	switch s {
	case StatusSingle:
		return "Single"
	case StatusMarriedJoint:
		return "Married filing jointly"
	case StatusMarriedSeparate:
		return "Married filing separately"
	case StatusHeadOfHousehold:
		return "Head of household"
	default:
		return string(s)
	}
}

// Next cycles to the following status, wrapping around.
func (s FilingStatus) Next() FilingStatus {
	for i, status := range FilingStatuses {
		if status == s {
			return FilingStatuses[(i+1)%len(FilingStatuses)]
		}
	}
	return StatusSingle
}

// Jurisdiction identifies the taxing authority whose schedule applies.
type Jurisdiction string

const (
	// JurisdictionUSFederal is the United States federal income tax.
	JurisdictionUSFederal Jurisdiction = "us-federal"
	// JurisdictionUK is the United Kingdom income tax (England, Wales and Northern Ireland).
	JurisdictionUK Jurisdiction = "uk"
)
