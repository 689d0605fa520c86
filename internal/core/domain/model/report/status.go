package report

import (
	"fmt"
	"strings"

	"radiology/internal/pkg/errs"
)

// Status is the lifecycle state of a report.
//
// State transitions:
//
//	Draft ──claim──> Claimed ──complete──> Completed
//	  │                 │
//	  └──discontinue────┴──────────────> Discontinued
//
// Completed and Discontinued are final.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Draft is a report nobody has taken ownership of.
	Draft

	// Claimed is a report a radiologist is writing.
	Claimed

	// Completed is a signed report.
	Completed

	// Discontinued is a report abandoned before completion.
	Discontinued
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:      "UNKNOWN",
		Draft:        "DRAFT",
		Claimed:      "CLAIMED",
		Completed:    "COMPLETED",
		Discontinued: "DISCONTINUED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Draft:        "DRAFT",
		Claimed:      "CLAIMED",
		Completed:    "COMPLETED",
		Discontinued: "DISCONTINUED",
	}
}

// ParseStatus resolves a status name, ignoring case.
func ParseStatus(s string) (Status, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for st, name := range getValidStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// Validate checks if the Status value is valid.
func (s Status) Validate() error {
	if _, ok := getValidStatusStrings()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the upper-case name of the status.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsFinal reports whether the status admits no further transition.
func (s Status) IsFinal() bool {
	return s == Completed || s == Discontinued
}

// Claim transitions Draft to Claimed.
func (s Status) Claim() (Status, error) {
	if s != Draft {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to claim", s.String()),
		)
	}
	return Claimed, nil
}

// Complete transitions Claimed to Completed.
func (s Status) Complete() (Status, error) {
	if s != Claimed {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to complete", s.String()),
		)
	}
	return Completed, nil
}

// Discontinue transitions any non-final status to Discontinued.
func (s Status) Discontinue() (Status, error) {
	if s != Draft && s != Claimed {
		return 0, errs.NewValueIsInvalidErrorWithCause(
			"status is invalid",
			fmt.Errorf("%s is not a valid status to discontinue", s.String()),
		)
	}
	return Discontinued, nil
}
