package order

import (
	"fmt"

	"radiology/internal/pkg/errs"
)

// Status is the lifecycle state of an order, derived from its flags.
//
//	Draft ──place──> Active ──discontinue──> Discontinued
//	                 Active <──undiscontinue── Discontinued
//	Active | Discontinued ──void──> Voided ──unvoid──> Active | Discontinued
//
// Voided takes precedence over Discontinued: an order carrying both flags is
// reported as Voided.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	Unknown Status = iota

	// Draft is an order that has not been placed yet.
	Draft

	// Active is a placed order that is neither voided nor discontinued.
	Active

	// Discontinued is an order stopped before its study was performed.
	Discontinued

	// Voided is an order entered in error.
	Voided
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:      "UNKNOWN",
		Draft:        "DRAFT",
		Active:       "ACTIVE",
		Discontinued: "DISCONTINUED",
		Voided:       "VOIDED",
	}
}

func getValidStatusStrings() map[Status]string {
	//nolint:exhaustive // Unknown is intentionally excluded as it's invalid
	return map[Status]string{
		Draft:        "DRAFT",
		Active:       "ACTIVE",
		Discontinued: "DISCONTINUED",
		Voided:       "VOIDED",
	}
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

// ParseStatus resolves the name produced by String.
func ParseStatus(s string) (Status, error) {
	for st, name := range getValidStatusStrings() {
		if name == s {
			return st, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}
