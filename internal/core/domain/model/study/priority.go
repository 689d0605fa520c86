package study

import (
	"fmt"
	"strings"

	"radiology/internal/pkg/errs"
)

// Priority is the requested procedure priority sent with the worklist item.
type Priority int

const (
	UnknownPriority Priority = iota
	Stat
	High
	Routine
	Medium
	Low
)

func getPriorityStrings() map[Priority]string {
	return map[Priority]string{
		Stat:    "STAT",
		High:    "HIGH",
		Routine: "ROUTINE",
		Medium:  "MEDIUM",
		Low:     "LOW",
	}
}

// ParsePriority resolves a priority name, ignoring case. The empty name selects Routine.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return Routine, nil
	}
	for p, name := range getPriorityStrings() {
		if name == s {
			return p, nil
		}
	}
	return UnknownPriority, errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%q is not a valid priority", s))
}

func (p Priority) Validate() error {
	if _, ok := getPriorityStrings()[p]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("priority", fmt.Errorf("%d is not a valid priority", p))
	}
	return nil
}

func (p Priority) String() string {
	if s, ok := getPriorityStrings()[p]; ok {
		return s
	}
	return "UNKNOWN"
}
