package worklist

import (
	"fmt"

	"radiology/internal/pkg/errs"
)

// Operation is the order event kind carried by a worklist message.
type Operation int

const (
	// UnknownOperation catches uninitialized values.
	UnknownOperation Operation = iota
	Save
	Update
	Void
	Unvoid
	Discontinue
	Undiscontinue
)

func getOperationStrings() map[Operation]string {
	return map[Operation]string{
		Save:          "SAVE",
		Update:        "UPDATE",
		Void:          "VOID",
		Unvoid:        "UNVOID",
		Discontinue:   "DISCONTINUE",
		Undiscontinue: "UNDISCONTINUE",
	}
}

// Operations lists every valid operation in declaration order.
func Operations() []Operation {
	return []Operation{Save, Update, Void, Unvoid, Discontinue, Undiscontinue}
}

// ParseOperation resolves the upper-case name produced by String.
func ParseOperation(s string) (Operation, error) {
	for op, name := range getOperationStrings() {
		if name == s {
			return op, nil
		}
	}
	return UnknownOperation, errs.NewValueIsInvalidErrorWithCause("operation", fmt.Errorf("%q is not a valid operation", s))
}

// Validate checks that the operation is one of the declared values.
func (o Operation) Validate() error {
	if _, ok := getOperationStrings()[o]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("operation", fmt.Errorf("%d is not a valid operation", o))
	}
	return nil
}

// String returns the upper-case operation name, or "UNKNOWN".
func (o Operation) String() string {
	if s, ok := getOperationStrings()[o]; ok {
		return s
	}
	return "UNKNOWN"
}

// LocalWins reports whether the local commit precedes the worklist send and
// survives a failed send. Save and Update create or amend a scheduled procedure
// the device may not know yet; every other operation cancels or restores one and
// is gated on the device acknowledging it first.
func (o Operation) LocalWins() bool {
	return o == Save || o == Update
}
