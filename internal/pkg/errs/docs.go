// Package errs provides the error taxonomy shared by the radiology service.
//
// Every error type follows the same pattern:
//   - a sentinel variable (e.g. ErrValueIsRequired) used for classification
//   - a struct type carrying the details
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() for errors.Is / errors.As
//
// Types:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value or a precondition is violated; the cause names the rule
//   - ValueIsOutOfRangeError: a value lies outside its allowed bounds
//   - ObjectNotFoundError: a referenced entity does not exist
//   - ConflictError: the target is busy with a concurrent operation
//   - ForbiddenError: the actor lacks the capability the operation requires
//
// IsValidation groups all of the above into the "rejected" class that callers report
// synchronously and never retry. Anything else coming out of the core is a store or
// infrastructure failure.
package errs
