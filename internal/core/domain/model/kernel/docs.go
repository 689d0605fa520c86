// Package kernel provides the shared domain primitives of the radiology service.
//
// The package includes:
//   - UUID: the identity value object of every aggregate, with DICOM UID derivation
//   - Actor: the authenticated principal of a transition and its capabilities
//   - DateRange: an optional inclusive interval used by search criteria
//
// These values are immutable and safe for concurrent use.
package kernel
