// Package order provides the radiology order aggregate and its lifecycle.
//
// The package includes:
//   - Order: the aggregate root, a clinical request for an imaging procedure
//   - Encounter: the visit record created for every placed order
//   - Mark: the audit record of a lifecycle flag
//   - Status: the lifecycle state derived from the order's flags
//   - SearchCriteria: the filter used by order searches, built with SearchCriteriaBuilder
//
// Key business rules:
//   - An order is placed once; placement assigns identity, encounter and accession number
//   - A voided order accepts no transition other than Unvoid
//   - Void and Discontinue require a reason; every transition requires an actor
//   - The effective date of a transition is supplied by the caller's clock, not the client
//
// Each transition has a side-effect free Validate counterpart so a caller can
// check preconditions before contacting the modality worklist.
package order
