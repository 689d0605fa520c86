// Package services provides domain services whose rules span several aggregates
// of the radiology domain.
//
// The package includes:
//   - ReportFulfillment: claim exclusivity and revision bookkeeping across the reports of a study
//   - DiscontinuePolicy: the order, study and report preconditions of discontinuing an order
//
// Services are stateless; callers load the aggregates, invoke the service under
// the per-order lock and persist the result in one unit of work.
package services
