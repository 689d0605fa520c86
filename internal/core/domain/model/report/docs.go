// Package report models the clinical interpretation of a performed study.
//
// The package includes:
//   - Report: the aggregate written by a radiologist for a study
//   - Status: the DRAFT, CLAIMED, COMPLETED, DISCONTINUED state machine
//   - SearchCriteria: the filter used by report searches
//
// A completed report is never edited. Revising it creates a new draft that
// points at the original; once that draft completes, the original is marked
// superseded and stays COMPLETED as the audit record.
//
// Claim exclusivity across the reports of a study is enforced by
// services.ReportFulfillment, not by this package.
package report
