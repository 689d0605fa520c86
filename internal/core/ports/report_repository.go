package ports

import (
	"context"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/report"
)

// ReportRepository defines the persistence contract for reports.
type ReportRepository interface {
	Add(ctx context.Context, r *report.Report) error
	Update(ctx context.Context, r *report.Report) error

	// Get returns (nil, nil) when no report has the given id.
	Get(ctx context.Context, id kernel.UUID) (*report.Report, error)

	// GetByStudy returns every report of a study ordered by date, then id.
	GetByStudy(ctx context.Context, studyID kernel.UUID) ([]*report.Report, error)

	// HasCompletedReport reports whether the study has a current COMPLETED report.
	// Implementations answer with a single existence query.
	HasCompletedReport(ctx context.Context, studyID kernel.UUID) (bool, error)

	// HasClaimedReport reports whether the study has a current CLAIMED report.
	HasClaimedReport(ctx context.Context, studyID kernel.UUID) (bool, error)

	// GetActiveReport returns the current report of a study that is not
	// discontinued, preferring the most recent one, or (nil, nil).
	GetActiveReport(ctx context.Context, studyID kernel.UUID) (*report.Report, error)

	// Find returns the reports matching criteria ordered by report date, then id.
	Find(ctx context.Context, criteria report.SearchCriteria) ([]*report.Report, error)
}
