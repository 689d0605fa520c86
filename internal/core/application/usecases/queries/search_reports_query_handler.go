package queries

import "context"

// SearchReportsQueryHandler returns matching reports ordered by report date and
// then id.
type SearchReportsQueryHandler struct {
	readers ReaderFactory
}

func NewSearchReportsQueryHandler(readers ReaderFactory) SearchReportsQueryHandler {
	return SearchReportsQueryHandler{readers: readers}
}

func (h SearchReportsQueryHandler) Handle(ctx context.Context, query SearchReportsQuery) ([]ReportResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	reports, err := h.readers.Create().ReportRepository().Find(ctx, query.Criteria())
	if err != nil {
		return nil, err
	}

	out := make([]ReportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, NewReportResponse(r))
	}
	return out, nil
}
