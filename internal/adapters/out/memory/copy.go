package memory

import (
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
)

func copyEncounter(e *order.Encounter) (*order.Encounter, error) {
	return order.RestoreEncounter(e.ID(), e.PatientID(), e.ProviderID(), e.Date())
}

func copyOrder(o *order.Order) (*order.Order, error) {
	return order.RestoreOrder(
		o.ID(),
		o.EncounterID(),
		o.PatientID(),
		o.Orderer(),
		o.AccessionNumber(),
		o.Instructions(),
		o.OrderDate(),
		o.Voided(),
		o.Discontinued(),
		o.Undiscontinued(),
	)
}

func copyStudy(s *study.Study) (*study.Study, error) {
	return study.RestoreStudy(
		s.ID(),
		s.OrderID(),
		s.Modality(),
		s.Priority(),
		s.ScheduledDate(),
		s.ScheduledStatus(),
		s.PerformedStatus(),
		s.StudyInstanceUID(),
		s.SyncStatus(),
	)
}

func copyReport(r *report.Report) (*report.Report, error) {
	return report.RestoreReport(
		r.ID(),
		r.StudyID(),
		r.Status(),
		r.PrincipalInterpreter(),
		r.Date(),
		r.Body(),
		r.RevisionOf(),
		r.IsSuperseded(),
	)
}

// copyAll copies every entity, stopping at the first failure.
func copyAll[T any](in []T, copyFn func(T) (T, error)) ([]T, error) {
	out := make([]T, 0, len(in))
	for _, v := range in {
		c, err := copyFn(v)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
