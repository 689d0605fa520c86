// Package queries contains read-only operations of the order and report search
// façade. Queries run outside a transaction and never take the per-order lock.
package queries

import (
	"time"

	"radiology/internal/core/domain/model/kernel"
	"radiology/internal/core/domain/model/order"
	"radiology/internal/core/domain/model/report"
	"radiology/internal/core/domain/model/study"
	"radiology/internal/core/ports"
)

type (
	// Reader gives queries access to the repositories.
	Reader interface {
		OrderRepository() ports.OrderRepository
		StudyRepository() ports.StudyRepository
		ReportRepository() ports.ReportRepository
	}

	// ReaderFactory creates a Reader per query.
	ReaderFactory interface {
		Create() Reader
	}
)

// MarkResponse is the audit record of a void or discontinue.
type MarkResponse struct {
	ActorID   kernel.UUID
	ActorName string
	Reason    string
	At        time.Time
}

// StudyResponse is the study of an order as shown to callers.
type StudyResponse struct {
	ID               kernel.UUID
	Modality         study.Modality
	Priority         study.Priority
	ScheduledDate    *time.Time
	ScheduledStatus  study.ScheduledStatus
	PerformedStatus  study.PerformedStatus
	StudyInstanceUID string
	SyncStatus       string
	SyncDescription  string
}

// OrderResponse is an order together with its study.
type OrderResponse struct {
	ID              kernel.UUID
	EncounterID     kernel.UUID
	PatientID       kernel.UUID
	OrdererID       kernel.UUID
	OrdererName     string
	AccessionNumber string
	Instructions    string
	OrderDate       time.Time
	Status          order.Status
	Voided          *MarkResponse
	Discontinued    *MarkResponse
	Study           *StudyResponse
}

// ReportResponse is a report as shown to callers.
type ReportResponse struct {
	ID                     kernel.UUID
	StudyID                kernel.UUID
	Status                 report.Status
	PrincipalInterpreterID *kernel.UUID
	Date                   time.Time
	Body                   string
	RevisionOf             *kernel.UUID
	Superseded             bool
}

// NewOrderResponse maps an order and its study, which may be nil.
func NewOrderResponse(o *order.Order, s *study.Study) OrderResponse {
	resp := OrderResponse{
		ID:              o.ID(),
		EncounterID:     o.EncounterID(),
		PatientID:       o.PatientID(),
		OrdererID:       o.Orderer().ID(),
		OrdererName:     o.Orderer().Name(),
		AccessionNumber: o.AccessionNumber(),
		Instructions:    o.Instructions(),
		OrderDate:       o.OrderDate(),
		Status:          o.Status(),
		Voided:          newMarkResponse(o.Voided()),
		Discontinued:    newMarkResponse(o.Discontinued()),
	}
	if s != nil {
		resp.Study = &StudyResponse{
			ID:               s.ID(),
			Modality:         s.Modality(),
			Priority:         s.Priority(),
			ScheduledDate:    s.ScheduledDate(),
			ScheduledStatus:  s.ScheduledStatus(),
			PerformedStatus:  s.PerformedStatus(),
			StudyInstanceUID: s.StudyInstanceUID(),
			SyncStatus:       s.SyncStatus().String(),
			SyncDescription:  s.SyncStatus().Description(),
		}
	}
	return resp
}

func newMarkResponse(m *order.Mark) *MarkResponse {
	if m == nil {
		return nil
	}
	return &MarkResponse{
		ActorID:   m.Actor().ID(),
		ActorName: m.Actor().Name(),
		Reason:    m.Reason(),
		At:        m.At(),
	}
}

func NewReportResponse(r *report.Report) ReportResponse {
	resp := ReportResponse{
		ID:         r.ID(),
		StudyID:    r.StudyID(),
		Status:     r.Status(),
		Date:       r.Date(),
		Body:       r.Body(),
		RevisionOf: r.RevisionOf(),
		Superseded: r.IsSuperseded(),
	}
	if interpreter := r.PrincipalInterpreter(); interpreter != nil {
		id := interpreter.ID()
		resp.PrincipalInterpreterID = &id
	}
	return resp
}
