package http

import (
	"time"

	"radiology/internal/core/application/usecases/commands"
	"radiology/internal/core/application/usecases/queries"
)

// Request bodies.
type (
	PlaceOrderRequest struct {
		PatientID     string     `json:"patientId"`
		Instructions  string     `json:"instructions"`
		Modality      string     `json:"modality"`
		Priority      string     `json:"priority"`
		ScheduledDate *time.Time `json:"scheduledDate"`
	}

	ReasonRequest struct {
		Reason string `json:"reason"`
	}

	ScheduleRequest struct {
		ScheduledDate *time.Time `json:"scheduledDate"`
		Priority      string     `json:"priority"`
	}

	ClaimReportRequest struct {
		ReportID *string `json:"reportId"`
	}

	CompleteReportRequest struct {
		Body string `json:"body"`
	}
)

// Response bodies.
type (
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}

	Mark struct {
		ActorID   string    `json:"actorId"`
		ActorName string    `json:"actorName,omitempty"`
		Reason    string    `json:"reason,omitempty"`
		At        time.Time `json:"at"`
	}

	Study struct {
		ID               string     `json:"id"`
		Modality         string     `json:"modality"`
		Priority         string     `json:"priority"`
		ScheduledDate    *time.Time `json:"scheduledDate,omitempty"`
		ScheduledStatus  string     `json:"scheduledStatus"`
		PerformedStatus  string     `json:"performedStatus,omitempty"`
		StudyInstanceUID string     `json:"studyInstanceUid,omitempty"`
		SyncStatus       string     `json:"syncStatus,omitempty"`
		SyncDescription  string     `json:"syncDescription,omitempty"`
	}

	Order struct {
		ID              string    `json:"id"`
		EncounterID     string    `json:"encounterId"`
		PatientID       string    `json:"patientId"`
		OrdererID       string    `json:"ordererId"`
		OrdererName     string    `json:"ordererName,omitempty"`
		AccessionNumber string    `json:"accessionNumber"`
		Instructions    string    `json:"instructions,omitempty"`
		OrderDate       time.Time `json:"orderDate"`
		Status          string    `json:"status"`
		Voided          *Mark     `json:"voided,omitempty"`
		Discontinued    *Mark     `json:"discontinued,omitempty"`
		Study           *Study    `json:"study,omitempty"`
	}

	// Transition is returned by every order lifecycle endpoint. Warning is set
	// when the change was saved but the worklist did not acknowledge it.
	Transition struct {
		Order      *Order `json:"order,omitempty"`
		Outcome    string `json:"outcome"`
		SyncStatus string `json:"syncStatus,omitempty"`
		Warning    string `json:"warning,omitempty"`
	}

	Report struct {
		ID                     string    `json:"id"`
		StudyID                string    `json:"studyId"`
		Status                 string    `json:"status"`
		PrincipalInterpreterID *string   `json:"principalInterpreterId,omitempty"`
		Date                   time.Time `json:"date"`
		Body                   string    `json:"body,omitempty"`
		RevisionOf             *string   `json:"revisionOf,omitempty"`
		Superseded             bool      `json:"superseded"`
	}
)

func newOrder(r queries.OrderResponse) Order {
	o := Order{
		ID:              r.ID.String(),
		EncounterID:     r.EncounterID.String(),
		PatientID:       r.PatientID.String(),
		OrdererID:       r.OrdererID.String(),
		OrdererName:     r.OrdererName,
		AccessionNumber: r.AccessionNumber,
		Instructions:    r.Instructions,
		OrderDate:       r.OrderDate,
		Status:          r.Status.String(),
		Voided:          newMark(r.Voided),
		Discontinued:    newMark(r.Discontinued),
	}
	if s := r.Study; s != nil {
		o.Study = &Study{
			ID:               s.ID.String(),
			Modality:         s.Modality.String(),
			Priority:         s.Priority.String(),
			ScheduledDate:    s.ScheduledDate,
			ScheduledStatus:  s.ScheduledStatus.String(),
			PerformedStatus:  s.PerformedStatus.String(),
			StudyInstanceUID: s.StudyInstanceUID,
			SyncStatus:       s.SyncStatus,
			SyncDescription:  s.SyncDescription,
		}
	}
	return o
}

func newMark(m *queries.MarkResponse) *Mark {
	if m == nil {
		return nil
	}
	return &Mark{
		ActorID:   m.ActorID.String(),
		ActorName: m.ActorName,
		Reason:    m.Reason,
		At:        m.At,
	}
}

func newTransition(result commands.TransitionResult) Transition {
	t := Transition{
		Outcome:    result.Outcome.String(),
		SyncStatus: result.SyncStatus.Code(),
	}
	if result.Order != nil {
		o := newOrder(queries.NewOrderResponse(result.Order, result.Study))
		t.Order = &o
	}
	if result.Outcome == commands.OutcomeSucceededOutOfSync {
		t.Warning = "saved locally but the modality worklist was not updated: " + result.SyncStatus.Description()
	}
	return t
}

func newReport(r queries.ReportResponse) Report {
	resp := Report{
		ID:         r.ID.String(),
		StudyID:    r.StudyID.String(),
		Status:     r.Status.String(),
		Date:       r.Date,
		Body:       r.Body,
		Superseded: r.Superseded,
	}
	if r.PrincipalInterpreterID != nil {
		id := r.PrincipalInterpreterID.String()
		resp.PrincipalInterpreterID = &id
	}
	if r.RevisionOf != nil {
		id := r.RevisionOf.String()
		resp.RevisionOf = &id
	}
	return resp
}
