package ports

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/worklist"
)

// StudyDescriptor is the payload of a worklist message: everything the modality
// needs to schedule, amend or cancel a procedure step.
type StudyDescriptor struct {
	StudyID          string     `json:"studyId"`
	OrderID          string     `json:"orderId"`
	AccessionNumber  string     `json:"accessionNumber"`
	PatientID        string     `json:"patientId"`
	Modality         string     `json:"modality"`
	Priority         string     `json:"priority"`
	ScheduledDate    *time.Time `json:"scheduledDate,omitempty"`
	OrdererID        string     `json:"ordererId"`
	OrdererName      string     `json:"ordererName,omitempty"`
	Instructions     string     `json:"instructions,omitempty"`
	StudyInstanceUID string     `json:"studyInstanceUid,omitempty"`
}

// SendResult is the outcome of one worklist send. On OutcomeOK for a Save the
// worklist may return the study instance UID it assigned.
type SendResult struct {
	Outcome          worklist.Outcome
	Reason           string
	StudyInstanceUID string
}

// WorklistTransport delivers order events to the modality worklist service. It
// performs no retries. A non-nil error means the service could not be reached
// and is treated by callers exactly like OutcomeFailed.
type WorklistTransport interface {
	Send(ctx context.Context, op worklist.Operation, descriptor StudyDescriptor) (SendResult, error)
}
