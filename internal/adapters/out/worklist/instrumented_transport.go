package worklist

import (
	"context"
	"time"

	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "radiology/worklist"

// SendRecorder receives one observation per send.
type SendRecorder interface {
	ObserveSend(op worklist.Operation, outcome worklist.Outcome, elapsed time.Duration)
}

// InstrumentedTransport wraps a transport with a span per send and reports
// every result to a recorder. A transport error is recorded as OutcomeFailed.
type InstrumentedTransport struct {
	next     ports.WorklistTransport
	recorder SendRecorder
	tracer   trace.Tracer
	now      func() time.Time
}

// NewInstrumentedTransport traces with provider, or with the global provider
// when provider is nil. recorder may be nil.
func NewInstrumentedTransport(
	next ports.WorklistTransport,
	recorder SendRecorder,
	provider trace.TracerProvider,
) *InstrumentedTransport {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}
	return &InstrumentedTransport{
		next:     next,
		recorder: recorder,
		tracer:   provider.Tracer(tracerName),
		now:      time.Now,
	}
}

func (t *InstrumentedTransport) Send(
	ctx context.Context,
	op worklist.Operation,
	descriptor ports.StudyDescriptor,
) (ports.SendResult, error) {
	ctx, span := t.tracer.Start(ctx, "worklist.send",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("worklist.operation", op.String()),
			attribute.String("worklist.accession_number", descriptor.AccessionNumber),
			attribute.String("radiology.order_id", descriptor.OrderID),
			attribute.String("radiology.study_id", descriptor.StudyID),
		),
	)
	defer span.End()

	started := t.now()
	result, err := t.next.Send(ctx, op, descriptor)
	elapsed := t.now().Sub(started)

	outcome := result.Outcome
	switch {
	case err != nil:
		outcome = worklist.OutcomeFailed
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !outcome.IsOK():
		span.SetStatus(codes.Error, result.Reason)
	}
	span.SetAttributes(attribute.String("worklist.outcome", outcome.String()))

	if t.recorder != nil {
		t.recorder.ObserveSend(op, outcome, elapsed)
	}
	return result, err
}
