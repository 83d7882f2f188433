package observability

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Operation tracks one traced terminal operation.
type Operation struct {
	Name      string
	QueryID   string
	StartTime time.Time
	Metrics   *StreamMetrics

	span       trace.Span
	elements   atomic.Int64
	partitions atomic.Int64
}

// StartOperation starts a span named after the operation and returns the
// tracking handle. If metrics is nil, metric recording is silently skipped.
func StartOperation(ctx context.Context, name, queryID string, metrics *StreamMetrics) (context.Context, *Operation) {
	op := &Operation{
		Name:      name,
		QueryID:   queryID,
		StartTime: time.Now(),
		Metrics:   metrics,
	}
	ctx, op.span = StartSpan(ctx, SpanTerminalPrefix+name)
	op.span.SetAttributes(attribute.String(AttrOperation, name))
	if queryID != "" {
		op.span.SetAttributes(attribute.String(AttrQueryID, queryID))
	}
	return WithOperation(ctx, op), op
}

// operationKey is the context key for Operation.
type operationKey struct{}

// WithOperation stores an Operation in the context.
func WithOperation(ctx context.Context, op *Operation) context.Context {
	return context.WithValue(ctx, operationKey{}, op)
}

// OperationFromContext retrieves the Operation from context, or nil.
func OperationFromContext(ctx context.Context) *Operation {
	if op, ok := ctx.Value(operationKey{}).(*Operation); ok {
		return op
	}
	return nil
}

// AddElements counts elements delivered to the operation. Safe for concurrent use.
func (op *Operation) AddElements(n int64) {
	op.elements.Add(n)
}

// Elements returns the number of elements counted so far.
func (op *Operation) Elements() int64 {
	return op.elements.Load()
}

// SetPartitions records the partition count of a parallel run.
func (op *Operation) SetPartitions(n int) {
	op.partitions.Store(int64(n))
}

// End ends the span and records metrics. code is the error code of err, if any.
func (op *Operation) End(ctx context.Context, err error, code string) {
	duration := time.Since(op.StartTime)
	status := StatusOK
	if err != nil {
		status = StatusError
		op.span.RecordError(err)
		op.span.SetStatus(codes.Error, err.Error())
		op.span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	}

	parts := op.partitions.Load()
	op.span.SetAttributes(
		attribute.String(AttrStatus, status),
		attribute.Int64(AttrElements, op.elements.Load()),
		attribute.Bool(AttrParallel, parts > 0),
		attribute.Int64(AttrDurationMs, duration.Milliseconds()),
	)
	if parts > 0 {
		op.span.SetAttributes(attribute.Int64(AttrPartitions, parts))
	}
	op.span.End()

	if op.Metrics == nil {
		return
	}
	op.Metrics.RecordTerminal(ctx, op.Name, status, op.elements.Load(), duration)
	if parts > 0 {
		op.Metrics.RecordPartitions(ctx, op.Name, int(parts))
	}
	if err != nil {
		op.Metrics.RecordError(ctx, code, op.Name)
	}
}

// Duration returns the elapsed time since operation start.
func (op *Operation) Duration() time.Duration {
	return time.Since(op.StartTime)
}
