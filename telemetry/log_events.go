package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordTagMatchEvent emits a structured span event when a watched tag
// key is found on an incoming event
func RecordTagMatchEvent(
	span trace.Span,
	accountID string,
	bucket string,
	matchedKeys []string,
	message string,
) {
	if span == nil {
		return
	}

	span.AddEvent("classification.tag.matched", trace.WithAttributes(
		attribute.String("event.type", "classification.tag.matched"),
		attribute.String("account.id", accountID),
		attribute.String("bucket.name", bucket),
		attribute.StringSlice("matched.keys", matchedKeys),
		attribute.String("message", message),
	))
}

// RecordVerificationEvent emits a structured span event for the
// cross-account verification outcome
func RecordVerificationEvent(
	span trace.Span,
	accountID string,
	bucket string,
	outcome string,
	errorMsg string,
	message string,
) {
	if span == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("event.type", "classification.verification"),
		attribute.String("account.id", accountID),
		attribute.String("bucket.name", bucket),
		attribute.String("verification.outcome", outcome),
		attribute.String("message", message),
	}

	if errorMsg != "" {
		attrs = append(attrs, attribute.String("error", errorMsg))
	}

	span.AddEvent("classification.verification", trace.WithAttributes(attrs...))
}

// RecordFindingEmittedEvent emits a structured span event when a finding
// is accepted by the sink
func RecordFindingEmittedEvent(
	span trace.Span,
	findingID string,
	accountID string,
	bucket string,
	verification string,
	message string,
) {
	if span == nil {
		return
	}

	span.AddEvent("classification.finding.emitted", trace.WithAttributes(
		attribute.String("event.type", "classification.finding.emitted"),
		attribute.String("finding.id", findingID),
		attribute.String("account.id", accountID),
		attribute.String("bucket.name", bucket),
		attribute.String("verification.outcome", verification),
		attribute.String("message", message),
	))
}

// RecordIngestionFailureEvent emits a structured span event when the sink
// rejects or fails to deliver a finding
func RecordIngestionFailureEvent(
	span trace.Span,
	findingID string,
	errorMsg string,
	message string,
) {
	if span == nil {
		return
	}

	span.AddEvent("classification.ingestion.failed", trace.WithAttributes(
		attribute.String("event.type", "classification.ingestion.failed"),
		attribute.String("finding.id", findingID),
		attribute.String("error", errorMsg),
		attribute.String("message", message),
	))
}
