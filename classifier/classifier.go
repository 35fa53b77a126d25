// Package classifier turns S3 PutBucketTagging events into Security Hub
// findings. One event yields at most one finding: the applied tag keys
// are intersected with the configured watch-list, the bucket is checked
// in its own account when a verifier is wired, and the finding goes out
// through the sink. Verification failures degrade the finding; malformed
// events and submission failures surface to the caller, which owns retry
// and dead-letter policy.
package classifier

import (
	"context"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/policy"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/telemetry"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

// Sink receives completed findings. Implementations decide where they
// land: Security Hub in production, stdout for local replay.
type Sink interface {
	Submit(ctx context.Context, finding types.Finding) error
}

// BucketState is what verification observed in the bucket's own account.
type BucketState struct {
	// Tags is the bucket's current tag set, empty when the bucket
	// carries none.
	Tags types.TagSet
	// PolicyPublic reports whether the bucket policy currently allows
	// public access. Nil when the policy status could not be read.
	PolicyPublic *bool
}

// Verifier reads the live bucket state cross-account.
type Verifier interface {
	VerifyBucket(ctx context.Context, accountID, region, bucket string) (*BucketState, error)
}

// VerificationOutcome describes how cross-account verification concluded.
type VerificationOutcome string

const (
	// VerificationConfirmed means a matched tag is still on the bucket.
	VerificationConfirmed VerificationOutcome = "confirmed"
	// VerificationStale means the matched tags are already gone again.
	VerificationStale VerificationOutcome = "stale"
	// VerificationUnverified means the bucket state could not be read.
	VerificationUnverified VerificationOutcome = "unverified"
)

// Classification outcomes recorded on metrics and spans.
const (
	outcomeMatched        = "matched"
	outcomeNoMatch        = "no_match"
	outcomeWatchListEmpty = "watchlist_empty"
	outcomeMalformed      = "malformed"
	outcomeIngestionFail  = "ingestion_failed"
)

// Classifier matches tagging events against the watch-list and emits
// findings through the sink.
type Classifier struct {
	watch       policy.WatchList
	companyName string
	verifier    Verifier
	sink        Sink
	logger      *telemetry.Logger
	tracer      trace.Tracer
}

// New creates a classifier. verifier may be nil; findings then go out
// unverified.
func New(watch policy.WatchList, companyName string, verifier Verifier, sink Sink) *Classifier {
	return &Classifier{
		watch:       watch,
		companyName: companyName,
		verifier:    verifier,
		sink:        sink,
		logger:      telemetry.NewLogger("classifier"),
		tracer:      otel.Tracer("classifier"),
	}
}

// Handle classifies one EventBridge envelope. No-match outcomes and
// degraded verification return nil. A malformed event returns a
// MalformedEventError without the sink ever being called; a submission
// failure returns an IngestionError. Both fail the invocation, leaving
// retry and dead-lettering to the event source.
func (c *Classifier) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	ctx, span := c.tracer.Start(ctx, "classifier.handle",
		trace.WithAttributes(
			attribute.String("event.id", event.ID),
			attribute.String("event.source", event.Source),
		),
		trace.WithSpanKind(trace.SpanKindConsumer),
	)
	defer span.End()

	start := time.Now()
	outcome, err := c.classify(ctx, span, event)

	telemetry.EventsClassified.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
	telemetry.HandleDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("outcome", outcome)),
	)
	span.SetAttributes(attribute.String("classification.outcome", outcome))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "classification failed")
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

func (c *Classifier) classify(ctx context.Context, span trace.Span, envelope events.CloudWatchEvent) (string, error) {
	ev, err := ParseTaggingEvent(envelope)
	if err != nil {
		// The sink is never called for an event that cannot be parsed;
		// the caller's dead-letter policy owns it from here.
		c.logger.LogMalformedEvent(ctx, envelope.ID, err)
		return outcomeMalformed, err
	}

	log := c.logger.WithContext(ctx).With().
		Str("account_id", ev.AccountID).
		Str("bucket", ev.BucketName).
		Str("event_id", ev.EventID).
		Logger()

	if c.watch.IsEmpty() {
		log.Debug().Msg("watch-list is empty, nothing to classify")
		return outcomeWatchListEmpty, nil
	}

	match := c.watch.Match(ev.AppliedTags)
	if match.IsEmpty() {
		log.Debug().
			Strs("applied_keys", ev.AppliedTags.Keys()).
			Msg("no watched tag applied")
		return outcomeNoMatch, nil
	}

	log.Info().
		Strs("matched_keys", match.Keys()).
		Str("principal", ev.Principal).
		Msg("watched tag applied to bucket")
	telemetry.RecordTagMatchEvent(span, ev.AccountID, ev.BucketName, match.Keys(),
		"watched tag applied to bucket")

	outcome, state := c.verify(ctx, span, ev, match)

	finding := buildFinding(ev, match.Tags, c.companyName, outcome, state)

	if err := c.submit(ctx, finding); err != nil {
		telemetry.IngestionFailures.Add(ctx, 1)
		telemetry.RecordIngestionFailureEvent(span, finding.ID, err.Error(),
			"finding submission failed")
		c.logger.LogIngestionFailure(ctx, finding.ID, err)
		return outcomeIngestionFail, err
	}

	telemetry.FindingsEmitted.Add(ctx, 1,
		metric.WithAttributes(attribute.String("verification", string(outcome))),
	)
	telemetry.RecordFindingEmittedEvent(span, finding.ID, ev.AccountID, ev.BucketName,
		string(outcome), "finding accepted by sink")
	c.logger.LogFindingEmitted(ctx, finding.ID, ev.BucketName, string(outcome))

	return outcomeMatched, nil
}

// verify checks the live bucket cross-account. It never fails the
// classification: any error degrades the outcome to unverified.
func (c *Classifier) verify(ctx context.Context, span trace.Span, ev *types.TaggingEvent, match policy.Match) (VerificationOutcome, *BucketState) {
	if c.verifier == nil {
		return VerificationUnverified, nil
	}

	state, err := c.verifier.VerifyBucket(ctx, ev.AccountID, ev.Region, ev.BucketName)
	if err != nil {
		telemetry.VerificationDegraded.Add(ctx, 1)
		telemetry.RecordVerificationEvent(span, ev.AccountID, ev.BucketName,
			string(VerificationUnverified), err.Error(), "bucket verification failed")
		c.logger.LogVerificationDegraded(ctx, ev.AccountID, ev.BucketName, err)
		return VerificationUnverified, nil
	}

	outcome := VerificationStale
	for _, key := range match.Keys() {
		if _, ok := state.Tags.Get(key); ok {
			outcome = VerificationConfirmed
			break
		}
	}

	telemetry.RecordVerificationEvent(span, ev.AccountID, ev.BucketName,
		string(outcome), "", "bucket state verified")
	return outcome, state
}

func (c *Classifier) submit(ctx context.Context, finding types.Finding) error {
	if err := c.sink.Submit(ctx, finding); err != nil {
		if IsIngestion(err) {
			return err
		}
		return &IngestionError{FindingID: finding.ID, Err: err}
	}
	return nil
}
