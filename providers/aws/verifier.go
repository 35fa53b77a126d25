package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/classifier"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/telemetry"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

// BucketVerifier reads a bucket's live state from its own account through
// the cross-account verification role. It only ever reads: the current
// tag set and the bucket policy's public-access status.
type BucketVerifier struct {
	cfg       aws.Config
	assumer   *RoleAssumer
	s3Factory S3ClientFactory
	logger    *telemetry.Logger
	tracer    trace.Tracer
}

var _ classifier.Verifier = (*BucketVerifier)(nil)

// NewBucketVerifier builds the production verifier from the hosting
// account's base config and the verification role name.
func NewBucketVerifier(cfg aws.Config, role string) *BucketVerifier {
	return &BucketVerifier{
		cfg:       cfg,
		assumer:   NewRoleAssumer(cfg, role),
		s3Factory: newDefaultS3Client,
		logger:    telemetry.NewLogger("bucket-verifier"),
		tracer:    otel.Tracer("bucket-verifier"),
	}
}

// VerifyBucket assumes the verification role in the bucket's account and
// reads the bucket's current tags and policy status.
func (v *BucketVerifier) VerifyBucket(ctx context.Context, accountID, region, bucket string) (*classifier.BucketState, error) {
	ctx, span := v.tracer.Start(ctx, "verifier.verify_bucket",
		trace.WithAttributes(
			attribute.String("account.id", accountID),
			attribute.String("bucket.name", bucket),
		),
	)
	defer span.End()

	creds, err := v.assumer.Assume(ctx, accountID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	memberCfg := v.cfg.Copy()
	memberCfg.Region = region
	memberCfg.Credentials = creds
	client := v.s3Factory(memberCfg)

	tags, err := v.bucketTags(ctx, client, bucket)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	state := &classifier.BucketState{
		Tags:         tags,
		PolicyPublic: v.policyPublic(ctx, client, bucket),
	}

	span.SetAttributes(attribute.Int("bucket.tag_count", len(state.Tags)))
	return state, nil
}

// bucketTags reads the bucket's current tag set. A bucket that carries no
// tags at all reports NoSuchTagSet, which is a valid empty state, not an
// error.
func (v *BucketVerifier) bucketTags(ctx context.Context, client S3API, bucket string) (types.TagSet, error) {
	out, err := client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NoSuchTagSet" {
			return nil, nil
		}
		return nil, fmt.Errorf("get bucket tagging for %s: %w", bucket, err)
	}

	tags := make(types.TagSet, 0, len(out.TagSet))
	for _, t := range out.TagSet {
		tags = append(tags, types.Tag{
			Key:   aws.ToString(t.Key),
			Value: aws.ToString(t.Value),
		})
	}
	return tags, nil
}

// policyPublic reports the bucket policy's public-access status. A bucket
// without a policy is not public through a policy; any other failure
// leaves the status unknown rather than guessing.
func (v *BucketVerifier) policyPublic(ctx context.Context, client S3API, bucket string) *bool {
	out, err := client.GetBucketPolicyStatus(ctx, &s3.GetBucketPolicyStatusInput{
		Bucket: aws.String(bucket),
	})
	if err != nil {
		var ae smithy.APIError
		if errors.As(err, &ae) && ae.ErrorCode() == "NoSuchBucketPolicy" {
			private := false
			return &private
		}
		v.logger.WithContext(ctx).Debug().
			Err(err).
			Str("bucket", bucket).
			Msg("bucket policy status unavailable")
		return nil
	}
	if out.PolicyStatus == nil {
		return nil
	}
	return out.PolicyStatus.IsPublic
}
