// Package aws implements the classifier's verifier and sink against the
// AWS SDK: STS for the cross-account verification role, S3 for the live
// bucket state, Security Hub for finding ingestion.
package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// STSAPI is the narrow STS interface used for cross-account role
// assumption.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// S3API is the narrow S3 interface used to verify a bucket's live state:
// its current tag set and whether its policy allows public access.
type S3API interface {
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	GetBucketPolicyStatus(ctx context.Context, params *s3.GetBucketPolicyStatusInput, optFns ...func(*s3.Options)) (*s3.GetBucketPolicyStatusOutput, error)
}

// SecurityHubAPI is the narrow Security Hub interface used to ingest
// findings.
type SecurityHubAPI interface {
	BatchImportFindings(ctx context.Context, params *securityhub.BatchImportFindingsInput, optFns ...func(*securityhub.Options)) (*securityhub.BatchImportFindingsOutput, error)
}

// S3ClientFactory creates an S3 client from a per-account config.
// Injection point: tests replace this with a function returning fakes.
type S3ClientFactory func(cfg aws.Config) S3API

// newDefaultS3Client creates a production S3 client.
func newDefaultS3Client(cfg aws.Config) S3API {
	return s3.NewFromConfig(cfg)
}
