package aws

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/classifier"
)

// RoleAssumer vends short-lived credentials for the verification role in
// a member account.
type RoleAssumer struct {
	sts  STSAPI
	role string
}

// NewRoleAssumer builds a role assumer from the hosting account's config.
func NewRoleAssumer(cfg aws.Config, role string) *RoleAssumer {
	return &RoleAssumer{
		sts:  sts.NewFromConfig(cfg),
		role: role,
	}
}

// Assume assumes the verification role in the given account. Any failure
// comes back as an AccessDeniedError so callers can degrade instead of
// aborting.
func (r *RoleAssumer) Assume(ctx context.Context, accountID string) (aws.CredentialsProvider, error) {
	roleARN := fmt.Sprintf("arn:aws:iam::%s:role/%s", accountID, r.role)
	sessionName := fmt.Sprintf("public_s3_tag_applied_session_%s", accountID)

	out, err := r.sts.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleARN),
		RoleSessionName: aws.String(sessionName),
	})
	if err != nil {
		return nil, &classifier.AccessDeniedError{AccountID: accountID, Role: r.role, Err: err}
	}
	if out.Credentials == nil {
		return nil, &classifier.AccessDeniedError{AccountID: accountID, Role: r.role, Err: errors.New("assume role returned no credentials")}
	}

	return credentials.NewStaticCredentialsProvider(
		aws.ToString(out.Credentials.AccessKeyId),
		aws.ToString(out.Credentials.SecretAccessKey),
		aws.ToString(out.Credentials.SessionToken),
	), nil
}
