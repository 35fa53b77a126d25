package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/securityhub"
	hubtypes "github.com/aws/aws-sdk-go-v2/service/securityhub/types"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/classifier"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/telemetry"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

// HubSink submits findings to Security Hub in the hosting account.
type HubSink struct {
	client SecurityHubAPI
	logger *telemetry.Logger
	tracer trace.Tracer
}

var _ classifier.Sink = (*HubSink)(nil)

// NewHubSink builds the production sink from the hosting account's config.
func NewHubSink(cfg aws.Config) *HubSink {
	return &HubSink{
		client: securityhub.NewFromConfig(cfg),
		logger: telemetry.NewLogger("securityhub-sink"),
		tracer: otel.Tracer("securityhub-sink"),
	}
}

// Submit imports one finding. A transport failure comes back as-is for
// the classifier to wrap; a rejected batch entry comes back as an
// IngestionError because the API reports it as a success with a non-zero
// failed count.
func (s *HubSink) Submit(ctx context.Context, finding types.Finding) error {
	ctx, span := s.tracer.Start(ctx, "securityhub.batch_import",
		trace.WithAttributes(attribute.String("finding.id", finding.ID)),
	)
	defer span.End()

	s.logger.LogSpanStart(ctx, "securityhub.batch_import",
		attribute.String("finding.id", finding.ID),
		attribute.String("account.id", finding.AccountID),
	)

	out, err := s.client.BatchImportFindings(ctx, &securityhub.BatchImportFindingsInput{
		Findings: []hubtypes.AwsSecurityFinding{toAwsSecurityFinding(finding)},
	})
	if err == nil && aws.ToInt32(out.FailedCount) > 0 {
		err = &classifier.IngestionError{
			FindingID: finding.ID,
			Err:       fmt.Errorf("batch import rejected the finding: %s", failureText(out.FailedFindings)),
		}
	}

	s.logger.LogSpanEnd(ctx, "securityhub.batch_import", err)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// toAwsSecurityFinding maps the domain finding onto the ASFF wire shape.
func toAwsSecurityFinding(f types.Finding) hubtypes.AwsSecurityFinding {
	resources := make([]hubtypes.Resource, 0, len(f.Resources))
	for _, r := range f.Resources {
		resources = append(resources, hubtypes.Resource{
			Type:      aws.String(r.Type),
			Id:        aws.String(r.ID),
			Partition: hubtypes.Partition(r.Partition),
			Region:    aws.String(r.Region),
		})
	}

	finding := hubtypes.AwsSecurityFinding{
		SchemaVersion: aws.String(types.SchemaVersion),
		Id:            aws.String(f.ID),
		ProductArn:    aws.String(f.ProductARN),
		GeneratorId:   aws.String(f.GeneratorID),
		AwsAccountId:  aws.String(f.AccountID),
		Types:         f.Types,
		CreatedAt:     aws.String(f.CreatedAt),
		UpdatedAt:     aws.String(f.UpdatedAt),
		Severity: &hubtypes.Severity{
			Label: hubtypes.SeverityLabel(f.Severity),
		},
		Title:             aws.String(f.Title),
		Description:       aws.String(f.Description),
		Resources:         resources,
		ProductFields:     f.ProductFields,
		VerificationState: hubtypes.VerificationState(f.Verification),
		Workflow: &hubtypes.Workflow{
			Status: hubtypes.WorkflowStatus(f.Workflow),
		},
		RecordState: hubtypes.RecordState(f.RecordState),
	}

	if f.Remediation != nil {
		finding.Remediation = &hubtypes.Remediation{
			Recommendation: &hubtypes.Recommendation{
				Text: aws.String(f.Remediation.Text),
				Url:  aws.String(f.Remediation.URL),
			},
		}
	}

	return finding
}

func failureText(failed []hubtypes.ImportFindingsError) string {
	if len(failed) == 0 {
		return "no failure detail returned"
	}
	first := failed[0]
	return fmt.Sprintf("%s: %s", aws.ToString(first.ErrorCode), aws.ToString(first.ErrorMessage))
}
