package classifier

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

const (
	incidentDomain    = "INFRA"
	ticketDestination = "SOC"
	findingNamespace  = "S3-tagged-public"
	remediationText   = "Please contact the team to verify that the use case is legitimate."
	remediationURL    = "https://docs.aws.amazon.com/securityhub/latest/userguide/securityhub-standards-fsbp-controls.html#fsbp-s3-2"
)

// FindingID derives the deterministic identifier for a tagging event.
// The same account, bucket, and event time always hash to the same ID,
// so redelivered events update the existing finding instead of opening
// a duplicate incident.
func FindingID(accountID, bucket string, eventTime time.Time) string {
	seed := accountID + "|" + bucket + "|" + eventTime.UTC().Format(time.RFC3339)
	sum := sha256.Sum256([]byte(seed))
	return hex.EncodeToString(sum[:])
}

// buildFinding renders the single ASFF finding for a matched event. All
// matched tag keys land in one finding.
func buildFinding(ev *types.TaggingEvent, matched types.TagSet, companyName string, outcome VerificationOutcome, state *BucketState) types.Finding {
	id := FindingID(ev.AccountID, ev.BucketName, ev.EventTime)
	productARN := fmt.Sprintf("arn:aws:securityhub:%s:%s:product/%s/default", ev.Region, ev.AccountID, ev.AccountID)
	title := findingTitle(ev.BucketName, matched)
	timestamp := ev.EventTime.UTC().Format(time.RFC3339)

	productFields := map[string]string{
		"aws/securityhub/FindingId":   productARN + "/" + id,
		"aws/securityhub/ProductName": "Default",
		"aws/securityhub/CompanyName": companyName,
		"TicketDestination":           ticketDestination,
		"IncidentDomain":              incidentDomain,
		"BucketVerification":          string(outcome),
	}
	if ev.Principal != "" {
		productFields["TriggeringPrincipal"] = ev.Principal
	}

	verification := types.VerificationUnknown
	if outcome == VerificationConfirmed {
		verification = types.VerificationTruePositive
	}

	return types.Finding{
		ID:          id,
		ProductARN:  productARN,
		GeneratorID: title,
		AccountID:   ev.AccountID,
		Region:      ev.Region,
		Types: []string{
			"Software and Configuration Checks/S3/" + findingNamespace,
		},
		CreatedAt:   timestamp,
		UpdatedAt:   timestamp,
		Severity:    types.SeverityCritical,
		Title:       title,
		Description: findingDescription(ev, matched, outcome, state),
		Remediation: &types.Remediation{
			Text: remediationText,
			URL:  remediationURL,
		},
		Resources: []types.FindingResource{
			{
				Type:      "AwsS3Bucket",
				ID:        ev.BucketARN(),
				Partition: "aws",
				Region:    ev.Region,
			},
		},
		ProductFields: productFields,
		Verification:  verification,
		Workflow:      types.WorkflowStatusNew,
		RecordState:   types.RecordStateActive,
	}
}

func findingTitle(bucket string, matched types.TagSet) string {
	keys := quoteKeys(matched.Keys())
	if len(matched) == 1 {
		return fmt.Sprintf("The tag %s was applied to the S3 bucket '%s'", keys, bucket)
	}
	return fmt.Sprintf("The tags %s were applied to the S3 bucket '%s'", keys, bucket)
}

func findingDescription(ev *types.TaggingEvent, matched types.TagSet, outcome VerificationOutcome, state *BucketState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s INCIDENT in account %s, region %s:\n\n", types.SeverityCritical, ev.AccountID, ev.Region)
	fmt.Fprintf(&b, "The bucket '%s' has been tagged %s.\n\n", ev.BucketName, quotePairs(matched))

	if len(matched) == 1 {
		b.WriteString("Setting this tag prevents automation from closing the bucket for public access. ")
	} else {
		b.WriteString("Setting these tags prevents automation from closing the bucket for public access. ")
	}
	b.WriteString("It doesn't open the bucket for public access per se; this must be done by the developers themselves.")

	if ev.Principal != "" {
		fmt.Fprintf(&b, "\n\nApplied by %s.", ev.Principal)
	}

	b.WriteString("\n\n")
	b.WriteString(verificationNote(outcome, state, len(matched)))

	return b.String()
}

func verificationNote(outcome VerificationOutcome, state *BucketState, matchedCount int) string {
	switch outcome {
	case VerificationConfirmed:
		note := "Verification: the tag is still present on the bucket."
		if matchedCount > 1 {
			note = "Verification: at least one of the tags is still present on the bucket."
		}
		if state != nil && state.PolicyPublic != nil {
			if *state.PolicyPublic {
				note += " The bucket policy currently allows public access."
			} else {
				note += " The bucket policy does not currently allow public access."
			}
		}
		return note
	case VerificationStale:
		if matchedCount > 1 {
			return "Verification: the tags are no longer present on the bucket; they may have been removed after this event."
		}
		return "Verification: the tag is no longer present on the bucket; it may have been removed after this event."
	default:
		return "Verification: the bucket state could not be confirmed from the bucket's account."
	}
}

func quoteKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return strings.Join(quoted, ", ")
}

func quotePairs(tags types.TagSet) string {
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		if tag.Value == "" {
			quoted[i] = "'" + tag.Key + "'"
		} else {
			quoted[i] = "'" + tag.Key + "=" + tag.Value + "'"
		}
	}
	return strings.Join(quoted, ", ")
}
