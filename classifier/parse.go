package classifier

import (
	"encoding/json"
	"time"

	"github.com/aws/aws-lambda-go/events"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

// cloudTrailDetail is the CloudTrail record carried in the EventBridge
// detail field for a PutBucketTagging call. Field matching is
// case-insensitive, so both the raw CloudTrail casing ("Tagging",
// "TagSet", "Tag") and lowercased replays decode into the same struct.
type cloudTrailDetail struct {
	EventTime          string            `json:"eventTime"`
	EventName          string            `json:"eventName"`
	AWSRegion          string            `json:"awsRegion"`
	UserIdentity       userIdentity      `json:"userIdentity"`
	RequestParameters  requestParameters `json:"requestParameters"`
	RecipientAccountID string            `json:"recipientAccountId"`
	Resources          []detailResource  `json:"resources"`
}

type userIdentity struct {
	ARN         string `json:"arn"`
	PrincipalID string `json:"principalId"`
	AccountID   string `json:"accountId"`
}

type detailResource struct {
	Type      string `json:"type"`
	ARN       string `json:"ARN"`
	AccountID string `json:"accountId"`
}

type requestParameters struct {
	BucketName string  `json:"bucketName"`
	Tagging    tagging `json:"tagging"`
}

type tagging struct {
	TagSet tagSetNode `json:"tagSet"`
}

type tagSetNode struct {
	Tag tagList `json:"tag"`
}

// tagList absorbs CloudTrail's XML-derived tag collection, which arrives
// as an array for multi-tag requests and as a bare object when exactly
// one tag was applied.
type tagList []types.Tag

func (l *tagList) UnmarshalJSON(data []byte) error {
	var many []types.Tag
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one types.Tag
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*l = tagList{one}
	return nil
}

// ParseTaggingEvent extracts the classification inputs from an EventBridge
// envelope carrying a PutBucketTagging CloudTrail record. It returns a
// MalformedEventError when the detail payload, the bucket name, or the
// account cannot be recovered; optional fields fall back to the envelope.
func ParseTaggingEvent(event events.CloudWatchEvent) (*types.TaggingEvent, error) {
	if len(event.Detail) == 0 {
		return nil, &MalformedEventError{Field: "detail"}
	}

	var detail cloudTrailDetail
	if err := json.Unmarshal(event.Detail, &detail); err != nil {
		return nil, &MalformedEventError{Field: "detail", Err: err}
	}

	bucket := detail.RequestParameters.BucketName
	if bucket == "" {
		return nil, &MalformedEventError{Field: "bucket_name"}
	}

	accountID := detail.RecipientAccountID
	if accountID == "" {
		accountID = firstResourceAccount(detail.Resources)
	}
	if accountID == "" {
		return nil, &MalformedEventError{Field: "account_id"}
	}

	region := detail.AWSRegion
	if region == "" {
		region = event.Region
	}

	eventTime := event.Time
	if detail.EventTime != "" {
		if t, err := time.Parse(time.RFC3339, detail.EventTime); err == nil {
			eventTime = t
		}
	}

	principal := detail.UserIdentity.ARN
	if principal == "" {
		principal = detail.UserIdentity.PrincipalID
	}

	return &types.TaggingEvent{
		AccountID:   accountID,
		Region:      region,
		BucketName:  bucket,
		AppliedTags: types.TagSet(detail.RequestParameters.Tagging.TagSet.Tag),
		EventTime:   eventTime.UTC(),
		Principal:   principal,
		EventID:     event.ID,
	}, nil
}

func firstResourceAccount(resources []detailResource) string {
	for _, r := range resources {
		if r.AccountID != "" {
			return r.AccountID
		}
	}
	return ""
}
