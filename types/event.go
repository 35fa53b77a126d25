// Package types defines the domain objects shared across the function:
// the normalized tagging event coming in and the finding going out.
package types

import (
	"fmt"
	"time"
)

// Tag is one key/value pair from a PutBucketTagging call.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TagSet is the complete replacement tag set from one PutBucketTagging
// call, in event order. PutBucketTagging replaces the whole set, so an
// empty TagSet means all tags were removed.
type TagSet []Tag

// Keys returns the tag keys in event order.
func (s TagSet) Keys() []string {
	if len(s) == 0 {
		return nil
	}
	keys := make([]string, 0, len(s))
	for _, t := range s {
		keys = append(keys, t.Key)
	}
	return keys
}

// Get returns the value for key and whether the key is present.
// An empty value with a present key returns ("", true).
func (s TagSet) Get(key string) (string, bool) {
	for _, t := range s {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}

// IsEmpty reports whether the set carries no tags.
func (s TagSet) IsEmpty() bool {
	return len(s) == 0
}

// TaggingEvent is one normalized PutBucketTagging API call as delivered
// by the event bus. It lives for a single invocation.
type TaggingEvent struct {
	// AccountID is the member account that owns the bucket.
	AccountID string `json:"account_id"`
	// Region is the region of the underlying API call.
	Region string `json:"region"`
	// BucketName is the bucket the tag set was applied to.
	BucketName string `json:"bucket_name"`
	// AppliedTags is the complete new tag set, possibly empty.
	AppliedTags TagSet `json:"applied_tags"`
	// EventTime is the timestamp of the underlying API call.
	EventTime time.Time `json:"event_time"`
	// Principal identifies who performed the call, for attribution.
	Principal string `json:"principal,omitempty"`
	// EventID is the bus-assigned envelope id, kept for correlation only.
	// The finding id is derived from account/bucket/time, never from this.
	EventID string `json:"event_id,omitempty"`
}

// BucketARN returns the ARN form of the bucket name.
func (e TaggingEvent) BucketARN() string {
	return fmt.Sprintf("arn:aws:s3:::%s", e.BucketName)
}
