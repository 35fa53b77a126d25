package classifier

import (
	"errors"
	"fmt"
)

// MalformedEventError reports an event that cannot be classified because a
// required field is missing or unparseable. The sink is never called; the
// error fails the invocation so the source's dead-letter policy can take
// the event. Redelivery cannot fix it, only the upstream producer can.
type MalformedEventError struct {
	// Field names the missing or invalid piece, e.g. "bucket_name".
	Field string
	Err   error
}

func (e *MalformedEventError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed event: %s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed event: missing %s", e.Field)
}

func (e *MalformedEventError) Unwrap() error {
	return e.Err
}

// AccessDeniedError reports that the cross-account verification role could
// not be assumed or used. Verification failures degrade the finding to
// unverified; they never fail the invocation.
type AccessDeniedError struct {
	AccountID string
	Role      string
	Err       error
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access denied: role %s in account %s: %v", e.Role, e.AccountID, e.Err)
}

func (e *AccessDeniedError) Unwrap() error {
	return e.Err
}

// IngestionError reports that a finding could not be submitted, whether by
// transport failure, a rejected batch entry, or a deadline. Ingestion
// failures fail the invocation so the caller retries delivery.
type IngestionError struct {
	FindingID string
	Err       error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("ingestion failed for finding %s: %v", e.FindingID, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

// IsMalformedEvent reports whether err is, or wraps, a MalformedEventError.
func IsMalformedEvent(err error) bool {
	var me *MalformedEventError
	return errors.As(err, &me)
}

// IsAccessDenied reports whether err is, or wraps, an AccessDeniedError.
func IsAccessDenied(err error) bool {
	var ae *AccessDeniedError
	return errors.As(err, &ae)
}

// IsIngestion reports whether err is, or wraps, an IngestionError.
func IsIngestion(err error) bool {
	var ie *IngestionError
	return errors.As(err, &ie)
}
