package types

// ASFF constants used on every finding this function emits.
const (
	SchemaVersion = "2018-10-08"

	RecordStateActive = "ACTIVE"
	WorkflowStatusNew = "NEW"
)

// Severity is an ASFF severity label.
type Severity string

const (
	SeverityCritical      Severity = "CRITICAL"
	SeverityHigh          Severity = "HIGH"
	SeverityMedium        Severity = "MEDIUM"
	SeverityLow           Severity = "LOW"
	SeverityInformational Severity = "INFORMATIONAL"
)

// VerificationState is the ASFF analyst-verification field.
type VerificationState string

const (
	VerificationTruePositive VerificationState = "TRUE_POSITIVE"
	VerificationUnknown      VerificationState = "UNKNOWN"
)

// FindingResource is one resource entry on a finding.
type FindingResource struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Partition string `json:"partition,omitempty"`
	Region    string `json:"region,omitempty"`
}

// Remediation carries the recommended operator action.
type Remediation struct {
	Text string `json:"text"`
	URL  string `json:"url,omitempty"`
}

// Finding is the normalized security finding submitted to the ingestion
// sink. Its ID is deterministic per underlying API call so that
// at-least-once redelivery updates the same finding instead of
// duplicating it.
type Finding struct {
	ID            string            `json:"id"`
	ProductARN    string            `json:"product_arn"`
	GeneratorID   string            `json:"generator_id"`
	AccountID     string            `json:"account_id"`
	Region        string            `json:"region"`
	Types         []string          `json:"types"`
	CreatedAt     string            `json:"created_at"`
	UpdatedAt     string            `json:"updated_at"`
	Severity      Severity          `json:"severity"`
	Title         string            `json:"title"`
	Description   string            `json:"description"`
	Remediation   *Remediation      `json:"remediation,omitempty"`
	Resources     []FindingResource `json:"resources"`
	ProductFields map[string]string `json:"product_fields,omitempty"`
	Verification  VerificationState `json:"verification_state"`
	Workflow      string            `json:"workflow_status"`
	RecordState   string            `json:"record_state"`
}
