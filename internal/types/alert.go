// Package types defines the shared domain types for the slackwatch platform:
// normalized alerts, Slack interaction payloads, detail records, the handler
// response envelope, and the error taxonomy. All other packages depend on
// types; types depends on nothing internal.
package types

// AlertKind discriminates the variants of a NormalizedAlert.
type AlertKind string

const (
	// AlertError is a CloudWatch-alarm or Lambda error notification.
	AlertError AlertKind = "error"

	// AlertBatchStatus is an AWS Batch job-state-change notification.
	AlertBatchStatus AlertKind = "batch"

	// AlertRagPerformance is a RAG-pipeline accuracy measurement notification.
	AlertRagPerformance AlertKind = "rag"
)

// UnknownField is the placeholder substituted for any string field that
// arrives empty. Rendered messages never contain empty substitutions.
const UnknownField = "unknown"

// ErrorAlert carries a normalized error notification.
type ErrorAlert struct {
	Service  string `json:"service"`
	Message  string `json:"message"`
	ID       string `json:"id"`
	LogGroup string `json:"log_group"`
}

// BatchStatusAlert carries a normalized AWS Batch job-state change.
type BatchStatusAlert struct {
	Service string `json:"service"`
	JobName string `json:"job_name"`
	Status  string `json:"status"`
	JobID   string `json:"job_id"`
}

// RagPerformanceAlert carries a normalized RAG accuracy measurement.
type RagPerformanceAlert struct {
	Service    string  `json:"service"`
	Accuracy   float64 `json:"accuracy"`
	Threshold  float64 `json:"threshold"`
	PipelineID string  `json:"pipeline_id"`
}

// NormalizedAlert is the tagged union produced by the classifier for alert
// events. Exactly one of the variant pointers is non-nil, matching Kind.
// All string fields are non-empty after normalization: empty inputs become
// UnknownField, never empty strings in rendered output.
type NormalizedAlert struct {
	Kind  AlertKind            `json:"kind"`
	Error *ErrorAlert          `json:"error,omitempty"`
	Batch *BatchStatusAlert    `json:"batch,omitempty"`
	Rag   *RagPerformanceAlert `json:"rag,omitempty"`
}

// ServiceName returns the logical service name of the populated variant.
// The correlator uses this as the thread-matching token.
func (a NormalizedAlert) ServiceName() string {
	switch a.Kind {
	case AlertError:
		if a.Error != nil {
			return a.Error.Service
		}
	case AlertBatchStatus:
		if a.Batch != nil {
			return a.Batch.Service
		}
	case AlertRagPerformance:
		if a.Rag != nil {
			return a.Rag.Service
		}
	}
	return UnknownField
}

// NonEmpty normalizes a string field: empty input becomes UnknownField.
func NonEmpty(s string) string {
	if s == "" {
		return UnknownField
	}
	return s
}
