// Package core holds notification plumbing shared by the dispatch handler:
// the alert-outcome metrics emitter.
package core

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"slackwatch/internal/types"
)

// MetricResult labels the outcome dimension of an alert delivery.
type MetricResult string

const (
	// MetricSuccess: the Slack message was posted.
	MetricSuccess MetricResult = "success"

	// MetricFailed: classification or the primary post failed.
	MetricFailed MetricResult = "failed"

	// MetricDegraded: the message was posted with sentinel detail content
	// because the enrichment fetch failed.
	MetricDegraded MetricResult = "degraded"
)

// Metric and dimension names.
const (
	metricAlertHandled = "AlertHandled"
	dimKind            = "Kind"
	dimResult          = "Result"
)

// AlertMetrics records alert handling outcomes. Implementations must never
// fail the caller: metric emission is strictly best-effort observability.
type AlertMetrics interface {
	RecordOutcome(ctx context.Context, kind string, result MetricResult)
	RecordLatency(ctx context.Context, kind string, duration time.Duration)
}

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for
// testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchAlertMetrics implements AlertMetrics by publishing to a
// CloudWatch namespace. Emission errors are logged and swallowed.
type CloudWatchAlertMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

var _ AlertMetrics = (*CloudWatchAlertMetrics)(nil)

// NewCloudWatchAlertMetrics creates a metrics emitter publishing to the
// given namespace.
func NewCloudWatchAlertMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchAlertMetrics {
	return &CloudWatchAlertMetrics{
		client:    client,
		namespace: namespace,
		logger:    logger,
	}
}

// RecordOutcome emits an AlertHandled count with Kind and Result dimensions.
func (m *CloudWatchAlertMetrics) RecordOutcome(ctx context.Context, kind string, result MetricResult) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricAlertHandled),
				Value:      aws.Float64(1),
				Unit:       cwtypes.StandardUnitCount,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(dimKind), Value: aws.String(kind)},
					{Name: aws.String(dimResult), Value: aws.String(string(result))},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record outcome metric",
			"error", err.Error(),
			"kind", kind,
			"result", string(result),
		)
	}
}

// RecordLatency emits the handling latency in milliseconds with a Kind
// dimension.
func (m *CloudWatchAlertMetrics) RecordLatency(ctx context.Context, kind string, duration time.Duration) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{
			{
				MetricName: aws.String(metricAlertHandled + "Latency"),
				Value:      aws.Float64(float64(duration.Milliseconds())),
				Unit:       cwtypes.StandardUnitMilliseconds,
				Dimensions: []cwtypes.Dimension{
					{Name: aws.String(dimKind), Value: aws.String(kind)},
				},
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record latency metric",
			"error", err.Error(),
			"kind", kind,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// NopAlertMetrics discards all metrics. Used in tests and local runs.
type NopAlertMetrics struct{}

func (NopAlertMetrics) RecordOutcome(context.Context, string, MetricResult) {}
func (NopAlertMetrics) RecordLatency(context.Context, string, time.Duration) {}
