package details

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/sony/gobreaker/v2"

	"slackwatch/internal/types"
)

const maxFailedQueries = 3

// Suggestion thresholds for each retrieval metric. A metric below its
// threshold produces the matching improvement suggestion.
const (
	precisionFloor = 0.8
	recallFloor    = 0.8
	f1Floor        = 0.8
	mrrFloor       = 0.9
)

const (
	suggestPrecision = "• Precision이 낮습니다. 검색 결과의 정확도 향상이 필요합니다."
	suggestRecall    = "• Recall이 낮습니다. 관련 문서 검색 범위를 넓히는 것을 고려하세요."
	suggestF1        = "• F1 Score가 낮습니다. Precision과 Recall의 균형을 맞추세요."
	suggestMRR       = "• MRR이 낮습니다. 가장 관련성 높은 결과가 상위에 랭크되도록 개선이 필요합니다."
)

// PipelineRunGetter reads a pipeline run object by name.
type PipelineRunGetter interface {
	GetPipelineRun(ctx context.Context, name string) (map[string]any, error)
}

// RagFetcher builds RagDetail records from Kubeflow pipeline runs.
type RagFetcher struct {
	client  PipelineRunGetter
	logger  types.Logger
	breaker *gobreaker.CircuitBreaker[map[string]any]
}

// NewRagFetcher creates a RagFetcher. The client may be nil when no
// Kubeflow cluster is reachable; every fetch then degrades to the
// sentinel record.
func NewRagFetcher(client PipelineRunGetter, logger types.Logger) *RagFetcher {
	return &RagFetcher{
		client:  client,
		logger:  logger,
		breaker: newBreaker[map[string]any]("kubeflow"),
	}
}

// Fetch returns the retrieval metrics, failed pipeline steps and
// improvement suggestions for a pipeline run. Any failure to read the run
// yields the sentinel record.
func (f *RagFetcher) Fetch(ctx context.Context, pipelineID string) types.DetailRecord {
	if f.client == nil {
		return types.SentinelRagDetail()
	}

	run, err := f.breaker.Execute(func() (map[string]any, error) {
		return f.client.GetPipelineRun(ctx, pipelineID)
	})
	if err != nil {
		f.logger.Error("pipeline run query failed",
			"pipeline_id", pipelineID,
			"error", err.Error(),
		)
		return types.SentinelRagDetail()
	}

	status, _ := run["status"].(map[string]any)
	metrics, _ := status["metrics"].(map[string]any)

	detail := types.RagDetail{
		Precision:     metricValue(metrics, "precision"),
		Recall:        metricValue(metrics, "recall"),
		F1:            metricValue(metrics, "f1"),
		MRR:           metricValue(metrics, "mrr"),
		FailedQueries: failedSteps(status),
	}
	detail.Suggestions = suggestions(detail)
	return types.DetailRecord{Kind: types.DetailRag, Rag: &detail}
}

// metricValue reads a numeric metric, accepting both JSON numbers and
// numeric strings. A missing or malformed value reads as zero.
func metricValue(metrics map[string]any, key string) float64 {
	switch v := metrics[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// failedSteps collects descriptions of pipeline nodes whose phase is
// Failed, in node name order, capped at maxFailedQueries.
func failedSteps(status map[string]any) []string {
	nodes, _ := status["nodes"].(map[string]any)
	if len(nodes) == 0 {
		return nil
	}

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var failed []string
	for _, name := range names {
		node, _ := nodes[name].(map[string]any)
		if phase, _ := node["phase"].(string); phase != "Failed" {
			continue
		}
		msg, _ := node["message"].(string)
		if msg == "" {
			msg = "알 수 없는 오류"
		}
		displayName, _ := node["displayName"].(string)
		if displayName == "" {
			displayName = name
		}
		failed = append(failed, fmt.Sprintf("• Step '%s': %s", displayName, msg))
		if len(failed) == maxFailedQueries {
			break
		}
	}
	return failed
}

func suggestions(d types.RagDetail) []string {
	var out []string
	if d.Precision < precisionFloor {
		out = append(out, suggestPrecision)
	}
	if d.Recall < recallFloor {
		out = append(out, suggestRecall)
	}
	if d.F1 < f1Floor {
		out = append(out, suggestF1)
	}
	if d.MRR < mrrFloor {
		out = append(out, suggestMRR)
	}
	return out
}
