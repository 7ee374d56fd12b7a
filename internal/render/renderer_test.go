package render

import (
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackwatch/internal/types"
)

func testRenderer() *Renderer {
	return New("ap-northeast-2", "https://kubeflow.test.local")
}

func fixedNow() time.Time {
	return time.Date(2024, 11, 20, 14, 30, 0, 0, time.UTC)
}

// blockTexts flattens every text object in a block sequence for substring
// assertions.
func blockTexts(t *testing.T, blocks []slack.Block) []string {
	t.Helper()
	var texts []string
	for _, b := range blocks {
		switch block := b.(type) {
		case *slack.HeaderBlock:
			texts = append(texts, block.Text.Text)
		case *slack.SectionBlock:
			if block.Text != nil {
				texts = append(texts, block.Text.Text)
			}
			if block.Fields != nil {
				for _, f := range block.Fields {
					texts = append(texts, f.Text)
				}
			}
		case *slack.ActionBlock:
			for _, el := range block.Elements.ElementSet {
				if btn, ok := el.(*slack.ButtonBlockElement); ok {
					texts = append(texts, btn.Text.Text)
				}
			}
		}
	}
	return texts
}

func findButton(t *testing.T, blocks []slack.Block, actionID string) *slack.ButtonBlockElement {
	t.Helper()
	for _, b := range blocks {
		action, ok := b.(*slack.ActionBlock)
		if !ok {
			continue
		}
		for _, el := range action.Elements.ElementSet {
			if btn, ok := el.(*slack.ButtonBlockElement); ok && btn.ActionID == actionID {
				return btn
			}
		}
	}
	t.Fatalf("no button with action id %q", actionID)
	return nil
}

func containsSubstring(texts []string, sub string) bool {
	for _, s := range texts {
		if s == sub {
			return true
		}
	}
	return false
}

func TestRender_ErrorAlert(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertError,
		Error: &types.ErrorAlert{
			Service: "DEV",
			Message: "DB timeout",
			ID:      "abc-123",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)

	assert.Equal(t, types.AlertError, msg.Kind)
	assert.Contains(t, msg.Fallback, "에러 발생")
	assert.Contains(t, msg.Fallback, "DB timeout")

	texts := blockTexts(t, msg.Blocks)
	assert.True(t, containsSubstring(texts, "🚨 에러 발생 알림"))
	assert.Contains(t, texts, "*서비스:*\n[DEV] 개발 환경")
	assert.Contains(t, texts, "*발생시간:*\n2024-11-20 14:30:00")
	assert.Contains(t, texts, "*에러 내용:*\n```DB timeout```")
}

func TestRender_ErrorAlertButtonCarriesErrorID(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertError,
		Error: &types.ErrorAlert{
			Service: "DEV",
			Message: "boom",
			ID:      "err-55",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)

	btn := findButton(t, msg.Blocks, types.ActionViewErrorDetail)
	assert.Equal(t, "err-55", btn.Value)
	assert.Equal(t, "상세 로그 보기", btn.Text.Text)

	link := findButton(t, msg.Blocks, "view_cloudwatch")
	assert.Contains(t, link.URL, "ap-northeast-2.console.aws.amazon.com/cloudwatch")
	assert.Contains(t, link.URL, "err-55")
}

func TestRender_ErrorAlertIdempotent(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertError,
		Error: &types.ErrorAlert{
			Service: "DEV",
			Message: "boom",
			ID:      "err-1",
		},
	}

	r := testRenderer()
	now := fixedNow()
	first, err := r.Render(alert, now)
	require.NoError(t, err)
	second, err := r.Render(alert, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRender_BatchSucceeded(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertBatchStatus,
		Batch: &types.BatchStatusAlert{
			Service: "DEV",
			JobName: "daily-etl",
			Status:  "SUCCEEDED",
			JobID:   "job-42",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)

	texts := blockTexts(t, msg.Blocks)
	assert.True(t, containsSubstring(texts, "✅ 배치 작업 상태 알림"))
	assert.Contains(t, texts, "*작업명:*\ndaily-etl")
	assert.Contains(t, texts, "*상태:*\nSUCCEEDED")
	assert.Contains(t, texts, "*작업 ID:*\njob-42")

	btn := findButton(t, msg.Blocks, types.ActionViewBatchDetail)
	assert.Equal(t, "job-42", btn.Value)
}

func TestRender_BatchStatusEmoji(t *testing.T) {
	cases := []struct {
		status string
		emoji  string
	}{
		{"SUCCEEDED", "✅"},
		{"FAILED", "❌"},
		{"RUNNING", "🔄"},
		{"PENDING", "🔄"},
	}
	for _, tc := range cases {
		t.Run(tc.status, func(t *testing.T) {
			assert.Equal(t, tc.emoji, batchStatusEmoji(tc.status))
		})
	}
}

func TestRender_RagBelowThreshold(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertRagPerformance,
		Rag: &types.RagPerformanceAlert{
			Service:    "DEV",
			Accuracy:   0.75,
			Threshold:  0.8,
			PipelineID: "run-9",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)

	texts := blockTexts(t, msg.Blocks)
	assert.True(t, containsSubstring(texts, "⚠️ RAG 성능 측정 결과"))
	assert.Contains(t, texts, "*정확도:*\n75.00%")
	assert.Contains(t, texts, "*임계값:*\n80.00%")

	btn := findButton(t, msg.Blocks, types.ActionViewRagDetail)
	assert.Equal(t, "run-9", btn.Value)

	link := findButton(t, msg.Blocks, "view_kubeflow")
	assert.Equal(t, "https://kubeflow.test.local/pipeline/#/runs/details/run-9", link.URL)
}

func TestRender_RagAtThresholdIsHealthy(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertRagPerformance,
		Rag: &types.RagPerformanceAlert{
			Service:    "DEV",
			Accuracy:   0.8,
			Threshold:  0.8,
			PipelineID: "run-9",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)

	texts := blockTexts(t, msg.Blocks)
	assert.True(t, containsSubstring(texts, "✅ RAG 성능 측정 결과"))
}

func TestRender_UnknownServiceFallsBackToDev(t *testing.T) {
	alert := types.NormalizedAlert{
		Kind: types.AlertError,
		Error: &types.ErrorAlert{
			Service: "no-such-service",
			Message: "x",
			ID:      "y",
		},
	}

	msg, err := testRenderer().Render(alert, fixedNow())
	require.NoError(t, err)
	assert.Equal(t, types.ServiceDev.Name, msg.Service)
}

func TestRender_NilVariant(t *testing.T) {
	_, err := testRenderer().Render(types.NormalizedAlert{Kind: types.AlertError}, fixedNow())
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalRender, appErr.Code)
}

func TestRender_UnknownKind(t *testing.T) {
	_, err := testRenderer().Render(types.NormalizedAlert{Kind: "mystery"}, fixedNow())
	var appErr *types.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, types.ErrCodeInternalRender, appErr.Code)
}
