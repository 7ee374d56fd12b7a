package details

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackwatch/internal/types"
)

func TestKindForAction(t *testing.T) {
	cases := []struct {
		actionID string
		kind     types.DetailKind
		ok       bool
	}{
		{types.ActionViewErrorDetail, types.DetailError, true},
		{types.ActionViewBatchDetail, types.DetailBatch, true},
		{types.ActionViewRagDetail, types.DetailRag, true},
		{"view_cloudwatch", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		kind, ok := KindForAction(tc.actionID)
		assert.Equal(t, tc.ok, ok, tc.actionID)
		assert.Equal(t, tc.kind, kind, tc.actionID)
	}
}

func testResolver() *Resolver {
	logs := &fakeLogsClient{outputs: map[string]*cloudwatchlogs.FilterLogEventsOutput{
		"ERROR err-1": logEvents("Traceback: boom"),
	}}
	getter := &fakePipelineGetter{run: pipelineRun(map[string]any{"precision": 0.9}, nil)}

	return NewResolver(
		newTestErrorFetcher(logs),
		NewBatchFetcher(&fakeBatchClient{err: assert.AnError}, types.NopLogger{}),
		NewRagFetcher(getter, types.NopLogger{}),
	)
}

func TestResolver_RoutesByKind(t *testing.T) {
	r := testResolver()
	ctx := context.Background()

	errRecord := r.Resolve(ctx, types.DetailError, "err-1")
	require.Equal(t, types.DetailError, errRecord.Kind)
	assert.Contains(t, errRecord.Error.StackTrace, "boom")

	batchRecord := r.Resolve(ctx, types.DetailBatch, "job-1")
	assert.Equal(t, types.SentinelBatchDetail(), batchRecord)

	ragRecord := r.Resolve(ctx, types.DetailRag, "run-1")
	require.Equal(t, types.DetailRag, ragRecord.Kind)
	assert.InDelta(t, 0.9, ragRecord.Rag.Precision, 1e-9)
}

func TestResolver_UnknownKindYieldsErrorSentinel(t *testing.T) {
	record := testResolver().Resolve(context.Background(), "mystery", "x")
	assert.Equal(t, types.SentinelErrorDetail(), record)
}

func TestNewBreaker_OpensAfterFiveConsecutiveFailures(t *testing.T) {
	cb := newBreaker[int]("test")
	fail := func() (int, error) { return 0, errors.New("down") }

	for i := 0; i < 5; i++ {
		_, err := cb.Execute(fail)
		require.EqualError(t, err, "down")
	}

	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}
