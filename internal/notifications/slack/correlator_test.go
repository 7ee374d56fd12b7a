package slack

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slackwatch/internal/types"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func historyWith(messages ...slackapi.Message) *slackapi.GetConversationHistoryResponse {
	return &slackapi.GetConversationHistoryResponse{Messages: messages}
}

func channelMessage(text, ts string) slackapi.Message {
	msg := slackapi.Message{}
	msg.Text = text
	msg.Timestamp = ts
	return msg
}

func newTestCorrelator(client *fakeChatClient) *Correlator {
	clock := fixedClock{now: time.Date(2024, 11, 20, 15, 45, 0, 0, time.UTC)}
	return NewCorrelator(client, clock, types.NopLogger{})
}

func TestCorrelator_RecordThenThreadHitsCache(t *testing.T) {
	client := &fakeChatClient{}
	c := newTestCorrelator(client)

	c.Record("C1", "DEV", "1700000000.000100")

	ts, ok := c.Thread(context.Background(), "C1", "DEV")
	require.True(t, ok)
	assert.Equal(t, "1700000000.000100", ts)
	assert.Empty(t, client.historyReqs, "cache hit must not scan history")
}

func TestCorrelator_DayRolloverInvalidatesCachedThread(t *testing.T) {
	client := &fakeChatClient{history: historyWith()}
	clock := &fixedClock{now: time.Date(2024, 11, 20, 23, 50, 0, 0, time.UTC)}
	c := NewCorrelator(client, clock, types.NopLogger{})

	c.Record("C1", "DEV", "1732146600.000001")

	clock.now = time.Date(2024, 11, 21, 0, 10, 0, 0, time.UTC)

	ts, ok := c.Thread(context.Background(), "C1", "DEV")
	assert.False(t, ok, "yesterday's entry must not serve today's lookup")
	assert.Empty(t, ts)
	require.Len(t, client.historyReqs, 1, "rollover must re-derive from channel history")
	assert.True(t, strings.HasPrefix(client.historyReqs[0].Oldest, "1732147200"),
		"scan window must start at the new day's midnight")
}

func TestCorrelator_RecordAfterRolloverServesNewDay(t *testing.T) {
	client := &fakeChatClient{}
	clock := &fixedClock{now: time.Date(2024, 11, 21, 0, 15, 0, 0, time.UTC)}
	c := NewCorrelator(client, clock, types.NopLogger{})

	c.Record("C1", "DEV", "1732148100.000002")

	ts, ok := c.Thread(context.Background(), "C1", "DEV")
	require.True(t, ok)
	assert.Equal(t, "1732148100.000002", ts)
	assert.Empty(t, client.historyReqs)
}

func TestCorrelator_HistoryScanMatchesServiceSubstring(t *testing.T) {
	client := &fakeChatClient{history: historyWith(
		channelMessage("[PROD] 배치 작업 daily-etl: SUCCEEDED", "1700000000.000300"),
		channelMessage("[DEV] 에러 발생: DB timeout", "1700000000.000200"),
	)}
	c := newTestCorrelator(client)

	ts, ok := c.Thread(context.Background(), "C1", "DEV")
	require.True(t, ok)
	assert.Equal(t, "1700000000.000200", ts)

	// The scan window opens at midnight of the current calendar day.
	require.Len(t, client.historyReqs, 1)
	oldest := client.historyReqs[0].Oldest
	midnight := time.Date(2024, 11, 20, 0, 0, 0, 0, time.UTC).Unix()
	assert.True(t, strings.HasPrefix(oldest, "1732060800"), "oldest=%s midnight=%d", oldest, midnight)
}

func TestCorrelator_ScanResultIsCached(t *testing.T) {
	client := &fakeChatClient{history: historyWith(
		channelMessage("[DEV] 에러 발생: boom", "1700000000.000500"),
	)}
	c := newTestCorrelator(client)

	_, ok := c.Thread(context.Background(), "C1", "DEV")
	require.True(t, ok)
	_, ok = c.Thread(context.Background(), "C1", "DEV")
	require.True(t, ok)

	assert.Len(t, client.historyReqs, 1)
}

func TestCorrelator_NoMatchIsAMiss(t *testing.T) {
	client := &fakeChatClient{history: historyWith(
		channelMessage("unrelated chatter", "1700000000.000300"),
	)}
	c := newTestCorrelator(client)

	_, ok := c.Thread(context.Background(), "C1", "DEV")
	assert.False(t, ok)
}

func TestCorrelator_ScanFailureIsAMissNotAnError(t *testing.T) {
	client := &fakeChatClient{historyErr: errors.New("ratelimited")}
	c := newTestCorrelator(client)

	_, ok := c.Thread(context.Background(), "C1", "DEV")
	assert.False(t, ok)
}

func TestCorrelator_KeysAreChannelScoped(t *testing.T) {
	client := &fakeChatClient{}
	c := newTestCorrelator(client)

	c.Record("C1", "DEV", "1700000000.000100")

	_, ok := c.Thread(context.Background(), "C2", "DEV")
	assert.False(t, ok, "a thread in one channel must not leak into another")
}
