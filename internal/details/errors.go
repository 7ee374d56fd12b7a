package details

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/sony/gobreaker/v2"

	"slackwatch/internal/types"
)

// errorDetailWindow is the lookback for log lines tied to a specific error
// id; historyWindow is the lookback for the occurrence summary.
const (
	errorDetailWindow = 24 * 60 * 60 * 1000 // ms
	historyWindow     = 7 * 24 * 60 * 60 * 1000

	// tracebackMarker splits fetched lines into stack trace vs related logs.
	tracebackMarker = "Traceback"

	// errorMarker is the fixed filter token combined with the error id.
	errorMarker = "ERROR"

	historyMaxEntries = 5
	historyEntryLen   = 100
)

// LogsClient is the subset of the CloudWatch Logs SDK used by ErrorFetcher.
type LogsClient interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// ErrorFetcher builds ErrorDetail records from CloudWatch Logs.
type ErrorFetcher struct {
	client   LogsClient
	logGroup string
	clock    types.Clock
	logger   types.Logger
	breaker  *gobreaker.CircuitBreaker[*cloudwatchlogs.FilterLogEventsOutput]
}

// NewErrorFetcher creates an ErrorFetcher querying the given log group.
func NewErrorFetcher(client LogsClient, logGroup string, clock types.Clock, logger types.Logger) *ErrorFetcher {
	return &ErrorFetcher{
		client:   client,
		logGroup: logGroup,
		clock:    clock,
		logger:   logger,
		breaker:  newBreaker[*cloudwatchlogs.FilterLogEventsOutput]("cloudwatch-logs"),
	}
}

// Fetch returns the error detail for an error id: lines from the trailing
// 24 hours matching "ERROR <id>" partitioned into stack trace and related
// logs, plus a 7-day occurrence summary. Query failures and empty results
// yield the sentinel record.
func (f *ErrorFetcher) Fetch(ctx context.Context, errorID string) types.DetailRecord {
	now := f.clock.Now().UnixMilli()

	out, err := f.filter(ctx, fmt.Sprintf("%s %s", errorMarker, errorID), now-errorDetailWindow, now)
	if err != nil {
		f.logger.Error("error detail query failed",
			"error_id", errorID,
			"log_group", f.logGroup,
			"error", err.Error(),
		)
		return types.SentinelErrorDetail()
	}
	if len(out.Events) == 0 {
		return types.SentinelErrorDetail()
	}

	var stackTrace, relatedLogs []string
	for _, event := range out.Events {
		msg := aws.ToString(event.Message)
		if strings.Contains(msg, tracebackMarker) {
			stackTrace = append(stackTrace, msg)
		} else {
			relatedLogs = append(relatedLogs, msg)
		}
	}

	detail := types.ErrorDetail{
		StackTrace:     joinOr(stackTrace, "스택 트레이스를 찾을 수 없습니다."),
		RelatedLogs:    joinOr(relatedLogs, "관련 로그를 찾을 수 없습니다."),
		HistorySummary: f.historySummary(ctx, now),
	}
	return types.DetailRecord{Kind: types.DetailError, Error: &detail}
}

// historySummary queries the trailing 7 days for the bare ERROR marker and
// summarizes: total count plus the most recent entries, each truncated. A
// failed history query degrades only this field, not the whole record.
func (f *ErrorFetcher) historySummary(ctx context.Context, nowMillis int64) string {
	out, err := f.filter(ctx, errorMarker, nowMillis-historyWindow, nowMillis)
	if err != nil {
		f.logger.Warn("error history query failed", "error", err.Error())
		return types.SentinelNoHistory
	}
	if len(out.Events) == 0 {
		return types.SentinelNoHistory
	}

	var b strings.Builder
	fmt.Fprintf(&b, "최근 7일간 %d건의 관련 에러가 발견되었습니다.", len(out.Events))

	// Most recent first; FilterLogEvents returns events oldest first.
	shown := 0
	for i := len(out.Events) - 1; i >= 0 && shown < historyMaxEntries; i-- {
		b.WriteString("\n• ")
		b.WriteString(truncate(aws.ToString(out.Events[i].Message), historyEntryLen))
		shown++
	}
	return b.String()
}

func (f *ErrorFetcher) filter(ctx context.Context, pattern string, start, end int64) (*cloudwatchlogs.FilterLogEventsOutput, error) {
	return f.breaker.Execute(func() (*cloudwatchlogs.FilterLogEventsOutput, error) {
		return f.client.FilterLogEvents(ctx, &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName:  aws.String(f.logGroup),
			FilterPattern: aws.String(pattern),
			StartTime:     aws.Int64(start),
			EndTime:       aws.Int64(end),
		})
	})
}

func joinOr(lines []string, fallback string) string {
	if len(lines) == 0 {
		return fallback
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
