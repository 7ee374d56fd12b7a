package details

import (
	"context"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/sony/gobreaker/v2"

	"slackwatch/internal/types"
)

// BatchClient is the subset of the AWS Batch SDK used by BatchFetcher.
type BatchClient interface {
	DescribeJobs(ctx context.Context, params *batch.DescribeJobsInput, optFns ...func(*batch.Options)) (*batch.DescribeJobsOutput, error)
}

// BatchFetcher builds BatchDetail records from AWS Batch job descriptions.
type BatchFetcher struct {
	client  BatchClient
	logger  types.Logger
	breaker *gobreaker.CircuitBreaker[*batch.DescribeJobsOutput]
}

// NewBatchFetcher creates a BatchFetcher.
func NewBatchFetcher(client BatchClient, logger types.Logger) *BatchFetcher {
	return &BatchFetcher{
		client:  client,
		logger:  logger,
		breaker: newBreaker[*batch.DescribeJobsOutput]("aws-batch"),
	}
}

// Fetch returns the processing statistics for a job id. Phase durations
// are derived from the job's lifecycle timestamps: extract is
// started-created, transform is stopped-started, load is the sum of
// per-attempt durations; all in seconds rounded to two decimals. Success
// and fail counts partition the attempts on exit code zero.
//
// A missing job or query failure yields the sentinel record, whose
// FailCount of 1 marks "lookup itself failed" as distinct from an observed
// run with zero failures.
func (f *BatchFetcher) Fetch(ctx context.Context, jobID string) types.DetailRecord {
	out, err := f.breaker.Execute(func() (*batch.DescribeJobsOutput, error) {
		return f.client.DescribeJobs(ctx, &batch.DescribeJobsInput{
			Jobs: []string{jobID},
		})
	})
	if err != nil {
		f.logger.Error("batch job query failed",
			"job_id", jobID,
			"error", err.Error(),
		)
		return types.SentinelBatchDetail()
	}
	if len(out.Jobs) == 0 {
		return types.SentinelBatchDetail()
	}

	job := out.Jobs[0]

	var successCount, failCount int
	var loadMillis int64
	for _, attempt := range job.Attempts {
		var exitCode int32
		if attempt.Container != nil && attempt.Container.ExitCode != nil {
			exitCode = *attempt.Container.ExitCode
		}
		if exitCode == 0 {
			successCount++
		} else {
			failCount++
		}
		loadMillis += millisBetween(attempt.StartedAt, attempt.StoppedAt)
	}

	detail := types.BatchDetail{
		TotalProcessed: len(job.Attempts),
		SuccessCount:   successCount,
		FailCount:      failCount,
		ExtractTime:    seconds(millisBetween(job.CreatedAt, job.StartedAt)),
		TransformTime:  seconds(millisBetween(job.StartedAt, job.StoppedAt)),
		LoadTime:       seconds(loadMillis),
	}
	return types.DetailRecord{Kind: types.DetailBatch, Batch: &detail}
}

// millisBetween returns to-from in milliseconds, clamped at zero, treating
// missing timestamps as zero duration.
func millisBetween(from, to *int64) int64 {
	if from == nil || to == nil || *to < *from {
		return 0
	}
	return *to - *from
}

// seconds converts epoch milliseconds to seconds rounded to two decimals.
func seconds(millis int64) float64 {
	return math.Round(float64(millis)/10) / 100
}
