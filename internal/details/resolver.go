// Package details fetches on-demand enrichment for alert threads: error
// log excerpts from CloudWatch Logs, job statistics from AWS Batch, and
// pipeline metrics from Kubeflow custom resources.
//
// Failure semantics are uniform: an external-system error is logged and
// converted into the fixed sentinel record for that kind. Detail fetches
// are never retried and never fail the dispatch; a missing enrichment must
// not block the alert that was already sent. Each external client call is
// wrapped in a circuit breaker so a wedged collaborator inside a warm
// Lambda container short-circuits to the sentinel instead of burning the
// invocation timeout.
package details

import (
	"context"
	"time"

	"github.com/sony/gobreaker/v2"

	"slackwatch/internal/types"
)

// KindForAction maps a Slack button action id to the detail kind it
// requests. Unknown action ids report false.
func KindForAction(actionID string) (types.DetailKind, bool) {
	switch actionID {
	case types.ActionViewErrorDetail:
		return types.DetailError, true
	case types.ActionViewBatchDetail:
		return types.DetailBatch, true
	case types.ActionViewRagDetail:
		return types.DetailRag, true
	default:
		return "", false
	}
}

// Resolver routes a (kind, key) detail request to the matching fetcher.
// The key is the opaque button value written by the renderer (error id,
// job id, or pipeline run id) and is used unchanged.
type Resolver struct {
	errors *ErrorFetcher
	batch  *BatchFetcher
	rag    *RagFetcher
}

// NewResolver assembles a Resolver from the three fetchers.
func NewResolver(errors *ErrorFetcher, batch *BatchFetcher, rag *RagFetcher) *Resolver {
	return &Resolver{errors: errors, batch: batch, rag: rag}
}

// Resolve returns the detail record for the given kind and key. It always
// returns a fully-populated record; fetch failures yield the sentinel for
// the kind.
func (r *Resolver) Resolve(ctx context.Context, kind types.DetailKind, key string) types.DetailRecord {
	switch kind {
	case types.DetailError:
		return r.errors.Fetch(ctx, key)
	case types.DetailBatch:
		return r.batch.Fetch(ctx, key)
	case types.DetailRag:
		return r.rag.Fetch(ctx, key)
	default:
		// Unknown kinds cannot reach here through KindForAction; degrade
		// to the error sentinel rather than panic.
		return types.SentinelErrorDetail()
	}
}

// newBreaker builds the standard circuit breaker used around detail-fetch
// client calls: trips after five consecutive failures, probes again after
// thirty seconds.
func newBreaker[T any](name string) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil
		},
	})
}
