package types

// DetailKind discriminates the variants of a DetailRecord.
type DetailKind string

const (
	DetailError DetailKind = "error"
	DetailBatch DetailKind = "batch"
	DetailRag   DetailKind = "rag"
)

// ErrorDetail is the enrichment record for an error alert: log lines from a
// trailing 24-hour window partitioned into stack trace vs related logs, and
// a 7-day occurrence summary. Every field is always populated; when no data
// exists the fixed sentinel text below is used instead of empty strings.
type ErrorDetail struct {
	StackTrace     string `json:"stack_trace"`
	RelatedLogs    string `json:"related_logs"`
	HistorySummary string `json:"history_summary"`
}

// BatchDetail is the enrichment record for a batch alert. Durations are in
// seconds, rounded to two decimals.
type BatchDetail struct {
	TotalProcessed int     `json:"total_processed"`
	SuccessCount   int     `json:"success_count"`
	FailCount      int     `json:"fail_count"`
	ExtractTime    float64 `json:"extract_time"`
	TransformTime  float64 `json:"transform_time"`
	LoadTime       float64 `json:"load_time"`
}

// RagDetail is the enrichment record for a RAG alert. FailedQueries holds at
// most three formatted failed-step lines; Suggestions holds at most four
// fixed improvement hints.
type RagDetail struct {
	Precision     float64  `json:"precision"`
	Recall        float64  `json:"recall"`
	F1            float64  `json:"f1"`
	MRR           float64  `json:"mrr"`
	FailedQueries []string `json:"failed_queries"`
	Suggestions   []string `json:"suggestions"`
}

// DetailRecord is the tagged union returned by the detail resolver. Exactly
// one variant pointer is non-nil, matching Kind. Resolvers never return a
// partially-populated record: fetch failures yield the sentinel variants.
type DetailRecord struct {
	Kind  DetailKind   `json:"kind"`
	Error *ErrorDetail `json:"error,omitempty"`
	Batch *BatchDetail `json:"batch,omitempty"`
	Rag   *RagDetail   `json:"rag,omitempty"`
}

// Sentinel text for detail records whose source data could not be fetched.
// These strings are part of the user-visible contract and match the
// production message templates.
const (
	SentinelNoStackTrace  = "에러 로그를 찾을 수 없습니다"
	SentinelNoRelatedLogs = "관련 로그가 없습니다"
	SentinelNoHistory     = "이력이 없습니다"
	SentinelNoRagData     = "성능 데이터를 찾을 수 없습니다."
	SentinelNoSuggestions = "데이터 조회 실패로 제안할 수 없습니다."
)

// IsSentinel reports whether the record is the fixed fallback for its kind,
// meaning the source lookup failed or matched nothing.
func (r DetailRecord) IsSentinel() bool {
	switch r.Kind {
	case DetailError:
		return r.Error != nil && r.Error.StackTrace == SentinelNoStackTrace &&
			r.Error.RelatedLogs == SentinelNoRelatedLogs
	case DetailBatch:
		return r.Batch != nil && r.Batch.TotalProcessed == 0 && r.Batch.FailCount == 1
	case DetailRag:
		return r.Rag != nil && len(r.Rag.FailedQueries) == 1 &&
			r.Rag.FailedQueries[0] == SentinelNoRagData
	default:
		return false
	}
}

// SentinelErrorDetail is the fixed record returned when the log query fails
// or matches nothing.
func SentinelErrorDetail() DetailRecord {
	return DetailRecord{
		Kind: DetailError,
		Error: &ErrorDetail{
			StackTrace:     SentinelNoStackTrace,
			RelatedLogs:    SentinelNoRelatedLogs,
			HistorySummary: SentinelNoHistory,
		},
	}
}

// SentinelBatchDetail is the fixed record returned when the job lookup
// fails. FailCount is pinned to 1 to distinguish "lookup itself failed"
// from an observed run with zero failures.
func SentinelBatchDetail() DetailRecord {
	return DetailRecord{
		Kind: DetailBatch,
		Batch: &BatchDetail{
			FailCount: 1,
		},
	}
}

// SentinelRagDetail is the fixed record returned when the pipeline-run
// lookup fails.
func SentinelRagDetail() DetailRecord {
	return DetailRecord{
		Kind: DetailRag,
		Rag: &RagDetail{
			FailedQueries: []string{SentinelNoRagData},
			Suggestions:   []string{SentinelNoSuggestions},
		},
	}
}
