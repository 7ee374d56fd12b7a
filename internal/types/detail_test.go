package types

import "testing"

func TestSentinelBatchDetailMarksLookupFailure(t *testing.T) {
	record := SentinelBatchDetail()

	// FailCount 1 with zero processed distinguishes "lookup failed" from a
	// clean run with no failures.
	if record.Batch.FailCount != 1 {
		t.Errorf("FailCount = %d, want 1", record.Batch.FailCount)
	}
	if record.Batch.TotalProcessed != 0 {
		t.Errorf("TotalProcessed = %d, want 0", record.Batch.TotalProcessed)
	}
}

func TestIsSentinel(t *testing.T) {
	cases := []struct {
		name   string
		record DetailRecord
		want   bool
	}{
		{"error sentinel", SentinelErrorDetail(), true},
		{"batch sentinel", SentinelBatchDetail(), true},
		{"rag sentinel", SentinelRagDetail(), true},
		{"real error", DetailRecord{Kind: DetailError, Error: &ErrorDetail{StackTrace: "Traceback"}}, false},
		{"real batch with one failure", DetailRecord{Kind: DetailBatch, Batch: &BatchDetail{TotalProcessed: 5, SuccessCount: 4, FailCount: 1}}, false},
		{"real rag", DetailRecord{Kind: DetailRag, Rag: &RagDetail{Precision: 0.9}}, false},
		{"empty record", DetailRecord{}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.record.IsSentinel(); got != tc.want {
				t.Errorf("IsSentinel() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNonEmpty(t *testing.T) {
	if NonEmpty("") != UnknownField {
		t.Errorf("NonEmpty(\"\") = %q, want %q", NonEmpty(""), UnknownField)
	}
	if NonEmpty("value") != "value" {
		t.Errorf("NonEmpty passthrough failed")
	}
}
