package render

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"slackwatch/internal/types"
)

// RenderDetail produces the thread-reply blocks for a detail record. Every
// field of the record is already populated (resolvers substitute sentinel
// text), so rendering never emits an empty section.
func (r *Renderer) RenderDetail(record types.DetailRecord) ([]slack.Block, error) {
	switch record.Kind {
	case types.DetailError:
		if record.Error == nil {
			return nil, types.NewAppError(types.ErrCodeInternalRender, "error detail variant is nil", nil)
		}
		return renderErrorDetail(*record.Error), nil
	case types.DetailBatch:
		if record.Batch == nil {
			return nil, types.NewAppError(types.ErrCodeInternalRender, "batch detail variant is nil", nil)
		}
		return renderBatchDetail(*record.Batch), nil
	case types.DetailRag:
		if record.Rag == nil {
			return nil, types.NewAppError(types.ErrCodeInternalRender, "rag detail variant is nil", nil)
		}
		return renderRagDetail(*record.Rag), nil
	default:
		return nil, types.NewAppError(types.ErrCodeInternalRender,
			fmt.Sprintf("unknown detail kind %q", record.Kind), nil)
	}
}

func renderErrorDetail(d types.ErrorDetail) []slack.Block {
	return []slack.Block{
		headerBlock("🔍 에러 상세 정보"),
		sectionBlock(fmt.Sprintf("*스택 트레이스:*\n```%s```", d.StackTrace)),
		sectionBlock(fmt.Sprintf("*관련 로그:*\n```%s```", d.RelatedLogs)),
		sectionBlock(fmt.Sprintf("*이전 발생 이력:*\n%s", d.HistorySummary)),
	}
}

func renderBatchDetail(d types.BatchDetail) []slack.Block {
	text := fmt.Sprintf(
		"*처리 통계:*\n"+
			"• 총 처리 건수: %d\n"+
			"• 성공: %d\n"+
			"• 실패: %d\n\n"+
			"*소요 시간:*\n"+
			"• 추출: %.2f초\n"+
			"• 변환: %.2f초\n"+
			"• 적재: %.2f초",
		d.TotalProcessed, d.SuccessCount, d.FailCount,
		d.ExtractTime, d.TransformTime, d.LoadTime,
	)
	return []slack.Block{
		headerBlock("🔍 배치 작업 상세 정보"),
		sectionBlock(text),
	}
}

func renderRagDetail(d types.RagDetail) []slack.Block {
	failed := strings.Join(d.FailedQueries, "\n")
	if failed == "" {
		failed = "실패한 쿼리가 없습니다."
	}
	suggestions := strings.Join(d.Suggestions, "\n")
	if suggestions == "" {
		suggestions = "현재 성능이 양호합니다."
	}

	text := fmt.Sprintf(
		"*성능 지표:*\n"+
			"• Precision: %.2f\n"+
			"• Recall: %.2f\n"+
			"• F1 Score: %.2f\n"+
			"• MRR: %.2f\n\n"+
			"*실패한 쿼리:*\n%s\n\n"+
			"*개선 제안사항:*\n%s",
		d.Precision, d.Recall, d.F1, d.MRR, failed, suggestions,
	)
	return []slack.Block{
		headerBlock("🔍 RAG 성능 상세 정보"),
		sectionBlock(text),
	}
}
