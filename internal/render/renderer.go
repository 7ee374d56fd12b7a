// Package render turns normalized alerts and detail records into Slack
// Block Kit messages. Each alert kind has exactly one fixed template;
// rendering is pure substitution with no conditional block omission beyond
// the documented emoji lookups, so rendering the same input twice produces
// deeply-equal block structures. The message timestamp is an explicit
// argument rather than read from the wall clock.
package render

import (
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"slackwatch/internal/types"
)

// timeLayout is the 발생시간 field format.
const timeLayout = "2006-01-02 15:04:05"

// RenderedMessage is an ordered block sequence ready to post, plus the
// metadata the dispatcher needs for routing and thread correlation.
type RenderedMessage struct {
	Kind     types.AlertKind
	Service  string
	Fallback string
	Blocks   []slack.Block
}

// Renderer builds messages for a fixed AWS region and Kubeflow UI base.
// Console URLs are informational, constructed from fixed templates
// parameterized only by the resource id, and never validated for
// reachability.
type Renderer struct {
	Region          string
	KubeflowBaseURL string
}

// New creates a Renderer.
func New(region, kubeflowBaseURL string) *Renderer {
	return &Renderer{Region: region, KubeflowBaseURL: kubeflowBaseURL}
}

// Render produces the message for an alert. now supplies the 발생시간 field
// for error alerts; callers pass the invocation time, tests pass a fixed
// instant.
func (r *Renderer) Render(alert types.NormalizedAlert, now time.Time) (RenderedMessage, error) {
	switch alert.Kind {
	case types.AlertError:
		if alert.Error == nil {
			return RenderedMessage{}, types.NewAppError(types.ErrCodeInternalRender, "error alert variant is nil", nil)
		}
		return r.renderError(*alert.Error, now), nil
	case types.AlertBatchStatus:
		if alert.Batch == nil {
			return RenderedMessage{}, types.NewAppError(types.ErrCodeInternalRender, "batch alert variant is nil", nil)
		}
		return r.renderBatch(*alert.Batch), nil
	case types.AlertRagPerformance:
		if alert.Rag == nil {
			return RenderedMessage{}, types.NewAppError(types.ErrCodeInternalRender, "rag alert variant is nil", nil)
		}
		return r.renderRag(*alert.Rag), nil
	default:
		return RenderedMessage{}, types.NewAppError(types.ErrCodeInternalRender,
			fmt.Sprintf("unknown alert kind %q", alert.Kind), nil)
	}
}

func (r *Renderer) renderError(alert types.ErrorAlert, now time.Time) RenderedMessage {
	service := types.ServiceByName(alert.Service)

	blocks := []slack.Block{
		headerBlock("🚨 에러 발생 알림"),
		fieldsBlock(
			fmt.Sprintf("*서비스:*\n%s", service.Description),
			fmt.Sprintf("*발생시간:*\n%s", now.Format(timeLayout)),
		),
		sectionBlock(fmt.Sprintf("*에러 내용:*\n```%s```", alert.Message)),
		slack.NewActionBlock("",
			button(types.ActionViewErrorDetail, alert.ID, "상세 로그 보기"),
			linkButton("view_cloudwatch", "CloudWatch", r.CloudWatchErrorURL(service.Name, alert.ID)),
		),
	}

	return RenderedMessage{
		Kind:     types.AlertError,
		Service:  service.Name,
		Fallback: fmt.Sprintf("[%s] 에러 발생: %s", service.Name, alert.Message),
		Blocks:   blocks,
	}
}

func (r *Renderer) renderBatch(alert types.BatchStatusAlert) RenderedMessage {
	service := types.ServiceByName(alert.Service)
	emoji := batchStatusEmoji(alert.Status)

	blocks := []slack.Block{
		headerBlock(fmt.Sprintf("%s 배치 작업 상태 알림", emoji)),
		fieldsBlock(
			fmt.Sprintf("*작업명:*\n%s", alert.JobName),
			fmt.Sprintf("*상태:*\n%s", alert.Status),
		),
		fieldsBlock(
			fmt.Sprintf("*서비스:*\n%s", service.Description),
			fmt.Sprintf("*작업 ID:*\n%s", alert.JobID),
		),
		slack.NewActionBlock("",
			button(types.ActionViewBatchDetail, alert.JobID, "처리 통계 보기"),
			linkButton("view_batch_console", "AWS Batch", r.BatchConsoleURL(alert.JobID)),
		),
	}

	return RenderedMessage{
		Kind:     types.AlertBatchStatus,
		Service:  service.Name,
		Fallback: fmt.Sprintf("[%s] 배치 작업 %s: %s", service.Name, alert.JobName, alert.Status),
		Blocks:   blocks,
	}
}

func (r *Renderer) renderRag(alert types.RagPerformanceAlert) RenderedMessage {
	service := types.ServiceByName(alert.Service)
	emoji := "✅"
	if alert.Accuracy < alert.Threshold {
		emoji = "⚠️"
	}

	blocks := []slack.Block{
		headerBlock(fmt.Sprintf("%s RAG 성능 측정 결과", emoji)),
		fieldsBlock(
			fmt.Sprintf("*정확도:*\n%s", percent(alert.Accuracy)),
			fmt.Sprintf("*임계값:*\n%s", percent(alert.Threshold)),
		),
		fieldsBlock(
			fmt.Sprintf("*서비스:*\n%s", service.Description),
			fmt.Sprintf("*파이프라인 ID:*\n%s", alert.PipelineID),
		),
		slack.NewActionBlock("",
			button(types.ActionViewRagDetail, alert.PipelineID, "상세 성능 보기"),
			linkButton("view_kubeflow", "Kubeflow", r.KubeflowRunURL(alert.PipelineID)),
		),
	}

	return RenderedMessage{
		Kind:     types.AlertRagPerformance,
		Service:  service.Name,
		Fallback: fmt.Sprintf("[%s] RAG 정확도 %s (임계값 %s)", service.Name, percent(alert.Accuracy), percent(alert.Threshold)),
		Blocks:   blocks,
	}
}

// batchStatusEmoji is the three-way status lookup for batch headers.
func batchStatusEmoji(status string) string {
	switch status {
	case "SUCCEEDED":
		return "✅"
	case "FAILED":
		return "❌"
	default:
		return "🔄"
	}
}

// CloudWatchErrorURL builds the console link to the service's error log
// group, pre-filtered on the error id.
func (r *Renderer) CloudWatchErrorURL(serviceName, errorID string) string {
	logGroupPath := fmt.Sprintf("/aws/%s/errors", serviceName)
	return fmt.Sprintf(
		"https://%s.console.aws.amazon.com/cloudwatch/home?region=%s#logsV2:log-groups/log-group/%s$3Ffilter$3DERROR%s",
		r.Region, r.Region, logGroupPath, errorID,
	)
}

// BatchConsoleURL builds the AWS Batch console link for a job.
func (r *Renderer) BatchConsoleURL(jobID string) string {
	return fmt.Sprintf(
		"https://%s.console.aws.amazon.com/batch/home?region=%s#jobs/detail/%s",
		r.Region, r.Region, jobID,
	)
}

// KubeflowRunURL builds the Kubeflow UI link for a pipeline run.
func (r *Renderer) KubeflowRunURL(pipelineID string) string {
	return fmt.Sprintf("%s/pipeline/#/runs/details/%s", r.KubeflowBaseURL, pipelineID)
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func headerBlock(text string) *slack.HeaderBlock {
	return slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, text, true, false))
}

func sectionBlock(text string) *slack.SectionBlock {
	return slack.NewSectionBlock(slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)
}

func fieldsBlock(fields ...string) *slack.SectionBlock {
	objs := make([]*slack.TextBlockObject, 0, len(fields))
	for _, f := range fields {
		objs = append(objs, slack.NewTextBlockObject(slack.MarkdownType, f, false, false))
	}
	return slack.NewSectionBlock(nil, objs, nil)
}

func button(actionID, value, label string) *slack.ButtonBlockElement {
	return slack.NewButtonBlockElement(actionID, value,
		slack.NewTextBlockObject(slack.PlainTextType, label, false, false))
}

func linkButton(actionID, label, url string) *slack.ButtonBlockElement {
	btn := slack.NewButtonBlockElement(actionID, "",
		slack.NewTextBlockObject(slack.PlainTextType, label, false, false))
	btn.URL = url
	return btn
}
