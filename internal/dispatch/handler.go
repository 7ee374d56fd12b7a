// Package dispatch orchestrates a single Lambda invocation: classify the
// inbound event, render it, deliver it to Slack, and answer the caller with
// an HTTP-shaped envelope.
//
// The handler always returns a nil Go error. Failures are reported through
// the envelope's status code so the Lambda runtime never retries an
// invocation; a CloudWatch alarm retrying a Slack outage would only pile
// duplicate alerts into the channel once Slack recovers.
package dispatch

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"slackwatch/internal/classify"
	"slackwatch/internal/details"
	"slackwatch/internal/notifications/core"
	notifslack "slackwatch/internal/notifications/slack"
	"slackwatch/internal/render"
	"slackwatch/internal/types"
)

const (
	msgAlertPosted     = "알림이 전송되었습니다."
	msgDetailPosted    = "상세 정보가 전송되었습니다."
	msgInteractionNoTS = "ignored"
	kindInteraction    = "interaction"
	kindUnclassifiable = "unclassifiable"
)

// Channels holds the two destination channel IDs. Error alerts go to Error;
// batch and RAG alerts go to Alarm.
type Channels struct {
	Alarm string
	Error string
}

// Handler wires the classification, rendering, delivery and enrichment
// stages together. All collaborators are injected so tests can run the full
// dispatch path against fakes.
type Handler struct {
	classifier *classify.Classifier
	renderer   *render.Renderer
	alarm      *notifslack.Alarm
	correlator *notifslack.Correlator
	resolver   *details.Resolver
	metrics    core.AlertMetrics
	logger     types.Logger
	clock      types.Clock
	channels   Channels
}

// New assembles a Handler.
func New(
	classifier *classify.Classifier,
	renderer *render.Renderer,
	alarm *notifslack.Alarm,
	correlator *notifslack.Correlator,
	resolver *details.Resolver,
	metrics core.AlertMetrics,
	logger types.Logger,
	clock types.Clock,
	channels Channels,
) *Handler {
	return &Handler{
		classifier: classifier,
		renderer:   renderer,
		alarm:      alarm,
		correlator: correlator,
		resolver:   resolver,
		metrics:    metrics,
		logger:     logger,
		clock:      clock,
		channels:   channels,
	}
}

// Handle processes one inbound event and returns the response envelope.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (types.Response, error) {
	start := h.clock.Now()
	logger := h.logger.With("invocation_id", uuid.NewString())

	result, err := h.classifier.Classify(raw)
	if err != nil {
		logger.Error("event classification failed", "error", err.Error())
		h.metrics.RecordOutcome(ctx, kindUnclassifiable, core.MetricFailed)
		return types.FailureResponse(err), nil
	}

	var resp types.Response
	switch result.Kind {
	case classify.ResultURLVerification:
		// Events API handshake: echo the challenge, post nothing.
		logger.Info("url verification handshake")
		resp = types.OKResponse(map[string]string{
			"challenge": result.Verification.Challenge,
		})

	case classify.ResultAlert:
		resp = h.handleAlert(ctx, logger, *result.Alert)
		h.metrics.RecordLatency(ctx, string(result.Alert.Kind), h.clock.Now().Sub(start))

	case classify.ResultInteraction:
		resp = h.handleInteraction(ctx, logger, *result.Interaction)
		h.metrics.RecordLatency(ctx, kindInteraction, h.clock.Now().Sub(start))

	default:
		err := types.NewAppError(types.ErrCodeInternalUnexpected,
			"classifier returned an unknown result kind", nil)
		logger.Error("dispatch failed", "error", err.Error())
		resp = types.FailureResponse(err)
	}
	return resp, nil
}

// handleAlert renders and posts an alert. Error alerts thread under the
// day's first message for the same service in the error channel; batch and
// RAG alerts always start a new top-level message in the alarm channel.
func (h *Handler) handleAlert(ctx context.Context, logger types.Logger, alert types.NormalizedAlert) types.Response {
	msg, err := h.renderer.Render(alert, h.clock.Now())
	if err != nil {
		logger.Error("alert rendering failed",
			"kind", string(alert.Kind),
			"error", err.Error(),
		)
		h.metrics.RecordOutcome(ctx, string(alert.Kind), core.MetricFailed)
		return types.FailureResponse(err)
	}

	channelID := h.channels.Alarm
	threadTS := ""
	if alert.Kind == types.AlertError {
		channelID = h.channels.Error
		if ts, ok := h.correlator.Thread(ctx, channelID, msg.Service); ok {
			threadTS = ts
		}
	}

	ts, err := h.alarm.Post(ctx, channelID, msg.Blocks, msg.Fallback, threadTS)
	if err != nil {
		logger.Error("alert delivery failed",
			"kind", string(alert.Kind),
			"channel", channelID,
			"error", err.Error(),
		)
		h.metrics.RecordOutcome(ctx, string(alert.Kind), core.MetricFailed)
		return types.FailureResponse(err)
	}
	if threadTS == "" {
		h.correlator.Record(channelID, msg.Service, ts)
	}

	logger.Info("alert posted",
		"kind", string(alert.Kind),
		"service", msg.Service,
		"channel", channelID,
		"threaded", threadTS != "",
	)
	h.metrics.RecordOutcome(ctx, string(alert.Kind), core.MetricSuccess)
	return types.OKResponse(msgAlertPosted)
}

// handleInteraction resolves and posts the detail record a button click
// requested, as a threaded reply under the clicked message.
func (h *Handler) handleInteraction(ctx context.Context, logger types.Logger, in types.SlackInteraction) types.Response {
	kind, ok := details.KindForAction(in.ActionID)
	if !ok {
		err := types.NewAppError(types.ErrCodeUnknownAction,
			"unknown action id: "+in.ActionID, nil)
		logger.Warn("interaction rejected", "action_id", in.ActionID)
		h.metrics.RecordOutcome(ctx, kindInteraction, core.MetricFailed)
		return types.FailureResponse(err)
	}
	if in.MessageTS == "" {
		// Nothing to thread under; acknowledge and drop rather than post
		// an orphaned detail message into the channel.
		logger.Warn("interaction without message timestamp, ignoring",
			"action_id", in.ActionID,
			"value", in.Value,
		)
		return types.OKResponse(msgInteractionNoTS)
	}

	record := h.resolver.Resolve(ctx, kind, in.Value)

	blocks, err := h.renderer.RenderDetail(record)
	if err != nil {
		logger.Error("detail rendering failed",
			"kind", string(kind),
			"error", err.Error(),
		)
		h.metrics.RecordOutcome(ctx, kindInteraction, core.MetricFailed)
		return types.FailureResponse(err)
	}

	if _, err := h.alarm.Post(ctx, in.ChannelID, blocks, msgDetailPosted, in.MessageTS); err != nil {
		logger.Error("detail delivery failed",
			"kind", string(kind),
			"channel", in.ChannelID,
			"error", err.Error(),
		)
		h.metrics.RecordOutcome(ctx, kindInteraction, core.MetricFailed)
		return types.FailureResponse(err)
	}

	outcome := core.MetricSuccess
	if record.IsSentinel() {
		outcome = core.MetricDegraded
	}
	logger.Info("detail posted",
		"kind", string(kind),
		"channel", in.ChannelID,
		"degraded", outcome == core.MetricDegraded,
	)
	h.metrics.RecordOutcome(ctx, kindInteraction, outcome)
	return types.OKResponse(msgDetailPosted)
}
