// Package slack posts rendered messages to Slack channels and correlates
// service alerts with their running threads. It wraps the slack-go Web API
// client behind a narrow interface so tests run against fakes.
package slack

import (
	"context"

	slackapi "github.com/slack-go/slack"

	"slackwatch/internal/types"
)

// ChatClient is the subset of the slack-go client used by this package.
// *slackapi.Client satisfies it.
type ChatClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
	GetConversationHistoryContext(ctx context.Context, params *slackapi.GetConversationHistoryParameters) (*slackapi.GetConversationHistoryResponse, error)
}

// Alarm posts alert and detail messages. Outbound post failures are fatal
// for the invocation: the caller surfaces them, it does not retry.
type Alarm struct {
	client ChatClient
	logger types.Logger
}

// NewAlarm creates an Alarm over the given chat client.
func NewAlarm(client ChatClient, logger types.Logger) *Alarm {
	return &Alarm{client: client, logger: logger}
}

// Post sends blocks to a channel and returns the resulting message
// timestamp. A non-empty threadTS posts a reply in that thread; empty posts
// a new top-level message. fallback is the plain-text notification preview.
func (a *Alarm) Post(ctx context.Context, channelID string, blocks []slackapi.Block, fallback, threadTS string) (string, error) {
	opts := []slackapi.MsgOption{
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fallback, false),
	}
	if threadTS != "" {
		opts = append(opts, slackapi.MsgOptionTS(threadTS))
	}

	_, ts, err := a.client.PostMessageContext(ctx, channelID, opts...)
	if err != nil {
		return "", types.NewAppError(types.ErrCodeSlackPost, "failed to post Slack message", err)
	}

	a.logger.Info("posted Slack message",
		"channel", channelID,
		"ts", ts,
		"thread_ts", threadTS,
	)
	return ts, nil
}
