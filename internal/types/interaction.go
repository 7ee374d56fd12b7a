package types

// Slack action identifiers attached to alert message buttons. The value of
// each button carries the correlation key (error id, job id, pipeline id)
// that the detail resolver consumes unchanged.
const (
	ActionViewErrorDetail = "view_error_detail"
	ActionViewBatchDetail = "view_batch_detail"
	ActionViewRagDetail   = "view_rag_detail"
)

// SlackInteraction is a normalized block_actions payload: the first action's
// identifier and opaque value, plus the channel and message timestamp the
// interaction originated from. MessageTS is sourced from the payload's
// message/container reference so detail replies thread under the message the
// user clicked, it is never recomputed.
type SlackInteraction struct {
	ActionID  string `json:"action_id"`
	Value     string `json:"value"`
	ChannelID string `json:"channel_id"`
	MessageTS string `json:"message_ts"`
}

// URLVerification is Slack's Events API handshake. The handler echoes the
// challenge back verbatim without posting anything.
type URLVerification struct {
	Challenge string `json:"challenge"`
}
