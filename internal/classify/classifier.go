// Package classify maps raw inbound Lambda events onto the known event
// shapes: Slack URL verification, Slack block-action interactions, and the
// three alert kinds (error, batch status, RAG performance).
//
// Payloads are loosely typed and can be ambiguous, so the decision order is
// itself part of the behavioral contract:
//
//	1. HTTP body  -> url_verification, then block_actions
//	2. SNS envelope with AlarmDescription -> error alert
//	2b. detail.errorMessage -> error alert (direct Lambda error events)
//	3. detail.jobName/status/jobId -> batch alert
//	4. detail.metrics/threshold/pipelineRunId -> RAG alert
//	5. otherwise -> classification error
//
// Parse failures inside the body branch are swallowed and classification
// falls through to the next candidate shape; a malformed body must not
// abort processing of an event that also matches a later shape.
package classify

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"slackwatch/internal/types"
)

// ResultKind discriminates classification outcomes.
type ResultKind string

const (
	ResultAlert           ResultKind = "alert"
	ResultInteraction     ResultKind = "interaction"
	ResultURLVerification ResultKind = "url_verification"
)

// Result is the classifier output. Exactly one of the payload pointers is
// non-nil, matching Kind.
type Result struct {
	Kind         ResultKind
	Alert        *types.NormalizedAlert
	Interaction  *types.SlackInteraction
	Verification *types.URLVerification
}

// Classifier normalizes raw events for a configured service environment.
// The service name becomes the thread-correlation token on every alert.
type Classifier struct {
	Service types.ServiceType
}

// New creates a Classifier for the given service environment.
func New(service types.ServiceType) *Classifier {
	return &Classifier{Service: service}
}

// rawEvent is the union of every inbound envelope we inspect. Fields stay
// raw until a branch commits to a shape.
type rawEvent struct {
	Body    json.RawMessage `json:"body"`
	Records []struct {
		Sns struct {
			TopicArn string `json:"TopicArn"`
			Message  string `json:"Message"`
		} `json:"Sns"`
	} `json:"Records"`
	Detail *rawDetail `json:"detail"`
}

type rawDetail struct {
	ErrorMessage  string                     `json:"errorMessage"`
	JobName       string                     `json:"jobName"`
	Status        string                     `json:"status"`
	JobID         string                     `json:"jobId"`
	Metrics       map[string]json.RawMessage `json:"metrics"`
	Threshold     json.RawMessage            `json:"threshold"`
	PipelineRunID string                     `json:"pipelineRunId"`
}

// alarmMessage is the CloudWatch alarm payload inside an SNS envelope.
type alarmMessage struct {
	AlarmDescription string `json:"AlarmDescription"`
	Trigger          struct {
		Dimensions []struct {
			Value string `json:"value"`
		} `json:"Dimensions"`
	} `json:"Trigger"`
}

// interactionPayload is the subset of a Slack block_actions payload we
// extract. MessageTS preference order: the message's thread root, the
// message itself, then the container reference.
type interactionPayload struct {
	Type    string `json:"type"`
	Actions []struct {
		ActionID string `json:"action_id"`
		Value    string `json:"value"`
	} `json:"actions"`
	Channel struct {
		ID string `json:"id"`
	} `json:"channel"`
	Message struct {
		TS       string `json:"ts"`
		ThreadTS string `json:"thread_ts"`
	} `json:"message"`
	Container struct {
		MessageTS string `json:"message_ts"`
	} `json:"container"`
}

// Classify inspects a raw inbound payload and returns the normalized result
// for the first matching shape. Events matching no shape, or matching a
// shape with a required field missing, yield a types.AppError with a
// classification code.
func (c *Classifier) Classify(raw []byte) (*Result, error) {
	var event rawEvent
	if err := json.Unmarshal(raw, &event); err != nil {
		return nil, types.NewAppError(types.ErrCodeClassifyUnsupported,
			"event is not a JSON object", err)
	}

	// Branch 1: HTTP body (Slack Events API / interactive components).
	if len(event.Body) > 0 && string(event.Body) != "null" {
		if result, err := c.classifyBody(event.Body); result != nil || err != nil {
			return result, err
		}
		// Parse failures fall through to the remaining shapes.
	}

	// Branch 2: SNS envelope wrapping a CloudWatch alarm.
	if len(event.Records) > 0 && event.Records[0].Sns.Message != "" {
		if result, err := c.classifySNS(event.Records[0].Sns.Message); result != nil || err != nil {
			return result, err
		}
	}

	if event.Detail != nil {
		// Branch 2b: direct Lambda error events.
		if event.Detail.ErrorMessage != "" {
			return c.errorAlert(event.Detail.ErrorMessage, ""), nil
		}

		// Branch 3: AWS Batch job-state change.
		if event.Detail.JobName != "" && event.Detail.Status != "" && event.Detail.JobID != "" {
			return &Result{
				Kind: ResultAlert,
				Alert: &types.NormalizedAlert{
					Kind: types.AlertBatchStatus,
					Batch: &types.BatchStatusAlert{
						Service: c.Service.Name,
						JobName: event.Detail.JobName,
						Status:  event.Detail.Status,
						JobID:   event.Detail.JobID,
					},
				},
			}, nil
		}

		// Branch 4: RAG pipeline metrics.
		if event.Detail.Metrics != nil && len(event.Detail.Threshold) > 0 && event.Detail.PipelineRunID != "" {
			return c.classifyRag(event.Detail)
		}
	}

	return nil, types.NewAppError(types.ErrCodeClassifyUnsupported,
		"unsupported event shape", nil)
}

// classifyBody handles the HTTP body branch. A nil, nil return means the
// body matched nothing parseable and classification should fall through.
func (c *Classifier) classifyBody(body json.RawMessage) (*Result, error) {
	// API Gateway delivers the body as a JSON string; direct invocations
	// may inline it as an object.
	bodyStr := string(body)
	var unquoted string
	if err := json.Unmarshal(body, &unquoted); err == nil {
		bodyStr = unquoted
	}

	var parsed map[string]json.RawMessage
	if err := json.Unmarshal([]byte(bodyStr), &parsed); err == nil {
		if typ := rawString(parsed["type"]); typ == "url_verification" {
			challenge := rawString(parsed["challenge"])
			if challenge == "" {
				return nil, types.NewAppError(types.ErrCodeClassifyMissingField,
					"url_verification event missing challenge", nil)
			}
			return &Result{
				Kind:         ResultURLVerification,
				Verification: &types.URLVerification{Challenge: challenge},
			}, nil
		}

		// A raw (non form-encoded) interaction payload.
		if typ := rawString(parsed["type"]); typ == "block_actions" {
			return c.classifyInteraction([]byte(bodyStr))
		}
	}

	// Interactive components arrive as form data: payload=<url-encoded JSON>.
	if idx := strings.Index(bodyStr, "payload="); idx >= 0 {
		encoded := bodyStr[idx+len("payload="):]
		if amp := strings.IndexByte(encoded, '&'); amp >= 0 {
			encoded = encoded[:amp]
		}
		decoded, err := url.QueryUnescape(encoded)
		if err != nil {
			return nil, nil // malformed form data, fall through
		}
		var probe struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal([]byte(decoded), &probe); err != nil || probe.Type != "block_actions" {
			return nil, nil
		}
		return c.classifyInteraction([]byte(decoded))
	}

	return nil, nil
}

func (c *Classifier) classifyInteraction(payload []byte) (*Result, error) {
	var p interactionPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, nil // swallowed, fall through
	}

	if len(p.Actions) == 0 {
		return nil, types.NewAppError(types.ErrCodeClassifyMissingField,
			"block_actions payload has no actions", nil)
	}
	if p.Actions[0].ActionID == "" {
		return nil, types.NewAppError(types.ErrCodeClassifyMissingField,
			"block_actions payload missing action_id", nil)
	}

	ts := p.Message.ThreadTS
	if ts == "" {
		ts = p.Message.TS
	}
	if ts == "" {
		ts = p.Container.MessageTS
	}

	return &Result{
		Kind: ResultInteraction,
		Interaction: &types.SlackInteraction{
			ActionID:  p.Actions[0].ActionID,
			Value:     p.Actions[0].Value,
			ChannelID: p.Channel.ID,
			MessageTS: ts,
		},
	}, nil
}

// classifySNS parses the alarm JSON inside an SNS envelope. Descriptions of
// the form "ERROR <id> <message>" are split apart; anything else is used
// whole with the id pulled from the alarm trigger's first dimension.
func (c *Classifier) classifySNS(message string) (*Result, error) {
	var alarm alarmMessage
	if err := json.Unmarshal([]byte(message), &alarm); err != nil {
		return nil, nil // malformed alarm payload, fall through
	}
	if alarm.AlarmDescription == "" {
		return nil, nil
	}

	parts := strings.SplitN(alarm.AlarmDescription, " ", 3)
	if len(parts) == 3 && parts[0] == "ERROR" {
		return c.errorAlert(parts[2], parts[1]), nil
	}

	id := ""
	if len(alarm.Trigger.Dimensions) > 0 {
		id = alarm.Trigger.Dimensions[0].Value
	}
	return c.errorAlert(alarm.AlarmDescription, id), nil
}

func (c *Classifier) classifyRag(detail *rawDetail) (*Result, error) {
	accuracyRaw, ok := detail.Metrics["accuracy"]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeClassifyMissingField,
			"rag event missing metrics.accuracy", nil)
	}
	accuracy, err := parseNumeric(accuracyRaw)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeClassifyBadNumber,
			fmt.Sprintf("metrics.accuracy is not numeric: %v", err), err)
	}
	threshold, err := parseNumeric(detail.Threshold)
	if err != nil {
		return nil, types.NewAppError(types.ErrCodeClassifyBadNumber,
			fmt.Sprintf("threshold is not numeric: %v", err), err)
	}

	return &Result{
		Kind: ResultAlert,
		Alert: &types.NormalizedAlert{
			Kind: types.AlertRagPerformance,
			Rag: &types.RagPerformanceAlert{
				Service:    c.Service.Name,
				Accuracy:   accuracy,
				Threshold:  threshold,
				PipelineID: detail.PipelineRunID,
			},
		},
	}, nil
}

func (c *Classifier) errorAlert(message, id string) *Result {
	return &Result{
		Kind: ResultAlert,
		Alert: &types.NormalizedAlert{
			Kind: types.AlertError,
			Error: &types.ErrorAlert{
				Service:  c.Service.Name,
				Message:  types.NonEmpty(message),
				ID:       types.NonEmpty(id),
				LogGroup: c.Service.LogGroup,
			},
		},
	}
}

// rawString unmarshals a raw JSON value as a string, returning "" for
// anything that is not a JSON string.
func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// parseNumeric accepts a JSON number or a numeric string ("0.75") and
// returns its float64 value.
func parseNumeric(raw json.RawMessage) (float64, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, fmt.Errorf("value %s is neither number nor string", string(raw))
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
