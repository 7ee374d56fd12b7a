// Package main is the entrypoint for the Chatbot Lambda function.
//
// The Chatbot Lambda sits behind API Gateway and receives Slack's HTTP
// traffic directly: Events API callbacks (including the url_verification
// handshake) and interactivity payloads from alert message buttons. After
// verifying the request signature it unwraps the proxy request and feeds
// the body through the same dispatch pipeline the Monitor Lambda uses, so
// a button click resolves and posts its detail reply regardless of which
// entrypoint received it.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/batch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	slackapi "github.com/slack-go/slack"

	"slackwatch/internal/classify"
	"slackwatch/internal/config"
	"slackwatch/internal/details"
	"slackwatch/internal/dispatch"
	"slackwatch/internal/notifications/core"
	notifslack "slackwatch/internal/notifications/slack"
	"slackwatch/internal/render"
	"slackwatch/internal/types"
)

// slogAdapter wraps *slog.Logger to implement the types.Logger interface.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
}

// Handler adapts API Gateway proxy requests onto the dispatch pipeline.
type Handler struct {
	dispatcher    *dispatch.Handler
	signingSecret string
	logger        types.Logger
}

// Handle verifies the Slack signature, wraps the proxy body into the shape
// the classifier expects, and translates the dispatch envelope back into an
// API Gateway response.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if h.signingSecret != "" {
		if err := h.verifySignature(req); err != nil {
			h.logger.Warn("request signature verification failed", "error", err.Error())
			return proxyResponse(http.StatusUnauthorized, `{"error":"invalid_signature"}`), nil
		}
	}

	raw, err := json.Marshal(map[string]string{"body": req.Body})
	if err != nil {
		h.logger.Error("failed to wrap request body", "error", err.Error())
		return proxyResponse(http.StatusInternalServerError, `{"error":"internal"}`), nil
	}

	resp, _ := h.dispatcher.Handle(ctx, raw)
	return proxyResponse(resp.StatusCode, resp.Body), nil
}

// verifySignature checks the X-Slack-Signature header against the signing
// secret using Slack's v0 HMAC scheme.
func (h *Handler) verifySignature(req events.APIGatewayProxyRequest) error {
	header := http.Header{}
	for k, v := range req.Headers {
		header.Set(k, v)
	}
	verifier, err := slackapi.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := verifier.Write([]byte(req.Body)); err != nil {
		return err
	}
	return verifier.Ensure()
}

func proxyResponse(status int, body string) events.APIGatewayProxyResponse {
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       body,
	}
}

// secretProvider picks where *_SSM_PARAM pointers resolve from. Local runs
// read tokens straight from the environment or a .env file; everywhere else
// resolves against SSM Parameter Store.
func secretProvider() config.SecretProvider {
	if os.Getenv("APP_ENV") == "local" {
		return config.NewEnvVarProvider()
	}
	return config.NewSSMProvider(os.Getenv("AWS_REGION"))
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	logger.Info("Chatbot Lambda initializing (cold start)")

	typedLogger := &slogAdapter{logger: logger}

	cfg, err := config.LoadConfig(secretProvider())
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Error("Failed to load AWS SDK config", "error", err)
		os.Exit(1)
	}

	logsClient := cloudwatchlogs.NewFromConfig(awsCfg)
	batchClient := batch.NewFromConfig(awsCfg)
	cwClient := cloudwatch.NewFromConfig(awsCfg)

	slackClient := slackapi.New(cfg.Slack.BotToken.Unmask(),
		slackapi.OptionHTTPClient(&http.Client{Timeout: cfg.Slack.APITimeout}))

	var pipelineGetter details.PipelineRunGetter
	if kfClient, kfErr := details.NewKubeflowClient(cfg.Kubeflow.Namespace); kfErr != nil {
		logger.Warn("Kubeflow client unavailable, RAG details degraded", "error", kfErr)
	} else {
		pipelineGetter = kfClient
	}

	clock := types.RealClock{}
	dispatcher := dispatch.New(
		classify.New(cfg.Service()),
		render.New(cfg.AWS.Region, cfg.Kubeflow.UIBaseURL),
		notifslack.NewAlarm(slackClient, typedLogger),
		notifslack.NewCorrelator(slackClient, clock, typedLogger),
		details.NewResolver(
			details.NewErrorFetcher(logsClient, cfg.AWS.ErrorLogGroup, clock, typedLogger),
			details.NewBatchFetcher(batchClient, typedLogger),
			details.NewRagFetcher(pipelineGetter, typedLogger),
		),
		core.NewCloudWatchAlertMetrics(cwClient, cfg.AWS.MetricNamespace, typedLogger),
		typedLogger,
		clock,
		dispatch.Channels{
			Alarm: cfg.Slack.AlarmChannel,
			Error: cfg.Slack.ErrorChannel,
		},
	)

	handler := &Handler{
		dispatcher:    dispatcher,
		signingSecret: cfg.Slack.SigningSecret.Unmask(),
		logger:        typedLogger,
	}

	logger.Info("Chatbot Lambda initialized",
		"environment", cfg.Environment,
		"signature_verification", handler.signingSecret != "",
	)

	lambda.Start(handler.Handle)
}

// Compile-time assertion that slogAdapter implements types.Logger.
var _ types.Logger = (*slogAdapter)(nil)
