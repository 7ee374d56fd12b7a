// Package main is the entrypoint for the Monitor Lambda function.
//
// The Monitor Lambda is the single ingest point for operational events: SNS
// envelopes carrying CloudWatch alarms, EventBridge detail payloads for
// batch jobs and RAG pipeline measurements, and Slack interactivity
// callbacks forwarded without an API Gateway in front. Each invocation is
// classified, rendered into a Block Kit message, and posted to the
// configured Slack channel; button clicks trigger a detail lookup against
// CloudWatch Logs, AWS Batch, or Kubeflow and a threaded reply.
//
// Cold Start (main):
//  1. Initialize structured logger.
//  2. Load configuration with SSM-backed secret resolution.
//  3. Load AWS SDK configuration and service clients.
//  4. Initialize the Slack client, correlator, and detail fetchers.
//  5. Register the dispatch handler and call lambda.Start.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

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
// slog.Logger satisfies Info, Error, and Warn directly but With returns
// *slog.Logger, not types.Logger, so an adapter is necessary.
type slogAdapter struct {
	logger *slog.Logger
}

func (a *slogAdapter) Info(msg string, args ...any)  { a.logger.Info(msg, args...) }
func (a *slogAdapter) Error(msg string, args ...any) { a.logger.Error(msg, args...) }
func (a *slogAdapter) Warn(msg string, args ...any)  { a.logger.Warn(msg, args...) }
func (a *slogAdapter) With(args ...any) types.Logger {
	return &slogAdapter{logger: a.logger.With(args...)}
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

	logger.Info("Monitor Lambda initializing (cold start)")

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

	// Kubeflow is only reachable when the function runs inside the cluster
	// network with a mounted service account. A nil client degrades RAG
	// detail lookups to the sentinel record instead of failing startup.
	var pipelineGetter details.PipelineRunGetter
	if kfClient, kfErr := details.NewKubeflowClient(cfg.Kubeflow.Namespace); kfErr != nil {
		logger.Warn("Kubeflow client unavailable, RAG details degraded", "error", kfErr)
	} else {
		pipelineGetter = kfClient
	}

	clock := types.RealClock{}
	alarm := notifslack.NewAlarm(slackClient, typedLogger)
	correlator := notifslack.NewCorrelator(slackClient, clock, typedLogger)
	resolver := details.NewResolver(
		details.NewErrorFetcher(logsClient, cfg.AWS.ErrorLogGroup, clock, typedLogger),
		details.NewBatchFetcher(batchClient, typedLogger),
		details.NewRagFetcher(pipelineGetter, typedLogger),
	)
	metrics := core.NewCloudWatchAlertMetrics(cwClient, cfg.AWS.MetricNamespace, typedLogger)

	handler := dispatch.New(
		classify.New(cfg.Service()),
		render.New(cfg.AWS.Region, cfg.Kubeflow.UIBaseURL),
		alarm,
		correlator,
		resolver,
		metrics,
		typedLogger,
		clock,
		dispatch.Channels{
			Alarm: cfg.Slack.AlarmChannel,
			Error: cfg.Slack.ErrorChannel,
		},
	)

	logger.Info("Monitor Lambda initialized",
		"environment", cfg.Environment,
		"service", cfg.Service().Name,
		"alarm_channel", cfg.Slack.AlarmChannel,
		"error_channel", cfg.Slack.ErrorChannel,
		"error_log_group", cfg.AWS.ErrorLogGroup,
		"kubeflow_enabled", pipelineGetter != nil,
	)

	lambda.Start(handler.Handle)
}

// Compile-time assertion that slogAdapter implements types.Logger.
var _ types.Logger = (*slogAdapter)(nil)
