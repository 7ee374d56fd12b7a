// Package config defines the slackwatch configuration: Slack credentials and
// channels, AWS resource identifiers, and Kubeflow access settings.
//
// Configuration is loaded once at Lambda cold start and is immutable
// thereafter. Values are resolved via a priority chain:
//
//	OS Environment (Highest) -> Dotenv File -> AWS SSM Parameter Store (Lowest)
//
// Secrets (Slack bot token, signing secret) are referenced indirectly through
// *_SSM_PARAM environment variables and resolved through the SecretProvider
// interface, so handlers receive an explicit, validated credentials object
// instead of mutating the process environment at call time. Tests inject an
// EnvVarProvider with fake values.
package config

import (
	"time"

	"slackwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used for credential fields to prevent accidental logging.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Populated once during cold
// start; sub-components receive only the subsets they need.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"dev" validate:"required,oneof=local test dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`

	Slack    SlackConfig
	AWS      AWSConfig
	Kubeflow KubeflowConfig
}

// SlackConfig holds Slack credentials and the channels alerts are routed to.
// Error alerts post to ErrorChannel; batch and RAG alerts post to
// AlarmChannel. Channel values are Slack channel IDs, not names.
type SlackConfig struct {
	BotToken      SecretString `envconfig:"SLACK_BOT_TOKEN" validate:"required"`
	SigningSecret SecretString `envconfig:"SLACK_SIGNING_SECRET"`
	AlarmChannel  string       `envconfig:"SLACK_ALARM_CHANNEL" default:"C084FGGMNS0"`
	ErrorChannel  string       `envconfig:"SLACK_ERROR_CHANNEL" default:"C084D1G6SJE"`

	// APITimeout bounds each Slack Web API call.
	APITimeout time.Duration `envconfig:"SLACK_API_TIMEOUT" default:"10s"`
}

// AWSConfig holds AWS regional configuration and resource identifiers used
// by the detail resolvers and metrics emitter.
type AWSConfig struct {
	Region string `envconfig:"AWS_REGION" default:"ap-northeast-2"`

	// ErrorLogGroup is the group queried for error details when the alert
	// does not carry its own log group.
	ErrorLogGroup string `envconfig:"ERROR_LOG_GROUP" default:"/aws/DEV/errors"`

	// MetricNamespace is the CloudWatch namespace alert-outcome metrics are
	// published under.
	MetricNamespace string `envconfig:"METRIC_NAMESPACE" default:"SlackWatch"`
}

// KubeflowConfig holds settings for reading pipeline-run custom resources
// and building console links.
type KubeflowConfig struct {
	Namespace string `envconfig:"KUBEFLOW_NAMESPACE" default:"kubeflow"`
	UIBaseURL string `envconfig:"KUBEFLOW_UI_BASE_URL" default:"https://kubeflow.your-domain.com" validate:"omitempty,url"`
}

// Service returns the ServiceType matching the configured environment.
func (c *Config) Service() types.ServiceType {
	switch c.Environment {
	case "test":
		return types.ServiceTest
	case "prod":
		return types.ServiceProd
	default:
		return types.ServiceDev
	}
}
