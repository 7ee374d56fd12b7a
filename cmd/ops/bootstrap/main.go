// Package main implements the bootstrap CLI for the slackwatch Lambdas.
//
// The tool guides an operator through seeding AWS SSM Parameter Store with
// the Slack credentials the Lambdas resolve at cold start: the bot token
// and the request signing secret. Values are written as SecureString
// parameters under the environment-scoped path the config loader reads.
//
// Usage:
//
//	go run ./cmd/ops/bootstrap --env=dev
//	go run ./cmd/ops/bootstrap --env=prod --region=ap-northeast-2 --overwrite
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var validEnvironments = map[string]bool{
	"dev":  true,
	"prod": true,
}

// secretSpec describes one parameter the tool collects and writes.
type secretSpec struct {
	Key    string
	Prompt string
}

// secretInventory lists the parameters required before the first deploy,
// in the order they are collected.
var secretInventory = []secretSpec{
	{Key: "SLACK_BOT_TOKEN", Prompt: "Slack bot token (xoxb-...)"},
	{Key: "SLACK_SIGNING_SECRET", Prompt: "Slack app signing secret"},
}

func main() {
	envFlag := flag.String("env", "", "Target environment (dev/prod) [required]")
	regionFlag := flag.String("region", "ap-northeast-2", "AWS region")
	overwriteFlag := flag.Bool("overwrite", false, "Replace parameters that already exist")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "slackwatch Bootstrap Tool\n\n")
		fmt.Fprintf(os.Stderr, "Seeds the SSM parameters required before the first deployment.\n\n")
		fmt.Fprintf(os.Stderr, "Usage:\n")
		fmt.Fprintf(os.Stderr, "  bootstrap --env=dev [--region=REGION] [--overwrite]\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *envFlag == "" {
		fmt.Fprintf(os.Stderr, "error: --env is required\n\n")
		flag.Usage()
		os.Exit(1)
	}
	if !validEnvironments[*envFlag] {
		fmt.Fprintf(os.Stderr, "error: invalid environment %q (must be dev or prod)\n", *envFlag)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(*regionFlag))
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	mgr := NewSSMManagerWithClient(ssm.NewFromConfig(awsCfg), *envFlag, logger)

	if *envFlag == "prod" && !confirmProd(os.Stdin, os.Stderr) {
		logger.Info("aborted by operator")
		os.Exit(1)
	}

	if err := runBootstrap(ctx, mgr, os.Stdin, os.Stderr, *overwriteFlag); err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}

	logger.Info("bootstrap complete", "environment", *envFlag, "region", *regionFlag)
}

// confirmProd requires the operator to type "yes" before touching the prod
// parameter tree.
func confirmProd(in *os.File, out *os.File) bool {
	fmt.Fprintf(out, "You are about to write parameters for PROD. Type \"yes\" to continue: ")
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	return strings.TrimSpace(scanner.Text()) == "yes"
}

// runBootstrap walks the secret inventory: probe SSM for an existing value,
// prompt for missing (or overwritten) ones, and write them as SecureString.
func runBootstrap(ctx context.Context, mgr *SSMManager, in *os.File, out *os.File, overwrite bool) error {
	scanner := bufio.NewScanner(in)

	for _, spec := range secretInventory {
		path := mgr.SSMPath(spec.Key)

		exists, err := mgr.ParameterExists(ctx, path)
		if err != nil {
			return err
		}
		if exists && !overwrite {
			fmt.Fprintf(out, "%s already set, skipping (use --overwrite to replace)\n", path)
			continue
		}

		fmt.Fprintf(out, "%s: ", spec.Prompt)
		if !scanner.Scan() {
			return fmt.Errorf("input closed while reading %s", spec.Key)
		}
		value := strings.TrimSpace(scanner.Text())
		if value == "" {
			return fmt.Errorf("empty value for %s", spec.Key)
		}

		if err := mgr.PutSecret(ctx, path, value, overwrite); err != nil {
			return err
		}
	}
	return scanner.Err()
}
