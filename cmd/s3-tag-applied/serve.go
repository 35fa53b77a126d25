package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/classifier"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/config"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/policy"
	awsprovider "github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/providers/aws"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/telemetry"
)

// runServe wires the classifier to AWS and hands it to the Lambda
// runtime. It only returns on a wiring failure; lambda.Start never
// returns while the function is live.
func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg.LogLevel)

	ctx := context.Background()
	tel, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "s3-tag-applied",
		ServiceVersion: version,
		OTELEndpoint:   cfg.OTELEndpoint,
		Insecure:       cfg.OTELInsecure,
		Disabled:       cfg.TelemetryDisabled,
	})
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("load aws config: %w", err)
	}

	c := classifier.New(
		policy.NewWatchList(cfg.WatchedTagKeys),
		cfg.CompanyName,
		awsprovider.NewBucketVerifier(awsCfg, cfg.CrossAccountRole),
		awsprovider.NewHubSink(awsCfg),
	)

	log.Info().
		Strs("watched_tag_keys", cfg.WatchedTagKeys).
		Str("cross_account_role", cfg.CrossAccountRole).
		Dur("handle_timeout", cfg.HandleTimeout).
		Msg("s3-tag-applied starting")

	lambda.Start(newHandler(c, tel, cfg.HandleTimeout))
	return nil
}

// newHandler wraps the classifier for the Lambda runtime. Each invocation
// gets a bounded context, and telemetry is flushed before returning
// because the runtime freezes the process between invocations.
func newHandler(c *classifier.Classifier, tel *telemetry.Telemetry, timeout time.Duration) func(ctx context.Context, event events.CloudWatchEvent) error {
	return func(ctx context.Context, event events.CloudWatchEvent) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		err := c.Handle(ctx, event)

		flushCtx, flushCancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer flushCancel()
		if flushErr := tel.Flush(flushCtx); flushErr != nil {
			log.Warn().Err(flushErr).Msg("telemetry flush failed")
		}

		return err
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}
