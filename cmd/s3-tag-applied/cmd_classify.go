package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-lambda-go/events"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/classifier"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/config"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/policy"
	awsprovider "github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/providers/aws"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/telemetry"
	"github.com/OpenSecOps-Org/SOAR-soc-incident-when-s3-tag-applied/types"
)

var (
	classifyEventPath string
	classifyVerify    bool
	classifySubmit    bool
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Replay a captured tagging event through the classifier",
	Long: `Replay a captured EventBridge event through the classifier without
waiting for a live delivery.

The watch-list, company name and role come from the environment exactly
as deployed. By default nothing is mutated: no role is assumed and the
finding is printed to stdout instead of being submitted.`,
	Example: `  s3-tag-applied classify --event event.json            # Print the finding
  s3-tag-applied classify --event event.json --verify   # Also read the bucket
  s3-tag-applied classify --event event.json --verify --submit`,
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringVarP(&classifyEventPath, "event", "e", "", "Path to a captured EventBridge event (JSON)")
	classifyCmd.Flags().BoolVar(&classifyVerify, "verify", false, "Assume the cross-account role and read the bucket's live state")
	classifyCmd.Flags().BoolVar(&classifySubmit, "submit", false, "Submit the finding to Security Hub instead of printing it")
	_ = classifyCmd.MarkFlagRequired("event")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	setupLogging(cfg.LogLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	ctx := cmd.Context()

	// A replay never exports telemetry, but the instruments still have
	// to exist for the classifier to record into.
	if _, err := telemetry.InitOTEL(ctx, telemetry.Config{Disabled: true}); err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}

	event, err := readEvent(classifyEventPath)
	if err != nil {
		return err
	}

	var verifier classifier.Verifier
	var sink classifier.Sink = &printSink{out: cmd.OutOrStdout()}

	if classifyVerify || classifySubmit {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("load aws config: %w", err)
		}
		if classifyVerify {
			verifier = awsprovider.NewBucketVerifier(awsCfg, cfg.CrossAccountRole)
		}
		if classifySubmit {
			sink = awsprovider.NewHubSink(awsCfg)
		}
	}

	c := classifier.New(policy.NewWatchList(cfg.WatchedTagKeys), cfg.CompanyName, verifier, sink)
	return c.Handle(ctx, event)
}

// readEvent loads a captured EventBridge event envelope from disk.
func readEvent(path string) (events.CloudWatchEvent, error) {
	var event events.CloudWatchEvent

	data, err := os.ReadFile(path)
	if err != nil {
		return event, fmt.Errorf("read event file: %w", err)
	}
	if err := json.Unmarshal(data, &event); err != nil {
		return event, fmt.Errorf("parse event file %s: %w", path, err)
	}
	return event, nil
}

// printSink writes findings to the replay's stdout so nothing reaches
// Security Hub unless --submit is given.
type printSink struct {
	out io.Writer
}

var _ classifier.Sink = (*printSink)(nil)

func (p *printSink) Submit(_ context.Context, finding types.Finding) error {
	enc := json.NewEncoder(p.out)
	enc.SetIndent("", "  ")
	return enc.Encode(finding)
}
