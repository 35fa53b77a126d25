package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	rootCmd = &cobra.Command{
		Use:   "s3-tag-applied",
		Short: "Emit a SOC incident when a watched tag lands on an S3 bucket",
		Long: `s3-tag-applied - SOC Incident When S3 Tag Applied

Watches CloudTrail PutBucketTagging events delivered through EventBridge.
When an applied tag key is on the watch-list it emits exactly one CRITICAL
finding to Security Hub so the SOC can verify the use case with the team.

Run with no arguments it serves as the Lambda handler; the function
runtime execs the binary that way. The classify subcommand replays a
captured event locally.`,
		Version: version,
		RunE:    runServe,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`s3-tag-applied {{.Version}} - SOC Incident When S3 Tag Applied
`)
}
