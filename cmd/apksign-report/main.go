package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"goldword-tools/internal/config"
	"goldword-tools/internal/signing"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr, signing.ExecRunner{})
	stop()
	os.Exit(code)
}

type reportOptions struct {
	apk       string
	aab       string
	apksigner string
	jarsigner string
	outJSON   string
	outHTML   string
	logLevel  string

	started bool
}

// run executes the report command and maps its outcome to an exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, runner signing.Runner) int {
	opts := &reportOptions{}
	cmd := newReportCommand(opts, runner)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	var gateErr *signing.GateError
	switch {
	case errors.As(err, &gateErr):
		fmt.Fprintln(stderr, gateErr.Reason)
		fmt.Fprintln(stderr, gateErr.Output)
		return exitFailure
	case !opts.started:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		fmt.Fprintln(stderr, cmd.UsageString())
		return exitUsage
	default:
		logrus.WithError(err).Error("signature report failed")
		return exitFailure
	}
}

func newReportCommand(opts *reportOptions, runner signing.Runner) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "apksign-report",
		Short:         "Verify APK/AAB signatures and write JSON and HTML reports",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.started = true
			config.InitLoggerTo(cmd.ErrOrStderr(), opts.logLevel, "text")

			generator := signing.NewGenerator(runner, signing.Options{
				APKPath:   opts.apk,
				AABPath:   opts.aab,
				APKSigner: opts.apksigner,
				Jarsigner: opts.jarsigner,
			})
			report, err := generator.Generate(cmd.Context())
			if err != nil {
				return err
			}
			if err := signing.WriteFiles(report, opts.outJSON, opts.outHTML); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Report written")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.apk, "apk", "", "APK to verify")
	flags.StringVar(&opts.aab, "aab", "", "Optional AAB to verify with jarsigner")
	flags.StringVar(&opts.apksigner, "apksigner", "", "Path to the apksigner binary")
	flags.StringVar(&opts.jarsigner, "jarsigner", envOr("JARSIGNER", signing.DefaultJarsigner), "jarsigner binary (env JARSIGNER)")
	flags.StringVar(&opts.outJSON, "out-json", "", "JSON report path")
	flags.StringVar(&opts.outHTML, "out-html", "", "HTML report path")
	flags.StringVar(&opts.logLevel, "log-level", envOr("LOG_LEVEL", "warn"), "Log level: debug, info, warn, error (env LOG_LEVEL)")
	for _, name := range []string{"apk", "apksigner", "out-json", "out-html"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
