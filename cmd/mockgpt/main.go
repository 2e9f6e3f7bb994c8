package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"goldword-tools/internal/ai"
	"goldword-tools/internal/api"
	"goldword-tools/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mockgpt",
		Short:         "Serve a canned /v1/chat/completions response for front-end testing",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := config.BindServerFlags(cmd.Flags())

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadServer(flags)
		if err != nil {
			return err
		}
		config.InitLogger(cfg.Log.Level, cfg.Log.Format)
		gin.SetMode(gin.ReleaseMode)

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logrus.WithField("addr", cfg.Addr()).Info("starting mock GPT server")
		if err := api.NewServer(api.Config{}).ListenAndServe(ctx, cfg.Addr()); err != nil {
			return err
		}
		logrus.Info("server stopped")
		return nil
	}

	cmd.AddCommand(newProbeCommand())
	return cmd
}

func newProbeCommand() *cobra.Command {
	var (
		baseURL string
		apiKey  string
		model   string
		prompt  string
		timeout time.Duration
	)
	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Send one chat completion to an endpoint and print the reply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := ai.NewClient(ai.Config{
				BaseURL: baseURL,
				APIKey:  apiKey,
				Model:   model,
				Timeout: timeout,
			})
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			completion, err := client.Complete(ctx, prompt)
			if err != nil {
				return fmt.Errorf("probe %s: %w", baseURL, err)
			}
			logrus.WithFields(logrus.Fields{
				"id":            completion.ID,
				"model":         completion.Model,
				"finish_reason": completion.FinishReason,
			}).Debug("probe completed")
			fmt.Fprintln(cmd.OutOrStdout(), completion.Content)
			return nil
		},
	}
	cmd.Flags().StringVar(&baseURL, "base-url", envOr("MOCK_GPT_BASE_URL", ai.DefaultBaseURL), "Chat completions base URL (env MOCK_GPT_BASE_URL)")
	cmd.Flags().StringVar(&apiKey, "api-key", os.Getenv("OPENAI_API_KEY"), "Bearer token (env OPENAI_API_KEY)")
	cmd.Flags().StringVar(&model, "model", ai.DefaultModel, "Model name sent with the request")
	cmd.Flags().StringVar(&prompt, "prompt", "decision", "User message content")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
