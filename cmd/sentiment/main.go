package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spacesedan/sentilens/config"
	"github.com/spacesedan/sentilens/internal/backends"
	"github.com/spacesedan/sentilens/internal/logging"
	"github.com/spacesedan/sentilens/internal/processing"
	"github.com/spacesedan/sentilens/internal/sentiment"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	modelName     string
	backendName   string
	outputFormat  string
	withAttention bool
	noColor       bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "sentiment",
	Short: "Sentiment analysis with optional attention attribution",
	Long: `Classifies text as positive, negative or neutral.

Examples:
  sentiment analyze "This is amazing!"
  echo "This is amazing!" | sentiment analyze -
  sentiment batch reviews.txt --output-format json`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		env := os.Getenv("APP_ENV")
		if env == "" {
			env = "dev"
		}
		config.LoadEnv(env)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logging.InitLogger(cfg.LogLevel)

		if cmd.Flags().Changed("model") {
			cfg.ModelName = modelName
		}
		if cmd.Flags().Changed("backend") {
			cfg.Backend = backendName
		}
		if _, err := processing.ParseFormat(outputFormat); err != nil {
			return err
		}
		return cfg.Validate()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", config.DefaultModelName, "model identifier or local model directory")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", config.BackendHugot, fmt.Sprintf("inference backend %v", backends.Names()))
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output-format", "f", string(processing.FormatSimple), "output format: simple, detailed or json")
	rootCmd.PersistentFlags().BoolVar(&withAttention, "attention", false, "include attention attribution")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable color output")

	rootCmd.AddCommand(analyzeCmd, batchCmd, validateCmd, infoCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newService builds the service lazily; the model loads on first Predict.
func newService() (*sentiment.Service, error) {
	if err := cfg.EnsureCacheDir(); err != nil {
		return nil, err
	}
	return backends.NewService(cfg)
}

func newFormatter(cmd *cobra.Command) *processing.Formatter {
	format, _ := processing.ParseFormat(outputFormat)
	return &processing.Formatter{
		W:          cmd.OutOrStdout(),
		Format:     format,
		Color:      colorEnabled(),
		Thresholds: cfg.Confidence,
	}
}

func colorEnabled() bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func stdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}
