package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text | -]",
	Short: "Analyze single text sentiment",
	Long: `Analyzes one text. Pass "-" or pipe input to read from stdin.

Examples:
  sentiment analyze "I love this product!"
  echo "This is amazing!" | sentiment analyze -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	text, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Predict(cmd.Context(), text, withAttention)
	if err != nil {
		return err
	}
	return newFormatter(cmd).WritePrediction(result)
}

func readInput(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		if strings.TrimSpace(args[0]) == "" {
			return "", errors.New("text cannot be empty")
		}
		return args[0], nil
	}

	if len(args) == 0 && stdinIsTerminal() {
		return "", errors.New("no text provided. Use --help for usage information")
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", errors.New("no input provided via stdin")
	}
	return text, nil
}
