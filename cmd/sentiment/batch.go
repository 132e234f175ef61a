package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spacesedan/sentilens/internal/processing"
	"github.com/spf13/cobra"
)

var (
	delimiter  string
	outputFile string
	workers    int
)

var batchCmd = &cobra.Command{
	Use:   "batch FILE",
	Short: "Process multiple texts from file",
	Long: `Reads FILE, splits it on the delimiter and analyzes each non-empty text.
Texts that fail are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&delimiter, "delimiter", "d", processing.DefaultDelimiter, "delimiter separating texts in the file")
	batchCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "write results to this file instead of stdout")
	batchCmd.Flags().IntVar(&workers, "workers", 1, "number of texts analyzed concurrently")
}

func runBatch(cmd *cobra.Command, args []string) error {
	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("file %s does not exist", path)
		}
		return fmt.Errorf("error reading file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("file %s is empty", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("error reading file %s: %w", path, err)
	}
	texts := processing.SplitTexts(string(content), delimiter)
	if len(texts) == 0 {
		return fmt.Errorf("no valid texts found in %s", path)
	}

	svc, err := newService()
	if err != nil {
		return err
	}
	defer svc.Close()

	report := processing.ProcessBatch(cmd.Context(), svc, texts, processing.BatchOptions{
		IncludeAttention: withAttention,
		Workers:          workers,
	})
	for _, failed := range report.Failures {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: Failed to process text %d: %s\n", failed.Index, failed.Error)
	}
	if report.TotalProcessed == 0 {
		return errors.New("no texts were successfully processed")
	}

	f := newFormatter(cmd)
	if outputFile == "" {
		return f.WriteBatch(report)
	}

	out, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outputFile, err)
	}
	defer out.Close()

	f.W = out
	f.Color = false
	if err := f.WriteBatch(report); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Results saved to %s\n", outputFile)
	return nil
}
