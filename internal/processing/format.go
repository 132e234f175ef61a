package processing

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spacesedan/sentilens/internal/models"
)

type OutputFormat string

const (
	FormatSimple   OutputFormat = "simple"
	FormatDetailed OutputFormat = "detailed"
	FormatJSON     OutputFormat = "json"
)

func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(s)); f {
	case FormatSimple, FormatDetailed, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (choose simple, detailed or json)", s)
	}
}

var labelStyles = map[models.SentimentLabel]lipgloss.Style{
	models.SentimentPositive: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	models.SentimentNegative: lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
	models.SentimentNeutral:  lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
}

type Formatter struct {
	W          io.Writer
	Format     OutputFormat
	Color      bool
	Thresholds models.ConfidenceThresholds
}

func (f *Formatter) WritePrediction(result *models.PredictionResult) error {
	if f.Format == FormatJSON {
		return f.writeJSON(result)
	}

	if f.Format == FormatDetailed {
		fmt.Fprintln(f.W, "Sentiment Analysis Results")
		fmt.Fprintln(f.W, strings.Repeat("=", 30))
		fmt.Fprintf(f.W, "Sentiment: %s\n", result.SentimentLabel)
		fmt.Fprintf(f.W, "Confidence: %.4f (%s)\n", result.ConfidenceScore, f.Thresholds.Level(result.ConfidenceScore))
		fmt.Fprintf(f.W, "Processing Time: %.2fms\n", result.ProcessingTimeMS)
		fmt.Fprintf(f.W, "Text Length: %d\n", result.InputTextLength)
		if len(result.RawClassScores) > 0 {
			fmt.Fprintln(f.W, "Class Scores:")
			for _, s := range result.RawClassScores {
				fmt.Fprintf(f.W, "  %s: %.4f\n", s.Label, s.Score)
			}
		}
		f.writeAttribution(result.Attribution)
		return nil
	}

	fmt.Fprintln(f.W, f.simpleLine(result))
	f.writeAttribution(result.Attribution)
	return nil
}

func (f *Formatter) WriteBatch(report models.BatchReport) error {
	if f.Format == FormatJSON {
		return f.writeJSON(report)
	}

	for _, item := range report.Results {
		r := item.Result
		if f.Format == FormatDetailed {
			fmt.Fprintf(f.W, "Text %d: %s (confidence: %.4f, time: %.2fms)\n",
				item.Index, f.label(r.SentimentLabel), r.ConfidenceScore, r.ProcessingTimeMS)
			continue
		}
		fmt.Fprintln(f.W, f.simpleLine(r))
	}

	fmt.Fprintf(f.W, "\nSummary: %d texts processed\n", report.TotalProcessed)
	fmt.Fprintf(f.W, "Positive: %d, Negative: %d, Neutral: %d\n",
		report.Summary.Positive, report.Summary.Negative, report.Summary.Neutral)
	if report.Failed > 0 {
		fmt.Fprintf(f.W, "Skipped: %d\n", report.Failed)
	}
	return nil
}

func (f *Formatter) WriteValidation(v models.ValidatedText) error {
	if f.Format == FormatJSON {
		return f.writeJSON(v)
	}
	fmt.Fprintln(f.W, "Input is valid")
	if f.Format == FormatDetailed {
		fmt.Fprintf(f.W, "Length: %d\n", v.Length)
		fmt.Fprintf(f.W, "Words: %d\n", v.WordCount)
		fmt.Fprintf(f.W, "Lines: %d\n", v.LineCount)
		fmt.Fprintf(f.W, "Contains URL: %t\n", v.ContainsURL)
		fmt.Fprintf(f.W, "Contains Email: %t\n", v.ContainsEmail)
		fmt.Fprintf(f.W, "Sanitized: %s\n", v.Text)
	}
	return nil
}

func (f *Formatter) WriteInfo(info models.ModelInfo, health models.PipelineHealth) error {
	if f.Format == FormatJSON {
		return f.writeJSON(struct {
			Model  models.ModelInfo      `json:"model"`
			Health models.PipelineHealth `json:"health"`
		}{info, health})
	}

	fmt.Fprintln(f.W, "Sentiment Analysis CLI - System Information")
	fmt.Fprintln(f.W, strings.Repeat("=", 50))
	fmt.Fprintf(f.W, "Model: %s\n", info.ModelName)
	fmt.Fprintf(f.W, "Backend: %s\n", info.Backend)
	fmt.Fprintf(f.W, "Status: %s\n", info.Status)
	fmt.Fprintf(f.W, "Health: %s\n", health.Status)
	fmt.Fprintln(f.W)
	fmt.Fprintln(f.W, "Available Commands:")
	fmt.Fprintln(f.W, "  analyze   - Analyze single text sentiment")
	fmt.Fprintln(f.W, "  batch     - Process multiple texts from file")
	fmt.Fprintln(f.W, "  validate  - Check text against input rules")
	fmt.Fprintln(f.W, "  info      - Show system information")
	return nil
}

func (f *Formatter) simpleLine(r *models.PredictionResult) string {
	return fmt.Sprintf("%s: %.4f (%.2fms)", f.label(r.SentimentLabel), r.ConfidenceScore, r.ProcessingTimeMS)
}

func (f *Formatter) label(l models.SentimentLabel) string {
	text := strings.ToUpper(string(l))
	if !f.Color {
		return text
	}
	if style, ok := labelStyles[l]; ok {
		return style.Render(text)
	}
	return text
}

func (f *Formatter) writeAttribution(a *models.AttentionAttribution) {
	if a == nil {
		return
	}
	if len(a.TopContributions) == 0 {
		fmt.Fprintln(f.W, "Attention: unavailable")
		return
	}
	fmt.Fprintln(f.W, "Top Contributions:")
	for _, t := range a.TopContributions {
		fmt.Fprintf(f.W, "  %-15s %+.4f\n", t.Token, t.ContributionScore)
	}
}

func (f *Formatter) writeJSON(v any) error {
	enc := json.NewEncoder(f.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
