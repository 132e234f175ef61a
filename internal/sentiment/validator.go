package sentiment

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/spacesedan/sentilens/internal/models"
)

const (
	MinTextLength = 1
	MaxTextLength = 10000
	MaxWords      = 2000
	MaxLines      = 100
)

var (
	urlPattern   = regexp.MustCompile(`https?://(?:[a-zA-Z]|[0-9]|[$-_@.&+]|[!*\(\),]|(?:%[0-9a-fA-F][0-9a-fA-F]))+`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	htmlPattern  = regexp.MustCompile(`<[^>]+>`)
)

type suspiciousPattern struct {
	pattern *regexp.Regexp
	message string
}

// Order matters: the first match decides the reported reason.
var suspiciousPatterns = []suspiciousPattern{
	{regexp.MustCompile(`(?i)<script`), "HTML script tags not allowed"},
	{regexp.MustCompile(`(?i)javascript:`), "JavaScript code not allowed"},
	{regexp.MustCompile(`(?i)data:text/html`), "Data URLs not allowed"},
	{regexp.MustCompile(`(?i)vbscript:`), "VBScript not allowed"},
	{regexp.MustCompile(`(?i)on\w+\s*=`), "Event handlers not allowed"},
}

// TextValidator guards input before it reaches a backend. It holds no state
// and is safe for concurrent use.
type TextValidator struct{}

func NewTextValidator() *TextValidator {
	return &TextValidator{}
}

// Validate checks text against the length, word, line and content limits and
// returns the sanitized text with its metadata.
//
// Length is measured on the trimmed original, while the counts and content
// flags are measured on the sanitized text.
func (v *TextValidator) Validate(text string) (models.ValidatedText, error) {
	if text == "" {
		return models.ValidatedText{}, newValidationError(EmptyInput, "Text cannot be empty")
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return models.ValidatedText{}, newValidationError(WhitespaceOnly, "Text contains only whitespace")
	}

	length := utf8.RuneCountInString(trimmed)
	if length < MinTextLength {
		return models.ValidatedText{}, newValidationError(WhitespaceOnly, "Text too short (minimum %d characters)", MinTextLength)
	}
	if length > MaxTextLength {
		return models.ValidatedText{}, newValidationError(TooLong, "Text too long (maximum %d characters)", MaxTextLength)
	}

	if len(strings.Fields(text)) > MaxWords {
		return models.ValidatedText{}, newValidationError(TooManyWords, "Text contains too many words (maximum %d)", MaxWords)
	}

	if countLines(text) > MaxLines {
		return models.ValidatedText{}, newValidationError(TooManyLines, "Text contains too many lines (maximum %d)", MaxLines)
	}

	for _, p := range suspiciousPatterns {
		if p.pattern.MatchString(text) {
			return models.ValidatedText{}, newValidationError(SuspiciousContent, "%s", p.message)
		}
	}

	sanitized := Sanitize(text)

	return models.ValidatedText{
		Text:          sanitized,
		Length:        length,
		WordCount:     len(strings.Fields(sanitized)),
		LineCount:     countLines(sanitized),
		ContainsURL:   urlPattern.MatchString(sanitized),
		ContainsEmail: emailPattern.MatchString(sanitized),
		ContainsHTML:  htmlPattern.MatchString(sanitized),
	}, nil
}

// Sanitize strips HTML tags, normalizes line endings, collapses whitespace
// runs to one space and trims. Tags are removed before whitespace is
// collapsed so that Sanitize(Sanitize(t)) == Sanitize(t).
func Sanitize(text string) string {
	text = htmlPattern.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Join(strings.Fields(text), " ")
}

// countLines counts lines the way a line splitter that drops a trailing
// terminator does: "a\nb\n" has two lines, "" has none.
func countLines(text string) int {
	if text == "" {
		return 0
	}

	lines := 0
	pending := false
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		switch {
		case r == '\r':
			lines++
			pending = false
			if i+1 < len(text) && text[i+1] == '\n' {
				size++
			}
		case isLineBoundary(r):
			lines++
			pending = false
		default:
			pending = true
		}
		i += size
	}
	if pending {
		lines++
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
