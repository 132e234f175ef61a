package sentiment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireValidationKind(t *testing.T, err error, kind ValidationKind) *ValidationError {
	t.Helper()
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, kind, vErr.Kind)
	assert.ErrorIs(t, err, ErrValidation)
	return vErr
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name string
		text string
		kind ValidationKind
	}{
		{"empty", "", EmptyInput},
		{"spaces", "   ", WhitespaceOnly},
		{"tabs and newlines", "\t\n \r\n", WhitespaceOnly},
		{"too long", strings.Repeat("x", 10001), TooLong},
		{"too many words", strings.Repeat("a ", 2001), TooManyWords},
		{"too many lines", strings.Repeat("a\n", 101), TooManyLines},
		{"script tag", "<script>alert(1)</script>", SuspiciousContent},
		{"script tag upper", "hello <SCRIPT src=x>", SuspiciousContent},
		{"javascript url", "click JavaScript:void(0)", SuspiciousContent},
		{"data url", "see data:text/html;base64,xx", SuspiciousContent},
		{"vbscript", "vbscript:msgbox", SuspiciousContent},
		{"event handler", `<img src=x onerror = "boom">`, SuspiciousContent},
	}

	v := NewTextValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Validate(tt.text)
			requireValidationKind(t, err, tt.kind)
		})
	}
}

func TestValidate_SuspiciousReasonFollowsPatternOrder(t *testing.T) {
	_, err := NewTextValidator().Validate("<script>javascript:x</script>")
	vErr := requireValidationKind(t, err, SuspiciousContent)
	assert.Equal(t, "HTML script tags not allowed", vErr.Message)

	_, err = NewTextValidator().Validate("go to javascript:alert and onload=1")
	vErr = requireValidationKind(t, err, SuspiciousContent)
	assert.Equal(t, "JavaScript code not allowed", vErr.Message)
}

func TestValidate_LengthBoundary(t *testing.T) {
	v := NewTextValidator()

	got, err := v.Validate(strings.Repeat("x", 10000))
	require.NoError(t, err)
	assert.Equal(t, 10000, got.Length)

	// surrounding whitespace does not count toward the limit
	got, err = v.Validate("  " + strings.Repeat("y", 10000) + "\n")
	require.NoError(t, err)
	assert.Equal(t, 10000, got.Length)

	got, err = v.Validate("x")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Length)
}

func TestValidate_LengthCountsRunes(t *testing.T) {
	got, err := NewTextValidator().Validate("héllo wörld")
	require.NoError(t, err)
	assert.Equal(t, 11, got.Length)
}

func TestValidate_Metadata(t *testing.T) {
	text := "  Great <b>service</b>!\r\nMail me at jane@example.com or see https://example.com/page  "
	got, err := NewTextValidator().Validate(text)
	require.NoError(t, err)

	assert.Equal(t, "Great service! Mail me at jane@example.com or see https://example.com/page", got.Text)
	assert.Equal(t, len([]rune(strings.TrimSpace(text))), got.Length)
	assert.Equal(t, 9, got.WordCount)
	assert.Equal(t, 1, got.LineCount)
	assert.True(t, got.ContainsURL)
	assert.True(t, got.ContainsEmail)
	assert.False(t, got.ContainsHTML)
}

func TestValidate_LengthFromUnsanitizedText(t *testing.T) {
	got, err := NewTextValidator().Validate("<i>ok</i>")
	require.NoError(t, err)
	assert.Equal(t, "ok", got.Text)
	assert.Equal(t, 9, got.Length)
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"collapse", "a   b\t\tc", "a b c"},
		{"line endings", "a\r\nb\rc\nd", "a b c d"},
		{"tags", "<p>Hello</p> <em>world</em>", "Hello world"},
		{"tag between spaces", "a <br> b", "a b"},
		{"trim", "   padded   ", "padded"},
		{"nested brackets", "<<b>>x", ">x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_Idempotent(t *testing.T) {
	inputs := []string{
		"a <b> c",
		"<<x>y>",
		"<>a<>",
		"  mixed\r\n\r\nline <i>endings</i>\t ",
		"a<b<c>d>e",
		"plain text",
		"nbsp\u00a0sep",
	}
	for _, in := range inputs {
		once := Sanitize(in)
		assert.Equal(t, once, Sanitize(once), "input %q", in)
	}
}

func TestCountLines(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a\n", 1},
		{"a\nb", 2},
		{"a\r\nb\r\n", 2},
		{"a\rb", 2},
		{"a\n\nb", 3},
		{"\n", 1},
		{"a\u2028b", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countLines(tt.in), "input %q", tt.in)
	}
}
