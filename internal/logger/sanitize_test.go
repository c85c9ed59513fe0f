package logger

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		in        string
		maxLength int
		want      string
	}{
		{name: "empty", in: "", maxLength: 10, want: ""},
		{name: "plain", in: "remind me tomorrow", maxLength: 100, want: "remind me tomorrow"},
		{name: "drops newlines and escapes", in: "line1\nline2\x1b[31m", maxLength: 100, want: "line1line2[31m"},
		{name: "invalid utf8", in: "ok\xffok", maxLength: 100, want: "okok"},
		{name: "truncates", in: "abcdefghij", maxLength: 4, want: "abcd..."},
		{name: "does not split runes", in: "ééé", maxLength: 3, want: "é..."},
		{name: "default length", in: strings.Repeat("a", 10), maxLength: 0, want: strings.Repeat("a", 10)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := SanitizeString(tt.in, tt.maxLength)
			if got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.in, tt.maxLength, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("SanitizeString(%q) returned invalid UTF-8", tt.in)
			}
		})
	}
}

func TestSanitizeHelpers(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("SanitizeError(nil) = %q", got)
	}
	if got := SanitizeError(errors.New("boom\r\n")); got != "boom" {
		t.Errorf("SanitizeError() = %q, want boom", got)
	}
	long := strings.Repeat("x", MaxUtteranceLength+10)
	if got := SanitizeUtterance(long); len(got) != MaxUtteranceLength+len("...") {
		t.Errorf("SanitizeUtterance() length = %d", len(got))
	}
	if got := SanitizePath("/api/v1/reminders"); got != "/api/v1/reminders" {
		t.Errorf("SanitizePath() = %q", got)
	}
	if got := SanitizeUserID("default_user"); got != "default_user" {
		t.Errorf("SanitizeUserID() = %q", got)
	}
}
