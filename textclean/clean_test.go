package textclean

import (
	"strings"
	"testing"
)

func TestCleaner_Run(t *testing.T) {
	tests := []struct {
		name    string
		cleaner *Cleaner
		input   string
		want    string
	}{
		{
			name:    "newlines to single space",
			cleaner: New().ReduceNewlinesToSpace(),
			input:   "Ascii\tspaces here. Unicode\u00A0spaces here.\n And of course, newlines.\n\n",
			want:    "Ascii spaces here. Unicode spaces here. And of course, newlines.",
		},
		{
			name:    "newlines to single newline",
			cleaner: New().ReduceNewlinesToSingle(),
			input:   "Ascii\tspaces here. Unicode\u00A0spaces here.\n And of course, newlines.\n\n Cool.",
			want:    "Ascii spaces here. Unicode spaces here.\nAnd of course, newlines.\nCool.",
		},
		{
			name:    "newlines to double newline",
			cleaner: New(),
			input:   "Ascii\tspaces here. Unicode\u00A0spaces here.\n\nAscii\n\nparagraphs.\r\n\r\n Unicode\u2029paragraphs. Cool.",
			want:    "Ascii spaces here. Unicode spaces here.\n\nAscii\n\nparagraphs.\n\nUnicode\n\nparagraphs. Cool.",
		},
		{
			name:    "keep newlines",
			cleaner: New().KeepNewlines(),
			input:   "one\n\n\n\ntwo   three",
			want:    "one\n\n\n\ntwo three",
		},
		{
			name:    "collapse triple newline",
			cleaner: New(),
			input:   "one\n\n\n\ntwo",
			want:    "one\n\ntwo",
		},
		{
			name:    "remove non basic ascii",
			cleaner: New().KeepNewlines().RemoveNonBasicASCII(),
			input:   `Keep "quotes", (parens) and $&@#%^*. Drop ¡¢£¤¥ and ÀÁÂ`,
			want:    `Keep "quotes", (parens) and $&@#%^*. Drop and`,
		},
		{
			name:    "nfc normalization",
			cleaner: New().NormalizeUnicode(),
			input:   "cafe\u0301",
			want:    "caf\u00E9",
		},
		{
			name:    "empty",
			cleaner: New(),
			input:   " \n\t ",
			want:    "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cleaner.Run(tt.input); got != tt.want {
				t.Errorf("Run() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNormalizeWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Ascii\tspaces here. Unicode\u00A0spaces here.", "Ascii spaces here. Unicode spaces here."},
		{"Windows\r\nMac\rUnicode\u2028done", "Windows\nMac\nUnicode\ndone"},
		{"Para\u2029graph", "Para\n\ngraph"},
		{"thin\u2009space and ideographic\u3000space", "thin space and ideographic space"},
	}

	for _, tt := range tests {
		if got := NormalizeWhitespace(tt.input); got != tt.want {
			t.Errorf("NormalizeWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestReduceToSingleWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"  a    b  ", "a b"},
		{"a \n\n\n b", "a\nb"},
		{"para one.\n\npara two.\n\n", "para one.\npara two."},
		{"no change", "no change"},
	}

	for _, tt := range tests {
		if got := ReduceToSingleWhitespace(tt.input); got != tt.want {
			t.Errorf("ReduceToSingleWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestStripUnwantedChars(t *testing.T) {
	got := StripUnwantedChars("plain text ©® with ümlauts")
	if strings.ContainsAny(got, "©®ü") {
		t.Errorf("StripUnwantedChars() kept non basic chars: %q", got)
	}
	if !strings.HasPrefix(got, "plain text") {
		t.Errorf("StripUnwantedChars() = %q", got)
	}
}
