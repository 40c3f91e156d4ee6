// Package textclean normalizes heterogeneous newline and whitespace encodings
// into the canonical "\n", "\n\n" and " " forms the chunker works with.
package textclean

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// NewlineMode controls how runs of newlines are rewritten by Cleaner.Run.
type NewlineMode int

const (
	// NewlinesDouble collapses runs of two or more newlines into exactly "\n\n".
	NewlinesDouble NewlineMode = iota
	// NewlinesSingle collapses any newline run into a single "\n".
	NewlinesSingle
	// NewlinesSpace replaces any newline run with a single space.
	NewlinesSpace
	// NewlinesNone leaves newline runs as they are.
	NewlinesNone
)

var (
	endOfLinePattern      = regexp.MustCompile(`\r\n|\r|\v|\f|\x{2028}`)
	endOfParagraphPattern = regexp.MustCompile(`\x{2029}`)
	whiteSpacePattern     = regexp.MustCompile(`[\t\x{00A0}\x{1680}\x{2000}-\x{200A}\x{202F}\x{205F}\x{3000}]`)
	singleNewlinePattern  = regexp.MustCompile(`(?: *\n)+ *`)
	doubleNewlinePattern  = regexp.MustCompile(` *\n(?: *\n)+ *`)
	singleSpacePattern    = regexp.MustCompile(` +`)
	unwantedCharsPattern  = regexp.MustCompile(`[^a-zA-Z0-9.,?!:;'"\-()\[\]{}$&@#%^*\s]+`)
)

// Cleaner is a reusable text normalizer. The zero value is not usable; build
// one with New and the chainable mode setters.
type Cleaner struct {
	newlines            NewlineMode
	removeNonBasicASCII bool
	normalizeUnicode    bool
}

// New returns a Cleaner that reduces newline runs to double newlines.
func New() *Cleaner {
	return &Cleaner{newlines: NewlinesDouble}
}

// ReduceNewlinesToSpace makes Run replace every newline run with a space.
func (c *Cleaner) ReduceNewlinesToSpace() *Cleaner {
	c.newlines = NewlinesSpace
	return c
}

// ReduceNewlinesToSingle makes Run collapse newline runs into "\n".
func (c *Cleaner) ReduceNewlinesToSingle() *Cleaner {
	c.newlines = NewlinesSingle
	return c
}

// ReduceNewlinesToDouble makes Run collapse newline runs of two or more into "\n\n".
func (c *Cleaner) ReduceNewlinesToDouble() *Cleaner {
	c.newlines = NewlinesDouble
	return c
}

// KeepNewlines leaves newline runs untouched.
func (c *Cleaner) KeepNewlines() *Cleaner {
	c.newlines = NewlinesNone
	return c
}

// RemoveNonBasicASCII strips everything outside letters, digits, basic
// punctuation and whitespace.
func (c *Cleaner) RemoveNonBasicASCII() *Cleaner {
	c.removeNonBasicASCII = true
	return c
}

// NormalizeUnicode applies NFC composition before any other rewrite.
func (c *Cleaner) NormalizeUnicode() *Cleaner {
	c.normalizeUnicode = true
	return c
}

// Run cleans text according to the configured modes. The result never has
// leading or trailing whitespace and never contains two consecutive spaces.
func (c *Cleaner) Run(text string) string {
	if c.normalizeUnicode {
		text = norm.NFC.String(text)
	}
	text = NormalizeWhitespace(text)

	switch c.newlines {
	case NewlinesSpace:
		text = singleNewlinePattern.ReplaceAllString(text, " ")
	case NewlinesSingle:
		text = singleNewlinePattern.ReplaceAllString(text, "\n")
	case NewlinesDouble:
		text = doubleNewlinePattern.ReplaceAllString(text, "\n\n")
	}

	if c.removeNonBasicASCII {
		text = unwantedCharsPattern.ReplaceAllString(text, "")
	}

	return strings.TrimSpace(singleSpacePattern.ReplaceAllString(text, " "))
}

// NormalizeWhitespace maps every end-of-line sequence to "\n", paragraph
// separators to "\n\n", and every other whitespace character to a plain space.
func NormalizeWhitespace(text string) string {
	text = endOfLinePattern.ReplaceAllString(text, "\n")
	text = endOfParagraphPattern.ReplaceAllString(text, "\n\n")
	return whiteSpacePattern.ReplaceAllString(text, " ")
}

// ReduceToSingleWhitespace collapses space runs to one space and newline runs
// (with any adjacent space) to one newline, then trims the result.
func ReduceToSingleWhitespace(text string) string {
	text = singleSpacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(singleNewlinePattern.ReplaceAllString(text, "\n"))
}

// StripUnwantedChars removes characters outside the basic ASCII set.
func StripUnwantedChars(text string) string {
	return strings.TrimSpace(unwantedCharsPattern.ReplaceAllString(text, ""))
}
