package chunker

import (
	"strings"
	"unicode"

	"github.com/botirk38/textchunker/textclean"
	"github.com/rivo/uniseg"
)

// Separator is one level of the splitting hierarchy. Separators are tried
// from coarse (paragraphs) to fine (grapheme clusters).
type Separator int

const (
	MultiParagraph Separator = iota
	SingleLine
	Sentence
	Word
	Whitespace
	Grapheme
)

// Separators returns every separator in coarse-to-fine order.
func Separators() []Separator {
	return []Separator{MultiParagraph, SingleLine, Sentence, Word, Whitespace, Grapheme}
}

func (s Separator) String() string {
	switch s {
	case MultiParagraph:
		return "multi_paragraph"
	case SingleLine:
		return "single_line"
	case Sentence:
		return "sentence"
	case Word:
		return "word"
	case Whitespace:
		return "whitespace"
	case Grapheme:
		return "grapheme"
	default:
		return "unknown"
	}
}

// Split breaks text into an ordered list of fragments. Concatenating the
// fragments reproduces the input, plus the delimiter some separators append
// (paragraph splits end in "\n\n", line splits in "\n", sentences in a space).
func (s Separator) Split(text string) []string {
	switch s {
	case MultiParagraph:
		return appendEach(splitDrop(text, "\n"), "\n\n")
	case SingleLine:
		return appendEach(splitKeep(text, "\n\n"), "\n")
	case Sentence:
		return splitSentences(text)
	case Word:
		return splitWords(text)
	case Whitespace:
		return splitKeep(text, " ")
	case Grapheme:
		return splitGraphemes(text)
	default:
		return nil
	}
}

// splitDrop splits on sep and discards empty pieces.
func splitDrop(text, sep string) []string {
	var out []string
	for _, piece := range strings.Split(text, sep) {
		if piece != "" {
			out = append(out, piece)
		}
	}
	return out
}

// splitKeep splits after every occurrence of sep, so each piece but the last
// ends with sep.
func splitKeep(text, sep string) []string {
	if text == "" {
		return nil
	}
	return strings.SplitAfter(strings.TrimSuffix(text, sep), sep)
}

func appendEach(pieces []string, suffix string) []string {
	for i := range pieces {
		pieces[i] += suffix
	}
	return pieces
}

func splitSentences(text string) []string {
	var out []string
	state := -1
	rest := text
	for len(rest) > 0 {
		var sentence string
		sentence, rest, state = uniseg.FirstSentenceInString(rest, state)
		if !strings.HasSuffix(sentence, " ") {
			sentence += " "
		}
		out = append(out, sentence)
	}
	return out
}

// splitWords returns one fragment per word, each running up to the start of
// the next word so punctuation and spacing stay attached. Text ahead of the
// first word is kept in the first fragment.
func splitWords(text string) []string {
	text = textclean.New().ReduceNewlinesToSpace().Run(text)

	var out []string
	var current strings.Builder
	state := -1
	rest := text
	for len(rest) > 0 {
		var segment string
		segment, rest, state = uniseg.FirstWordInString(rest, state)
		if isWord(segment) && isWord(current.String()) {
			out = append(out, current.String())
			current.Reset()
		}
		current.WriteString(segment)
	}
	if current.Len() > 0 {
		out = append(out, current.String())
	}
	return out
}

func isWord(segment string) bool {
	for _, r := range segment {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

func splitGraphemes(text string) []string {
	var out []string
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		out = append(out, g.Str())
	}
	return out
}
