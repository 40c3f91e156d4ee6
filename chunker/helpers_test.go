package chunker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
)

// wordCounter counts whitespace separated words.
type wordCounter struct {
	calls atomic.Int64
}

func (w *wordCounter) CountTokens(_ context.Context, text string) (int, error) {
	w.calls.Add(1)
	return len(strings.Fields(text)), nil
}

// wordCodec is a wordCounter that also encodes words to ids.
type wordCodec struct {
	wordCounter
	vocab []string
	ids   map[string]uint
}

func newWordCodec() *wordCodec {
	return &wordCodec{ids: make(map[string]uint)}
}

func (c *wordCodec) Encode(text string) ([]uint, error) {
	var out []uint
	for _, w := range strings.Fields(text) {
		id, ok := c.ids[w]
		if !ok {
			id = uint(len(c.vocab))
			c.vocab = append(c.vocab, w)
			c.ids[w] = id
		}
		out = append(out, id)
	}
	return out, nil
}

func (c *wordCodec) Decode(ids []uint) (string, error) {
	words := make([]string, len(ids))
	for i, id := range ids {
		if int(id) >= len(c.vocab) {
			return "", fmt.Errorf("unknown token %d", id)
		}
		words[i] = c.vocab[id]
	}
	return strings.Join(words, " "), nil
}

type failingCounter struct{}

func (failingCounter) CountTokens(context.Context, string) (int, error) {
	return 0, errors.New("backend down")
}

// uniqueWords returns n distinct words separated by single spaces, with no
// sentence or paragraph breaks.
func uniqueWords(n int) string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%04d", i)
	}
	return strings.Join(words, " ")
}

// paragraphs returns n paragraphs of five ten-word sentences. Every word is
// unique and each sentence starts with a capital letter.
func paragraphs(n int) string {
	k := 0
	paras := make([]string, n)
	for p := range paras {
		sentences := make([]string, 5)
		for s := range sentences {
			words := make([]string, 10)
			for w := range words {
				prefix := "w"
				if w == 0 {
					prefix = "W"
				}
				words[w] = fmt.Sprintf("%s%04d", prefix, k)
				k++
			}
			sentences[s] = strings.Join(words, " ") + "."
		}
		paras[p] = strings.Join(sentences, " ")
	}
	return strings.Join(paras, "\n\n")
}

func stripSpace(s string) string {
	return strings.Join(strings.Fields(s), "")
}

// sharedWords returns the length of the longest suffix of cur that is also
// a prefix of next.
func sharedWords(cur, next []string) int {
	for k := min(len(cur), len(next)); k > 0; k-- {
		if slices.Equal(cur[len(cur)-k:], next[:k]) {
			return k
		}
	}
	return 0
}
