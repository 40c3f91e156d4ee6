package chunker

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/botirk38/textchunker/types"
)

// search holds the transient state of one attempt at a single goal length:
// the splits of the current separator, the thresholds, and the memo tables.
// Offsets are exclusive split boundaries, so a chunk starting at s and ending
// at e covers splits[s:e] and a path is complete once it reaches len(splits).
type search struct {
	ctx         context.Context
	counter     types.TokenCounter
	splits      []string
	th          Thresholds
	withOverlap bool

	// skip is the number of splits every candidate chunk takes for granted
	// before it is measured.
	skip int

	ends map[int][]int
	dead map[int]bool
}

func newSearch(ctx context.Context, counter types.TokenCounter, splits []string, th Thresholds, withOverlap bool) *search {
	return &search{
		ctx:         ctx,
		counter:     counter,
		splits:      splits,
		th:          th,
		withOverlap: withOverlap,
		ends:        make(map[int][]int),
		dead:        make(map[int]bool),
	}
}

func (s *search) count(text string) (int, error) {
	return countTokens(s.ctx, s.counter, text)
}

func countTokens(ctx context.Context, counter types.TokenCounter, text string) (int, error) {
	n, err := counter.CountTokens(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTokenizerFailed, err)
	}
	return n, nil
}

// prefilter decides whether the current splits can possibly be chunked under
// th and sets the skip-ahead distance. largest is the token count of the
// biggest split and total the token count of the whole text.
func (s *search) prefilter(largest, total int) bool {
	s.skip = 0
	if largest > s.th.MaxLength {
		return false
	}

	estimatedChunks := max(2, total/s.th.GoalLength)
	splitsPerChunk := len(s.splits) / estimatedChunks
	if len(s.splits) < splitsPerChunk {
		return false
	}

	s.skip = splitsPerChunk / 2
	return true
}

// validEnds returns the end offsets, ascending, for which splits[start:end]
// measures inside the accepted band. Results are memoized per start.
func (s *search) validEnds(start int) ([]int, error) {
	if ends, ok := s.ends[start]; ok {
		return ends, nil
	}

	lo, hi := 0, s.th.MaxLength
	if s.withOverlap {
		lo = s.th.GoalMin - s.th.OverlapMax
		hi = s.th.MaxLength - s.th.OverlapMax
	}

	var ends []int
	first := start + 1 + s.skip
	if first <= len(s.splits) {
		var sb strings.Builder
		for _, split := range s.splits[start : first-1] {
			sb.WriteString(split)
		}
		for j := first; j <= len(s.splits); j++ {
			sb.WriteString(s.splits[j-1])
			n, err := s.count(sb.String())
			if err != nil {
				return nil, err
			}
			if n > hi {
				break
			}
			if n >= lo {
				ends = append(ends, j)
			}
		}
	}

	s.ends[start] = ends
	return ends, nil
}

// findPath returns the first sequence of boundaries from start that reaches
// the end of the splits. A direct exit is always taken when one is valid;
// otherwise candidate ends are walked depth first, smallest first.
func (s *search) findPath(start int) ([]int, bool, error) {
	if s.dead[start] {
		return nil, false, nil
	}

	ends, err := s.validEnds(start)
	if err != nil {
		return nil, false, err
	}

	if slices.Contains(ends, len(s.splits)) {
		return []int{len(s.splits)}, true, nil
	}

	for _, end := range ends {
		if end == start {
			continue
		}
		rest, ok, err := s.findPath(end)
		if err != nil {
			return nil, false, err
		}
		if ok {
			return append([]int{end}, rest...), true, nil
		}
	}

	s.dead[start] = true
	return nil, false, nil
}
