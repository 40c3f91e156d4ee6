package chunker

import (
	"strings"

	"github.com/botirk38/textchunker/textclean"
)

// assemble turns a boundary path into chunks. Each chunk is its core splits
// plus the overlap borrowed from its neighbours; ok is false when an overlap
// cannot be built or a finished chunk exceeds the maximum length.
func (s *search) assemble(path []int) ([]Chunk, bool, error) {
	bounds := append([]int{0}, path...)
	cores := make([]string, len(bounds)-1)
	for i := range cores {
		cores[i] = strings.Join(s.splits[bounds[i]:bounds[i+1]], "")
	}

	chunks := make([]Chunk, 0, len(cores))
	for i, core := range cores {
		var backward, forward string
		if s.withOverlap {
			first, last := i == 0, i == len(cores)-1
			lo, hi := s.th.OverlapMin, s.th.OverlapMax
			if !first && !last {
				lo, hi = lo/2, hi/2
			}

			var ok bool
			var err error
			if !last {
				forward, ok, err = s.forwardOverlap(cores[i+1], lo, hi)
				if err != nil || !ok {
					return nil, false, err
				}
			}
			if !first {
				backward, ok, err = s.backwardOverlap(cores[i-1], lo, hi)
				if err != nil || !ok {
					return nil, false, err
				}
			}
		}

		text := textclean.ReduceToSingleWhitespace(backward + core + forward)
		n, err := s.count(text)
		if err != nil {
			return nil, false, err
		}
		if n > s.th.MaxLength {
			return nil, false, nil
		}
		chunks = append(chunks, Chunk{Text: text, Index: i, TokenCount: n})
	}
	return chunks, true, nil
}
