package chunker

import "github.com/botirk38/textchunker/textclean"

// forwardOverlap grows a span from the start of region until it measures
// within [lo, hi], trying separators coarse to fine.
func (s *search) forwardOverlap(region string, lo, hi int) (string, bool, error) {
	return s.growOverlap(region, lo, hi, false)
}

// backwardOverlap is forwardOverlap growing from the end of region.
func (s *search) backwardOverlap(region string, lo, hi int) (string, bool, error) {
	return s.growOverlap(region, lo, hi, true)
}

func (s *search) growOverlap(region string, lo, hi int, backward bool) (string, bool, error) {
	for _, sep := range Separators() {
		parts := sep.Split(region)
		acc := ""
		for i := range parts {
			if backward {
				acc = parts[len(parts)-1-i] + acc
			} else {
				acc += parts[i]
			}

			n, err := s.count(textclean.ReduceToSingleWhitespace(acc))
			if err != nil {
				return "", false, err
			}
			if n > hi {
				break
			}
			if n >= lo {
				return acc, true, nil
			}
		}
	}
	return "", false, nil
}
