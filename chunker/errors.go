package chunker

import "errors"

// Common chunker errors
var (
	// ErrNoValidChunking indicates no separator and goal length produced a
	// chunking within the configured bounds
	ErrNoValidChunking = errors.New("no valid chunking found")

	// ErrInvalidGoalLength indicates goal length is invalid (<=0)
	ErrInvalidGoalLength = errors.New("goal length must be positive")

	// ErrInvalidOverlap indicates overlap percent is negative
	ErrInvalidOverlap = errors.New("overlap percent must be non-negative")

	// ErrTokenizerFailed indicates tokenization failed
	ErrTokenizerFailed = errors.New("tokenization failed")

	// ErrCodecRequired indicates the fixed window strategy got no codec
	ErrCodecRequired = errors.New("fixed overlap strategy requires an encode/decode codec")

	// ErrUnknownStrategy indicates an unsupported chunking strategy
	ErrUnknownStrategy = errors.New("unknown chunking strategy")
)
