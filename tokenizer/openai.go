package tokenizer

import (
	"strings"

	"github.com/openai/openai-go/v2"
	tiktoken "github.com/tiktoken-go/tokenizer"
)

// modelEncodings maps OpenAI model names to their tiktoken encoding.
var modelEncodings = map[string]tiktoken.Encoding{
	string(openai.EmbeddingModelTextEmbedding3Small): tiktoken.Cl100kBase,
	string(openai.EmbeddingModelTextEmbedding3Large): tiktoken.Cl100kBase,
	string(openai.EmbeddingModelTextEmbeddingAda002): tiktoken.Cl100kBase,
	"gpt-4":            tiktoken.Cl100kBase,
	"gpt-4-turbo":      tiktoken.Cl100kBase,
	"gpt-3.5-turbo":    tiktoken.Cl100kBase,
	"text-davinci-003": tiktoken.P50kBase,
	"text-davinci-002": tiktoken.P50kBase,
	"code-davinci-002": tiktoken.P50kBase,
	"davinci":          tiktoken.R50kBase,
}

// o200kPrefixes are model families tokenized with o200k_base.
var o200kPrefixes = []string{"gpt-4o", "gpt-4.1", "gpt-5", "o1", "o3", "o4"}

// EncodingForModel returns the encoding an OpenAI model uses. Unknown
// models fall back to DefaultEncoding.
func EncodingForModel(model string) string {
	if enc, ok := modelEncodings[model]; ok {
		return string(enc)
	}
	for _, prefix := range o200kPrefixes {
		if strings.HasPrefix(model, prefix) {
			return string(tiktoken.O200kBase)
		}
	}
	return DefaultEncoding
}

// NewOpenAICounter creates a local counter matching the tokenization of the
// given OpenAI model. An empty model selects text-embedding-3-small.
func NewOpenAICounter(model string) (*TiktokenCounter, error) {
	if model == "" {
		model = string(openai.EmbeddingModelTextEmbedding3Small)
	}
	return NewTiktokenCounter(EncodingForModel(model))
}
