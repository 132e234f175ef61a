// Package words is a whitespace tokenizer for backends that have no
// vocabulary of their own. Output follows the BERT convention of wrapping the
// sequence in [CLS] and [SEP].
package words

import (
	"hash/fnv"
	"strings"
)

const (
	ClsToken = "[CLS]"
	SepToken = "[SEP]"

	clsID = 101
	sepID = 102
)

// Split tokenizes text into at most maxTokens tokens, special tokens
// included. Ids are stable hashes of the lower-cased word.
func Split(text string, maxTokens int) ([]int64, []string) {
	fields := strings.Fields(text)
	if maxTokens < 2 {
		maxTokens = 2
	}
	if len(fields) > maxTokens-2 {
		fields = fields[:maxTokens-2]
	}

	tokens := make([]string, 0, len(fields)+2)
	ids := make([]int64, 0, len(fields)+2)

	tokens = append(tokens, ClsToken)
	ids = append(ids, clsID)
	for _, f := range fields {
		tokens = append(tokens, f)
		ids = append(ids, wordID(f))
	}
	tokens = append(tokens, SepToken)
	ids = append(ids, sepID)

	return ids, tokens
}

func wordID(word string) int64 {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(word)))
	// keep clear of the reserved special ids
	return int64(h.Sum32()) + 1000
}
