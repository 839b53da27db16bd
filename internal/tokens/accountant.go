// Package tokens provides token accounting for completion-request
// budgeting. Counting must be deterministic and cheap: the chunk planner
// calls it once per document per pass.
package tokens

import (
	"log"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"fundscope/internal/domain"
)

// DocumentOverhead is the fixed token cost of embedding one document's
// structural envelope (field names, separators) in a request payload.
const DocumentOverhead = 20

// fallbackEncoding is used when no model-specific encoding is available.
const fallbackEncoding = "cl100k_base"

// Accountant counts tokens with the tokenizer of the configured model,
// degrading to a word-based estimate when no BPE encoding can be loaded
// (for example in offline test environments). It is stateless after
// construction and safe for concurrent use.
type Accountant struct {
	enc *tiktoken.Tiktoken
}

var (
	defaultOnce sync.Once
	defaultAcct *Accountant
)

// NewAccountant builds an Accountant for the given model name.
func NewAccountant(model string) *Accountant {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
	}
	if err != nil {
		log.Printf("tokens: no BPE encoding available (%v), using word estimate", err)
		return &Accountant{}
	}
	return &Accountant{enc: enc}
}

// Default returns a process-wide Accountant on the generic encoding.
func Default() *Accountant {
	defaultOnce.Do(func() {
		defaultAcct = NewAccountant("gpt-4")
	})
	return defaultAcct
}

// CountTokens returns the number of tokens in text.
func (a *Accountant) CountTokens(text string) int {
	if text == "" {
		return 0
	}
	if a.enc != nil {
		return len(a.enc.Encode(text, nil, nil))
	}
	return estimateTokens(text)
}

// EstimateDocumentTokens returns the token cost of one document as it will
// appear inside a request payload: content plus path/name metadata plus the
// fixed structural overhead.
func (a *Accountant) EstimateDocumentTokens(doc domain.DocumentRecord) int {
	return a.CountTokens(doc.Content) +
		a.CountTokens(doc.Path) +
		a.CountTokens(doc.Name) +
		DocumentOverhead
}

// Truncate cuts text to at most maxTokens whole tokens. A non-positive
// limit yields the empty string.
func (a *Accountant) Truncate(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if a.enc != nil {
		ids := a.enc.Encode(text, nil, nil)
		if len(ids) <= maxTokens {
			return text
		}
		return a.enc.Decode(ids[:maxTokens])
	}
	return truncateByWords(text, maxTokens)
}

// estimateTokens approximates a BPE count from whitespace-delimited words,
// roughly 1.33 tokens per English word.
func estimateTokens(text string) int {
	words := len(strings.Fields(text))
	n := int(float64(words) * 1.33)
	if n < 1 {
		n = 1
	}
	return n
}

func truncateByWords(text string, maxTokens int) string {
	words := strings.Fields(text)
	keep := int(float64(maxTokens) / 1.33)
	if keep >= len(words) {
		return text
	}
	return strings.Join(words[:keep], " ")
}
