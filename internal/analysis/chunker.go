package analysis

import (
	"sort"

	"fundscope/internal/domain"
	"fundscope/internal/tokens"
)

// TruncationMarker is appended to any document whose content had to be
// cut to fit a chunk. Downstream consumers key on this exact string.
const TruncationMarker = "\n\n[CONTENT TRUNCATED DUE TO SIZE LIMITATIONS]"

// truncationBuffer leaves headroom for the marker and encoding slack
// when cutting an oversize document.
const truncationBuffer = 100

// Chunker splits a folder's documents into completion-sized chunks.
type Chunker struct {
	acct             *tokens.Accountant
	maxChunkTokens   int
	maxFilesPerChunk int
}

func NewChunker(acct *tokens.Accountant, maxChunkTokens, maxFilesPerChunk int) *Chunker {
	return &Chunker{
		acct:             acct,
		maxChunkTokens:   maxChunkTokens,
		maxFilesPerChunk: maxFilesPerChunk,
	}
}

// Split packs documents into chunks, largest first, so big documents
// anchor chunks and small ones fill the gaps. A document that alone
// exceeds the chunk ceiling is truncated and isolated into its own
// chunk. Input records are never mutated; truncation works on copies.
func (c *Chunker) Split(documents []*domain.DocumentRecord) []domain.Chunk {
	sorted := make([]*domain.DocumentRecord, len(documents))
	copy(sorted, documents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.acct.EstimateDocumentTokens(*sorted[i]) > c.acct.EstimateDocumentTokens(*sorted[j])
	})

	var chunks []domain.Chunk
	var current []domain.DocumentRecord
	currentTokens := 0

	flush := func() {
		if len(current) > 0 {
			chunks = append(chunks, domain.Chunk{Documents: current, EstimatedTokens: currentTokens})
			current = nil
			currentTokens = 0
		}
	}

	for _, doc := range sorted {
		docTokens := c.acct.EstimateDocumentTokens(*doc)

		if docTokens > c.maxChunkTokens {
			metadataTokens := docTokens - c.acct.CountTokens(doc.Content)
			contentLimit := c.maxChunkTokens - metadataTokens - truncationBuffer
			if contentLimit > 0 {
				truncated := *doc
				truncated.Content = c.acct.Truncate(doc.Content, contentLimit) + TruncationMarker
				flush()
				chunks = append(chunks, domain.Chunk{
					Documents:       []domain.DocumentRecord{truncated},
					EstimatedTokens: c.acct.EstimateDocumentTokens(truncated),
				})
				continue
			}
			// Metadata alone exhausts the ceiling; fall through and
			// let the document ride in a normal chunk untruncated.
		}

		if currentTokens+docTokens > c.maxChunkTokens || len(current) >= c.maxFilesPerChunk {
			flush()
		}
		current = append(current, *doc)
		currentTokens += docTokens
	}
	flush()

	return chunks
}

// TotalTokens sums the estimated size of every document in the set.
func (c *Chunker) TotalTokens(documents []*domain.DocumentRecord) int {
	total := 0
	for _, doc := range documents {
		total += c.acct.EstimateDocumentTokens(*doc)
	}
	return total
}
