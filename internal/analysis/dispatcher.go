package analysis

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"fundscope/internal/completion"
	"fundscope/internal/domain"
	"fundscope/internal/port"
)

// Dispatcher fans chunk analyses out to the completion provider under a
// bounded worker pool and collects results aligned to chunk indexes.
type Dispatcher struct {
	completer      port.Completer
	logger         *log.Logger
	maxConcurrency int
	maxRetries     int
}

func NewDispatcher(completer port.Completer, maxConcurrency, maxRetries int, logger *log.Logger) *Dispatcher {
	if maxConcurrency <= 0 {
		maxConcurrency = 1
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Dispatcher{
		completer:      completer,
		logger:         logger,
		maxConcurrency: maxConcurrency,
		maxRetries:     maxRetries,
	}
}

// RunBatch analyzes every chunk with the given system prompt. The
// returned slice is index-aligned with chunks: results[i] is always the
// outcome for chunks[i], success or error. A chunk that exhausts its
// retries yields an error result; it never fails the batch.
func (d *Dispatcher) RunBatch(ctx context.Context, chunks []domain.Chunk, systemPrompt string) []domain.AnalysisResult {
	results := make([]domain.AnalysisResult, len(chunks))

	sem := make(chan struct{}, d.maxConcurrency)
	var wg sync.WaitGroup
	for i, chunk := range chunks {
		wg.Add(1)
		sem <- struct{}{} // acquire
		go func(idx int, ch domain.Chunk) {
			defer wg.Done()
			defer func() { <-sem }() // release
			results[idx] = d.analyzeWithRetries(ctx, ch, systemPrompt, idx)
		}(i, chunk)
	}
	wg.Wait()

	return results
}

// AnalyzeOne runs a single chunk through the retry loop without the
// pool. Used for whole-folder batches that fit one call.
func (d *Dispatcher) AnalyzeOne(ctx context.Context, chunk domain.Chunk, systemPrompt string) domain.AnalysisResult {
	return d.analyzeWithRetries(ctx, chunk, systemPrompt, 0)
}

func (d *Dispatcher) analyzeWithRetries(ctx context.Context, chunk domain.Chunk, systemPrompt string, idx int) domain.AnalysisResult {
	var lastErr error
	for attempt := 0; attempt < d.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.ErrResult(fmt.Sprintf("analysis aborted: %v", err), idx)
		}

		callCtx, cancel := context.WithTimeout(ctx, callTimeout(chunk.EstimatedTokens))
		data, err := d.completer.Complete(callCtx, systemPrompt, BuildPayload(chunk))
		cancel()
		if err == nil {
			return domain.OkResult(data)
		}
		lastErr = err
		d.logger.Printf("[WARN] analysis: chunk %d attempt %d/%d failed: %v", idx, attempt+1, d.maxRetries, err)

		if attempt == d.maxRetries-1 {
			break
		}

		switch {
		case completion.IsPayloadSizeError(err):
			// No sleep; retry immediately with fewer documents.
			chunk = Shrink(chunk)
		default:
			if !sleepCtx(ctx, retryDelay(err, attempt)) {
				return domain.ErrResult(fmt.Sprintf("analysis aborted: %v", ctx.Err()), idx)
			}
		}
	}
	return domain.ErrResult(fmt.Sprintf("Failed after %d attempts: %v", d.maxRetries, lastErr), idx)
}

// callTimeout scales the per-call deadline with payload size so large
// chunks get proportionally more time before a timeout counts as a
// retryable failure.
func callTimeout(estimatedTokens int) time.Duration {
	timeout := 60*time.Second + time.Duration(estimatedTokens/1000)*time.Second
	if timeout > 10*time.Minute {
		timeout = 10 * time.Minute
	}
	return timeout
}

// retryDelay honors Retry-After on rate limit errors and otherwise
// backs off exponentially with jitter.
func retryDelay(err error, attempt int) time.Duration {
	var rateLimitErr *completion.RateLimitError
	if errors.As(err, &rateLimitErr) && rateLimitErr.RetryAfter > 0 {
		return rateLimitErr.RetryAfter
	}
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// Shrink returns a new chunk holding the first half of the documents.
// A single-document chunk cannot shrink further and is returned as is;
// its content is halved instead as a last resort.
func Shrink(chunk domain.Chunk) domain.Chunk {
	if len(chunk.Documents) <= 1 {
		if len(chunk.Documents) == 1 {
			doc := chunk.Documents[0]
			content := strings.TrimSuffix(doc.Content, TruncationMarker)
			half := len(content) / 2
			for half > 0 && !utf8.RuneStart(content[half]) {
				half--
			}
			if half > 0 {
				doc.Content = content[:half] + TruncationMarker
				return domain.Chunk{
					Documents:       []domain.DocumentRecord{doc},
					EstimatedTokens: chunk.EstimatedTokens / 2,
				}
			}
		}
		return chunk
	}
	half := (len(chunk.Documents) + 1) / 2
	shrunk := domain.Chunk{
		Documents:       make([]domain.DocumentRecord, half),
		EstimatedTokens: chunk.EstimatedTokens / 2,
	}
	copy(shrunk.Documents, chunk.Documents[:half])
	return shrunk
}

// BuildPayload renders a chunk into the user message sent alongside the
// system prompt: one named block per document.
func BuildPayload(chunk domain.Chunk) string {
	var b strings.Builder
	for i, doc := range chunk.Documents {
		if i > 0 {
			b.WriteString("\n\n---\n\n")
		}
		b.WriteString("Document Name: ")
		b.WriteString(doc.Name)
		b.WriteString("\n\n")
		b.WriteString(doc.Content)
	}
	return b.String()
}
