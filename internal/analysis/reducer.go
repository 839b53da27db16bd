package analysis

import (
	"context"
	"log"

	"fundscope/internal/domain"
	"fundscope/internal/tokens"
	"fundscope/internal/tree"
)

// safetyBuffer is headroom reserved inside the per-call token ceiling
// on top of the two system prompts.
const safetyBuffer = 1000

// Reducer walks the hydrated folder tree depth-first and attaches a
// two-sided analysis (tabular and narrative) to every folder. Children
// are reduced before their parent; a folder's own analysis always runs
// over the documents transitively beneath it.
type Reducer struct {
	chunker          *Chunker
	dispatcher       *Dispatcher
	acct             *tokens.Accountant
	logger           *log.Logger
	maxCallTokens    int
	maxFilesPerChunk int
}

func NewReducer(chunker *Chunker, dispatcher *Dispatcher, acct *tokens.Accountant, maxCallTokens, maxFilesPerChunk int, logger *log.Logger) *Reducer {
	if logger == nil {
		logger = log.Default()
	}
	return &Reducer{
		chunker:          chunker,
		dispatcher:       dispatcher,
		acct:             acct,
		logger:           logger,
		maxCallTokens:    maxCallTokens,
		maxFilesPerChunk: maxFilesPerChunk,
	}
}

// Reduce analyzes every folder under root and returns the reduced tree.
// The root itself gets no aggregate: its direct documents are carried
// verbatim and each child folder carries its own analysis. Per-folder
// failures are embedded as error results; Reduce itself only fails with
// the context.
func (r *Reducer) Reduce(ctx context.Context, root *domain.FolderNode, excelPrompt, docPrompt string) (*domain.FolderAnalysis, error) {
	result := &domain.FolderAnalysis{Name: rootName(root)}
	for _, entry := range root.Children {
		switch {
		case entry.Folder != nil:
			folder, err := r.reduceFolder(ctx, entry.Folder, excelPrompt, docPrompt)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, domain.AnalysisEntry{Folder: folder})
		case entry.Document != nil:
			result.Files = append(result.Files, domain.AnalysisEntry{Document: entry.Document})
		}
	}
	return result, nil
}

func (r *Reducer) reduceFolder(ctx context.Context, folder *domain.FolderNode, excelPrompt, docPrompt string) (*domain.FolderAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &domain.FolderAnalysis{Name: folder.Name}
	for _, entry := range folder.Children {
		switch {
		case entry.Folder != nil:
			child, err := r.reduceFolder(ctx, entry.Folder, excelPrompt, docPrompt)
			if err != nil {
				return nil, err
			}
			result.Files = append(result.Files, domain.AnalysisEntry{Folder: child})
		case entry.Document != nil:
			result.Files = append(result.Files, domain.AnalysisEntry{Document: entry.Document})
		}
	}

	documents := tree.Flatten(folder)
	if len(documents) == 0 {
		r.logger.Printf("[INFO] analysis: no documents found in folder %q", folder.Name)
		result.Analysis = domain.FolderAnalysisSet{
			Excel: domain.SingleOutcome(domain.ErrResult(domain.ErrNoDocuments.Error(), 0)),
			Doc:   domain.SingleOutcome(domain.ErrResult(domain.ErrNoDocuments.Error(), 0)),
		}
		return result, nil
	}

	totalTokens := r.chunker.TotalTokens(documents)
	promptTokens := r.acct.CountTokens(excelPrompt) + r.acct.CountTokens(docPrompt)
	available := r.maxCallTokens - promptTokens - safetyBuffer

	if totalTokens <= available && len(documents) <= r.maxFilesPerChunk {
		r.logger.Printf("[INFO] analysis: folder %q (%d docs, %d tokens) fits a single batch", folder.Name, len(documents), totalTokens)
		batch := domain.Chunk{Documents: derefDocs(documents), EstimatedTokens: totalTokens}
		result.Analysis = domain.FolderAnalysisSet{
			Excel: domain.SingleOutcome(r.dispatcher.AnalyzeOne(ctx, batch, excelPrompt)),
			Doc:   domain.SingleOutcome(r.dispatcher.AnalyzeOne(ctx, batch, docPrompt)),
		}
		return result, nil
	}

	chunks := r.chunker.Split(documents)
	r.logger.Printf("[INFO] analysis: folder %q (%d docs, %d tokens) split into %d chunks", folder.Name, len(documents), totalTokens, len(chunks))
	result.Analysis = domain.FolderAnalysisSet{
		Excel: domain.CombinedOutcome(r.dispatcher.RunBatch(ctx, chunks, excelPrompt)),
		Doc:   domain.CombinedOutcome(r.dispatcher.RunBatch(ctx, chunks, docPrompt)),
	}
	return result, nil
}

func derefDocs(documents []*domain.DocumentRecord) []domain.DocumentRecord {
	out := make([]domain.DocumentRecord, len(documents))
	for i, doc := range documents {
		out[i] = *doc
	}
	return out
}

func rootName(root *domain.FolderNode) string {
	if root.Name == "" {
		return "root"
	}
	return root.Name
}
