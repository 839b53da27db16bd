// Package tree hydrates a listed document tree with extracted text
// content before it is handed to the analysis pipeline.
package tree

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"fundscope/internal/domain"
	"fundscope/internal/port"
)

const defaultConcurrency = 8

// Walker downloads every document in a folder tree and extracts its
// text, filling in the Content field in place.
type Walker struct {
	store       port.FileStore
	extractor   port.TextExtractor
	logger      *log.Logger
	concurrency int
}

func NewWalker(store port.FileStore, extractor port.TextExtractor, concurrency int, logger *log.Logger) *Walker {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Walker{
		store:       store,
		extractor:   extractor,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Hydrate fetches and extracts content for every document under root,
// returning the flat document list in tree order. A failed download or
// extraction leaves that document's content empty and is logged rather
// than failing the run; only context cancellation aborts the walk.
func (w *Walker) Hydrate(ctx context.Context, root *domain.FolderNode) ([]*domain.DocumentRecord, error) {
	docs := Flatten(root)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, doc := range docs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := w.store.Download(ctx, doc.Path)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Printf("[WARN] tree: download failed for %s: %v", doc.Path, err)
				doc.Content = ""
				return nil
			}
			content, err := w.extractor.Extract(doc.Name, data)
			if err != nil {
				w.logger.Printf("[WARN] tree: extraction failed for %s: %v", doc.Path, err)
				content = ""
			}
			doc.Content = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Flatten returns every document in the tree in depth-first pre-order.
func Flatten(root *domain.FolderNode) []*domain.DocumentRecord {
	var docs []*domain.DocumentRecord
	var walk func(node *domain.FolderNode)
	walk = func(node *domain.FolderNode) {
		for _, entry := range node.Children {
			switch {
			case entry.Document != nil:
				docs = append(docs, entry.Document)
			case entry.Folder != nil:
				walk(entry.Folder)
			}
		}
	}
	walk(root)
	return docs
}
