package port

import (
	"context"

	"fundscope/internal/domain"
)

// FileStore abstracts the remote document store holding the diligence
// material. ListTree returns the full directory tree (names only, no
// content); Download fetches one file by its store-relative path.
type FileStore interface {
	ListTree(ctx context.Context) (*domain.FolderNode, error)
	Download(ctx context.Context, relativePath string) ([]byte, error)
}
