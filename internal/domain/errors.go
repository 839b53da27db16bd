package domain

import "errors"

var (
	ErrNotFound         = errors.New("resource not found")
	ErrTreeListFailed   = errors.New("listing the source tree failed")
	ErrEmptyTree        = errors.New("source tree contains no folders")
	ErrDownloadFailed   = errors.New("file download failed")
	ErrRunFailed        = errors.New("analysis run failed")
	ErrInvalidRootPath  = errors.New("invalid root path")
	ErrContactNotFound  = errors.New("no matching contact profile found")
	ErrContactUnderflow = errors.New("contact search requires a name")
)

// ErrNoDocuments is the per-folder marker for a folder with zero
// extractable documents. The exact message is load-bearing: it appears in
// checkpoint files and API payloads.
var ErrNoDocuments = errors.New("No documents found in folder")
