package domain

import (
	"time"

	"github.com/google/uuid"
)

// DocumentRecord is a single extracted document. Path carries the full
// logical path including folder ancestry; Content is the extracted text.
// Records are immutable once the tree walker has produced them.
type DocumentRecord struct {
	Path    string `json:"path,omitempty"`
	Name    string `json:"file"`
	Content string `json:"content"`
}

// FolderNode is one directory in the remote store's tree. Children holds
// subfolders and documents in their original order.
type FolderNode struct {
	Name     string      `json:"directory"`
	Children []TreeEntry `json:"files"`
}

// Chunk is a bounded group of documents sized to fit one completion
// request. Either EstimatedTokens <= the configured ceiling, or the chunk
// holds exactly one oversize (truncated) document.
type Chunk struct {
	Documents       []DocumentRecord `json:"documents"`
	EstimatedTokens int              `json:"estimated_tokens"`
}

// Fund is one extracted fund record: a mapping of attribute names to
// scalar/array/object values. The identity key attribute (by default
// "Fund Manager") drives duplicate detection during consolidation.
type Fund map[string]any

// ConsolidatedResult is the final artifact of a pipeline run: the
// deduplicated fund list the render/API layer consumes.
type ConsolidatedResult struct {
	Funds []Fund `json:"analysis"`
}

// RunArtifacts holds the object-storage keys of rendered outputs.
type RunArtifacts struct {
	ExcelKey string `json:"excel_key,omitempty"`
	DocKey   string `json:"doc_key,omitempty"`
}

// AnalysisRun is the persisted record of one pipeline execution.
type AnalysisRun struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RootPath    string     `db:"root_path" json:"root_path"`
	Status      RunStatus  `db:"status" json:"status"`
	FundCount   int        `db:"fund_count" json:"fund_count"`
	ExcelKey    string     `db:"excel_key" json:"excel_key,omitempty"`
	DocKey      string     `db:"doc_key" json:"doc_key,omitempty"`
	ErrorMsg    string     `db:"error_msg" json:"error_msg,omitempty"`
	StartedAt   time.Time  `db:"started_at" json:"started_at"`
	CompletedAt *time.Time `db:"completed_at" json:"completed_at,omitempty"`
}

// ContactProfile is a person profile returned by the contact-enrichment
// lookup.
type ContactProfile struct {
	Name     string   `json:"name"`
	Title    string   `json:"title,omitempty"`
	Company  string   `json:"company,omitempty"`
	LinkedIn string   `json:"linkedin,omitempty"`
	Emails   []string `json:"emails,omitempty"`
	Phones   []string `json:"phones,omitempty"`
}
