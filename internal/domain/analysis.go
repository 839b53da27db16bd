package domain

import (
	"encoding/json"
	"fmt"
)

// AnalysisResult is the outcome of one completion call over one chunk:
// either the model's structured JSON or an error marker. It serializes the
// way the checkpoint files expect: errors become {"error": ..., "chunk_index": n}.
type AnalysisResult struct {
	Data       json.RawMessage
	Err        string
	ChunkIndex int
}

// OkResult wraps a successful completion payload.
func OkResult(data json.RawMessage) AnalysisResult {
	return AnalysisResult{Data: data}
}

// ErrResult wraps a per-chunk failure.
func ErrResult(msg string, chunkIndex int) AnalysisResult {
	return AnalysisResult{Err: msg, ChunkIndex: chunkIndex}
}

// IsError reports whether the result is an error marker.
func (r AnalysisResult) IsError() bool {
	return r.Err != ""
}

type analysisError struct {
	Error      string `json:"error"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

func (r AnalysisResult) MarshalJSON() ([]byte, error) {
	if r.IsError() {
		return json.Marshal(analysisError{Error: r.Err, ChunkIndex: r.ChunkIndex})
	}
	if len(r.Data) == 0 {
		return []byte("null"), nil
	}
	return r.Data, nil
}

func (r *AnalysisResult) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		if _, ok := probe["error"]; ok && len(probe) <= 2 {
			var ae analysisError
			if err := json.Unmarshal(data, &ae); err == nil && ae.Error != "" {
				r.Err = ae.Error
				r.ChunkIndex = ae.ChunkIndex
				return nil
			}
		}
	}
	r.Data = append(json.RawMessage(nil), data...)
	return nil
}

// CombinedAnalysis wraps per-chunk results for a folder that was too large
// for a single completion call.
type CombinedAnalysis struct {
	Combined bool             `json:"combined_analysis"`
	Chunks   []AnalysisResult `json:"chunks"`
}

// AnalysisOutcome is a folder's result for one analysis type: either a
// single result or a chunked CombinedAnalysis. Exactly one side is set.
type AnalysisOutcome struct {
	Single   *AnalysisResult
	Combined *CombinedAnalysis
}

// SingleOutcome wraps a single AnalysisResult as an outcome.
func SingleOutcome(r AnalysisResult) AnalysisOutcome {
	return AnalysisOutcome{Single: &r}
}

// CombinedOutcome wraps chunked results as an outcome.
func CombinedOutcome(chunks []AnalysisResult) AnalysisOutcome {
	return AnalysisOutcome{Combined: &CombinedAnalysis{Combined: true, Chunks: chunks}}
}

func (o AnalysisOutcome) MarshalJSON() ([]byte, error) {
	switch {
	case o.Combined != nil:
		return json.Marshal(o.Combined)
	case o.Single != nil:
		return json.Marshal(o.Single)
	default:
		return []byte("null"), nil
	}
}

func (o *AnalysisOutcome) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err == nil {
		if _, ok := probe["chunks"]; ok {
			var c CombinedAnalysis
			if err := json.Unmarshal(data, &c); err != nil {
				return err
			}
			o.Combined = &c
			return nil
		}
	}
	var r AnalysisResult
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	o.Single = &r
	return nil
}

// FolderAnalysisSet carries a folder's outcome for both analysis types.
type FolderAnalysisSet struct {
	Excel AnalysisOutcome `json:"excel_analysis"`
	Doc   AnalysisOutcome `json:"doc_analysis"`
}

// FolderAnalysis is the reduced form of one folder: the folder's entries
// with subfolders replaced by their own FolderAnalysis, plus the folder's
// aggregate results. Built once during bottom-up reduction, never mutated.
type FolderAnalysis struct {
	Name     string            `json:"directory"`
	Files    []AnalysisEntry   `json:"files"`
	Analysis FolderAnalysisSet `json:"analysis"`
}

// AnalysisEntry is one child of a FolderAnalysis: a document carried over
// verbatim or a reduced subfolder.
type AnalysisEntry struct {
	Folder   *FolderAnalysis
	Document *DocumentRecord
}

func (e AnalysisEntry) MarshalJSON() ([]byte, error) {
	switch {
	case e.Folder != nil:
		return json.Marshal(e.Folder)
	case e.Document != nil:
		return json.Marshal(e.Document)
	default:
		return nil, fmt.Errorf("analysis entry has neither folder nor document")
	}
}

func (e *AnalysisEntry) UnmarshalJSON(data []byte) error {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if _, ok := probe["directory"]; ok {
		var f FolderAnalysis
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		e.Folder = &f
		return nil
	}
	var d DocumentRecord
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	e.Document = &d
	return nil
}
