package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fundscope/internal/domain"
	"fundscope/internal/port"
	"fundscope/internal/tokens"
)

func newTestReducer(completer port.Completer, maxCallTokens, maxChunkTokens, maxFiles int) *Reducer {
	acct := tokens.NewAccountant("")
	chunker := NewChunker(acct, maxChunkTokens, maxFiles)
	dispatcher := NewDispatcher(completer, 2, 1, nil)
	return NewReducer(chunker, dispatcher, acct, maxCallTokens, maxFiles, nil)
}

func okCompleter() port.Completer {
	return port.CompleterFunc(func(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error) {
		return json.RawMessage(`{"Fund Manager":"Test Capital"}`), nil
	})
}

func TestReduce_EmptyFolderGetsExplicitError(t *testing.T) {
	root := &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.FolderEntry(&domain.FolderNode{Name: "Empty VC"}),
		},
	}

	r := newTestReducer(okCompleter(), 120000, 25000, 5)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	folder := result.Files[0].Folder
	require.NotNil(t, folder)
	require.NotNil(t, folder.Analysis.Excel.Single)
	assert.Equal(t, "No documents found in folder", folder.Analysis.Excel.Single.Err)
	require.NotNil(t, folder.Analysis.Doc.Single)
	assert.Equal(t, "No documents found in folder", folder.Analysis.Doc.Single.Err)
}

func TestReduce_SmallFolderSingleBatch(t *testing.T) {
	var calls int32
	completer := port.CompleterFunc(func(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`{"Fund Manager":"Alpine"}`), nil
	})

	root := &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.FolderEntry(&domain.FolderNode{
				Name: "Alpine VC",
				Children: []domain.TreeEntry{
					domain.DocumentEntry(*doc("deck.txt", words(50))),
					domain.DocumentEntry(*doc("terms.txt", words(30))),
				},
			}),
		},
	}

	r := newTestReducer(completer, 120000, 25000, 5)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	folder := result.Files[0].Folder
	require.NotNil(t, folder)
	assert.NotNil(t, folder.Analysis.Excel.Single)
	assert.Nil(t, folder.Analysis.Excel.Combined)
	assert.NotNil(t, folder.Analysis.Doc.Single)
	// One call per analysis type.
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestReduce_LargeFolderChunked(t *testing.T) {
	root := &domain.FolderNode{Name: "/"}
	folder := &domain.FolderNode{Name: "Big Fund"}
	for i := 0; i < 8; i++ {
		folder.Children = append(folder.Children,
			domain.DocumentEntry(*doc(fmt.Sprintf("doc%d.txt", i), words(40))))
	}
	root.Children = []domain.TreeEntry{domain.FolderEntry(folder)}

	// File ceiling of 3 forces chunking regardless of token budget.
	r := newTestReducer(okCompleter(), 120000, 25000, 3)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	analyzed := result.Files[0].Folder
	require.NotNil(t, analyzed.Analysis.Excel.Combined)
	assert.True(t, analyzed.Analysis.Excel.Combined.Combined)
	assert.Len(t, analyzed.Analysis.Excel.Combined.Chunks, 3)
	require.NotNil(t, analyzed.Analysis.Doc.Combined)
	assert.Len(t, analyzed.Analysis.Doc.Combined.Chunks, 3)
}

func TestReduce_RootDocumentsCarriedVerbatim(t *testing.T) {
	root := &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.DocumentEntry(*doc("readme.txt", "hello")),
		},
	}

	r := newTestReducer(okCompleter(), 120000, 25000, 5)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	require.Len(t, result.Files, 1)
	require.NotNil(t, result.Files[0].Document)
	assert.Equal(t, "readme.txt", result.Files[0].Document.Name)
	assert.Nil(t, result.Analysis.Excel.Single)
	assert.Nil(t, result.Analysis.Excel.Combined)
}

func TestReduce_NestedFoldersReducedPostOrder(t *testing.T) {
	root := &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.FolderEntry(&domain.FolderNode{
				Name: "Parent",
				Children: []domain.TreeEntry{
					domain.FolderEntry(&domain.FolderNode{
						Name: "Child",
						Children: []domain.TreeEntry{
							domain.DocumentEntry(*doc("inner.txt", words(10))),
						},
					}),
				},
			}),
		},
	}

	r := newTestReducer(okCompleter(), 120000, 25000, 5)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	parent := result.Files[0].Folder
	require.NotNil(t, parent)
	child := parent.Files[0].Folder
	require.NotNil(t, child)

	// Both levels carry their own analysis over the same document.
	assert.NotNil(t, child.Analysis.Excel.Single)
	assert.NotNil(t, parent.Analysis.Excel.Single)
}

func TestReduce_RoundTripsThroughJSON(t *testing.T) {
	root := &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.FolderEntry(&domain.FolderNode{
				Name: "Alpine VC",
				Children: []domain.TreeEntry{
					domain.DocumentEntry(*doc("deck.txt", words(10))),
				},
			}),
		},
	}

	r := newTestReducer(okCompleter(), 120000, 25000, 5)
	result, err := r.Reduce(context.Background(), root, ExcelSystemPrompt, DocSystemPrompt)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded domain.FolderAnalysis
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "Alpine VC", decoded.Files[0].Folder.Name)
	require.NotNil(t, decoded.Files[0].Folder.Analysis.Excel.Single)
	assert.JSONEq(t, `{"Fund Manager":"Test Capital"}`, string(decoded.Files[0].Folder.Analysis.Excel.Single.Data))
}
