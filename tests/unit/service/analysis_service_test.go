package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fundscope/internal/analysis"
	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/extract"
	"fundscope/internal/port"
	"fundscope/internal/service"
	"fundscope/internal/tokens"
	"fundscope/internal/tree"
	"fundscope/internal/workspace"
	"fundscope/mocks"
)

var testLogger = log.New(io.Discard, "", 0)

// fundCompleter answers fund-extraction calls with two overlapping fund
// records and the dedup call with the single merged record, so a
// completed run proves the dedup path actually ran.
func fundCompleter() port.Completer {
	return port.CompleterFunc(func(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error) {
		if systemPrompt == analysis.FundDedupSystemPrompt {
			return json.RawMessage(`{"analysis": [{"Fund Manager": "Acme Capital", "Fund Size": "$50M", "TVPI": "2.1x"}]}`), nil
		}
		return json.RawMessage(`{"analysis": [{"Fund Manager": "Acme Capital", "TVPI": "2.1x"}, {"Fund Manager": "Acme Capital Fund II", "Fund Size": "$50M"}]}`), nil
	})
}

// storeTree is a two-folder document store: one folder with material and
// one empty.
func storeTree() *domain.FolderNode {
	return &domain.FolderNode{
		Name: "/",
		Children: []domain.TreeEntry{
			domain.FolderEntry(&domain.FolderNode{
				Name: "Acme Fund",
				Children: []domain.TreeEntry{
					domain.DocumentEntry(domain.DocumentRecord{
						Path: "Acme Fund/deck.txt",
						Name: "deck.txt",
					}),
					domain.DocumentEntry(domain.DocumentRecord{
						Path: "Acme Fund/metrics.txt",
						Name: "metrics.txt",
					}),
				},
			}),
			domain.FolderEntry(&domain.FolderNode{Name: "Empty Folder"}),
		},
	}
}

type pipelineFixture struct {
	fileStore *mocks.MockFileStore
	storage   *mocks.MockObjectStorage
	runs      *mocks.MockAnalysisRunRepo
	svc       service.AnalysisService
	wsRoot    string
}

func newPipeline(t *testing.T, completer port.Completer, storage *mocks.MockObjectStorage, runs *mocks.MockAnalysisRunRepo) *pipelineFixture {
	t.Helper()

	acct := tokens.NewAccountant("gpt-4o-mini")
	extractor := extract.NewExtractor(testLogger)
	fileStore := new(mocks.MockFileStore)
	walker := tree.NewWalker(fileStore, extractor, 2, testLogger)
	chunker := analysis.NewChunker(acct, 25000, 5)
	dispatcher := analysis.NewDispatcher(completer, 2, 1, testLogger)
	reducer := analysis.NewReducer(chunker, dispatcher, acct, 120000, 5, testLogger)
	consolidator := analysis.NewConsolidator(analysis.NewCompleterMergePolicy(completer), testLogger)

	wsRoot := t.TempDir()
	workspaces := workspace.NewManager(wsRoot, true, testLogger)

	var objStorage port.ObjectStorage
	if storage != nil {
		objStorage = storage
	}
	var runRepo port.AnalysisRunRepository
	if runs != nil {
		runRepo = runs
	}

	svc := service.NewAnalysisService(
		fileStore, walker, reducer, consolidator, workspaces,
		objStorage, runRepo, nil,
		&config.S3Config{Bucket: "test-bucket", PresignExpiry: 3600},
		&config.EmailConfig{},
		testLogger,
	)
	return &pipelineFixture{fileStore: fileStore, storage: storage, runs: runs, svc: svc, wsRoot: wsRoot}
}

func TestAnalysisService_Run_FullPipeline(t *testing.T) {
	runs := new(mocks.MockAnalysisRunRepo)
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	runs.On("Update", mock.Anything, mock.MatchedBy(func(run *domain.AnalysisRun) bool {
		return run.Status == domain.RunStatusCompleted && run.FundCount == 1
	})).Return(nil)

	f := newPipeline(t, fundCompleter(), nil, runs)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, "Acme Fund/deck.txt").
		Return([]byte("Acme Capital Fund II pitch deck. Target 50M."), nil)
	f.fileStore.On("Download", mock.Anything, "Acme Fund/metrics.txt").
		Return([]byte("TVPI 2.1x, DPI 0.8x, IRR 24%."), nil)

	result, err := f.svc.Run(context.Background(), "/")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, domain.RunStatusCompleted, result.Run.Status)
	require.Len(t, result.Funds, 1)
	assert.Equal(t, "Acme Capital", result.Funds[0]["Fund Manager"])
	// The size only appears on the merged record the dedup call returns.
	assert.Equal(t, "$50M", result.Funds[0]["Fund Size"])
	require.NotNil(t, result.Reduced)

	runs.AssertExpectations(t)
	f.fileStore.AssertExpectations(t)
}

func TestAnalysisService_Run_WritesCheckpoints(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, mock.Anything).
		Return([]byte("fund material"), nil)

	result, err := f.svc.Run(context.Background(), "/")
	require.NoError(t, err)

	// Workspace is kept, so the run directory holds the three
	// checkpoints.
	runDir := filepath.Join(f.wsRoot, result.Run.ID.String())
	for _, name := range []string{
		workspace.ExtractedTreeFile,
		workspace.ReducedAnalysisFile,
		workspace.ConsolidatedFundFile,
	} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, name)
	}

	// The extracted-tree checkpoint round-trips to the hydrated tree.
	data, err := os.ReadFile(filepath.Join(runDir, workspace.ExtractedTreeFile))
	require.NoError(t, err)
	var root domain.FolderNode
	require.NoError(t, json.Unmarshal(data, &root))
	assert.Equal(t, "/", root.Name)
}

func TestAnalysisService_Run_DeterministicAcrossRuns(t *testing.T) {
	runOnce := func() []byte {
		f := newPipeline(t, fundCompleter(), nil, nil)
		f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
		f.fileStore.On("Download", mock.Anything, "Acme Fund/deck.txt").
			Return([]byte("Acme Capital Fund II pitch deck. Target 50M."), nil)
		f.fileStore.On("Download", mock.Anything, "Acme Fund/metrics.txt").
			Return([]byte("TVPI 2.1x, DPI 0.8x, IRR 24%."), nil)

		result, err := f.svc.Run(context.Background(), "/")
		require.NoError(t, err)

		data, err := os.ReadFile(filepath.Join(
			f.wsRoot, result.Run.ID.String(), workspace.ConsolidatedFundFile))
		require.NoError(t, err)
		return data
	}

	// Two independent runs over the same store contents write identical
	// consolidated checkpoints byte for byte.
	assert.Equal(t, string(runOnce()), string(runOnce()))
}

func TestAnalysisService_Run_SelectsSubtree(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, "Acme Fund/deck.txt").
		Return([]byte("deck"), nil)
	f.fileStore.On("Download", mock.Anything, "Acme Fund/metrics.txt").
		Return([]byte("metrics"), nil)

	result, err := f.svc.Run(context.Background(), "Acme Fund")
	require.NoError(t, err)
	require.Len(t, result.Funds, 1)
}

func TestAnalysisService_Run_UnknownRootPath(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)

	_, err := f.svc.Run(context.Background(), "No Such Folder")
	assert.ErrorIs(t, err, domain.ErrInvalidRootPath)
}

func TestAnalysisService_Run_EmptyTree(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)

	_, err := f.svc.Run(context.Background(), "Empty Folder")
	assert.ErrorIs(t, err, domain.ErrEmptyTree)
}

func TestAnalysisService_Run_ListTreeFailure(t *testing.T) {
	runs := new(mocks.MockAnalysisRunRepo)
	runs.On("Create", mock.Anything, mock.Anything).Return(nil)
	runs.On("Update", mock.Anything, mock.MatchedBy(func(run *domain.AnalysisRun) bool {
		return run.Status == domain.RunStatusFailed && run.ErrorMsg != ""
	})).Return(nil)

	f := newPipeline(t, fundCompleter(), nil, runs)
	f.fileStore.On("ListTree", mock.Anything).
		Return(nil, domain.ErrTreeListFailed)

	_, err := f.svc.Run(context.Background(), "/")
	assert.ErrorIs(t, err, domain.ErrTreeListFailed)
	runs.AssertExpectations(t)
}

func TestAnalysisService_Run_PublishesArtifacts(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.MatchedBy(func(in port.UploadInput) bool {
		return in.Bucket == "test-bucket"
	})).Return(&port.UploadOutput{Location: "s3://test-bucket"}, nil).Twice()
	storage.On("GetPresignedURL", mock.Anything, "test-bucket", mock.Anything, int64(3600)).
		Return("https://signed.example/artifact", nil).Twice()

	f := newPipeline(t, fundCompleter(), storage, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, mock.Anything).
		Return([]byte("fund material"), nil)

	result, err := f.svc.Run(context.Background(), "/")
	require.NoError(t, err)

	assert.Equal(t, "https://signed.example/artifact", result.ExcelURL)
	assert.Equal(t, "https://signed.example/artifact", result.DocURL)
	assert.Contains(t, result.Run.ExcelKey, result.Run.ID.String())
	storage.AssertExpectations(t)
}

func TestAnalysisService_Run_PublishFailureDoesNotFailRun(t *testing.T) {
	storage := new(mocks.MockObjectStorage)
	storage.On("Upload", mock.Anything, mock.Anything).
		Return(nil, errors.New("bucket unreachable"))

	f := newPipeline(t, fundCompleter(), storage, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, mock.Anything).
		Return([]byte("fund material"), nil)

	result, err := f.svc.Run(context.Background(), "/")
	require.NoError(t, err)
	assert.Empty(t, result.ExcelURL)
	assert.Empty(t, result.DocURL)
	require.Len(t, result.Funds, 1)
}

func TestAnalysisService_Run_CompleterFailureYieldsErrorMarkers(t *testing.T) {
	// Every completion call fails; the reduce still succeeds with error
	// markers embedded, and consolidation yields no funds.
	failing := port.CompleterFunc(func(ctx context.Context, systemPrompt, payload string) (json.RawMessage, error) {
		return nil, errors.New("model unavailable")
	})

	f := newPipeline(t, failing, nil, nil)
	f.fileStore.On("ListTree", mock.Anything).Return(storeTree(), nil)
	f.fileStore.On("Download", mock.Anything, mock.Anything).
		Return([]byte("fund material"), nil)

	result, err := f.svc.Run(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, result.Run.Status)
	assert.Empty(t, result.Funds)
}

func TestAnalysisService_GetRun_NoRepository(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)

	_, err := f.svc.GetRun(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisService_ListRuns_NoRepository(t *testing.T) {
	f := newPipeline(t, fundCompleter(), nil, nil)

	runs, total, err := f.svc.ListRuns(context.Background(), 0, 20)
	assert.NoError(t, err)
	assert.Empty(t, runs)
	assert.Zero(t, total)
}
