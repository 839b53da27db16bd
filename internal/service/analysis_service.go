package service

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"fundscope/internal/analysis"
	"fundscope/internal/config"
	"fundscope/internal/domain"
	"fundscope/internal/port"
	"fundscope/internal/render"
	"fundscope/internal/tree"
	"fundscope/internal/workspace"
)

// Artifact file names inside a run workspace and under the storage key
// prefix.
const (
	excelArtifactName = "extracted_results.xlsx"
	docArtifactName   = "doc_extracted_results.docx"
)

// RunResult is the payload of a completed analysis run.
type RunResult struct {
	Run      domain.AnalysisRun     `json:"run"`
	Funds    []domain.Fund          `json:"funds"`
	Reduced  *domain.FolderAnalysis `json:"reduced,omitempty"`
	ExcelURL string                 `json:"excel_url,omitempty"`
	DocURL   string                 `json:"doc_url,omitempty"`
}

// AnalysisService runs the diligence pipeline end to end and exposes
// run history.
type AnalysisService interface {
	Run(ctx context.Context, rootPath string) (*RunResult, error)
	GetRun(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error)
	ListRuns(ctx context.Context, offset, limit int) ([]domain.AnalysisRun, int, error)
}

type analysisService struct {
	fileStore    port.FileStore
	walker       *tree.Walker
	reducer      *analysis.Reducer
	consolidator *analysis.Consolidator
	workspaces   *workspace.Manager
	storage      port.ObjectStorage
	runs         port.AnalysisRunRepository
	email        port.EmailSender
	s3cfg        *config.S3Config
	emailCfg     *config.EmailConfig
	logger       *log.Logger
}

// NewAnalysisService wires the pipeline. storage, runs, and email may be
// nil; the corresponding steps are skipped.
func NewAnalysisService(
	fileStore port.FileStore,
	walker *tree.Walker,
	reducer *analysis.Reducer,
	consolidator *analysis.Consolidator,
	workspaces *workspace.Manager,
	storage port.ObjectStorage,
	runs port.AnalysisRunRepository,
	email port.EmailSender,
	s3cfg *config.S3Config,
	emailCfg *config.EmailConfig,
	logger *log.Logger,
) AnalysisService {
	if logger == nil {
		logger = log.Default()
	}
	return &analysisService{
		fileStore:    fileStore,
		walker:       walker,
		reducer:      reducer,
		consolidator: consolidator,
		workspaces:   workspaces,
		storage:      storage,
		runs:         runs,
		email:        email,
		s3cfg:        s3cfg,
		emailCfg:     emailCfg,
		logger:       logger,
	}
}

// Run executes the full pipeline for the subtree at rootPath: list,
// hydrate, reduce, consolidate, render, publish. Partial results are a
// success; only tree listing and subtree selection fail the run
// outright. The run workspace is removed on every exit path.
func (s *analysisService) Run(ctx context.Context, rootPath string) (*RunResult, error) {
	runID := uuid.New()
	run := domain.AnalysisRun{
		ID:        runID,
		RootPath:  rootPath,
		Status:    domain.RunStatusRunning,
		StartedAt: time.Now().UTC(),
	}
	s.recordCreate(ctx, &run)

	result, err := s.execute(ctx, runID, rootPath)
	now := time.Now().UTC()
	run.CompletedAt = &now
	if err != nil {
		run.Status = domain.RunStatusFailed
		run.ErrorMsg = err.Error()
		s.recordUpdate(ctx, &run)
		s.notify(&run)
		return nil, err
	}

	run.Status = domain.RunStatusCompleted
	run.FundCount = len(result.Funds)
	run.ExcelKey = result.Run.ExcelKey
	run.DocKey = result.Run.DocKey
	s.recordUpdate(ctx, &run)
	s.notify(&run)

	result.Run = run
	return result, nil
}

func (s *analysisService) execute(ctx context.Context, runID uuid.UUID, rootPath string) (*RunResult, error) {
	listed, err := s.fileStore.ListTree(ctx)
	if err != nil {
		return nil, err
	}

	root, err := selectSubtree(listed, rootPath)
	if err != nil {
		return nil, err
	}

	ws, err := s.workspaces.Create(runID)
	if err != nil {
		return nil, err
	}
	defer ws.Cleanup(s.logger)

	docs, err := s.walker.Hydrate(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyTree, rootPath)
	}
	s.logger.Printf("[INFO] run %s: hydrated %d documents under %s", runID, len(docs), rootPath)

	s.checkpoint(ws, workspace.ExtractedTreeFile, root)

	reduced, err := s.reducer.Reduce(ctx, root, analysis.ExcelSystemPrompt, analysis.DocSystemPrompt)
	if err != nil {
		return nil, err
	}
	s.checkpoint(ws, workspace.ReducedAnalysisFile, reduced)

	consolidated := s.consolidator.Consolidate(ctx, reduced)
	s.checkpoint(ws, workspace.ConsolidatedFundFile, consolidated)

	result := &RunResult{Funds: consolidated.Funds, Reduced: reduced}
	s.publishArtifacts(ctx, runID, consolidated, result)
	return result, nil
}

// publishArtifacts renders the workbook and report and uploads them.
// Rendering or publishing problems never fail the run; the consolidated
// data is already safe.
func (s *analysisService) publishArtifacts(ctx context.Context, runID uuid.UUID, consolidated domain.ConsolidatedResult, result *RunResult) {
	if s.storage == nil || s.s3cfg == nil || s.s3cfg.Bucket == "" {
		return
	}

	if data, err := render.FundTable(consolidated); err != nil {
		s.logger.Printf("[WARN] run %s: rendering fund table failed: %v", runID, err)
	} else {
		key := artifactKey(runID, excelArtifactName)
		if url, err := s.upload(ctx, key, data,
			"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"); err != nil {
			s.logger.Printf("[WARN] run %s: publishing %s failed: %v", runID, key, err)
		} else {
			result.Run.ExcelKey = key
			result.ExcelURL = url
		}
	}

	if data, err := render.DocReport("Fund Analysis", docReportData(consolidated)); err != nil {
		s.logger.Printf("[WARN] run %s: rendering report failed: %v", runID, err)
	} else {
		key := artifactKey(runID, docArtifactName)
		if url, err := s.upload(ctx, key, data,
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document"); err != nil {
			s.logger.Printf("[WARN] run %s: publishing %s failed: %v", runID, key, err)
		} else {
			result.Run.DocKey = key
			result.DocURL = url
		}
	}
}

func (s *analysisService) upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(data),
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, key, s.s3cfg.PresignExpiry)
}

func (s *analysisService) GetRun(ctx context.Context, id uuid.UUID) (*domain.AnalysisRun, error) {
	if s.runs == nil {
		return nil, domain.ErrNotFound
	}
	return s.runs.GetByID(ctx, id)
}

func (s *analysisService) ListRuns(ctx context.Context, offset, limit int) ([]domain.AnalysisRun, int, error) {
	if s.runs == nil {
		return []domain.AnalysisRun{}, 0, nil
	}
	return s.runs.List(ctx, offset, limit)
}

func (s *analysisService) checkpoint(ws *workspace.Workspace, name string, v any) {
	if err := ws.WriteCheckpoint(name, v); err != nil {
		s.logger.Printf("[WARN] workspace: %v", err)
	}
}

func (s *analysisService) recordCreate(ctx context.Context, run *domain.AnalysisRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Create(ctx, run); err != nil {
		s.logger.Printf("[WARN] run %s: persisting run record failed: %v", run.ID, err)
	}
}

func (s *analysisService) recordUpdate(ctx context.Context, run *domain.AnalysisRun) {
	if s.runs == nil {
		return
	}
	if err := s.runs.Update(ctx, run); err != nil {
		s.logger.Printf("[WARN] run %s: updating run record failed: %v", run.ID, err)
	}
}

// notify sends a best-effort completion summary.
func (s *analysisService) notify(run *domain.AnalysisRun) {
	if s.email == nil || s.emailCfg == nil || s.emailCfg.NotifyTo == "" {
		return
	}

	subject := fmt.Sprintf("Fund analysis %s: %s", run.ID, run.Status)
	body := fmt.Sprintf("Root path: %s\nStatus: %s\nFunds: %d\n", run.RootPath, run.Status, run.FundCount)
	if run.ErrorMsg != "" {
		body += "Error: " + run.ErrorMsg + "\n"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.email.Send(ctx, port.EmailMessage{
		To:      []string{s.emailCfg.NotifyTo},
		Subject: subject,
		Body:    body,
	}); err != nil {
		s.logger.Printf("[WARN] run %s: notification failed: %v", run.ID, err)
	}
}

func artifactKey(runID uuid.UUID, name string) string {
	return fmt.Sprintf("runs/%s/%s", runID, name)
}

// docReportData shapes the consolidated list for the narrative report.
func docReportData(consolidated domain.ConsolidatedResult) map[string]any {
	funds := make([]any, len(consolidated.Funds))
	for i, fund := range consolidated.Funds {
		funds[i] = map[string]any(fund)
	}
	return map[string]any{"Funds": funds}
}

// selectSubtree resolves rootPath ("/" for the whole tree) to a node of
// the listed tree.
func selectSubtree(root *domain.FolderNode, rootPath string) (*domain.FolderNode, error) {
	cleaned := strings.Trim(rootPath, "/")
	if cleaned == "" {
		return root, nil
	}

	node := root
	for _, segment := range strings.Split(cleaned, "/") {
		var next *domain.FolderNode
		for _, entry := range node.Children {
			if entry.Folder != nil && entry.Folder.Name == segment {
				next = entry.Folder
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidRootPath, rootPath)
		}
		node = next
	}
	// Wrap the selected folder so it is analyzed as a unit rather than
	// serving as the (unanalyzed) root.
	return &domain.FolderNode{
		Name:     "/",
		Children: []domain.TreeEntry{domain.FolderEntry(node)},
	}, nil
}
