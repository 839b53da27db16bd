package main

import (
	"fmt"
	"log"
	"net/http"

	"fundscope/internal/analysis"
	"fundscope/internal/completion"
	"fundscope/internal/config"
	"fundscope/internal/contact"
	"fundscope/internal/email/noop"
	"fundscope/internal/email/ses"
	"fundscope/internal/extract"
	"fundscope/internal/filestore"
	s3store "fundscope/internal/filestore/s3"
	"fundscope/internal/handler"
	"fundscope/internal/port"
	"fundscope/internal/repository/postgres"
	"fundscope/internal/router"
	"fundscope/internal/service"
	"fundscope/internal/tokens"
	"fundscope/internal/tree"
	"fundscope/internal/workspace"

	// Register providers.
	_ "fundscope/internal/completion/claude"
	_ "fundscope/internal/completion/openai"
	_ "fundscope/internal/filestore/httpfs"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := log.Default()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	runRepo := postgres.NewRunRepo(db)

	// Remote document store and artifact storage
	fileStore, err := filestore.NewFileStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		st, err := s3store.NewStore(&cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize artifact storage: %w", err)
		}
		storage = st
	}

	// Generative-model client
	completer, err := completion.NewCompleter(&cfg.Completion)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
	}

	// Pipeline components
	acct := tokens.NewAccountant(cfg.Completion.DefaultModel)
	extractor := extract.NewExtractor(logger)
	walker := tree.NewWalker(fileStore, extractor, cfg.Analysis.MaxConcurrency, logger)
	chunker := analysis.NewChunker(acct, cfg.Analysis.MaxChunkTokens, cfg.Analysis.MaxFilesPerChunk)
	dispatcher := analysis.NewDispatcher(completer, cfg.Analysis.MaxConcurrency, cfg.Analysis.MaxRetries, logger)
	reducer := analysis.NewReducer(chunker, dispatcher, acct, cfg.Analysis.MaxCallTokens, cfg.Analysis.MaxFilesPerChunk, logger)
	consolidator := analysis.NewConsolidator(analysis.NewCompleterMergePolicy(completer), logger)
	workspaces := workspace.NewManager(cfg.Analysis.WorkspaceDir, cfg.Analysis.KeepWorkspace, logger)

	// Run-notification email
	var emailSender port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailSender, err = ses.NewSESSender(cfg.Email.Region, cfg.Email.FromAddress, cfg.Email.FromName)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailSender = noop.NewNoopSender(logger)
	}

	// Contact enrichment is optional; the endpoint is disabled without a token.
	var contactSvc service.ContactService
	if cfg.Contact.APIToken != "" {
		finder, err := contact.NewClient(&cfg.Contact)
		if err != nil {
			return fmt.Errorf("failed to initialize contact client: %w", err)
		}
		contactSvc = service.NewContactService(finder)
	} else {
		contactSvc = service.NewContactService(nil)
	}

	analysisSvc := service.NewAnalysisService(
		fileStore, walker, reducer, consolidator, workspaces,
		storage, runRepo, emailSender, &cfg.S3, &cfg.Email, logger,
	)

	// Initialize handlers
	analysisH := handler.NewAnalysisHandler(analysisSvc, logger)
	contactH := handler.NewContactHandler(contactSvc)
	healthH := handler.NewHealthHandler(db)

	r := router.Setup(cfg, analysisH, contactH, healthH)

	// The analyze endpoint is synchronous, so the write timeout must
	// cover a full pipeline run.
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
