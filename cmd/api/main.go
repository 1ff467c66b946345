package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/propbooks/cardledger/internal/api/handlers"
	"github.com/propbooks/cardledger/internal/api/middleware"
	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/importer"
	"github.com/propbooks/cardledger/internal/jobs"
	"github.com/propbooks/cardledger/internal/jobs/inmemory"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
	"github.com/propbooks/cardledger/internal/session"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	ctx := context.Background()

	blobs, err := cfg.OpenBlobStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open blob store")
	}

	store := ledger.New(blobs, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	// The ledger store does not lock; every request path and the import
	// worker go through this mutex.
	var storeMu sync.Mutex

	sessions := session.NewManager()

	// Job infrastructure for bulk statement imports.
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, jobStore)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	jobHandler := func(ctx context.Context, job jobs.Job) error {
		importJob, ok := job.(*jobs.ImportStatementJob)
		if !ok {
			return fmt.Errorf("unexpected job type: %T", job)
		}

		log.Info().
			Str("job_id", importJob.JobID).
			Str("card_last4", importJob.CardLast4).
			Msg("Processing import job")

		storeMu.Lock()
		result, err := importer.ImportStatement(ctx, store, importJob.Statement, importJob.CardLast4, importJob.Category, log)
		storeMu.Unlock()
		if err != nil {
			log.Error().Err(err).Str("job_id", importJob.JobID).Msg("Import job failed")
			return err
		}

		importJob.Created = result.Created
		importJob.Skipped = result.Skipped
		return nil
	}

	go func() {
		log.Info().Msg("Starting import worker")
		if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
			log.Error().Err(err).Msg("Import worker stopped with error")
		}
	}()

	ledgerHandler := handlers.NewLedgerHandler(&storeMu, store, log)
	transactionsHandler := handlers.NewTransactionsHandler(&storeMu, store, log)
	reconciliationHandler := handlers.NewReconciliationHandler(&storeMu, store, sessions, log)
	backupHandler := handlers.NewBackupHandler(&storeMu, store, log)
	importsHandler := handlers.NewImportsHandler(jobQueue, jobStore, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/investors", ledgerHandler.ListInvestors).Methods(http.MethodGet)
	api.HandleFunc("/investors", ledgerHandler.CreateInvestor).Methods(http.MethodPost)
	api.HandleFunc("/properties", ledgerHandler.ListProperties).Methods(http.MethodGet)
	api.HandleFunc("/properties", ledgerHandler.CreateProperty).Methods(http.MethodPost)
	api.HandleFunc("/cards", ledgerHandler.ListCards).Methods(http.MethodGet)
	api.HandleFunc("/cards", ledgerHandler.CreateCard).Methods(http.MethodPost)

	api.HandleFunc("/transactions", transactionsHandler.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions", transactionsHandler.CreateTransaction).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", transactionsHandler.UpdateTransaction).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", transactionsHandler.DeleteTransaction).Methods(http.MethodDelete)
	api.HandleFunc("/transactions/{id}/confirm-duplicate", transactionsHandler.ConfirmDuplicate).Methods(http.MethodPost)

	api.HandleFunc("/trash", transactionsHandler.ListDeleted).Methods(http.MethodGet)
	api.HandleFunc("/trash/{id}/restore", transactionsHandler.RestoreTransaction).Methods(http.MethodPost)
	api.HandleFunc("/trash/{id}", transactionsHandler.PurgeTransaction).Methods(http.MethodDelete)

	api.HandleFunc("/reconciliation/sessions", reconciliationHandler.CreateSession).Methods(http.MethodPost)
	api.HandleFunc("/reconciliation/sessions/{id}", reconciliationHandler.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/reconciliation/sessions/{id}", reconciliationHandler.CloseSession).Methods(http.MethodDelete)
	api.HandleFunc("/reconciliation/sessions/{id}/lines/{lineId}/candidates", reconciliationHandler.ListCandidates).Methods(http.MethodGet)
	api.HandleFunc("/reconciliation/sessions/{id}/lines/{lineId}/confirm", reconciliationHandler.ConfirmMatch).Methods(http.MethodPost)

	api.HandleFunc("/backup", backupHandler.Export).Methods(http.MethodGet)
	api.HandleFunc("/backup", backupHandler.Import).Methods(http.MethodPost)

	api.HandleFunc("/imports", importsHandler.EnqueueImport).Methods(http.MethodPost)
	api.HandleFunc("/imports", importsHandler.ListImports).Methods(http.MethodGet)
	api.HandleFunc("/imports/{id}", importsHandler.GetImport).Methods(http.MethodGet)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	handler := middleware.Recovery(log)(
		middleware.Logger(log)(
			middleware.RequestID(
				middleware.CORS(r),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("backend", cfg.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}

	log.Info().Msg("Server exited")
}
