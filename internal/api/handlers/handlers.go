// Package handlers implements the HTTP surface over the ledger store.
// The store itself does not lock, so every handler that touches it
// holds the shared mutex for the duration of the request.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/propbooks/cardledger/internal/api/middleware"
	"github.com/propbooks/cardledger/internal/domain"
	"github.com/propbooks/cardledger/internal/jobs"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/recon"
	"github.com/propbooks/cardledger/internal/session"
)

// LedgerHandler handles investor, property and card endpoints.
type LedgerHandler struct {
	mu    *sync.Mutex
	store *ledger.Store
	log   zerolog.Logger
}

// NewLedgerHandler creates a new ledger handler sharing the store guard.
func NewLedgerHandler(mu *sync.Mutex, store *ledger.Store, log zerolog.Logger) *LedgerHandler {
	return &LedgerHandler{mu: mu, store: store, log: log}
}

// ListInvestors handles GET /api/investors
func (h *LedgerHandler) ListInvestors(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	investors := h.store.Investors()
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"investors": investors,
		"count":     len(investors),
	})
}

// CreateInvestor handles POST /api/investors
func (h *LedgerHandler) CreateInvestor(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	h.mu.Lock()
	inv, err := h.store.AddInvestor(r.Context(), req.Name, req.Email)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create investor")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create investor")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, inv)
}

// ListProperties handles GET /api/properties
func (h *LedgerHandler) ListProperties(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	properties := h.store.Properties()
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"properties": properties,
		"count":      len(properties),
	})
}

// CreateProperty handles POST /api/properties
func (h *LedgerHandler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}

	h.mu.Lock()
	name, err := h.store.AddProperty(r.Context(), req.Name)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create property")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create property")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{"name": name})
}

// ListCards handles GET /api/cards
func (h *LedgerHandler) ListCards(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	cards := h.store.Cards()
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"cards": cards,
		"count": len(cards),
	})
}

// CreateCard handles POST /api/cards
func (h *LedgerHandler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var card domain.Card
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if card.CardName == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Card name is required")
		return
	}

	h.mu.Lock()
	created, err := h.store.AddCard(r.Context(), card)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to create card")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create card")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}

// TransactionsHandler handles transaction endpoints, including soft
// delete, restore, purge and duplicate flags.
type TransactionsHandler struct {
	mu    *sync.Mutex
	store *ledger.Store
	log   zerolog.Logger
}

// NewTransactionsHandler creates a new transactions handler.
func NewTransactionsHandler(mu *sync.Mutex, store *ledger.Store, log zerolog.Logger) *TransactionsHandler {
	return &TransactionsHandler{mu: mu, store: store, log: log}
}

// ListTransactions handles GET /api/transactions. The response carries
// the duplicate flags so the client renders them without a second call.
func (h *TransactionsHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	transactions := h.store.Transactions()
	h.mu.Unlock()

	flagged := ledger.DetectDuplicates(transactions)
	duplicates := make([]string, 0, len(flagged))
	for id := range flagged {
		duplicates = append(duplicates, id)
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
		"duplicates":   duplicates,
		"count":        len(transactions),
	})
}

// CreateTransaction handles POST /api/transactions
func (h *TransactionsHandler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if tx.SourceType == "" {
		tx.SourceType = domain.SourceManual
	}

	h.mu.Lock()
	created, err := h.store.AddTransaction(r.Context(), tx)
	h.mu.Unlock()
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			middleware.WriteError(w, http.StatusBadRequest, "Amount must be positive")
			return
		}
		h.log.Error().Err(err).Msg("Failed to create transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to create transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, created)
}

// UpdateTransaction handles PUT /api/transactions/{id}
func (h *TransactionsHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var tx domain.Transaction
	if err := json.NewDecoder(r.Body).Decode(&tx); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	tx.ID = id

	h.mu.Lock()
	err := h.store.UpdateTransaction(r.Context(), tx)
	h.mu.Unlock()
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidAmount) {
			middleware.WriteError(w, http.StatusBadRequest, "Amount must be positive")
			return
		}
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to update transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// DeleteTransaction handles DELETE /api/transactions/{id}. The record
// moves to the deleted collection; nothing is erased.
func (h *TransactionsHandler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	err := h.store.SoftDelete(r.Context(), id)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to delete transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to delete transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// RestoreTransaction handles POST /api/trash/{id}/restore
func (h *TransactionsHandler) RestoreTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	err := h.store.Restore(r.Context(), id)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to restore transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to restore transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "restored"})
}

// ListDeleted handles GET /api/trash
func (h *TransactionsHandler) ListDeleted(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	deleted := h.store.DeletedTransactions()
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": deleted,
		"count":        len(deleted),
	})
}

// PurgeTransaction handles DELETE /api/trash/{id}. This is the only
// permanent removal in the system.
func (h *TransactionsHandler) PurgeTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	err := h.store.Purge(r.Context(), id)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to purge transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to purge transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "purged"})
}

// ConfirmDuplicate handles POST /api/transactions/{id}/confirm-duplicate
func (h *TransactionsHandler) ConfirmDuplicate(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	h.mu.Lock()
	err := h.store.ConfirmDuplicate(r.Context(), id)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", id).Msg("Failed to confirm duplicate")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to confirm duplicate")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "confirmed"})
}

// ReconciliationHandler handles statement parsing and match
// confirmation.
type ReconciliationHandler struct {
	mu       *sync.Mutex
	store    *ledger.Store
	sessions *session.Manager
	log      zerolog.Logger
}

// NewReconciliationHandler creates a new reconciliation handler.
func NewReconciliationHandler(mu *sync.Mutex, store *ledger.Store, sessions *session.Manager, log zerolog.Logger) *ReconciliationHandler {
	return &ReconciliationHandler{mu: mu, store: store, sessions: sessions, log: log}
}

// CreateSession handles POST /api/reconciliation/sessions. The body
// carries the raw statement text; the response reports parsed and
// skipped line counts so a partial parse is never silent.
func (h *ReconciliationHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Statement string `json:"statement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Statement == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Statement text is required")
		return
	}

	parsed, err := recon.ParseStatement(req.Statement)
	if err != nil {
		if errors.Is(err, recon.ErrHeaderMissing) {
			middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to parse statement")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to parse statement")
		return
	}

	s := h.sessions.Create(parsed.Lines, parsed.Skipped)

	h.log.Info().
		Str("session_id", s.ID).
		Int("lines", len(s.Lines)).
		Int("skipped", s.Skipped).
		Msg("Reconciliation session created")

	middleware.WriteJSON(w, http.StatusCreated, s)
}

// GetSession handles GET /api/reconciliation/sessions/{id}
func (h *ReconciliationHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s, err := h.sessions.Get(id)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Session not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, s)
}

// CloseSession handles DELETE /api/reconciliation/sessions/{id}
func (h *ReconciliationHandler) CloseSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.Close(mux.Vars(r)["id"])
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}

// ListCandidates handles
// GET /api/reconciliation/sessions/{id}/lines/{lineId}/candidates.
// Candidates come back in unreconciled-set order; no ranking is
// implied and nothing is committed.
func (h *ReconciliationHandler) ListCandidates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	line, err := h.sessions.Line(vars["id"], vars["lineId"])
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	h.mu.Lock()
	unreconciled := h.store.Unreconciled()
	h.mu.Unlock()

	candidates := recon.Candidates(line, unreconciled)
	if candidates == nil {
		candidates = []domain.Transaction{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// ConfirmMatch handles
// POST /api/reconciliation/sessions/{id}/lines/{lineId}/confirm.
// It flags exactly one ledger transaction as reconciled and marks the
// statement line matched; other candidates are untouched.
func (h *ReconciliationHandler) ConfirmMatch(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		TransactionID string `json:"transaction_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.TransactionID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "transaction_id is required")
		return
	}

	line, err := h.sessions.Line(vars["id"], vars["lineId"])
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	if line.Reconciled {
		middleware.WriteError(w, http.StatusConflict, "Statement line already reconciled")
		return
	}

	h.mu.Lock()
	_, found := h.store.TransactionByID(req.TransactionID)
	if !found {
		h.mu.Unlock()
		middleware.WriteError(w, http.StatusNotFound, "Transaction not found")
		return
	}
	err = h.store.SetReconciled(r.Context(), req.TransactionID, true)
	h.mu.Unlock()
	if err != nil {
		h.log.Error().Err(err).Str("transaction_id", req.TransactionID).Msg("Failed to reconcile transaction")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to reconcile transaction")
		return
	}

	if err := h.sessions.MarkReconciled(vars["id"], vars["lineId"]); err != nil {
		middleware.WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "reconciled"})
}

// BackupHandler handles snapshot export and import.
type BackupHandler struct {
	mu    *sync.Mutex
	store *ledger.Store
	log   zerolog.Logger
}

// NewBackupHandler creates a new backup handler.
func NewBackupHandler(mu *sync.Mutex, store *ledger.Store, log zerolog.Logger) *BackupHandler {
	return &BackupHandler{mu: mu, store: store, log: log}
}

// Export handles GET /api/backup
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	snapshot := h.store.ExportSnapshot()
	h.mu.Unlock()

	middleware.WriteJSON(w, http.StatusOK, snapshot)
}

// Import handles POST /api/backup. Validation is all-or-nothing: a
// malformed snapshot changes nothing.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Failed to read request body")
		return
	}

	h.mu.Lock()
	err = h.store.ImportSnapshot(r.Context(), data)
	h.mu.Unlock()
	if err != nil {
		if errors.Is(err, ledger.ErrInvalidSnapshot) {
			middleware.WriteError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to import snapshot")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to import snapshot")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "imported"})
}

// ImportsHandler handles bulk statement import jobs.
type ImportsHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	log       zerolog.Logger
}

// NewImportsHandler creates a new imports handler.
func NewImportsHandler(publisher jobs.Publisher, store jobs.JobStore, log zerolog.Logger) *ImportsHandler {
	return &ImportsHandler{publisher: publisher, store: store, log: log}
}

// EnqueueImport handles POST /api/imports
func (h *ImportsHandler) EnqueueImport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CardLast4 string `json:"card_last4"`
		Category  string `json:"category"`
		Statement string `json:"statement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CardLast4 == "" || req.Statement == "" {
		middleware.WriteError(w, http.StatusBadRequest, "card_last4 and statement are required")
		return
	}

	job := &jobs.ImportStatementJob{
		CardLast4: req.CardLast4,
		Category:  req.Category,
		Statement: req.Statement,
	}

	if err := h.publisher.PublishImportStatement(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue import job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue import job")
		return
	}

	h.log.Info().Str("job_id", job.JobID).Str("card_last4", req.CardLast4).Msg("Import job enqueued")

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetImport handles GET /api/imports/{id}
func (h *ImportsHandler) GetImport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	job, err := h.store.GetJob(r.Context(), id)
	if err != nil {
		h.log.Error().Err(err).Str("job_id", id).Msg("Failed to get import job")
		middleware.WriteError(w, http.StatusNotFound, "Import job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListImports handles GET /api/imports
func (h *ImportsHandler) ListImports(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := jobs.JobFilter{
		CardLast4: query.Get("card_last4"),
		Status:    jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}
	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	jobsList, err := h.store.ListJobs(r.Context(), filter)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list import jobs")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list import jobs")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobsList,
		"count": len(jobsList),
	})
}
