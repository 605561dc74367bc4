package handlers

import (
	"net/http"
	"strconv"
	"time"

	"timeledger/config"
	"timeledger/database"
	"timeledger/ledger"
	"timeledger/middleware"
	"timeledger/models"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// EntryHandler exposes entry queries and the approval workflow.
type EntryHandler struct {
	config   *config.Config
	tracker  *ledger.ShiftTracker
	approval *ledger.ApprovalService
	log      *zap.Logger
}

func NewEntryHandler(cfg *config.Config, tracker *ledger.ShiftTracker, approval *ledger.ApprovalService, log *zap.Logger) *EntryHandler {
	return &EntryHandler{config: cfg, tracker: tracker, approval: approval, log: log}
}

func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	filter := models.EntryFilter{}
	if workerStr := r.URL.Query().Get("worker_id"); workerStr != "" {
		if wid, err := strconv.ParseUint(workerStr, 10, 32); err == nil {
			filter.WorkerID = uint(wid)
		}
	}
	if status := r.URL.Query().Get("status"); status != "" {
		filter.Status = models.EntryStatus(status)
	}
	if from, ok := parseDateParam(r, "from"); ok {
		filter.From = &from
	}
	if to, ok := parseDateParam(r, "to"); ok {
		filter.To = &to
	}

	// Workers only see their own entries.
	if !user.CanViewAllEntries() {
		filter.WorkerID = user.ID
	}

	entries, err := h.tracker.ListEntries(r.Context(), filter)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	entry, err := h.tracker.GetEntry(r.Context(), entryID)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	if !user.CanViewAllEntries() && entry.WorkerID != user.ID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	existing, err := h.tracker.GetEntry(r.Context(), entryID)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	if !user.CanManageEntriesFor(existing.WorkerID) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	var entry any
	err = ledger.WithRetry(r.Context(), h.config.RetryAttempts, h.config.RetryBackoff, func() error {
		e, err := h.approval.Submit(r.Context(), entryID, provenanceFrom(r, user.ID))
		entry = e
		return err
	})
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	var entry any
	err := ledger.WithRetry(r.Context(), h.config.RetryAttempts, h.config.RetryBackoff, func() error {
		e, err := h.approval.Approve(r.Context(), entryID, provenanceFrom(r, user.ID))
		entry = e
		return err
	})
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

func (h *EntryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	var req rejectRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	var entry any
	err := ledger.WithRetry(r.Context(), h.config.RetryAttempts, h.config.RetryBackoff, func() error {
		e, err := h.approval.Reject(r.Context(), entryID, req.Reason, provenanceFrom(r, user.ID))
		entry = e
		return err
	})
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type noteRequest struct {
	Body string `json:"body"`
}

func (h *EntryHandler) AddNote(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	existing, err := h.tracker.GetEntry(r.Context(), entryID)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	if !user.CanViewAllEntries() && existing.WorkerID != user.ID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	var req noteRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	note, err := h.approval.AddNote(r.Context(), entryID, req.Body, provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (h *EntryHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	entry, err := h.approval.MarkPaid(r.Context(), entryID, provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// Forecast returns the advisory weekly 40/60 bucket view over settled
// entries. Never used for settlement.
func (h *EntryHandler) Forecast(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	workerID := user.ID
	if workerStr := r.URL.Query().Get("worker_id"); workerStr != "" && user.CanViewAllEntries() {
		if wid, err := strconv.ParseUint(workerStr, 10, 32); err == nil {
			workerID = uint(wid)
		}
	}

	weekStart, ok := parseDateParam(r, "week_start")
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "week_start is required, want YYYY-MM-DD"})
		return
	}

	forecast, err := ledger.WeeklyOvertimeForecast(database.GetDB().WithContext(r.Context()), workerID, weekStart)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, forecast)
}

func entryIDFromURL(w http.ResponseWriter, r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid entry id"})
		return 0, false
	}
	return uint(id), true
}

func parseDateParam(r *http.Request, key string) (time.Time, bool) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func parseBreakType(s string) models.BreakType {
	switch models.BreakType(s) {
	case models.BreakMeal, models.BreakShort, models.BreakPersonal:
		return models.BreakType(s)
	default:
		return models.BreakShort
	}
}
