package handlers

import (
	"net/http"
	"strconv"
	"time"

	"timeledger/config"
	"timeledger/ledger"
	"timeledger/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ShiftHandler exposes the clock lifecycle. Mutations route through the
// ledger with a bounded retry on storage failures.
type ShiftHandler struct {
	config  *config.Config
	tracker *ledger.ShiftTracker
	breaks  *ledger.BreakLedger
	log     *zap.Logger
}

func NewShiftHandler(cfg *config.Config, tracker *ledger.ShiftTracker, breaks *ledger.BreakLedger, log *zap.Logger) *ShiftHandler {
	return &ShiftHandler{config: cfg, tracker: tracker, breaks: breaks, log: log}
}

type clockInRequest struct {
	JobID    *uint  `json:"job_id"`
	Location string `json:"location"`
}

func (h *ShiftHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req clockInRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	var entry any
	err := ledger.WithRetry(r.Context(), h.config.RetryAttempts, h.config.RetryBackoff, func() error {
		e, err := h.tracker.ClockIn(r.Context(), user.ID, req.JobID, req.Location, provenanceFrom(r, user.ID))
		entry = e
		return err
	})
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type clockOutRequest struct {
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (h *ShiftHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req clockOutRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
			return
		}
	}

	var entry any
	err := ledger.WithRetry(r.Context(), h.config.RetryAttempts, h.config.RetryBackoff, func() error {
		e, err := h.tracker.ClockOut(r.Context(), user.ID, req.Location, req.Description, provenanceFrom(r, user.ID))
		entry = e
		return err
	})
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type manualEntryRequest struct {
	WorkerID    uint    `json:"worker_id"`
	JobID       *uint   `json:"job_id"`
	Date        string  `json:"date"`
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func (h *ShiftHandler) CreateManualEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req manualEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date format, want YYYY-MM-DD"})
		return
	}
	if req.Hours <= 0 || req.Hours > 24 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "hours must be between 0 and 24"})
		return
	}

	targetWorkerID := user.ID
	if req.WorkerID != 0 && user.IsAdmin() {
		targetWorkerID = req.WorkerID
	}
	if !user.CanManageEntriesFor(targetWorkerID) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	entry, err := h.tracker.CreateManualEntry(r.Context(), targetWorkerID, req.JobID, date, req.Hours, req.Description, provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

type amendRequest struct {
	Hours       float64 `json:"hours"`
	Description string  `json:"description"`
}

func (h *ShiftHandler) AmendEntry(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())
	entryID, ok := entryIDFromURL(w, r)
	if !ok {
		return
	}

	var req amendRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
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

	entry, err := h.tracker.AmendRejected(r.Context(), entryID, req.Hours, req.Description, provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type startBreakRequest struct {
	TimeEntryID uint   `json:"time_entry_id"`
	Type        string `json:"type"`
	IsPaid      bool   `json:"is_paid"`
}

func (h *ShiftHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	var req startBreakRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	existing, err := h.tracker.GetEntry(r.Context(), req.TimeEntryID)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	if !user.CanManageEntriesFor(existing.WorkerID) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	brk, err := h.breaks.StartBreak(r.Context(), req.TimeEntryID, parseBreakType(req.Type), req.IsPaid, provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, brk)
}

func (h *ShiftHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserFromContext(r.Context())

	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid break id"})
		return
	}

	existing, err := h.breaks.GetBreak(r.Context(), uint(id))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	if existing.TimeEntry == nil || !user.CanManageEntriesFor(existing.TimeEntry.WorkerID) {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "forbidden"})
		return
	}

	brk, err := h.breaks.EndBreak(r.Context(), uint(id), provenanceFrom(r, user.ID))
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, brk)
}
