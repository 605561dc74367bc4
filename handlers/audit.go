package handlers

import (
	"net/http"
	"strconv"

	"timeledger/database"
	"timeledger/ledger"
	"timeledger/models"

	"go.uber.org/zap"
)

type AuditHandler struct {
	audit *ledger.AuditRecorder
	log   *zap.Logger
}

func NewAuditHandler(audit *ledger.AuditRecorder, log *zap.Logger) *AuditHandler {
	return &AuditHandler{audit: audit, log: log}
}

// QueryTrail filters the audit log by entry, worker, actor, action, and
// date range, newest first.
func (h *AuditHandler) QueryTrail(w http.ResponseWriter, r *http.Request) {
	filter := ledger.AuditFilter{}
	if v := r.URL.Query().Get("entry_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filter.EntryID = uint(id)
		}
	}
	if v := r.URL.Query().Get("worker_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filter.WorkerID = uint(id)
		}
	}
	if v := r.URL.Query().Get("actor_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			filter.ActorID = uint(id)
		}
	}
	if v := r.URL.Query().Get("action"); v != "" {
		filter.Action = models.AuditAction(v)
	}
	if from, ok := parseDateParam(r, "from"); ok {
		filter.From = &from
	}
	if to, ok := parseDateParam(r, "to"); ok {
		filter.To = &to
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 1000 {
			filter.Limit = n
		}
	}

	rows, err := h.audit.QueryTrail(database.GetDB().WithContext(r.Context()), filter)
	if err != nil {
		writeLedgerError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
