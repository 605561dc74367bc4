package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"timeledger/ledger"
	"timeledger/middleware"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeLedgerError maps the ledger taxonomy onto HTTP statuses. Invariant
// violations are conflicts, missing records 404, bad input 400, a failed
// sum check 500, exhausted storage retries 503.
func writeLedgerError(w http.ResponseWriter, log *zap.Logger, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrReasonRequired), errors.Is(err, ledger.ErrInvalidHours):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case ledger.IsClientError(err):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrInconsistentTotals):
		log.Error("inconsistent totals surfaced to client", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
	case errors.Is(err, ledger.ErrStorageUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "storage unavailable"})
	default:
		log.Error("unhandled error", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// provenanceFrom assembles the audit provenance for the acting request.
func provenanceFrom(r *http.Request, actorID uint) ledger.Provenance {
	return ledger.Provenance{
		ActorID:   actorID,
		IPAddress: middleware.ClientIP(r),
		UserAgent: r.UserAgent(),
		RequestID: middleware.GetRequestID(r.Context()),
	}
}
