package handlers

import (
	"net/http"

	"timeledger/database"
	"timeledger/models"

	"go.uber.org/zap"
)

// AdminHandler manages the rate override table and the local job
// catalog projection. Admin only; route guards are in main.
type AdminHandler struct {
	log *zap.Logger
}

func NewAdminHandler(log *zap.Logger) *AdminHandler {
	return &AdminHandler{log: log}
}

func (h *AdminHandler) ListOverrides(w http.ResponseWriter, r *http.Request) {
	var overrides []models.RateOverride
	err := database.GetDB().WithContext(r.Context()).
		Preload("Job").Preload("Worker").
		Order("updated_at desc").
		Find(&overrides).Error
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, overrides)
}

type overrideRequest struct {
	WorkerID uint    `json:"worker_id"`
	JobID    uint    `json:"job_id"`
	Rate     float64 `json:"rate"`
}

// UpsertOverride creates or updates the override for a (job, worker)
// pair. Rate changes never touch in-progress shifts; the rate was frozen
// at clock-in.
func (h *AdminHandler) UpsertOverride(w http.ResponseWriter, r *http.Request) {
	var req overrideRequest
	if err := decodeBody(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if req.WorkerID == 0 || req.JobID == 0 || req.Rate <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "worker_id, job_id and a positive rate are required"})
		return
	}

	db := database.GetDB().WithContext(r.Context())

	var override models.RateOverride
	err := db.Where("job_id = ? AND worker_id = ?", req.JobID, req.WorkerID).First(&override).Error
	if err == nil {
		override.Rate = req.Rate
		override.Active = true
		err = db.Save(&override).Error
	} else {
		override = models.RateOverride{
			JobID:    req.JobID,
			WorkerID: req.WorkerID,
			Rate:     req.Rate,
			Active:   true,
		}
		err = db.Create(&override).Error
	}
	if err != nil {
		h.log.Error("override upsert failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, override)
}

type deleteOverrideRequest struct {
	ID uint `json:"id"`
}

func (h *AdminHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	var req deleteOverrideRequest
	if err := decodeBody(r, &req); err != nil || req.ID == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := database.GetDB().WithContext(r.Context()).Delete(&models.RateOverride{}, req.ID).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *AdminHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	var jobs []models.Job
	if err := database.GetDB().WithContext(r.Context()).Order("name").Find(&jobs).Error; err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

type jobRequest struct {
	Name string `json:"name"`
}

func (h *AdminHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if err := decodeBody(r, &req); err != nil || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	job := models.Job{Name: req.Name, Active: true}
	if err := database.GetDB().WithContext(r.Context()).Create(&job).Error; err != nil {
		writeJSON(w, http.StatusConflict, errorResponse{Error: "job already exists"})
		return
	}
	writeJSON(w, http.StatusCreated, job)
}
