package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shelter-training/maps-trainer/internal/catalog"
	"github.com/shelter-training/maps-trainer/internal/models"
	"github.com/shelter-training/maps-trainer/internal/training"
)

// Response helpers

type apiResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *apiError   `json:"error,omitempty"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: status >= 200 && status < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := apiResponse{
		Success: false,
		Error: &apiError{
			Code:    code,
			Message: message,
		},
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// Health handlers

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.repo.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, "not_ready", "service not ready")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

// Lesson handlers

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	lessons, err := s.trainingService.ListLessons(r.Context())
	if err != nil {
		slog.Error("failed to list lessons", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to list lessons")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"lessons": lessons,
		"total":   len(lessons),
	})
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "lesson id is required")
		return
	}

	lesson, err := s.trainingService.GetLesson(r.Context(), id)
	if err != nil {
		if errors.Is(err, catalog.ErrLessonNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "lesson not found")
			return
		}
		slog.Error("failed to get lesson", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get lesson")
		return
	}

	respondJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleInitializeLessons(w http.ResponseWriter, r *http.Request) {
	inserted, err := s.trainingService.SeedCatalog(r.Context(), s.lessonLoader.List())
	if err != nil {
		slog.Error("failed to initialize lessons", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to initialize lessons")
		return
	}

	respondJSON(w, http.StatusOK, models.SeedResponse{Inserted: inserted})
}

// Volunteer handlers

func (s *Server) handleCreateVolunteer(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req models.CreateVolunteerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	// The signed-in account's details back any missing fields
	if req.Name == "" {
		req.Name = identity.Name
	}
	if req.Email == "" {
		req.Email = identity.Email
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "name is required")
		return
	}

	v, err := s.trainingService.GetOrCreateVolunteer(r.Context(), identity.UserID, req.Name, req.Email)
	if err != nil {
		slog.Error("failed to create volunteer", "error", err, "user_id", identity.UserID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to create volunteer")
		return
	}

	respondJSON(w, http.StatusCreated, v)
}

func (s *Server) handleCurrentVolunteer(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	v, err := s.trainingService.GetVolunteer(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, training.ErrVolunteerNotFound) {
			// Signed in but not registered as a volunteer yet
			respondJSON(w, http.StatusOK, nil)
			return
		}
		slog.Error("failed to get volunteer", "error", err, "user_id", identity.UserID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get volunteer")
		return
	}

	respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleProgressHistory(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	entries, err := s.trainingService.History(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, training.ErrVolunteerNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "volunteer not found")
			return
		}
		slog.Error("failed to get progress history", "error", err, "user_id", identity.UserID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get progress history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}

// Progress handlers

func (s *Server) handleUpdateProgress(w http.ResponseWriter, r *http.Request) {
	identity := IdentityFromContext(r.Context())

	var req models.UpdateProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if req.LessonID == "" {
		respondError(w, http.StatusBadRequest, "validation_error", "lesson_id is required")
		return
	}
	if req.Score < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "score must not be negative")
		return
	}
	if req.TimeSpent < 0 {
		respondError(w, http.StatusBadRequest, "validation_error", "time_spent_seconds must not be negative")
		return
	}

	newBadges, v, err := s.trainingService.RecordCompletion(r.Context(), identity.UserID, req.LessonID, req.Score, req.TimeSpent)
	if err != nil {
		if errors.Is(err, training.ErrVolunteerNotFound) {
			respondError(w, http.StatusNotFound, "not_found", "volunteer not found")
			return
		}
		if errors.Is(err, catalog.ErrLessonNotFound) {
			respondError(w, http.StatusNotFound, "lesson_not_found", "lesson not found")
			return
		}
		slog.Error("failed to update progress", "error", err, "user_id", identity.UserID, "lesson_id", req.LessonID)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to update progress")
		return
	}

	s.events.Broadcast(models.CompletionEvent{
		Type:      "lesson_completed",
		Volunteer: v.Name,
		LessonID:  req.LessonID,
		Points:    req.Score,
		NewBadges: newBadges,
	})

	respondJSON(w, http.StatusOK, models.UpdateProgressResponse{
		Success:   true,
		NewBadges: newBadges,
	})
}

// Leaderboard handlers

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	entries, err := s.trainingService.Leaderboard(r.Context(), limit)
	if err != nil {
		slog.Error("failed to get leaderboard", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to get leaderboard")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   len(entries),
	})
}
