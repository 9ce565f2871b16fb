package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/db"
	"github.com/Fantasim/rainmaker/internal/models"
)

// GetDraft handles GET /api/draft, returning the operator's saved batch input.
func GetDraft(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := database.GetDraft(config.DraftKey)
		if err != nil {
			slog.Error("failed to load draft", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to load draft")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{Data: draft})
	}
}

// SaveDraft handles PUT /api/draft. The draft is stored as typed, unvalidated:
// operators save half-finished lists all the time.
func SaveDraft(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var draft models.Draft
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, config.MaxDraftBytes+1024)).Decode(&draft); err != nil {
			slog.Warn("invalid draft request body",
				"error", err,
				"remoteAddr", r.RemoteAddr,
			)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid request body")
			return
		}

		if len(draft.Text) > config.MaxDraftBytes {
			writeError(w, http.StatusRequestEntityTooLarge, config.ErrorInvalidRequest,
				fmt.Sprintf("draft exceeds %d bytes", config.MaxDraftBytes))
			return
		}

		if err := database.SaveDraft(config.DraftKey, draft); err != nil {
			slog.Error("failed to save draft", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to save draft")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: map[string]interface{}{
				"message": "draft saved",
				"bytes":   len(draft.Text),
			},
		})
	}
}

// DeleteDraft handles DELETE /api/draft.
func DeleteDraft(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := database.DeleteDraft(config.DraftKey); err != nil {
			slog.Error("failed to delete draft", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to delete draft")
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: map[string]interface{}{"message": "draft deleted"},
		})
	}
}
