package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/db"
	"github.com/Fantasim/rainmaker/internal/models"
)

// ListSubmissions handles GET /api/submissions with page/pageSize pagination
// and an optional networkId filter.
func ListSubmissions(database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		page := intQueryParam(r, "page", 1)
		if page < 1 {
			page = 1
		}
		pageSize := intQueryParam(r, "pageSize", config.DefaultPageSize)
		if pageSize < 1 {
			pageSize = config.DefaultPageSize
		}
		if pageSize > config.MaxPageSize {
			pageSize = config.MaxPageSize
		}

		var networkID *int64
		if raw := r.URL.Query().Get("networkId"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid networkId: "+raw)
				return
			}
			networkID = &id
		}

		subs, total, err := database.ListSubmissions(networkID, page, pageSize)
		if err != nil {
			slog.Error("failed to list submissions", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorDatabase, "failed to list submissions")
			return
		}
		if subs == nil {
			subs = []models.Submission{}
		}

		elapsed := time.Since(start).Milliseconds()

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: subs,
			Meta: &models.APIMeta{
				Page:          page,
				PageSize:      pageSize,
				Total:         total,
				ExecutionTime: elapsed,
			},
		})
	}
}
