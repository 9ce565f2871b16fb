package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/importer"
	"github.com/Fantasim/rainmaker/internal/models"
)

// ImportCSV handles POST /api/import. The body is raw CSV; the response is
// the converted "address,amount" text for the operator to review before
// submitting. Nothing is validated or dispersed here.
func ImportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := http.MaxBytesReader(w, r.Body, config.MaxImportBytes)

		res, err := importer.Convert(body)
		if err != nil {
			slog.Warn("csv import failed",
				"error", err,
				"remoteAddr", r.RemoteAddr,
			)
			writeError(w, http.StatusBadRequest, config.ErrorImportFailed, "failed to parse csv: "+err.Error())
			return
		}

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: models.ImportResult{
				Text:     res.Text,
				RowCount: res.RowCount,
				Skipped:  res.Skipped,
			},
		})
	}
}
