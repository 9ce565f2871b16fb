package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/db"
	"github.com/Fantasim/rainmaker/internal/disperse"
	"github.com/Fantasim/rainmaker/internal/models"
)

// SubmitDisperse handles POST /api/disperse. Validation and network
// resolution happen synchronously; on success the submission continues in the
// background and the response reports the accepted batch.
func SubmitDisperse(d *disperse.Dispatcher, database *db.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req models.DisperseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			slog.Warn("invalid disperse request body",
				"error", err,
				"remoteAddr", r.RemoteAddr,
			)
			writeError(w, http.StatusBadRequest, config.ErrorInvalidRequest, "invalid request body")
			return
		}

		slog.Info("disperse requested",
			"hasText", req.Text != "",
			"hasColumns", req.Addresses != "" || req.Amounts != "",
			"token", req.TokenAddress,
			"remoteAddr", r.RemoteAddr,
		)

		// The submission must survive the HTTP request: a broadcast
		// transaction cannot be recalled by a dropped connection.
		ctx := context.WithoutCancel(r.Context())

		var (
			info *disperse.SubmissionInfo
			ch   <-chan disperse.Transition
			err  error
		)
		if strings.TrimSpace(req.Text) != "" {
			info, ch, err = d.Submit(ctx, req.Text, req.TokenAddress)
		} else {
			info, ch, err = d.SubmitColumns(ctx, req.Addresses, req.Amounts, req.TokenAddress)
		}
		if err != nil {
			code := disperse.ErrorCode(err)
			slog.Warn("disperse rejected",
				"code", code,
				"error", err,
			)
			writeError(w, statusForCode(code), code, err.Error())
			return
		}

		go persistOutcome(database, info, ch)

		elapsed := time.Since(start).Milliseconds()

		slog.Info("disperse accepted",
			"network", info.NetworkName,
			"recipients", info.RecipientCount,
			"total", info.TotalValue.String(),
			"elapsed_ms", elapsed,
		)

		tokenAddr := ""
		if info.Token != nil {
			tokenAddr = info.Token.Hex()
		}

		writeJSON(w, http.StatusAccepted, models.APIResponse{
			Data: map[string]interface{}{
				"message":        "submission accepted",
				"networkId":      info.NetworkID,
				"networkName":    info.NetworkName,
				"contract":       info.Contract.Hex(),
				"tokenAddress":   tokenAddr,
				"decimals":       info.Decimals,
				"recipientCount": info.RecipientCount,
				"totalValue":     info.TotalValue.String(),
			},
			Meta: &models.APIMeta{ExecutionTime: elapsed},
		})
	}
}

// persistOutcome consumes a submission's transitions and writes the history
// row. The engine itself discards completed records; this is the only place
// the outcome is kept.
func persistOutcome(database *db.DB, info *disperse.SubmissionInfo, ch <-chan disperse.Transition) {
	var rowID int64

	for tr := range ch {
		switch tr.State {
		case disperse.StateBroadcast:
			tokenAddr := ""
			if info.Token != nil {
				tokenAddr = info.Token.Hex()
			}
			id, err := database.InsertSubmission(models.Submission{
				NetworkID:       info.NetworkID,
				NetworkName:     info.NetworkName,
				ContractAddress: info.Contract.Hex(),
				TokenAddress:    tokenAddr,
				Decimals:        info.Decimals,
				RecipientCount:  info.RecipientCount,
				TotalValue:      info.TotalValue.String(),
				TxHash:          tr.Handle,
				Status:          "pending",
			})
			if err != nil {
				slog.Error("failed to record submission", "txHash", tr.Handle, "error", err)
				continue
			}
			rowID = id

		case disperse.StateConfirmed:
			if rowID != 0 {
				if err := database.UpdateSubmissionStatus(rowID, "confirmed", ""); err != nil {
					slog.Error("failed to mark submission confirmed", "id", rowID, "error", err)
				}
			}

		case disperse.StateFailed:
			if rowID != 0 {
				if err := database.UpdateSubmissionStatus(rowID, "failed", tr.Detail); err != nil {
					slog.Error("failed to mark submission failed", "id", rowID, "error", err)
				}
			}
		}
	}
}

// DisperseState handles GET /api/disperse/state.
func DisperseState(d *disperse.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := models.DispatchStatus{State: string(d.CurrentState())}
		if rec := d.LiveRecord(); rec != nil {
			status.TxHash = rec.Handle
			status.FailureReason = rec.FailureReason
		}

		writeJSON(w, http.StatusOK, models.APIResponse{Data: status})
	}
}

// CancelDisperse handles POST /api/disperse/cancel. Only pre-signature
// submissions can be cancelled.
func CancelDisperse(d *disperse.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Cancel(); err != nil {
			if errors.Is(err, config.ErrNotCancellable) {
				writeError(w, http.StatusConflict, config.ErrorNotCancellable, err.Error())
				return
			}
			slog.Error("cancel failed", "error", err)
			writeError(w, http.StatusInternalServerError, config.ErrorInternal, err.Error())
			return
		}

		slog.Info("disperse cancel requested")

		writeJSON(w, http.StatusOK, models.APIResponse{
			Data: map[string]interface{}{"message": "cancel requested"},
		})
	}
}

// statusForCode maps an engine error code to an HTTP status.
func statusForCode(code string) int {
	switch code {
	case config.ErrorSubmissionInProgress, config.ErrorNotCancellable:
		return http.StatusConflict
	case config.ErrorWalletNotFound:
		return http.StatusServiceUnavailable
	case config.ErrorInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}
