package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Fantasim/rainmaker/internal/config"
	"github.com/Fantasim/rainmaker/internal/disperse"
	"github.com/Fantasim/rainmaker/internal/models"
)

// Events handles GET /api/events — Server-Sent Events stream of dispatcher
// transitions. Sends the current engine state on connect for client resync.
func Events(hub *disperse.Hub, d *disperse.Dispatcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			slog.Error("SSE not supported: response writer does not implement http.Flusher")
			writeError(w, http.StatusInternalServerError, config.ErrorInternal, "streaming not supported")
			return
		}

		slog.Info("SSE client connecting",
			"remoteAddr", r.RemoteAddr,
		)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ch := hub.Subscribe()
		defer func() {
			hub.Unsubscribe(ch)
			slog.Info("SSE client disconnected",
				"remoteAddr", r.RemoteAddr,
			)
		}()

		slog.Info("SSE client connected",
			"remoteAddr", r.RemoteAddr,
			"totalClients", hub.ClientCount(),
		)

		// Snapshot the engine state on connect so a reconnecting client
		// resyncs without waiting for the next transition.
		snapshot := models.DispatchStatus{State: string(d.CurrentState())}
		if rec := d.LiveRecord(); rec != nil {
			snapshot.TxHash = rec.Handle
			snapshot.FailureReason = rec.FailureReason
		}
		if data, err := json.Marshal(snapshot); err == nil {
			fmt.Fprintf(w, "event: state\ndata: %s\n\n", string(data))
			flusher.Flush()
		}

		keepAlive := time.NewTicker(config.SSEKeepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case tr, ok := <-ch:
				if !ok {
					slog.Info("SSE channel closed, ending stream",
						"remoteAddr", r.RemoteAddr,
					)
					return
				}

				data, err := json.Marshal(tr)
				if err != nil {
					slog.Error("failed to marshal SSE transition",
						"state", tr.State,
						"error", err,
					)
					continue
				}

				fmt.Fprintf(w, "event: transition\ndata: %s\n\n", string(data))
				flusher.Flush()

				slog.Debug("SSE transition sent",
					"state", tr.State,
					"remoteAddr", r.RemoteAddr,
				)

			case <-keepAlive.C:
				fmt.Fprint(w, ": keepalive\n\n")
				flusher.Flush()

			case <-r.Context().Done():
				slog.Info("SSE client context done",
					"remoteAddr", r.RemoteAddr,
					"reason", r.Context().Err(),
				)
				return
			}
		}
	}
}
