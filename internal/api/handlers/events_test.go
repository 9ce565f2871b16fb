package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Fantasim/rainmaker/internal/disperse"
)

func TestEvents_SnapshotAndTransition(t *testing.T) {
	hub := disperse.NewHub()
	d := newTestDispatcher(&stubAdapter{networkID: 1})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		Events(hub, d)(rec, req)
		close(done)
	}()

	// Wait for the client to register, then push one transition.
	deadline := time.After(5 * time.Second)
	for hub.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("SSE client never subscribed")
		default:
			time.Sleep(time.Millisecond)
		}
	}
	hub.Broadcast(disperse.Transition{State: disperse.StatePending, Handle: "0xabc", At: time.Now()})

	// Give the handler a moment to flush, then disconnect.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after context cancel")
	}

	body := rec.Body.String()
	if !strings.Contains(body, "event: state") {
		t.Errorf("body missing resync snapshot: %q", body)
	}
	if !strings.Contains(body, `"state":"idle"`) {
		t.Errorf("snapshot should report idle engine: %q", body)
	}
	if !strings.Contains(body, "event: transition") {
		t.Errorf("body missing broadcast transition: %q", body)
	}
	if !strings.Contains(body, `"handle":"0xabc"`) {
		t.Errorf("transition payload missing handle: %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q, want text/event-stream", ct)
	}
}

func TestEvents_HubShutdownEndsStream(t *testing.T) {
	hub := disperse.NewHub()
	d := newTestDispatcher(&stubAdapter{networkID: 1})

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		Events(hub, d)(rec, req)
		close(done)
	}()

	deadline := time.After(5 * time.Second)
	for hub.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("SSE client never subscribed")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	stopHub()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("handler did not return after hub shutdown")
	}
}
