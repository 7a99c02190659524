// internal/httpapi/stream_test.go
package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meridianmall/arcade/internal/realtime"
	"github.com/meridianmall/arcade/internal/whatson"
)

// flushRecorder signals each Flush so the test can step the stream.
type flushRecorder struct {
	*httptest.ResponseRecorder
	flushed chan struct{}
}

func (f *flushRecorder) Flush() { f.flushed <- struct{}{} }

func TestStreamWritesChangeEvents(t *testing.T) {
	hub := realtime.NewHub()
	h := newTestHandler()
	h.Stream = hub

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/v1/whats-on/stream", nil).WithContext(ctx)
	rec := &flushRecorder{ResponseRecorder: httptest.NewRecorder(), flushed: make(chan struct{}, 8)}

	done := make(chan struct{})
	go func() {
		h.streamChanges(rec, req)
		close(done)
	}()

	<-rec.flushed // headers out, subscription active
	hub.Publish(realtime.Event{Table: "whats_on", Action: "UPDATE", ID: 7})
	<-rec.flushed // event on the wire

	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: change") {
		t.Errorf("body missing event line: %q", body)
	}
	if !strings.Contains(body, `"table":"whats_on"`) || !strings.Contains(body, `"id":7`) {
		t.Errorf("body missing payload: %q", body)
	}
}

func TestStreamDisabledWithoutHub(t *testing.T) {
	h := newTestHandler()
	w := serve(h, httptest.NewRequest(http.MethodGet, "/v1/whats-on/stream", nil))
	if w.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", w.Code)
	}
}

func TestWhatsOnPreviewSeesInactive(t *testing.T) {
	h := newTestHandler()
	h.PreviewToken = "cms-secret"
	itemsCalled, allCalled := false, false
	h.WhatsOn.(*stubWhatsOn).items = func() ([]whatson.Item, error) {
		itemsCalled = true
		return []whatson.Item{}, nil
	}
	h.WhatsOn.(*stubWhatsOn).all = func() ([]whatson.Item, error) {
		allCalled = true
		return []whatson.Item{}, nil
	}

	serve(h, httptest.NewRequest(http.MethodGet, "/v1/whats-on", nil))
	if !itemsCalled || allCalled {
		t.Error("anonymous request should use the active-only listing")
	}

	itemsCalled, allCalled = false, false
	req := httptest.NewRequest(http.MethodGet, "/v1/whats-on", nil)
	req.Header.Set("X-Preview-Token", "cms-secret")
	serve(h, req)
	if !allCalled || itemsCalled {
		t.Error("preview request should use the full listing")
	}
}
