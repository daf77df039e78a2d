package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// eventStream writes the notification feed as text/event-stream frames. Each
// toast becomes a "notification" event whose SSE id is the notification id,
// so a reconnecting client can tell which toasts it has already shown.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support streaming")
	}
	return &eventStream{w: w, flusher: flusher}, nil
}

// open sends the stream headers followed by a "connected" comment.
func (es *eventStream) open() error {
	h := es.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	es.w.WriteHeader(http.StatusOK)
	return es.comment("connected")
}

func (es *eventStream) notification(v notificationView) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode notification %s: %w", v.ID, err)
	}
	if _, err := fmt.Fprintf(es.w, "id: %s\nevent: notification\ndata: %s\n\n", v.ID, data); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}

// ping keeps idle connections open through proxies.
func (es *eventStream) ping() error {
	return es.comment("ping")
}

func (es *eventStream) comment(text string) error {
	if _, err := fmt.Fprintf(es.w, ": %s\n\n", text); err != nil {
		return err
	}
	es.flusher.Flush()
	return nil
}
