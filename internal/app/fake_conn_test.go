package app

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/okrasa/Parley/internal/core"
)

var errBackpressure = errors.New("backpressure")

// fakeConn captures frames, the same way the teacher's WSConn indirection
// keeps the websocket out of unit tests.
type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
	fail   error
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return f.fail
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

// events decodes every captured frame into a generic envelope.
func (f *fakeConn) events(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		if err := json.Unmarshal(fr, &m); err != nil {
			t.Fatalf("bad frame %q: %v", fr, err)
		}
		out = append(out, m)
	}
	return out
}

// eventsOfType filters decoded envelopes by their type field.
func (f *fakeConn) eventsOfType(t *testing.T, typ string) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, m := range f.events(t) {
		if m["type"] == typ {
			out = append(out, m)
		}
	}
	return out
}
