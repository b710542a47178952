package vod

import (
	"bytes"
	"context"
	"crypto/rand"
	"os"
	"path/filepath"
	"testing"
)

type event struct {
	kind string // meta, chunk, end, error
	name string
	size int64
	data []byte
}

type recordSink struct {
	events []event
	cancel context.CancelFunc
	after  int // cancel after this many chunks, 0 = never
}

func (s *recordSink) OnMeta(name string, size int64) {
	s.events = append(s.events, event{kind: "meta", name: name, size: size})
}

func (s *recordSink) OnChunk(data []byte) {
	s.events = append(s.events, event{kind: "chunk", data: data})
	if s.cancel != nil && s.chunkCount() == s.after {
		s.cancel()
	}
}

func (s *recordSink) OnEnd() {
	s.events = append(s.events, event{kind: "end"})
}

func (s *recordSink) OnError(message string) {
	s.events = append(s.events, event{kind: "error", name: message})
}

func (s *recordSink) chunkCount() int {
	n := 0
	for _, e := range s.events {
		if e.kind == "chunk" {
			n++
		}
	}
	return n
}

func writeVideo(t *testing.T, dir, name string, size int) []byte {
	t.Helper()
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatal(err)
	}
	return data
}

func TestTransfer_completeness(t *testing.T) {
	dir := t.TempDir()
	// Three full chunks plus a partial tail.
	content := writeVideo(t, dir, "movie.mp4", 3*64+17)

	tr := NewTransfer(dir, "movie.mp4")
	tr.chunkSize = 64
	sink := &recordSink{}

	if got := tr.Run(context.Background(), sink); got != StateCompleted {
		t.Fatalf("final state = %v, want completed", got)
	}

	if sink.events[0].kind != "meta" || sink.events[0].size != int64(len(content)) || sink.events[0].name != "movie.mp4" {
		t.Fatalf("first event = %+v, want meta with size %d", sink.events[0], len(content))
	}

	var rebuilt []byte
	for _, e := range sink.events[1 : len(sink.events)-1] {
		if e.kind != "chunk" {
			t.Fatalf("unexpected mid-transfer event %q", e.kind)
		}
		rebuilt = append(rebuilt, e.data...)
	}
	if !bytes.Equal(rebuilt, content) {
		t.Errorf("reassembled bytes differ from file: %d vs %d", len(rebuilt), len(content))
	}

	if sink.events[len(sink.events)-1].kind != "end" {
		t.Errorf("last event = %+v, want end", sink.events[len(sink.events)-1])
	}
}

func TestTransfer_missing_file_single_error(t *testing.T) {
	dir := t.TempDir()
	tr := NewTransfer(dir, "missing.mp4")
	sink := &recordSink{}

	if got := tr.Run(context.Background(), sink); got != StateFailed {
		t.Fatalf("final state = %v, want failed", got)
	}
	if len(sink.events) != 1 || sink.events[0].kind != "error" {
		t.Fatalf("events = %+v, want exactly one error", sink.events)
	}
	if sink.events[0].name != "Video not found." {
		t.Errorf("error message = %q", sink.events[0].name)
	}
}

func TestTransfer_path_escape_is_not_found(t *testing.T) {
	dir := t.TempDir()
	tr := NewTransfer(dir, "../../etc/passwd")
	sink := &recordSink{}

	if got := tr.Run(context.Background(), sink); got != StateFailed {
		t.Fatalf("final state = %v, want failed", got)
	}
	if len(sink.events) != 1 || sink.events[0].kind != "error" {
		t.Fatalf("events = %+v, want exactly one error", sink.events)
	}
}

func TestTransfer_cancel_mid_stream(t *testing.T) {
	dir := t.TempDir()
	writeVideo(t, dir, "movie.mp4", 10*64)

	ctx, cancel := context.WithCancel(context.Background())
	tr := NewTransfer(dir, "movie.mp4")
	tr.chunkSize = 64
	sink := &recordSink{cancel: cancel, after: 2}

	if got := tr.Run(ctx, sink); got != StateAborted {
		t.Fatalf("final state = %v, want aborted", got)
	}
	// Nothing after the abort: no further chunks, no end, no error.
	last := sink.events[len(sink.events)-1]
	if last.kind != "chunk" {
		t.Errorf("last event = %q, want chunk (abort emits nothing)", last.kind)
	}
	if got := sink.chunkCount(); got != 2 {
		t.Errorf("chunks after cancel = %d, want 2", got)
	}
}

func TestTransfer_state_progression(t *testing.T) {
	tr := NewTransfer(t.TempDir(), "whatever.mp4")
	if tr.State() != StateIdle {
		t.Errorf("initial state = %v, want idle", tr.State())
	}
	tr.Run(context.Background(), &recordSink{})
	if tr.State() != StateFailed {
		t.Errorf("state = %v, want failed (terminal)", tr.State())
	}
}
