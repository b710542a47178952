package core

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/verock/streamcast/internal/domain"
)

func TestSegmentCache_snapshot_empty_room(t *testing.T) {
	c := NewSegmentCache()
	initSegment, chunks := c.Snapshot("nope")
	if initSegment != nil {
		t.Errorf("expected no init segment, got %d bytes", len(initSegment))
	}
	if len(chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(chunks))
	}
}

func TestSegmentCache_init_segment_overwrites(t *testing.T) {
	c := NewSegmentCache()
	c.SetInitSegment("alice", Frame("first"))
	c.SetInitSegment("alice", Frame("second"))

	initSegment, _ := c.Snapshot("alice")
	if !bytes.Equal(initSegment, []byte("second")) {
		t.Errorf("expected latest init segment, got %q", initSegment)
	}
}

func TestSegmentCache_window_fifo_eviction(t *testing.T) {
	c := NewSegmentCache()
	for i := 1; i <= MaxCachedChunks+5; i++ {
		c.AppendChunk("alice", Frame(fmt.Sprintf("c%d", i)))
	}

	_, chunks := c.Snapshot("alice")
	if len(chunks) != MaxCachedChunks {
		t.Fatalf("window length = %d, want %d", len(chunks), MaxCachedChunks)
	}
	if string(chunks[0]) != "c6" {
		t.Errorf("oldest surviving chunk = %q, want c6", chunks[0])
	}
	if string(chunks[len(chunks)-1]) != "c15" {
		t.Errorf("newest chunk = %q, want c15", chunks[len(chunks)-1])
	}
}

// A joiner after init segment I and chunks C1..C12 must see I followed
// by C3..C12, never C1 or C2.
func TestSegmentCache_late_joiner_scenario(t *testing.T) {
	c := NewSegmentCache()
	c.SetInitSegment("alice", bytes.Repeat([]byte{0xAB}, 100))
	for i := 1; i <= 12; i++ {
		c.AppendChunk("alice", bytes.Repeat([]byte(fmt.Sprintf("C%d|", i)), 10))
	}

	initSegment, chunks := c.Snapshot("alice")
	if initSegment == nil {
		t.Fatal("expected cached init segment")
	}
	if len(chunks) != 10 {
		t.Fatalf("expected 10 chunks, got %d", len(chunks))
	}
	if !bytes.HasPrefix(chunks[0], []byte("C3|")) {
		t.Errorf("first replayed chunk should be C3, got %q", chunks[0][:4])
	}
	for _, chunk := range chunks {
		if bytes.HasPrefix(chunk, []byte("C1|")) || bytes.HasPrefix(chunk, []byte("C2|")) {
			t.Errorf("evicted chunk leaked into snapshot: %q", chunk[:4])
		}
	}
}

func TestSegmentCache_snapshot_is_a_copy(t *testing.T) {
	c := NewSegmentCache()
	c.AppendChunk("alice", Frame("one"))

	_, chunks := c.Snapshot("alice")
	c.AppendChunk("alice", Frame("two"))

	if len(chunks) != 1 {
		t.Errorf("snapshot mutated by later append: len=%d", len(chunks))
	}
}

func TestSegmentCache_clear_idempotent(t *testing.T) {
	c := NewSegmentCache()
	c.SetInitSegment("alice", Frame("init"))
	c.AppendChunk("alice", Frame("chunk"))

	c.Clear("alice")
	c.Clear("alice")

	initSegment, chunks := c.Snapshot("alice")
	if initSegment != nil || len(chunks) != 0 {
		t.Errorf("cache not empty after clear: init=%v chunks=%d", initSegment != nil, len(chunks))
	}
}

func TestSegmentCache_rooms_are_independent(t *testing.T) {
	c := NewSegmentCache()
	c.AppendChunk("alice", Frame("a"))
	c.AppendChunk("bob", Frame("b"))
	c.Clear("alice")

	_, chunks := c.Snapshot(domain.RoomKey("bob"))
	if len(chunks) != 1 || string(chunks[0]) != "b" {
		t.Errorf("clearing one room affected another: %v", chunks)
	}
}
