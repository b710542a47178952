package core

import (
	"sync"

	"github.com/verock/streamcast/internal/domain"
)

// MaxCachedChunks bounds the per-room sliding window of recent media
// chunks used to catch up late joiners.
const MaxCachedChunks = 10

type roomCache struct {
	initSegment Frame
	chunks      []Frame
}

// SegmentCache holds, per room, the most recent init segment and a FIFO
// window of recent media chunks. Its lifecycle is independent of room
// membership: an explicit stream end clears the cache while members may
// stay joined.
type SegmentCache struct {
	mu    sync.RWMutex
	rooms map[domain.RoomKey]*roomCache
}

func NewSegmentCache() *SegmentCache {
	return &SegmentCache{rooms: make(map[domain.RoomKey]*roomCache)}
}

func (c *SegmentCache) entry(key domain.RoomKey) *roomCache {
	rc, ok := c.rooms[key]
	if !ok {
		rc = &roomCache{}
		c.rooms[key] = rc
	}
	return rc
}

// SetInitSegment overwrites the stored init segment for the room,
// creating the cache entry if absent.
func (c *SegmentCache) SetInitSegment(key domain.RoomKey, data Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry(key).initSegment = data
}

// AppendChunk appends to the room's chunk window, evicting the oldest
// entry once the window exceeds MaxCachedChunks.
func (c *SegmentCache) AppendChunk(key domain.RoomKey, data Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rc := c.entry(key)
	rc.chunks = append(rc.chunks, data)
	if len(rc.chunks) > MaxCachedChunks {
		rc.chunks = rc.chunks[1:]
	}
}

// Snapshot returns a point-in-time view of the cached init segment (nil
// if absent) and the chunk window in arrival order. The returned slice
// is a copy; concurrent appends are either fully included or fully
// excluded.
func (c *SegmentCache) Snapshot(key domain.RoomKey) (Frame, []Frame) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rc, ok := c.rooms[key]
	if !ok {
		return nil, nil
	}
	chunks := make([]Frame, len(rc.chunks))
	copy(chunks, rc.chunks)
	return rc.initSegment, chunks
}

// Clear deletes both the init segment and the chunk window for the
// room. Idempotent.
func (c *SegmentCache) Clear(key domain.RoomKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, key)
}
