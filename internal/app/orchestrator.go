package app

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/verock/streamcast/internal/core"
	"github.com/verock/streamcast/internal/domain"
	"github.com/verock/streamcast/internal/platform/metrics"
	"github.com/verock/streamcast/internal/protocol"
)

// Orchestrator is the connection gateway: it owns the connection
// lifecycle and routes every inbound event to the room manager, segment
// cache, live streamer directory and transport. Components never talk
// to each other except through state the orchestrator mediates.
type Orchestrator struct {
	Registry  *Registry
	Rooms     *RoomManagerImpl
	Cache     *core.SegmentCache
	Streamers *Directory
	Metrics   *metrics.Metrics
}

func NewOrchestrator(m *metrics.Metrics) *Orchestrator {
	return &Orchestrator{
		Registry:  NewRegistry(),
		Rooms:     NewRoomManager(),
		Cache:     core.NewSegmentCache(),
		Streamers: NewDirectory(),
		Metrics:   m,
	}
}

// OnConnect allocates a fresh client identifier and registers the
// transport endpoint. cancel aborts the connection-scoped context and
// with it any in-flight VOD transfer.
func (o *Orchestrator) OnConnect(conn core.Conn, cancel context.CancelFunc) domain.ClientID {
	id := domain.NewClientID()
	o.Registry.Bind(id, conn, cancel)
	o.Metrics.SetActiveConnections(o.Registry.Count())
	return id
}

// OnDisconnect removes the client from every room it joined and tears
// down its session. Disconnect does not clear any room cache; only an
// explicit stream end does that.
func (o *Orchestrator) OnDisconnect(id domain.ClientID) {
	for _, key := range o.Registry.RoomsOf(id) {
		o.Rooms.GetOrCreate(key).RemoveMember(id)
	}
	o.Registry.Unbind(id)
	o.Metrics.SetActiveConnections(o.Registry.Count())
}

// Join adds the client to the room, replays the cached init segment and
// chunk window to it, and notifies every member of the new size.
// Joining an already-joined room re-replays and re-emits presence.
func (o *Orchestrator) Join(id domain.ClientID, key domain.RoomKey) {
	conn, ok := o.Registry.Conn(id)
	if !ok {
		log.Warn().Str("module", "app.orchestrator").Str("client", string(id)).Msg("join from unknown client")
		return
	}
	room := o.Rooms.GetOrCreate(key)
	participants := room.AddMember(id, conn)
	o.Registry.AddRoom(id, key)

	initSegment, chunks := o.Cache.Snapshot(key)
	if initSegment != nil {
		_ = conn.TrySend(protocol.NewMediaEvent(protocol.TypeInitSegment, string(key), initSegment))
	}
	for _, chunk := range chunks {
		_ = conn.TrySend(protocol.NewMediaEvent(protocol.TypeMediaChunk, string(key), chunk))
	}

	room.SendAll(protocol.NewRoomUpdate(string(key), participants))
	o.Metrics.SetActiveRooms(o.Rooms.Count())
}

// Leave removes membership. No presence update is emitted on leave.
func (o *Orchestrator) Leave(id domain.ClientID, key domain.RoomKey) {
	o.Rooms.GetOrCreate(key).RemoveMember(id)
	o.Registry.RemoveRoom(id, key)
}

// RelayInit caches the init segment for the room and forwards it to
// every member except the sender. Invalid payloads are dropped with a
// log entry; the sender is not notified.
func (o *Orchestrator) RelayInit(sender domain.ClientID, key domain.RoomKey, data core.Frame) {
	if key == "" || len(data) == 0 {
		log.Warn().Str("module", "app.orchestrator").Str("client", string(sender)).Msg("invalid init segment payload")
		return
	}
	log.Debug().Str("module", "app.orchestrator").Str("room", string(key)).Int("size", len(data)).Msg("init segment received")
	o.Cache.SetInitSegment(key, data)
	o.Rooms.GetOrCreate(key).Broadcast(sender, protocol.NewMediaEvent(protocol.TypeInitSegment, string(key), data))
	o.Metrics.IncInitSegments()
}

// RelayChunk caches the chunk in the room's bounded window and forwards
// it to every member except the sender.
func (o *Orchestrator) RelayChunk(sender domain.ClientID, key domain.RoomKey, data core.Frame) {
	if key == "" || len(data) == 0 {
		log.Warn().Str("module", "app.orchestrator").Str("client", string(sender)).Msg("invalid media chunk payload")
		return
	}
	o.Cache.AppendChunk(key, data)
	o.Rooms.GetOrCreate(key).Broadcast(sender, protocol.NewMediaEvent(protocol.TypeMediaChunk, string(key), data))
	o.Metrics.IncChunksRelayed()
}

// EndStream clears the room's cache and takes the broadcaster out of
// the live directory. Members stay joined; idempotent.
func (o *Orchestrator) EndStream(key domain.RoomKey) {
	o.Cache.Clear(key)
	o.Streamers.Unregister(string(key))
	log.Info().Str("module", "app.orchestrator").Str("room", string(key)).Msg("stream ended, cache cleared")
}

// RegisterStreamer marks a broadcaster as live for discovery.
func (o *Orchestrator) RegisterStreamer(name string) {
	o.Streamers.Register(name)
}

func (o *Orchestrator) LiveStreamers() []string {
	return o.Streamers.ListAll()
}
