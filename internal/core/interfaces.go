package core

import "github.com/verock/streamcast/internal/domain"

// Frame is one encoded event on the wire.
type Frame []byte

// Conn abstracts a member's transport endpoint (WebSocket).
// Owned by the adapter; the adapter must Close() it.
type Conn interface {
	TrySend(Frame) error
	Close()
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped int
}

// RoomService is the core-facing API of a room. It owns the membership
// set but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	Members() []domain.ClientID

	AddMember(id domain.ClientID, conn Conn) int
	RemoveMember(id domain.ClientID)
	Has(id domain.ClientID) bool

	// Broadcast delivers data to every member except from.
	Broadcast(from domain.ClientID, data Frame) PublishResult
	// SendAll delivers data to every member, sender included.
	SendAll(data Frame) PublishResult
	// SendTo delivers data to a single member if present.
	SendTo(id domain.ClientID, data Frame) bool
}

type RoomInfo struct {
	Key         domain.RoomKey `json:"key"`
	MemberCount int            `json:"member_count"`
}

type RoomFactory interface {
	GetOrCreate(key domain.RoomKey) RoomService
	List() []RoomInfo
}
