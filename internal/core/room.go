package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/verock/streamcast/internal/domain"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room    *domain.Room
	mu      sync.RWMutex
	members map[domain.ClientID]Conn
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:    room,
		members: make(map[domain.ClientID]Conn),
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *roomImpl) Members() []domain.ClientID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.ClientID, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	return out
}

// AddMember registers the connection and returns the membership size.
// Re-adding an existing member is a no-op for membership.
func (r *roomImpl) AddMember(id domain.ClientID, conn Conn) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[id] = conn
	log.Info().Str("module", "core.room").Str("room", string(r.room.Key)).Str("client", string(id)).Msg("member added")
	return len(r.members)
}

func (r *roomImpl) RemoveMember(id domain.ClientID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, id)
	log.Info().Str("module", "core.room").Str("room", string(r.room.Key)).Str("client", string(id)).Msg("member removed")
}

func (r *roomImpl) Has(id domain.ClientID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[id]
	return ok
}

func (r *roomImpl) Broadcast(from domain.ClientID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for id, conn := range r.members {
		if id == from {
			continue
		}
		if err := conn.TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	log.Debug().Str("module", "core.room").Str("room", string(r.room.Key)).Str("from", string(from)).Int("sent_to", res.SentTo).Int("dropped", res.Dropped).Msg("broadcast result")
	return res
}

func (r *roomImpl) SendAll(data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for _, conn := range r.members {
		if err := conn.TrySend(data); err != nil {
			res.Dropped++
			continue
		}
		res.SentTo++
	}
	return res
}

func (r *roomImpl) SendTo(id domain.ClientID, data Frame) bool {
	r.mu.RLock()
	conn, ok := r.members[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return conn.TrySend(data) == nil
}
