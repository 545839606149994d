package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/okrasa/Parley/internal/core"
	"github.com/okrasa/Parley/internal/domain"
)

type endpointEntry struct {
	Endpoint *domain.Endpoint
	RoomID   domain.RoomID
	Conn     core.SignalConnection
	Cancel   context.CancelFunc
}

// Registry tracks connected endpoints and their caption language. It is the
// only mutable shared state in the process; every read and write goes
// through its methods.
type Registry struct {
	mu    sync.RWMutex
	byID  map[domain.EndpointID]*endpointEntry
	order []domain.EndpointID // connection order, drives counterpart resolution
}

func NewRegistry() *Registry {
	return &Registry{byID: make(map[domain.EndpointID]*endpointEntry)}
}

// Register adds an endpoint with the default language. Idempotent per id:
// a repeat call rebinds the transport but keeps the endpoint entry — its
// language, its room and its position in connection order. Changing rooms
// means tearing the connection down first; an identity never sits in two
// rooms at once.
func (r *Registry) Register(
	id domain.EndpointID,
	roomID domain.RoomID,
	conn core.SignalConnection,
	cancel context.CancelFunc,
) *domain.Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.byID[id]; ok {
		// Kill the stale transport's pumps before swapping the binding.
		if e.Cancel != nil {
			e.Cancel()
		}
		e.Conn = conn
		e.Cancel = cancel
		log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("rebound endpoint")
		return e.Endpoint
	}
	ep := domain.NewEndpoint(id)
	r.byID[id] = &endpointEntry{Endpoint: ep, RoomID: roomID, Conn: conn, Cancel: cancel}
	r.order = append(r.order, id)
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("room", string(roomID)).Msg("registered endpoint")
	return ep
}

// Remove deletes the endpoint and its language entry. Safe to call twice.
func (r *Registry) Remove(id domain.EndpointID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(id)
}

// RemoveIfBound deletes the endpoint only while conn is still its bound
// transport. A reconnect rebinds before the old socket's teardown runs; the
// stale teardown must not deregister the live session.
func (r *Registry) RemoveIfBound(id domain.EndpointID, conn core.SignalConnection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok || e.Conn != conn {
		return false
	}
	r.removeLocked(id)
	return true
}

func (r *Registry) removeLocked(id domain.EndpointID) {
	if _, ok := r.byID[id]; !ok {
		return
	}
	delete(r.byID, id)
	for i, other := range r.order {
		if other == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Msg("removed endpoint")
}

// SetLanguage overwrites the caption language for a connected endpoint.
// Unknown ids are a no-op; the wire can race a disconnect.
func (r *Registry) SetLanguage(id domain.EndpointID, raw string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.byID[id]
	if !ok {
		return nil
	}
	if err := e.Endpoint.SetLang(raw); err != nil {
		return err
	}
	log.Info().Str("module", "app.registry").Str("sid", string(id)).Str("lang", string(e.Endpoint.Lang)).Msg("language changed")
	return nil
}

// LanguageOf returns the stored preference, or the default for unknown ids.
func (r *Registry) LanguageOf(id domain.EndpointID) domain.LangCode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byID[id]; ok {
		return e.Endpoint.Lang
	}
	return domain.DefaultLang
}

// Counterpart resolves the endpoint paired with id: the first other member
// of the same room in connection order. With more than two members the pick
// is deterministic but arbitrary; this registry approximates a two-party
// room, it does not generalize beyond one pair.
func (r *Registry) Counterpart(id domain.EndpointID) (domain.EndpointID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.counterpartLocked(id)
}

func (r *Registry) counterpartLocked(id domain.EndpointID) (domain.EndpointID, bool) {
	self, ok := r.byID[id]
	if !ok {
		return "", false
	}
	for _, other := range r.order {
		if other == id {
			continue
		}
		if r.byID[other].RoomID == self.RoomID {
			return other, true
		}
	}
	return "", false
}

// CaptionTarget resolves, in one atomic read, where a transcription from
// sender should land and in which language. The language is a snapshot: a
// change-language racing an in-flight translation affects future requests
// only.
func (r *Registry) CaptionTarget(sender domain.EndpointID) (domain.EndpointID, domain.LangCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	peer, ok := r.counterpartLocked(sender)
	if !ok {
		return "", "", false
	}
	return peer, r.byID[peer].Endpoint.Lang, true
}

// Conn returns the live transport for an endpoint, if still connected.
func (r *Registry) Conn(id domain.EndpointID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.byID[id]; ok && e.Conn != nil {
		return e.Conn, true
	}
	return nil, false
}

func (r *Registry) Connected(id domain.EndpointID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// Members snapshots a room's endpoints in connection order.
func (r *Registry) Members(roomID domain.RoomID) []domain.Endpoint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Endpoint, 0, len(r.order))
	for _, id := range r.order {
		if e := r.byID[id]; e.RoomID == roomID {
			out = append(out, *e.Endpoint)
		}
	}
	return out
}
