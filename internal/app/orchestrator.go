package app

import (
	"context"

	"github.com/okrasa/Parley/internal/core"
	"github.com/okrasa/Parley/internal/domain"
)

// Orchestrator wires the three components behind one handle for the
// transport adapter.
type Orchestrator struct {
	Registry *Registry
	Relay    *Relay
	Captions *TranscriptionRouter
}

// Connect registers a new endpoint and tells its counterpart, if one is
// already waiting in the room.
func (o *Orchestrator) Connect(
	id domain.EndpointID,
	roomID domain.RoomID,
	conn core.SignalConnection,
	cancel context.CancelFunc,
) *domain.Endpoint {
	ep := o.Registry.Register(id, roomID, conn, cancel)
	if peer, ok := o.Registry.Counterpart(id); ok {
		if peerConn, ok := o.Registry.Conn(peer); ok {
			send(peerConn, presenceEvent{Type: "peer-joined", ID: id})
		}
	}
	return ep
}

// OnDisconnect removes the endpoint (its language entry with it) and tells
// the counterpart it is alone again. Teardown is scoped to conn: if the
// endpoint already rebound to a newer transport, the dying socket leaves the
// registry alone. In-flight translations are not canceled; their deliveries
// turn into no-ops.
func (o *Orchestrator) OnDisconnect(id domain.EndpointID, conn core.SignalConnection) {
	peer, hadPeer := o.Registry.Counterpart(id)
	if !o.Registry.RemoveIfBound(id, conn) {
		return
	}
	if hadPeer {
		if peerConn, ok := o.Registry.Conn(peer); ok {
			send(peerConn, presenceEvent{Type: "peer-left", ID: id})
		}
	}
}
