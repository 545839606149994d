package app

import (
	"testing"
)

func newOrchestrator() *Orchestrator {
	reg := NewRegistry()
	return &Orchestrator{
		Registry: reg,
		Relay:    &Relay{Registry: reg},
	}
}

func TestConnectAnnouncesToWaitingPeer(t *testing.T) {
	t.Parallel()

	o := newOrchestrator()
	a := &fakeConn{}
	b := &fakeConn{}

	o.Connect("a", testRoom, a, nil)
	if a.count() != 0 {
		t.Errorf("first endpoint got %d events while alone, want 0", a.count())
	}

	o.Connect("b", testRoom, b, nil)
	joined := a.eventsOfType(t, "peer-joined")
	if len(joined) != 1 || joined[0]["id"] != "b" {
		t.Errorf("waiting peer got %v, want one peer-joined for b", joined)
	}
	if b.count() != 0 {
		t.Errorf("joining endpoint got %d presence events, want 0", b.count())
	}
}

func TestDisconnectNotifiesCounterpart(t *testing.T) {
	t.Parallel()

	o := newOrchestrator()
	a := &fakeConn{}
	b := &fakeConn{}
	o.Connect("a", testRoom, a, nil)
	o.Connect("b", testRoom, b, nil)

	o.OnDisconnect("b", b)

	left := a.eventsOfType(t, "peer-left")
	if len(left) != 1 || left[0]["id"] != "b" {
		t.Errorf("counterpart got %v, want one peer-left for b", left)
	}
	if o.Registry.Connected("b") {
		t.Error("endpoint still registered after disconnect")
	}

	// Idempotent: a second teardown for the same id changes nothing.
	o.OnDisconnect("b", b)
	if n := len(a.eventsOfType(t, "peer-left")); n != 1 {
		t.Errorf("duplicate disconnect produced %d peer-left events, want 1", n)
	}
}

func TestStaleTransportDisconnectKeepsLiveEndpoint(t *testing.T) {
	t.Parallel()

	o := newOrchestrator()
	old := &fakeConn{}
	o.Connect("a", testRoom, old, nil)

	// Same identity reconnects; the old socket dies afterwards.
	fresh := &fakeConn{}
	o.Connect("a", testRoom, fresh, nil)
	o.OnDisconnect("a", old)

	if !o.Registry.Connected("a") {
		t.Fatal("live rebound endpoint deregistered by stale teardown")
	}

	b := &fakeConn{}
	o.Connect("b", testRoom, b, nil)
	if peer, ok := o.Registry.Counterpart("b"); !ok || peer != "a" {
		t.Errorf("counterpart of b = %q, %v; want a", peer, ok)
	}
	joined := fresh.eventsOfType(t, "peer-joined")
	if len(joined) != 1 || joined[0]["id"] != "b" {
		t.Errorf("rebound transport got %v, want one peer-joined for b", joined)
	}
}
