// Package particle defines the boundary types the script scheduler hands
// off to the network layer of the surrounding node. This repository never
// implements a ConnectionPool or a FailureSource: both are supplied by the
// collaborator that embeds pkg/scripts.
package particle

import (
	"context"
	"time"
)

// Particle is a signed, TTL-bounded unit of script execution sent to a peer.
type Particle struct {
	ID         string
	InitPeerID string
	Timestamp  time.Time
	TTL        uint32
	Script     string
	Signature  []byte
	Data       []byte
}

// Contact identifies a peer and the addresses it can be reached at.
type Contact struct {
	PeerID    string
	Addresses []string
}

// ConnectionPool delivers particles to peers on a best-effort basis. It is
// implemented and owned by the surrounding node, never by this repository.
type ConnectionPool interface {
	Send(ctx context.Context, contact Contact, p Particle) error
}

// FailureSource reports the ids of particles the execution engine failed to
// complete. Implementations must never block a send; pkg/scripts treats the
// channel as one more event source in its select loop.
type FailureSource interface {
	Failures() <-chan string
}
