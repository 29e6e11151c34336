package main

import (
	"context"
	"fmt"

	"github.com/cuemby/corenode/pkg/log"
	"github.com/cuemby/corenode/pkg/particle"
)

// loggingPool stands in for the connection pool this repository never
// implements (see pkg/particle.ConnectionPool): it logs every particle it
// would have sent instead of delivering it to a peer. corenoded uses it both
// for the "script run" demo and, absent a real pool, for serve.
type loggingPool struct{}

func (loggingPool) Send(_ context.Context, contact particle.Contact, p particle.Particle) error {
	log.WithComponent("corenoded").Info().
		Str("particle_id", p.ID).
		Str("peer_id", contact.PeerID).
		Msg("particle would be sent (no connection pool configured)")
	fmt.Printf("fired particle %s for peer %s\n", p.ID, contact.PeerID)
	return nil
}

// noopFailureSource never reports a failure; absent a real execution engine
// reporting back, scripts only ever leave the sent_particles table through
// cleanup's deadline sweep.
type noopFailureSource struct {
	ch chan string
}

func newNoopFailureSource() noopFailureSource {
	return noopFailureSource{ch: make(chan string)}
}

func (s noopFailureSource) Failures() <-chan string {
	return s.ch
}
