/*
Package scripts implements the script storage and scheduler: an actor
holding scripts with optional recurrence intervals, firing a particle for
each script when its deadline elapses, correlating failure notifications
back to their originating script, and retiring scripts that exceed a
failure budget.

# Event loop

Storage runs a single goroutine selecting over three channels, never
preferring one source over another — Go's select already gives "first
ready wins, no fixed priority" for free:

	┌─────────────── Storage.run() ───────────────┐
	│                                              │
	│   select {                                  │
	│   case cmd := <-commands:    execute it     │
	│   case id := <-failures:     account it     │
	│   case <-ticker.C:           fire + cleanup │
	│   case <-stopCh:             return         │
	│   }                                         │
	└──────────────────────────────────────────────┘

Firing drains one-shot scripts first, then selects recurring scripts whose
deadline has elapsed, concatenates the two sets, and hands one particle per
script to the connection pool. Cleanup then prunes sent_particles — see
cleanup's comment for the documented retain-past-deadline quirk, kept
faithfully rather than "fixed".
*/
package scripts
