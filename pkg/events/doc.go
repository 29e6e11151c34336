/*
Package events provides an in-memory event broker for the node's domain
events.

The events package implements a lightweight, topic-agnostic event bus:
publishers call Broker.Publish, and every subscriber gets a copy over a
buffered channel. Delivery is best-effort — a subscriber with a full buffer
skips the event rather than blocking the broadcast loop.

# Event catalog

	module.added       - a module was added to the repository
	blueprint.added    - a blueprint was added to the repository
	script.added       - a script was registered with the scheduler
	script.fired       - a script produced a particle
	script.dropped     - a recurring script was evicted after too many failures
	script.removed     - a script was removed via RemoveScript

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	go func() {
		for event := range sub {
			fmt.Printf("[%s] %s: %s\n", event.Timestamp.Format(time.RFC3339), event.Type, event.Message)
		}
	}()

pkg/metrics.Collector does not subscribe to the broker; it polls
pkg/modules.Repository and pkg/scripts.Storage directly on its own ticker.
The broker's one consumer today is cmd/corenoded's `script run` command,
which subscribes to print each script's firings as they happen.
*/
package events
