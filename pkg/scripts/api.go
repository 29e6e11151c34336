package scripts

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// API is the public handle callers use to add and remove scripts. It never
// touches the actor's maps directly; every call is a command posted to the
// actor's inbox.
type API struct {
	mu       sync.RWMutex
	closed   bool
	commands chan command
}

func newAPI(commands chan command) *API {
	return &API{commands: commands}
}

func (a *API) send(cmd command) error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return ErrOutlet
	}
	a.commands <- cmd
	return nil
}

func (a *API) close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
}

// AddScript generates a fresh uuid, posts an AddScript command, and returns
// the uuid synchronously. interval nil means one-shot.
func (a *API) AddScript(src string, interval *time.Duration) (string, error) {
	id := uuid.New().String()
	if err := a.send(addScriptCommand{uuid: id, src: src, interval: interval}); err != nil {
		return "", err
	}
	return id, nil
}

// RemoveScript posts a RemoveScript command and returns a channel that
// resolves to true if the script existed, false otherwise.
func (a *API) RemoveScript(uuid string) (<-chan bool, error) {
	reply := make(chan bool, 1)
	if err := a.send(removeScriptCommand{uuid: uuid, reply: reply}); err != nil {
		return nil, err
	}
	return reply, nil
}
