package scripts

import "errors"

var (
	// ErrOutlet is returned when a command can't be delivered to the actor.
	ErrOutlet = errors.New("can't send message to script storage")
	// ErrInlet is returned when a reply can't be received from the actor.
	ErrInlet = errors.New("can't receive response from script storage")
)
