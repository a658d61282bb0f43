package bot

import "context"

// Messenger delivers an outbound message to a host-supplied destination
// address. The host bot framework provides the implementation.
type Messenger interface {
	Send(ctx context.Context, destination, text string) error
}
