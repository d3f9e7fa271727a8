package ports

import "context"

// Peer identifies the remote counterparty on the message transport.
type Peer interface {
	Address() string
}

// Message is anything deliverable over the peer transport. Concrete
// trade messages live in the protocol package; the transport only needs
// the correlation key.
type Message interface {
	GetTradeId() string
}

// MessageHandler is invoked by the transport for every inbound message.
type MessageHandler func(msg Message, from Peer)

// MessageService is the narrow contract the protocol engine consumes
// from the peer message transport. Handlers are keyed by id so that a
// protocol can deregister exactly what it registered.
type MessageService interface {
	AddHandler(id string, handler MessageHandler)
	RemoveHandler(id string)
	Send(ctx context.Context, peer Peer, msg Message) error
}
