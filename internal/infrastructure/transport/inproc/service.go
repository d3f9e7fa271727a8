// Package inproc links two message services in memory. It is the
// transport used by tests and by single-process simulations: frames
// still go through the wire codec, but delivery is a function call.
package inproc

import (
	"context"
	"fmt"
	"sync"

	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
)

type peer struct {
	addr   string
	target *Service
}

func (p *peer) Address() string {
	return p.addr
}

// Service is one end of an in-process transport pair.
type Service struct {
	addr string

	mtx      sync.RWMutex
	handlers map[string]ports.MessageHandler
	self     *peer
}

// NewPair returns two linked services with the given addresses. A
// message sent through one is decoded and delivered to the other's
// handlers before Send returns.
func NewPair(addrA, addrB string) (*Service, *Service) {
	a := &Service{addr: addrA, handlers: map[string]ports.MessageHandler{}}
	b := &Service{addr: addrB, handlers: map[string]ports.MessageHandler{}}
	a.self = &peer{addr: addrA, target: a}
	b.self = &peer{addr: addrB, target: b}
	return a, b
}

// Peer returns the handle remote parties use to reach this service.
func (s *Service) Peer() ports.Peer {
	return s.self
}

func (s *Service) AddHandler(id string, handler ports.MessageHandler) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.handlers[id] = handler
}

func (s *Service) RemoveHandler(id string) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	delete(s.handlers, id)
}

// Send frames the message through the wire codec and hands the decoded
// copy to the destination's handlers.
func (s *Service) Send(_ context.Context, to ports.Peer, msg ports.Message) error {
	dest, ok := to.(*peer)
	if !ok {
		return fmt.Errorf("unknown peer %s", to.Address())
	}
	tradeMsg, ok := msg.(protocol.TradeMessage)
	if !ok {
		return fmt.Errorf("cannot encode message of type %T", msg)
	}

	data, err := protocol.EncodeMessage(tradeMsg)
	if err != nil {
		return err
	}
	decoded, err := protocol.DecodeMessage(data)
	if err != nil {
		return err
	}

	dest.target.deliver(decoded, s.self)
	return nil
}

func (s *Service) deliver(msg ports.Message, from ports.Peer) {
	s.mtx.RLock()
	handlers := make([]ports.MessageHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.mtx.RUnlock()

	for _, h := range handlers {
		h(msg, from)
	}
}

var _ ports.MessageService = (*Service)(nil)
