// Package wstransport carries trade messages between peers over
// websocket connections. Every frame is a JSON envelope tagging the
// message kind; inbound frames are decoded and fanned out to all
// registered protocol handlers.
package wstransport

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/escrow-network/escrowd/internal/core/ports"
	"github.com/escrow-network/escrowd/internal/core/protocol"
	"github.com/escrow-network/escrowd/pkg/circuitbreaker"
)

// peerConn is one live websocket connection to a counterparty. Writes
// are serialized with the connection's own mutex.
type peerConn struct {
	addr string
	conn *websocket.Conn
	mtx  sync.Mutex
}

func (p *peerConn) Address() string {
	return p.addr
}

func (p *peerConn) write(data []byte) error {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.conn.WriteMessage(websocket.TextMessage, data)
}

// Service implements ports.MessageService over websocket connections.
// It accepts inbound connections as an http.Handler and dials outbound
// ones on demand.
type Service struct {
	upgrader websocket.Upgrader
	cb       *gobreaker.CircuitBreaker

	handlerMtx sync.RWMutex
	handlers   map[string]ports.MessageHandler

	connMtx sync.Mutex
	conns   map[string]*peerConn
}

// NewService returns an idle message service. Serve it with
// http.ListenAndServe to accept peers, or Connect to reach one.
func NewService() *Service {
	return &Service{
		upgrader: websocket.Upgrader{},
		cb:       circuitbreaker.NewCircuitBreaker("wstransport"),
		handlers: map[string]ports.MessageHandler{},
		conns:    map[string]*peerConn{},
	}
}

// AddHandler registers a handler invoked for every decoded inbound
// message.
func (s *Service) AddHandler(id string, handler ports.MessageHandler) {
	s.handlerMtx.Lock()
	defer s.handlerMtx.Unlock()
	s.handlers[id] = handler
}

// RemoveHandler deregisters the handler with the given id.
func (s *Service) RemoveHandler(id string) {
	s.handlerMtx.Lock()
	defer s.handlerMtx.Unlock()
	delete(s.handlers, id)
}

// Send encodes the trade message and writes it to the peer, dialing a
// fresh connection if none is open.
func (s *Service) Send(ctx context.Context, peer ports.Peer, msg ports.Message) error {
	tradeMsg, ok := msg.(protocol.TradeMessage)
	if !ok {
		return fmt.Errorf("cannot encode message of type %T", msg)
	}
	data, err := protocol.EncodeMessage(tradeMsg)
	if err != nil {
		return err
	}

	pc, ok := peer.(*peerConn)
	if !ok {
		if pc, err = s.getOrDial(ctx, peer.Address()); err != nil {
			return err
		}
	}
	if err := pc.write(data); err != nil {
		s.dropConn(pc)
		return fmt.Errorf("writing to peer %s: %w", pc.Address(), err)
	}
	return nil
}

// Connect dials the peer at the given address and returns its handle.
// The returned peer can seed a protocol context before any message has
// been received from the counterparty.
func (s *Service) Connect(ctx context.Context, addr string) (ports.Peer, error) {
	return s.getOrDial(ctx, addr)
}

// ServeHTTP upgrades an inbound request to a websocket connection and
// pumps its messages until the peer disconnects.
func (s *Service) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Debug("rejecting websocket upgrade")
		return
	}

	pc := &peerConn{addr: r.RemoteAddr, conn: conn}
	s.connMtx.Lock()
	s.conns[pc.addr] = pc
	s.connMtx.Unlock()

	log.Debugf("peer %s connected", pc.addr)
	go s.readLoop(pc)
}

// Close tears down every open connection.
func (s *Service) Close() {
	s.connMtx.Lock()
	defer s.connMtx.Unlock()
	for addr, pc := range s.conns {
		pc.conn.Close()
		delete(s.conns, addr)
	}
}

func (s *Service) getOrDial(ctx context.Context, addr string) (*peerConn, error) {
	s.connMtx.Lock()
	pc, ok := s.conns[addr]
	s.connMtx.Unlock()
	if ok {
		return pc, nil
	}

	conn, err := s.cb.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("ws://%s/ws", addr)
		c, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
		return c, err
	})
	if err != nil {
		return nil, fmt.Errorf("dialing peer %s: %w", addr, err)
	}

	pc = &peerConn{addr: addr, conn: conn.(*websocket.Conn)}
	s.connMtx.Lock()
	s.conns[addr] = pc
	s.connMtx.Unlock()

	go s.readLoop(pc)
	return pc, nil
}

func (s *Service) readLoop(pc *peerConn) {
	defer s.dropConn(pc)
	for {
		_, data, err := pc.conn.ReadMessage()
		if err != nil {
			log.Debugf("peer %s disconnected: %v", pc.addr, err)
			return
		}

		msg, err := protocol.DecodeMessage(data)
		if err != nil {
			log.WithError(err).Debugf("dropping malformed frame from %s", pc.addr)
			continue
		}
		s.dispatch(msg, pc)
	}
}

func (s *Service) dispatch(msg ports.Message, from ports.Peer) {
	s.handlerMtx.RLock()
	handlers := make([]ports.MessageHandler, 0, len(s.handlers))
	for _, h := range s.handlers {
		handlers = append(handlers, h)
	}
	s.handlerMtx.RUnlock()

	for _, h := range handlers {
		h(msg, from)
	}
}

func (s *Service) dropConn(pc *peerConn) {
	pc.conn.Close()
	s.connMtx.Lock()
	defer s.connMtx.Unlock()
	if cur, ok := s.conns[pc.addr]; ok && cur == pc {
		delete(s.conns, pc.addr)
	}
}

var _ ports.MessageService = (*Service)(nil)
