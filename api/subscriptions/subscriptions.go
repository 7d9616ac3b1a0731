// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/api/utils"
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 7 / 10
	maxMessageSize = 512
	eventBuffer    = 256
)

type Subscriptions struct {
	emitters []*events.Emitter
	upgrader *websocket.Upgrader
	pingTime time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// New creates the subscription endpoints over the events of emitters.
// A "*" in allowedOrigins accepts any origin.
func New(allowedOrigins []string, emitters ...*events.Emitter) *Subscriptions {
	return &Subscriptions{
		emitters: emitters,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
			},
		},
		pingTime: pingPeriod,
		done:     make(chan struct{}),
	}
}

// EventFilter selects the streamed events. Zero fields match anything.
type EventFilter struct {
	Emitter *thor.Address
	Kind    *events.Kind
	Owner   *thor.Address
}

func (f *EventFilter) Match(ev *events.Event) bool {
	if f.Emitter != nil && *f.Emitter != ev.Emitter {
		return false
	}
	if f.Kind != nil && *f.Kind != ev.Kind {
		return false
	}
	if f.Owner != nil && *f.Owner != ev.Owner {
		return false
	}
	return true
}

func parseEventFilter(req *http.Request) (*EventFilter, error) {
	query := req.URL.Query()
	filter := &EventFilter{}
	if s := query.Get("emitter"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "emitter")
		}
		filter.Emitter = addr
	}
	if s := query.Get("kind"); s != "" {
		kind, err := events.ParseKind(s)
		if err != nil {
			return nil, errors.WithMessage(err, "kind")
		}
		filter.Kind = &kind
	}
	if s := query.Get("owner"); s != "" {
		addr, err := thor.ParseAddress(s)
		if err != nil {
			return nil, errors.WithMessage(err, "owner")
		}
		filter.Owner = addr
	}
	return filter, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req)
	if err != nil {
		return utils.BadRequest(err)
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return utils.HTTPError(errors.New("service closed"), http.StatusServiceUnavailable)
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	// subscribe first, so that events after the handshake are not missed
	ch := make(chan *events.Event, eventBuffer)
	subs := make([]event.Subscription, 0, len(s.emitters))
	for _, em := range s.emitters {
		subs = append(subs, em.Subscribe(ch))
	}
	sub := event.JoinSubscriptions(subs...)
	defer sub.Unsubscribe()

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	gone := make(chan struct{})
	go s.readLoop(conn, gone)

	ticker := time.NewTicker(s.pingTime)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "service closed")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		case <-gone:
			return nil
		case err := <-sub.Err():
			if err != nil {
				logger.Debug("subscription failed", "err", err)
			}
			return nil
		case ev := <-ch:
			if !filter.Match(ev) {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(ev); err != nil {
				logger.Debug("write event failed", "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				logger.Debug("ping failed", "err", err)
				return nil
			}
		}
	}
}

// readLoop consumes control frames and closes gone once the peer goes away.
func (s *Subscriptions) readLoop(conn *websocket.Conn, gone chan struct{}) {
	defer close(gone)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("read failed", "err", err)
			}
			return
		}
	}
}

// Close ends all streams and waits for their handlers to return.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.done)
	}
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet).
		Name("WS /subscriptions/event").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeEvents))
}
