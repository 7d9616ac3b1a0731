// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/nftstaker/thor"
)

// Emitter publishes the events of one component to its subscribers.
//
// Components queue events while holding their own lock, right after the change is
// committed, and flush once the lock is released. Subscribers therefore see the
// events of an emitter in commit order, and a slow subscriber never stalls the
// component lock.
type Emitter struct {
	addr  thor.Address
	feed  event.Feed
	scope event.SubscriptionScope

	queueMu sync.Mutex
	queue   []*Event
	flushMu sync.Mutex
}

// NewEmitter creates an emitter for the component at addr.
func NewEmitter(addr thor.Address) *Emitter {
	return &Emitter{addr: addr}
}

// Address returns the address of the emitting component.
func (e *Emitter) Address() thor.Address {
	return e.addr
}

// Subscribe registers ch to receive every published event.
// The channel should be buffered, a blocked receiver delays the others.
func (e *Emitter) Subscribe(ch chan<- *Event) event.Subscription {
	return e.scope.Track(e.feed.Subscribe(ch))
}

// Queue appends events to be sent by the next Flush.
func (e *Emitter) Queue(evs ...*Event) {
	if len(evs) == 0 {
		return
	}
	e.queueMu.Lock()
	e.queue = append(e.queue, evs...)
	e.queueMu.Unlock()
}

// Flush sends all queued events, in queue order.
func (e *Emitter) Flush() {
	e.flushMu.Lock()
	defer e.flushMu.Unlock()

	for {
		e.queueMu.Lock()
		pending := e.queue
		e.queue = nil
		e.queueMu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, ev := range pending {
			e.feed.Send(ev)
		}
	}
}

// Close unsubscribes all subscribers.
func (e *Emitter) Close() {
	e.scope.Close()
}
