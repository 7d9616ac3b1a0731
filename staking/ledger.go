// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package staking implements the staking ledger. Whitelisted holders lock tokens of
// the registry into a pool that the admin opens and closes.
//
// All mutations are serialized by a single lock. Each one checks its preconditions
// and stages its changes, which are then written to the store in one batch and
// applied to memory only if the write succeeds. A rejected or failed call leaves
// the ledger exactly as it was.
package staking

import (
	"bytes"
	"slices"
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

var logger = log.WithContext("pkg", "staking")

// Registry is the part of the token registry the ledger depends on.
type Registry interface {
	OwnerOf(id thor.TokenID) (thor.Address, error)
	IsApprovedForAll(owner, operator thor.Address) (bool, error)
}

// PoolState tells whether new stakes are accepted.
type PoolState uint8

const (
	PoolClosed PoolState = iota
	PoolOpen
)

func (p PoolState) String() string {
	if p == PoolOpen {
		return "open"
	}
	return "closed"
}

// MarshalText implements encoding.TextMarshaler.
func (p PoolState) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PoolState) UnmarshalText(text []byte) error {
	switch string(text) {
	case "open":
		*p = PoolOpen
	case "closed":
		*p = PoolClosed
	default:
		return errors.Errorf("invalid pool state %q", text)
	}
	return nil
}

// Ledger is the staking ledger.
type Ledger struct {
	addr     thor.Address
	registry Registry
	store    kv.Store
	emitter  *events.Emitter

	mu        sync.RWMutex
	meta      meta
	head      *thor.Address
	tail      *thor.Address
	whitelist map[thor.Address]struct{}
	stakers   map[thor.Address]*entry
	stakedBy  map[thor.TokenID]thor.Address
	tokens    map[thor.Address]map[thor.TokenID]struct{}
}

// New creates the ledger at addr, which is also the operator address holders must
// approve on the registry. The state is loaded from store, admin is used only when
// the store holds no ledger yet.
func New(addr thor.Address, store kv.Store, registry Registry, admin thor.Address) (*Ledger, error) {
	l := &Ledger{
		addr:      addr,
		registry:  registry,
		store:     store,
		emitter:   events.NewEmitter(addr),
		whitelist: make(map[thor.Address]struct{}),
		stakers:   make(map[thor.Address]*entry),
		stakedBy:  make(map[thor.TokenID]thor.Address),
		tokens:    make(map[thor.Address]map[thor.TokenID]struct{}),
	}
	if err := l.load(admin); err != nil {
		return nil, err
	}
	if l.meta.Admin.IsZero() {
		return nil, reverts.ErrInvalidAddress
	}
	if l.meta.Admin != admin {
		logger.Info("admin loaded from store", "admin", l.meta.Admin)
	}

	l.updateGauges()
	logger.Debug("ledger loaded",
		"addr", addr,
		"pool", l.meta.Pool,
		"whitelist", len(l.whitelist),
		"stakers", len(l.stakers),
		"staked", len(l.stakedBy),
	)
	return l, nil
}

func (l *Ledger) Address() thor.Address    { return l.addr }
func (l *Ledger) Emitter() *events.Emitter { return l.emitter }

// Admin returns the current administrator.
func (l *Ledger) Admin() thor.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.meta.Admin
}

// PoolState returns the current pool state.
func (l *Ledger) PoolState() PoolState {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.meta.Pool
}

// IsOnWhitelist reports whether target may stake.
func (l *Ledger) IsOnWhitelist(target thor.Address) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, ok := l.whitelist[target]
	return ok
}

// Whitelist returns the members sorted by address.
func (l *Ledger) Whitelist() []thor.Address {
	l.mu.RLock()
	members := make([]thor.Address, 0, len(l.whitelist))
	for addr := range l.whitelist {
		members = append(members, addr)
	}
	l.mu.RUnlock()

	slices.SortFunc(members, func(a, b thor.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return members
}

// GetStakedTokens returns the tokens staked by target in ascending order.
// The slice is a copy and empty, not nil, when nothing is staked.
func (l *Ledger) GetStakedTokens(target thor.Address) []thor.TokenID {
	l.mu.RLock()
	set := l.tokens[target]
	ids := make([]thor.TokenID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	l.mu.RUnlock()

	slices.Sort(ids)
	return ids
}

// StakerOf returns who staked the token.
func (l *Ledger) StakerOf(id thor.TokenID) (thor.Address, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	staker, ok := l.stakedBy[id]
	return staker, ok
}

// Stakers returns the holders with at least one staked token, in the order they joined.
func (l *Ledger) Stakers() []thor.Address {
	l.mu.RLock()
	defer l.mu.RUnlock()

	stakers := make([]thor.Address, 0, len(l.stakers))
	for ptr := l.head; ptr != nil; ptr = l.stakers[*ptr].Next {
		stakers = append(stakers, *ptr)
	}
	return stakers
}

// TotalStaked returns the number of staked tokens.
func (l *Ledger) TotalStaked() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.stakedBy)
}

// GuardTransfer lets the registry move a token only while it is not staked.
// It holds the ledger read lock while transfer runs, so a token can not be staked
// halfway through its transfer.
func (l *Ledger) GuardTransfer(id thor.TokenID, transfer func() error) error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if _, ok := l.stakedBy[id]; ok {
		return reverts.ErrTokenStaked
	}
	return transfer()
}

// mutate runs fn under the write lock, commits what it staged and queues the
// events it returns. The events are sent once the lock is released.
func (l *Ledger) mutate(op string, fn func(s *state) ([]*events.Event, error)) ([]*events.Event, error) {
	evs, err := func() ([]*events.Event, error) {
		l.mu.Lock()
		defer l.mu.Unlock()

		s := l.newState()
		evs, err := fn(s)
		if err != nil {
			return nil, err
		}
		if err := s.commit(); err != nil {
			return nil, err
		}
		l.emitter.Queue(evs...)
		l.updateGauges()
		return evs, nil
	}()
	if err != nil {
		if reverts.IsRevertErr(err) {
			metricReverts().AddWithLabel(1, map[string]string{"op": op})
			logger.Debug("call reverted", "op", op, "reason", err)
		} else {
			logger.Warn("call failed", "op", op, "err", err)
		}
		return nil, err
	}
	l.emitter.Flush()

	metricCalls().AddWithLabel(1, map[string]string{"op": op})
	return evs, nil
}

// requireAdmin must be called with a staged state.
func (s *state) requireAdmin(caller thor.Address) error {
	if caller != s.meta().Admin {
		return reverts.ErrUnauthorized
	}
	return nil
}

func (l *Ledger) updateGauges() {
	metricStakedTokens().Set(int64(len(l.stakedBy)))
	metricStakers().Set(int64(len(l.stakers)))
	metricWhitelist().Set(int64(len(l.whitelist)))
	if l.meta.Pool == PoolOpen {
		metricPoolOpen().Set(1)
	} else {
		metricPoolOpen().Set(0)
	}
}
