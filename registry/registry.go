// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package registry implements the token registry: a collection of unique tokens with
// sequentially assigned ids, their owners and the operators approved to act for them.
package registry

import (
	"sync"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

const (
	DefaultName   = "2 THE MOON"
	DefaultSymbol = "M00N"
)

var logger = log.WithContext("pkg", "registry")

// TransferGuard gets the final say on every transfer. The guard runs transfer, or
// rejects the call without running it.
type TransferGuard interface {
	GuardTransfer(id thor.TokenID, transfer func() error) error
}

// Options of the registry.
type Options struct {
	Name   string
	Symbol string
}

// Registry keeps the owner of each minted token.
type Registry struct {
	addr    thor.Address
	admin   thor.Address
	name    string
	symbol  string
	store   kv.Store
	emitter *events.Emitter

	mu        sync.RWMutex
	guard     TransferGuard
	meta      meta
	owners    map[thor.TokenID]thor.Address
	balances  map[thor.Address]uint64
	approvals map[approvalSlot]struct{}
}

// New creates the registry at addr, loading its state from store.
// Only admin may mint.
func New(addr thor.Address, store kv.Store, admin thor.Address, opts *Options) (*Registry, error) {
	if admin.IsZero() {
		return nil, reverts.ErrInvalidAddress
	}
	r := &Registry{
		addr:      addr,
		admin:     admin,
		name:      DefaultName,
		symbol:    DefaultSymbol,
		store:     store,
		emitter:   events.NewEmitter(addr),
		owners:    make(map[thor.TokenID]thor.Address),
		balances:  make(map[thor.Address]uint64),
		approvals: make(map[approvalSlot]struct{}),
	}
	if opts != nil {
		if opts.Name != "" {
			r.name = opts.Name
		}
		if opts.Symbol != "" {
			r.symbol = opts.Symbol
		}
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	metricSupply().Set(int64(r.meta.NextID))
	logger.Debug("registry loaded", "addr", addr, "supply", r.meta.NextID)
	return r, nil
}

// SetTransferGuard installs the guard consulted by TransferFrom.
func (r *Registry) SetTransferGuard(guard TransferGuard) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.guard = guard
}

func (r *Registry) Address() thor.Address    { return r.addr }
func (r *Registry) Admin() thor.Address      { return r.admin }
func (r *Registry) Name() string             { return r.name }
func (r *Registry) Symbol() string           { return r.symbol }
func (r *Registry) Emitter() *events.Emitter { return r.emitter }

// TotalSupply returns the number of minted tokens.
func (r *Registry) TotalSupply() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.meta.NextID
}

// OwnerOf returns the current owner of the token.
func (r *Registry) OwnerOf(id thor.TokenID) (thor.Address, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owner, ok := r.owners[id]
	if !ok {
		return thor.Address{}, reverts.ErrUnknownToken
	}
	return owner, nil
}

// BalanceOf returns the number of tokens held by owner.
func (r *Registry) BalanceOf(owner thor.Address) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.balances[owner]
}

// IsApprovedForAll reports whether operator may move every token of owner.
func (r *Registry) IsApprovedForAll(owner, operator thor.Address) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.approvals[approvalSlot{owner, operator}]
	return ok, nil
}

// Mint creates the next token and gives it to to.
func (r *Registry) Mint(caller, to thor.Address) (thor.TokenID, *events.Event, error) {
	id, ev, err := r.mint(caller, to)
	if err != nil {
		return 0, nil, err
	}
	r.emitter.Flush()

	metricMints().Add(1)
	metricSupply().Set(int64(id) + 1)
	logger.Debug("token minted", "id", id, "to", to)
	return id, ev, nil
}

func (r *Registry) mint(caller, to thor.Address) (thor.TokenID, *events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if caller != r.admin {
		return 0, nil, reverts.ErrUnauthorized
	}
	if to.IsZero() {
		return 0, nil, reverts.ErrInvalidAddress
	}

	s := r.newState()
	m := s.meta()
	id := thor.TokenID(m.NextID)
	m.NextID++
	s.setMeta(m)
	s.setOwner(id, to)

	ev := events.NewTransfer(r.addr, s.nextSeq(), thor.Address{}, to, id)
	if err := s.commit(); err != nil {
		return 0, nil, err
	}
	r.emitter.Queue(ev)
	return id, ev, nil
}

// SetApprovalForAll grants or revokes operator the right to move all tokens of owner.
func (r *Registry) SetApprovalForAll(owner, operator thor.Address, approved bool) (*events.Event, error) {
	ev, err := r.setApprovalForAll(owner, operator, approved)
	if err != nil {
		return nil, err
	}
	r.emitter.Flush()
	return ev, nil
}

func (r *Registry) setApprovalForAll(owner, operator thor.Address, approved bool) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if operator.IsZero() || operator == owner {
		return nil, reverts.ErrInvalidAddress
	}

	s := r.newState()
	s.setApproval(owner, operator, approved)
	ev := events.NewApprovalForAll(r.addr, s.nextSeq(), owner, operator, approved)
	if err := s.commit(); err != nil {
		return nil, err
	}
	r.emitter.Queue(ev)
	return ev, nil
}

// TransferFrom moves token id from from to to. The caller must be the owner, or an
// operator approved by the owner. The installed guard may reject the transfer.
func (r *Registry) TransferFrom(caller, from, to thor.Address, id thor.TokenID) (*events.Event, error) {
	r.mu.RLock()
	guard := r.guard
	r.mu.RUnlock()

	var ev *events.Event
	transfer := func() (err error) {
		ev, err = r.transfer(caller, from, to, id)
		return
	}

	var err error
	if guard != nil {
		err = guard.GuardTransfer(id, transfer)
	} else {
		err = transfer()
	}
	if err != nil {
		return nil, err
	}
	r.emitter.Flush()

	metricTransfers().Add(1)
	return ev, nil
}

func (r *Registry) transfer(caller, from, to thor.Address, id thor.TokenID) (*events.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.newState()
	owner, ok := s.ownerOf(id)
	if !ok {
		return nil, reverts.ErrUnknownToken
	}
	if caller != owner && !s.isApproved(owner, caller) {
		return nil, reverts.ErrNotTokenOwner
	}
	if from != owner {
		return nil, reverts.ErrNotTokenOwner
	}
	if to.IsZero() {
		return nil, reverts.ErrInvalidAddress
	}

	s.setOwner(id, to)
	ev := events.NewTransfer(r.addr, s.nextSeq(), from, to, id)
	if err := s.commit(); err != nil {
		return nil, err
	}
	r.emitter.Queue(ev)
	return ev, nil
}
