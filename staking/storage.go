// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/stackedmap"
	"github.com/vechain/nftstaker/thor"
)

var (
	metaKey = []byte("meta")
	headKey = []byte("head")
	tailKey = []byte("tail")

	rootBucket      = kv.Bucket("m")
	whitelistBucket = kv.Bucket("w")
	stakerBucket    = kv.Bucket("s")
	tokenBucket     = kv.Bucket("t")

	memberFlag = []byte{1}
)

// meta is the ledger wide state.
type meta struct {
	Admin thor.Address
	Pool  PoolState
	Seq   uint64
}

// entry is a node of the active staker list. A staker is linked while it has at
// least one token staked.
type entry struct {
	Prev  *thor.Address `rlp:"nil"`
	Next  *thor.Address `rlp:"nil"`
	Count uint64
}

type (
	metaSlot      struct{}
	headSlot      struct{}
	tailSlot      struct{}
	whitelistSlot thor.Address
	stakerSlot    thor.Address
	tokenSlot     thor.TokenID
)

func (l *Ledger) load(admin thor.Address) error {
	root := rootBucket.NewStore(l.store)
	raw, err := root.Get(metaKey)
	switch {
	case err == nil:
		if err := rlp.DecodeBytes(raw, &l.meta); err != nil {
			return errors.Wrap(err, "decode meta")
		}
	case root.IsNotFound(err):
		l.meta = meta{Admin: admin, Pool: PoolClosed}
	default:
		return errors.Wrap(err, "get meta")
	}

	if l.head, err = loadAddressPtr(root, headKey); err != nil {
		return err
	}
	if l.tail, err = loadAddressPtr(root, tailKey); err != nil {
		return err
	}

	if err := iterate(whitelistBucket.NewStore(l.store), func(key, _ []byte) error {
		l.whitelist[thor.BytesToAddress(key)] = struct{}{}
		return nil
	}); err != nil {
		return errors.Wrap(err, "load whitelist")
	}

	if err := iterate(stakerBucket.NewStore(l.store), func(key, val []byte) error {
		var e entry
		if err := rlp.DecodeBytes(val, &e); err != nil {
			return err
		}
		l.stakers[thor.BytesToAddress(key)] = &e
		return nil
	}); err != nil {
		return errors.Wrap(err, "load stakers")
	}

	return errors.Wrap(iterate(tokenBucket.NewStore(l.store), func(key, val []byte) error {
		l.addStaked(thor.BytesToTokenID(key), thor.BytesToAddress(val))
		return nil
	}), "load tokens")
}

func loadAddressPtr(store kv.Getter, key []byte) (*thor.Address, error) {
	raw, err := store.Get(key)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "get %s", key)
	}
	addr := thor.BytesToAddress(raw)
	return &addr, nil
}

func iterate(store kv.Store, fn func(key, val []byte) error) error {
	it := store.Iterate(kv.Range{})
	defer it.Release()

	for it.Next() {
		if err := fn(it.Key(), it.Value()); err != nil {
			return err
		}
	}
	return it.Error()
}

// addStaked records id as staked by staker in the committed indexes.
func (l *Ledger) addStaked(id thor.TokenID, staker thor.Address) {
	l.stakedBy[id] = staker
	set, ok := l.tokens[staker]
	if !ok {
		set = make(map[thor.TokenID]struct{})
		l.tokens[staker] = set
	}
	set[id] = struct{}{}
}

// removeStaked drops id from the committed indexes.
func (l *Ledger) removeStaked(id thor.TokenID) {
	staker, ok := l.stakedBy[id]
	if !ok {
		return
	}
	delete(l.stakedBy, id)
	if set := l.tokens[staker]; set != nil {
		delete(set, id)
		if len(set) == 0 {
			delete(l.tokens, staker)
		}
	}
}

// committed reads the value of a slot from the committed state.
func (l *Ledger) committed(slot any) (any, bool) {
	switch k := slot.(type) {
	case metaSlot:
		return l.meta, true
	case headSlot:
		return l.head, true
	case tailSlot:
		return l.tail, true
	case whitelistSlot:
		_, ok := l.whitelist[thor.Address(k)]
		return ok, true
	case stakerSlot:
		e, ok := l.stakers[thor.Address(k)]
		return e, ok
	case tokenSlot:
		staker, ok := l.stakedBy[thor.TokenID(k)]
		if !ok {
			return (*thor.Address)(nil), true
		}
		return &staker, true
	}
	panic(fmt.Sprintf("unknown slot type %T", slot))
}

// state stages the changes of one call on top of the committed ledger state.
// Values read from it are copies, so callers may modify and put them back.
type state struct {
	l  *Ledger
	sm *stackedmap.StackedMap[any, any]
}

func (l *Ledger) newState() *state {
	sm := stackedmap.New[any, any](l.committed)
	sm.Push()
	return &state{l, sm}
}

func (s *state) meta() meta {
	v, _ := s.sm.Get(metaSlot{})
	return v.(meta)
}

func (s *state) setMeta(m meta) {
	s.sm.Put(metaSlot{}, m)
}

func (s *state) nextSeq() uint64 {
	m := s.meta()
	m.Seq++
	s.setMeta(m)
	return m.Seq
}

func (s *state) addressPtr(slot any) *thor.Address {
	v, _ := s.sm.Get(slot)
	if ptr := v.(*thor.Address); ptr != nil {
		cpy := *ptr
		return &cpy
	}
	return nil
}

func (s *state) head() *thor.Address { return s.addressPtr(headSlot{}) }
func (s *state) tail() *thor.Address { return s.addressPtr(tailSlot{}) }

func (s *state) setHead(addr *thor.Address) { s.sm.Put(headSlot{}, addr) }
func (s *state) setTail(addr *thor.Address) { s.sm.Put(tailSlot{}, addr) }

func (s *state) isWhitelisted(addr thor.Address) bool {
	v, _ := s.sm.Get(whitelistSlot(addr))
	return v.(bool)
}

func (s *state) setWhitelisted(addr thor.Address, member bool) {
	s.sm.Put(whitelistSlot(addr), member)
}

// entry returns a copy of the staker's list node, nil if not linked.
func (s *state) entry(addr thor.Address) *entry {
	v, ok := s.sm.Get(stakerSlot(addr))
	if !ok || v.(*entry) == nil {
		return nil
	}
	cpy := *v.(*entry)
	return &cpy
}

func (s *state) setEntry(addr thor.Address, e *entry) {
	s.sm.Put(stakerSlot(addr), e)
}

func (s *state) stakerOf(id thor.TokenID) *thor.Address {
	return s.addressPtr(tokenSlot(id))
}

func (s *state) setStakerOf(id thor.TokenID, staker *thor.Address) {
	s.sm.Put(tokenSlot(id), staker)
}

// commit writes the staged changes in one batch, then applies them to memory.
// On a write failure the committed state stays as it was.
func (s *state) commit() error {
	journal := s.sm.Journal()
	if len(journal) == 0 {
		return nil
	}

	batch := s.l.store.NewBatch()
	root := rootBucket.NewPutter(batch)
	whitelist := whitelistBucket.NewPutter(batch)
	stakers := stakerBucket.NewPutter(batch)
	tokens := tokenBucket.NewPutter(batch)

	putAddressPtr := func(p kv.Putter, key []byte, addr *thor.Address) error {
		if addr == nil {
			return p.Delete(key)
		}
		return p.Put(key, addr.Bytes())
	}

	for _, e := range journal {
		var err error
		switch k := e.Key.(type) {
		case metaSlot:
			var data []byte
			if data, err = rlp.EncodeToBytes(e.Value.(meta)); err == nil {
				err = root.Put(metaKey, data)
			}
		case headSlot:
			err = putAddressPtr(root, headKey, e.Value.(*thor.Address))
		case tailSlot:
			err = putAddressPtr(root, tailKey, e.Value.(*thor.Address))
		case whitelistSlot:
			if e.Value.(bool) {
				err = whitelist.Put(k[:], memberFlag)
			} else {
				err = whitelist.Delete(k[:])
			}
		case stakerSlot:
			if node := e.Value.(*entry); node != nil {
				var data []byte
				if data, err = rlp.EncodeToBytes(node); err == nil {
					err = stakers.Put(k[:], data)
				}
			} else {
				err = stakers.Delete(k[:])
			}
		case tokenSlot:
			err = putAddressPtr(tokens, thor.TokenID(k).Bytes(), e.Value.(*thor.Address))
		}
		if err != nil {
			return errors.Wrap(err, "stage change")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write batch")
	}

	l := s.l
	for _, e := range journal {
		switch k := e.Key.(type) {
		case metaSlot:
			l.meta = e.Value.(meta)
		case headSlot:
			l.head = e.Value.(*thor.Address)
		case tailSlot:
			l.tail = e.Value.(*thor.Address)
		case whitelistSlot:
			if e.Value.(bool) {
				l.whitelist[thor.Address(k)] = struct{}{}
			} else {
				delete(l.whitelist, thor.Address(k))
			}
		case stakerSlot:
			if node := e.Value.(*entry); node != nil {
				l.stakers[thor.Address(k)] = node
			} else {
				delete(l.stakers, thor.Address(k))
			}
		case tokenSlot:
			l.removeStaked(thor.TokenID(k))
			if staker := e.Value.(*thor.Address); staker != nil {
				l.addStaked(thor.TokenID(k), *staker)
			}
		}
	}
	return nil
}
