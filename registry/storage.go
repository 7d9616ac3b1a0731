// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/stackedmap"
	"github.com/vechain/nftstaker/thor"
)

var (
	metaKey      = []byte("meta")
	ownerBucket  = kv.Bucket("o")
	approvalBkt  = kv.Bucket("a")
	approvedFlag = []byte{1}
)

// meta is the registry wide counters.
type meta struct {
	NextID uint64
	Seq    uint64
}

type (
	metaSlot     struct{}
	ownerSlot    thor.TokenID
	approvalSlot struct{ owner, operator thor.Address }
)

func (k approvalSlot) bytes() []byte {
	return append(append(make([]byte, 0, thor.AddressLength*2), k.owner[:]...), k.operator[:]...)
}

// load reads the committed registry state from the store.
func (r *Registry) load() error {
	raw, err := r.store.Get(metaKey)
	if err != nil {
		if !r.store.IsNotFound(err) {
			return errors.Wrap(err, "get meta")
		}
	} else if err := rlp.DecodeBytes(raw, &r.meta); err != nil {
		return errors.Wrap(err, "decode meta")
	}

	owners := ownerBucket.NewStore(r.store)
	it := owners.Iterate(kv.Range{})
	for it.Next() {
		id := thor.BytesToTokenID(it.Key())
		owner := thor.BytesToAddress(it.Value())
		r.owners[id] = owner
		r.balances[owner]++
	}
	it.Release()
	if err := it.Error(); err != nil {
		return errors.Wrap(err, "iterate owners")
	}

	approvals := approvalBkt.NewStore(r.store)
	it = approvals.Iterate(kv.Range{})
	for it.Next() {
		key := it.Key()
		if len(key) != thor.AddressLength*2 {
			it.Release()
			return fmt.Errorf("malformed approval key %x", key)
		}
		r.approvals[approvalSlot{
			owner:    thor.BytesToAddress(key[:thor.AddressLength]),
			operator: thor.BytesToAddress(key[thor.AddressLength:]),
		}] = struct{}{}
	}
	it.Release()
	return errors.Wrap(it.Error(), "iterate approvals")
}

// committed reads the value of a slot from the committed state.
func (r *Registry) committed(slot any) (any, bool) {
	switch k := slot.(type) {
	case metaSlot:
		return r.meta, true
	case ownerSlot:
		owner, ok := r.owners[thor.TokenID(k)]
		return owner, ok
	case approvalSlot:
		_, ok := r.approvals[k]
		return ok, true
	}
	panic(fmt.Sprintf("unknown slot type %T", slot))
}

// state stages the changes of one call on top of the committed registry state.
// Nothing is visible to other calls until commit succeeds.
type state struct {
	r  *Registry
	sm *stackedmap.StackedMap[any, any]
}

func (r *Registry) newState() *state {
	sm := stackedmap.New[any, any](r.committed)
	sm.Push()
	return &state{r, sm}
}

func (s *state) meta() meta {
	v, _ := s.sm.Get(metaSlot{})
	return v.(meta)
}

func (s *state) setMeta(m meta) {
	s.sm.Put(metaSlot{}, m)
}

// nextSeq reserves the sequence number of the next event.
func (s *state) nextSeq() uint64 {
	m := s.meta()
	m.Seq++
	s.setMeta(m)
	return m.Seq
}

func (s *state) ownerOf(id thor.TokenID) (thor.Address, bool) {
	v, ok := s.sm.Get(ownerSlot(id))
	if !ok {
		return thor.Address{}, false
	}
	return v.(thor.Address), true
}

func (s *state) setOwner(id thor.TokenID, owner thor.Address) {
	s.sm.Put(ownerSlot(id), owner)
}

func (s *state) isApproved(owner, operator thor.Address) bool {
	v, _ := s.sm.Get(approvalSlot{owner, operator})
	return v.(bool)
}

func (s *state) setApproval(owner, operator thor.Address, approved bool) {
	s.sm.Put(approvalSlot{owner, operator}, approved)
}

// commit writes the staged changes in one batch, then applies them to memory.
// On a write failure the committed state stays as it was.
func (s *state) commit() error {
	journal := s.sm.Journal()
	if len(journal) == 0 {
		return nil
	}

	batch := s.r.store.NewBatch()
	owners := ownerBucket.NewPutter(batch)
	approvals := approvalBkt.NewPutter(batch)
	for _, entry := range journal {
		var err error
		switch k := entry.Key.(type) {
		case metaSlot:
			var data []byte
			if data, err = rlp.EncodeToBytes(entry.Value.(meta)); err == nil {
				err = batch.Put(metaKey, data)
			}
		case ownerSlot:
			owner := entry.Value.(thor.Address)
			err = owners.Put(thor.TokenID(k).Bytes(), owner.Bytes())
		case approvalSlot:
			if entry.Value.(bool) {
				err = approvals.Put(k.bytes(), approvedFlag)
			} else {
				err = approvals.Delete(k.bytes())
			}
		}
		if err != nil {
			return errors.Wrap(err, "stage change")
		}
	}
	if err := batch.Write(); err != nil {
		return errors.Wrap(err, "write batch")
	}

	for _, entry := range journal {
		switch k := entry.Key.(type) {
		case metaSlot:
			s.r.meta = entry.Value.(meta)
		case ownerSlot:
			id := thor.TokenID(k)
			if prev, ok := s.r.owners[id]; ok {
				if s.r.balances[prev]--; s.r.balances[prev] == 0 {
					delete(s.r.balances, prev)
				}
			}
			owner := entry.Value.(thor.Address)
			s.r.owners[id] = owner
			s.r.balances[owner]++
		case approvalSlot:
			if entry.Value.(bool) {
				s.r.approvals[k] = struct{}{}
			} else {
				delete(s.r.approvals, k)
			}
		}
	}
	return nil
}
