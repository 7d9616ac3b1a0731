// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

// Stake locks token id of caller into the pool.
//
// The checks run in this order: the pool is open, caller is whitelisted, caller owns
// the token, the token is not staked yet, and caller approved the ledger as operator.
func (l *Ledger) Stake(caller thor.Address, id thor.TokenID) (*events.Event, error) {
	evs, err := l.mutate("stake", func(s *state) ([]*events.Event, error) {
		if s.meta().Pool != PoolOpen {
			return nil, reverts.ErrPoolClosed
		}
		if !s.isWhitelisted(caller) {
			return nil, reverts.ErrNotWhitelisted
		}
		owner, err := l.registry.OwnerOf(id)
		if err != nil {
			if reverts.IsRevertErr(err) {
				return nil, err
			}
			return nil, errors.WithMessage(err, "owner of token")
		}
		if owner != caller {
			return nil, reverts.ErrNotTokenOwner
		}
		if s.stakerOf(id) != nil {
			return nil, reverts.ErrAlreadyStaked
		}
		approved, err := l.registry.IsApprovedForAll(caller, l.addr)
		if err != nil {
			return nil, errors.WithMessage(err, "operator approval")
		}
		if !approved {
			return nil, reverts.ErrOperatorNotApproved
		}

		s.addToken(caller, id)
		return []*events.Event{events.NewStaked(l.addr, s.nextSeq(), caller, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	return evs[0], nil
}

// Unstake releases token id staked by caller. It is allowed whatever the pool state.
func (l *Ledger) Unstake(caller thor.Address, id thor.TokenID) (*events.Event, error) {
	evs, err := l.mutate("unstake", func(s *state) ([]*events.Event, error) {
		if staker := s.stakerOf(id); staker == nil || *staker != caller {
			return nil, reverts.ErrNotStakedByCaller
		}
		s.removeToken(caller, id)
		return []*events.Event{events.NewUnstaked(l.addr, s.nextSeq(), caller, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	return evs[0], nil
}

// StopStakingUnstake releases token id of target on its behalf.
func (l *Ledger) StopStakingUnstake(admin, target thor.Address, id thor.TokenID) (*events.Event, error) {
	evs, err := l.mutate("stopStakingUnstake", func(s *state) ([]*events.Event, error) {
		if err := s.requireAdmin(admin); err != nil {
			return nil, err
		}
		if staker := s.stakerOf(id); staker == nil || *staker != target {
			return nil, reverts.ErrNotOwnerOfStakedToken
		}
		s.removeToken(target, id)
		return []*events.Event{events.NewUnstaked(l.addr, s.nextSeq(), target, id)}, nil
	})
	if err != nil {
		return nil, err
	}
	return evs[0], nil
}

// StopStakingUnstakeAll releases every staked token and closes the pool.
// Stakers are visited in the order they joined, their tokens in ascending order.
// The whitelist is left untouched.
func (l *Ledger) StopStakingUnstakeAll(admin thor.Address) ([]*events.Event, error) {
	evs, err := l.mutate("stopStakingUnstakeAll", func(s *state) ([]*events.Event, error) {
		if err := s.requireAdmin(admin); err != nil {
			return nil, err
		}

		evs := make([]*events.Event, 0, len(l.stakedBy))
		for ptr := s.head(); ptr != nil; {
			staker := *ptr
			ids := make([]thor.TokenID, 0, len(l.tokens[staker]))
			for id := range l.tokens[staker] {
				ids = append(ids, id)
			}
			slices.Sort(ids)
			for _, id := range ids {
				s.setStakerOf(id, nil)
				evs = append(evs, events.NewUnstaked(l.addr, s.nextSeq(), staker, id))
			}

			ptr = s.entry(staker).Next
			s.setEntry(staker, nil)
		}
		s.setHead(nil)
		s.setTail(nil)

		if m := s.meta(); m.Pool != PoolClosed {
			m.Pool = PoolClosed
			s.setMeta(m)
		}
		return evs, nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("all stakes released", "tokens", len(evs))
	return evs, nil
}
