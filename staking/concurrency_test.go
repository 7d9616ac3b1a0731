// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/test/datagen"
	"github.com/vechain/nftstaker/thor"
)

func TestConcurrentStakeSameToken(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	h, ids := env.holder(1)
	env.open()

	var (
		g       errgroup.Group
		success atomic.Int32
	)
	for range 32 {
		g.Go(func() error {
			_, err := l.Stake(h, ids[0])
			switch {
			case err == nil:
				success.Add(1)
			case !errors.Is(err, reverts.ErrAlreadyStaked):
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), success.Load())
	assert.Equal(t, []thor.TokenID{ids[0]}, l.GetStakedTokens(h))
	assert.Len(t, env.drain(), 1)
}

func TestConcurrentStakeAndTransfer(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	h, ids := env.holder(50)
	buyer := datagen.RandAddress()
	env.open()

	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			_, err := l.Stake(h, id)
			if err != nil && !errors.Is(err, reverts.ErrNotTokenOwner) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			_, err := env.registry.TransferFrom(h, h, buyer, id)
			if err != nil && !errors.Is(err, reverts.ErrTokenStaked) {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// every token either got staked by its owner, or moved to the buyer
	for _, id := range ids {
		owner, err := env.registry.OwnerOf(id)
		require.NoError(t, err)
		staker, staked := l.StakerOf(id)
		if staked {
			assert.Equal(t, h, owner)
			assert.Equal(t, h, staker)
		} else {
			assert.Equal(t, buyer, owner)
		}
	}
	assert.Equal(t, uint64(len(ids)), env.registry.BalanceOf(h)+env.registry.BalanceOf(buyer))
	assert.Equal(t, l.TotalStaked(), int(env.registry.BalanceOf(h)))
}

func TestConcurrentMixedCalls(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger

	const holders = 8
	type holding struct {
		addr thor.Address
		ids  []thor.TokenID
	}
	hs := make([]holding, holders)
	for i := range hs {
		addr, ids := env.holder(10)
		hs[i] = holding{addr, ids}
	}
	env.open()

	var g errgroup.Group
	for _, h := range hs {
		g.Go(func() error {
			for round := range 3 {
				for _, id := range h.ids {
					if _, err := l.Stake(h.addr, id); err != nil && !reverts.IsRevertErr(err) {
						return err
					}
				}
				for _, id := range h.ids[round:] {
					if _, err := l.Unstake(h.addr, id); err != nil && !reverts.IsRevertErr(err) {
						return err
					}
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		for range 5 {
			if _, err := l.StopStakingUnstakeAll(env.admin); err != nil {
				return err
			}
			if err := l.InitStaking(env.admin); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, g.Wait())

	// the indexes agree with each other
	total := 0
	for _, s := range l.Stakers() {
		tokens := l.GetStakedTokens(s)
		assert.NotEmpty(t, tokens)
		for _, id := range tokens {
			staker, ok := l.StakerOf(id)
			assert.True(t, ok)
			assert.Equal(t, s, staker)
		}
		total += len(tokens)
	}
	assert.Equal(t, l.TotalStaked(), total)

	// sequence numbers are gapless and arrive in order
	var last uint64
	for _, ev := range env.drain() {
		require.Equal(t, last+1, ev.Seq)
		assert.Contains(t, []events.Kind{events.KindStaked, events.KindUnstaked}, ev.Kind)
		last = ev.Seq
	}
}
