// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/lvldb"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/test/datagen"
	"github.com/vechain/nftstaker/thor"
)

func TestStakeUnstakeScenario(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger

	holder := datagen.RandAddress()
	ids := env.mint(holder, 6)
	_, err := env.registry.SetApprovalForAll(holder, ledgerAddr, true)
	require.NoError(t, err)

	_, err = l.AddOnWhitelist(env.admin, holder)
	require.NoError(t, err)
	require.NoError(t, l.InitStaking(env.admin))

	ev, err := l.Stake(holder, ids[5])
	require.NoError(t, err)
	assert.Equal(t, events.NewStaked(ledgerAddr, 1, holder, 5), ev)
	assert.Equal(t, []thor.TokenID{5}, l.GetStakedTokens(holder))

	ev, err = l.Unstake(holder, 5)
	require.NoError(t, err)
	assert.Equal(t, events.NewUnstaked(ledgerAddr, 2, holder, 5), ev)
	assert.Equal(t, []thor.TokenID{}, l.GetStakedTokens(holder))

	assert.Equal(t, []*events.Event{
		events.NewStaked(ledgerAddr, 1, holder, 5),
		events.NewUnstaked(ledgerAddr, 2, holder, 5),
	}, env.drain())
}

func TestStopStakingUnstakeAllScenario(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger

	h, hIDs := env.holder(4)
	env.open()

	k := datagen.RandAddress()
	kIDs := env.mint(k, 1)
	_, err := env.registry.SetApprovalForAll(k, ledgerAddr, true)
	require.NoError(t, err)

	_, err = l.Stake(h, hIDs[2])
	require.NoError(t, err)
	_, err = l.Stake(h, hIDs[3])
	require.NoError(t, err)

	_, err = l.Stake(k, kIDs[0])
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
	env.drain()

	evs, err := l.StopStakingUnstakeAll(env.admin)
	require.NoError(t, err)
	assert.Equal(t, []*events.Event{
		events.NewUnstaked(ledgerAddr, 3, h, hIDs[2]),
		events.NewUnstaked(ledgerAddr, 4, h, hIDs[3]),
	}, evs)
	assert.Equal(t, evs, env.drain())

	assert.Empty(t, l.GetStakedTokens(h))
	assert.Empty(t, l.Stakers())
	assert.Zero(t, l.TotalStaked())
	assert.Equal(t, PoolClosed, l.PoolState())
	assert.True(t, l.IsOnWhitelist(h))

	// released tokens move freely again
	_, err = env.registry.TransferFrom(h, h, k, hIDs[2])
	require.NoError(t, err)
}

func TestStopStakingUnstakeAllOrder(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	a, aIDs := env.holder(3)
	b, bIDs := env.holder(2)
	env.open()

	for _, stake := range []struct {
		who thor.Address
		id  thor.TokenID
	}{{b, bIDs[1]}, {a, aIDs[2]}, {b, bIDs[0]}, {a, aIDs[0]}} {
		_, err := l.Stake(stake.who, stake.id)
		require.NoError(t, err)
	}

	evs, err := l.StopStakingUnstakeAll(env.admin)
	require.NoError(t, err)

	var got []thor.TokenID
	for _, ev := range evs {
		assert.Equal(t, events.KindUnstaked, ev.Kind)
		got = append(got, ev.TokenID)
	}
	// join order, then ascending ids
	assert.Equal(t, []thor.TokenID{bIDs[0], bIDs[1], aIDs[0], aIDs[2]}, got)

	// an empty sweep is fine
	evs, err = l.StopStakingUnstakeAll(env.admin)
	require.NoError(t, err)
	assert.Empty(t, evs)
}

func TestStakeChecks(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	holder, ids := env.holder(3)
	other, otherIDs := env.holder(1)
	env.open()

	listedNotApproved := datagen.RandAddress()
	_, err := l.AddOnWhitelist(env.admin, listedNotApproved)
	require.NoError(t, err)
	notApprovedIDs := env.mint(listedNotApproved, 1)

	_, err = l.Stake(holder, ids[0])
	require.NoError(t, err)

	tests := []struct {
		name   string
		caller thor.Address
		id     thor.TokenID
		want   error
	}{
		{"not whitelisted owner", datagen.RandAddress(), ids[1], reverts.ErrNotWhitelisted},
		{"token of someone else", holder, otherIDs[0], reverts.ErrNotTokenOwner},
		{"unknown token", holder, 1000, reverts.ErrUnknownToken},
		{"staked twice", holder, ids[0], reverts.ErrAlreadyStaked},
		{"operator not approved", listedNotApproved, notApprovedIDs[0], reverts.ErrOperatorNotApproved},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Stake(tt.caller, tt.id)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Equal(t, []thor.TokenID{ids[0]}, l.GetStakedTokens(holder))
	assert.Empty(t, l.GetStakedTokens(other))
	assert.Empty(t, l.GetStakedTokens(listedNotApproved))
	assert.Equal(t, 1, l.TotalStaked())
}

func TestNonWhitelistedNeverStakes(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	env.open()

	// owner, approved, but not admitted
	outsider := datagen.RandAddress()
	ids := env.mint(outsider, 3)
	_, err := env.registry.SetApprovalForAll(outsider, ledgerAddr, true)
	require.NoError(t, err)

	for _, id := range ids {
		_, err := l.Stake(outsider, id)
		assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
	}
	// not even for tokens of others
	_, err = l.Stake(outsider, 999)
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
	assert.Zero(t, l.TotalStaked())
}

func TestNoDoubleStake(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	// without the transfer guard the registry may report a new owner of a staked token
	a, b := datagen.RandAddress(), datagen.RandAddress()
	reg := &fakeRegistry{owners: map[thor.TokenID]thor.Address{7: a}, approved: true}
	admin := datagen.RandAddress()
	l, err := New(ledgerAddr, db, reg, admin)
	require.NoError(t, err)

	for _, h := range []thor.Address{a, b} {
		_, err := l.AddOnWhitelist(admin, h)
		require.NoError(t, err)
	}
	require.NoError(t, l.InitStaking(admin))

	_, err = l.Stake(a, 7)
	require.NoError(t, err)

	reg.owners[7] = b
	_, err = l.Stake(b, 7)
	assert.ErrorIs(t, err, reverts.ErrAlreadyStaked)

	staker, ok := l.StakerOf(7)
	assert.True(t, ok)
	assert.Equal(t, a, staker)
	assert.Empty(t, l.GetStakedTokens(b))
}

func TestRegistryFailure(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	holder, admin := datagen.RandAddress(), datagen.RandAddress()
	reg := &fakeRegistry{err: errors.New("registry unavailable")}
	l, err := New(ledgerAddr, db, reg, admin)
	require.NoError(t, err)
	_, err = l.AddOnWhitelist(admin, holder)
	require.NoError(t, err)
	require.NoError(t, l.InitStaking(admin))

	_, err = l.Stake(holder, 1)
	assert.ErrorContains(t, err, "registry unavailable")
	assert.False(t, reverts.IsRevertErr(err))
	assert.Zero(t, l.TotalStaked())
}

func TestUnstake(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	a, aIDs := env.holder(2)
	b, _ := env.holder(0)
	env.open()

	_, err := l.Stake(a, aIDs[0])
	require.NoError(t, err)

	_, err = l.Unstake(b, aIDs[0])
	assert.ErrorIs(t, err, reverts.ErrNotStakedByCaller)
	_, err = l.Unstake(a, aIDs[1])
	assert.ErrorIs(t, err, reverts.ErrNotStakedByCaller)

	// revoked members keep the right to unstake
	_, err = l.RemoveFromWhitelist(env.admin, a)
	require.NoError(t, err)
	_, err = l.Stake(a, aIDs[1])
	assert.ErrorIs(t, err, reverts.ErrNotWhitelisted)
	_, err = l.Unstake(a, aIDs[0])
	require.NoError(t, err)

	_, err = l.Unstake(a, aIDs[0])
	assert.ErrorIs(t, err, reverts.ErrNotStakedByCaller)
}

func TestStopStakingUnstake(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	h, hIDs := env.holder(3)
	k, kIDs := env.holder(1)
	env.open()

	for _, id := range hIDs[:2] {
		_, err := l.Stake(h, id)
		require.NoError(t, err)
	}
	_, err := l.Stake(k, kIDs[0])
	require.NoError(t, err)

	for _, id := range []thor.TokenID{hIDs[2], kIDs[0], 1000} {
		_, err := l.StopStakingUnstake(env.admin, h, id)
		assert.ErrorIs(t, err, reverts.ErrNotOwnerOfStakedToken)
	}
	assert.Equal(t, hIDs[:2], l.GetStakedTokens(h))

	ev, err := l.StopStakingUnstake(env.admin, h, hIDs[1])
	require.NoError(t, err)
	assert.Equal(t, events.KindUnstaked, ev.Kind)
	assert.Equal(t, h, ev.Owner)
	assert.Equal(t, hIDs[1], ev.TokenID)
	assert.Equal(t, hIDs[:1], l.GetStakedTokens(h))
	assert.Equal(t, PoolOpen, l.PoolState())
}

func TestGetStakedTokensIsACopy(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	h, ids := env.holder(3)
	env.open()

	assert.NotNil(t, l.GetStakedTokens(h))
	assert.Empty(t, l.GetStakedTokens(h))

	for _, i := range []int{2, 0, 1} {
		_, err := l.Stake(h, ids[i])
		require.NoError(t, err)
	}

	got := l.GetStakedTokens(h)
	assert.Equal(t, ids, got)
	got[0] = 999
	got = append(got[:1], got[2:]...)
	assert.Equal(t, ids, l.GetStakedTokens(h))
}

func TestStakersIndex(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	a, aIDs := env.holder(1)
	b, bIDs := env.holder(1)
	c, cIDs := env.holder(1)
	env.open()

	stake := func(who thor.Address, id thor.TokenID) {
		_, err := l.Stake(who, id)
		require.NoError(t, err)
	}
	unstake := func(who thor.Address, id thor.TokenID) {
		_, err := l.Unstake(who, id)
		require.NoError(t, err)
	}

	stake(a, aIDs[0])
	stake(b, bIDs[0])
	stake(c, cIDs[0])
	assert.Equal(t, []thor.Address{a, b, c}, l.Stakers())

	// middle
	unstake(b, bIDs[0])
	assert.Equal(t, []thor.Address{a, c}, l.Stakers())
	// head
	unstake(a, aIDs[0])
	assert.Equal(t, []thor.Address{c}, l.Stakers())
	// rejoin goes to the tail
	stake(a, aIDs[0])
	stake(b, bIDs[0])
	assert.Equal(t, []thor.Address{c, a, b}, l.Stakers())
	// tail
	unstake(b, bIDs[0])
	assert.Equal(t, []thor.Address{c, a}, l.Stakers())
	unstake(c, cIDs[0])
	unstake(a, aIDs[0])
	assert.Empty(t, l.Stakers())

	stake(b, bIDs[0])
	assert.Equal(t, []thor.Address{b}, l.Stakers())
}

func TestGuardTransfer(t *testing.T) {
	env := newTestEnv(t)
	l := env.ledger
	h, ids := env.holder(2)
	buyer := datagen.RandAddress()
	env.open()

	_, err := l.Stake(h, ids[0])
	require.NoError(t, err)

	_, err = env.registry.TransferFrom(h, h, buyer, ids[0])
	assert.ErrorIs(t, err, reverts.ErrTokenStaked)
	// the ledger as approved operator can not move it either
	_, err = env.registry.TransferFrom(ledgerAddr, h, buyer, ids[0])
	assert.ErrorIs(t, err, reverts.ErrTokenStaked)
	owner, _ := env.registry.OwnerOf(ids[0])
	assert.Equal(t, h, owner)

	_, err = env.registry.TransferFrom(h, h, buyer, ids[1])
	require.NoError(t, err)

	_, err = l.Unstake(h, ids[0])
	require.NoError(t, err)
	_, err = env.registry.TransferFrom(h, h, buyer, ids[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(2), env.registry.BalanceOf(buyer))
}
