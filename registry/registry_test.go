// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/lvldb"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/test/datagen"
	"github.com/vechain/nftstaker/thor"
)

// failingStore fails every batch write while fail is set.
type failingStore struct {
	kv.Store
	fail bool
}

func (f *failingStore) NewBatch() kv.Batch {
	batch := f.Store.NewBatch()
	if !f.fail {
		return batch
	}
	return &struct {
		kv.Putter
		kv.LenFunc
		kv.WriteFunc
	}{batch, batch.Len, func() error { return errors.New("disk full") }}
}

type rejectAll struct{ called bool }

func (g *rejectAll) GuardTransfer(thor.TokenID, func() error) error {
	g.called = true
	return reverts.ErrTokenStaked
}

func newTestRegistry(t *testing.T) (*Registry, kv.Store, thor.Address) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	admin := datagen.RandAddress()
	r, err := New(thor.BytesToAddress([]byte("moon")), db, admin, nil)
	require.NoError(t, err)
	return r, db, admin
}

func TestNew(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(thor.Address{}, db, thor.Address{}, nil)
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)

	r, err := New(thor.Address{}, db, datagen.RandAddress(), &Options{Name: "Moon", Symbol: "MN"})
	require.NoError(t, err)
	assert.Equal(t, "Moon", r.Name())
	assert.Equal(t, "MN", r.Symbol())

	r, err = New(thor.Address{}, db, datagen.RandAddress(), nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultName, r.Name())
	assert.Equal(t, DefaultSymbol, r.Symbol())
}

func TestMint(t *testing.T) {
	r, _, admin := newTestRegistry(t)
	holder := datagen.RandAddress()

	ch := make(chan *events.Event, 10)
	sub := r.Emitter().Subscribe(ch)
	defer sub.Unsubscribe()

	for want := range 3 {
		id, ev, err := r.Mint(admin, holder)
		require.NoError(t, err)
		assert.Equal(t, thor.TokenID(want), id)
		assert.Equal(t, events.KindTransfer, ev.Kind)
		assert.True(t, ev.Owner.IsZero())
		assert.Equal(t, holder, ev.Target)
		assert.Equal(t, uint64(want+1), ev.Seq)
		assert.Equal(t, ev, <-ch)
	}
	assert.Equal(t, uint64(3), r.TotalSupply())
	assert.Equal(t, uint64(3), r.BalanceOf(holder))

	owner, err := r.OwnerOf(2)
	require.NoError(t, err)
	assert.Equal(t, holder, owner)

	_, _, err = r.Mint(holder, holder)
	assert.ErrorIs(t, err, reverts.ErrUnauthorized)
	_, _, err = r.Mint(admin, thor.Address{})
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)

	_, err = r.OwnerOf(3)
	assert.ErrorIs(t, err, reverts.ErrUnknownToken)
	assert.Equal(t, uint64(3), r.TotalSupply())
}

func TestApprovalForAll(t *testing.T) {
	r, _, _ := newTestRegistry(t)
	owner, operator := datagen.RandAddress(), datagen.RandAddress()

	ok, err := r.IsApprovedForAll(owner, operator)
	require.NoError(t, err)
	assert.False(t, ok)

	ev, err := r.SetApprovalForAll(owner, operator, true)
	require.NoError(t, err)
	assert.Equal(t, &events.Event{
		Kind:     events.KindApprovalForAll,
		Emitter:  r.Address(),
		Seq:      1,
		Owner:    owner,
		Target:   operator,
		Approved: true,
	}, ev)

	ok, _ = r.IsApprovedForAll(owner, operator)
	assert.True(t, ok)
	ok, _ = r.IsApprovedForAll(operator, owner)
	assert.False(t, ok)

	_, err = r.SetApprovalForAll(owner, operator, false)
	require.NoError(t, err)
	ok, _ = r.IsApprovedForAll(owner, operator)
	assert.False(t, ok)

	_, err = r.SetApprovalForAll(owner, owner, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)
	_, err = r.SetApprovalForAll(owner, thor.Address{}, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)
}

func TestTransferFrom(t *testing.T) {
	r, _, admin := newTestRegistry(t)
	alice, bob, operator := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()

	id, _, err := r.Mint(admin, alice)
	require.NoError(t, err)

	// stranger
	_, err = r.TransferFrom(bob, alice, bob, id)
	assert.ErrorIs(t, err, reverts.ErrNotTokenOwner)
	// wrong from
	_, err = r.TransferFrom(alice, bob, bob, id)
	assert.ErrorIs(t, err, reverts.ErrNotTokenOwner)
	_, err = r.TransferFrom(alice, alice, thor.Address{}, id)
	assert.ErrorIs(t, err, reverts.ErrInvalidAddress)
	_, err = r.TransferFrom(alice, alice, bob, 10+datagen.RandTokenID())
	assert.ErrorIs(t, err, reverts.ErrUnknownToken)

	ev, err := r.TransferFrom(alice, alice, bob, id)
	require.NoError(t, err)
	assert.Equal(t, events.NewTransfer(r.Address(), 2, alice, bob, id), ev)
	owner, _ := r.OwnerOf(id)
	assert.Equal(t, bob, owner)
	assert.Equal(t, uint64(0), r.BalanceOf(alice))
	assert.Equal(t, uint64(1), r.BalanceOf(bob))

	// approved operator moves it back
	_, err = r.SetApprovalForAll(bob, operator, true)
	require.NoError(t, err)
	_, err = r.TransferFrom(operator, bob, alice, id)
	require.NoError(t, err)
	owner, _ = r.OwnerOf(id)
	assert.Equal(t, alice, owner)
}

func TestTransferGuard(t *testing.T) {
	r, _, admin := newTestRegistry(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	id, _, err := r.Mint(admin, alice)
	require.NoError(t, err)

	guard := &rejectAll{}
	r.SetTransferGuard(guard)

	_, err = r.TransferFrom(alice, alice, bob, id)
	assert.ErrorIs(t, err, reverts.ErrTokenStaked)
	assert.True(t, guard.called)

	owner, _ := r.OwnerOf(id)
	assert.Equal(t, alice, owner)
	assert.Equal(t, uint64(1), r.BalanceOf(alice))
}

func TestPersistence(t *testing.T) {
	r, db, admin := newTestRegistry(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	for range 3 {
		_, _, err := r.Mint(admin, alice)
		require.NoError(t, err)
	}
	_, err := r.TransferFrom(alice, alice, bob, 1)
	require.NoError(t, err)
	_, err = r.SetApprovalForAll(alice, bob, true)
	require.NoError(t, err)

	reloaded, err := New(r.Address(), db, admin, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), reloaded.TotalSupply())
	assert.Equal(t, uint64(2), reloaded.BalanceOf(alice))
	assert.Equal(t, uint64(1), reloaded.BalanceOf(bob))
	owner, err := reloaded.OwnerOf(1)
	require.NoError(t, err)
	assert.Equal(t, bob, owner)
	ok, _ := reloaded.IsApprovedForAll(alice, bob)
	assert.True(t, ok)

	// sequence and ids continue
	id, ev, err := reloaded.Mint(admin, bob)
	require.NoError(t, err)
	assert.Equal(t, thor.TokenID(3), id)
	assert.Equal(t, uint64(6), ev.Seq)
}

func TestWriteFailureLeavesStateUntouched(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	store := &failingStore{Store: db}
	admin, alice, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	r, err := New(thor.Address{}, store, admin, nil)
	require.NoError(t, err)

	id, _, err := r.Mint(admin, alice)
	require.NoError(t, err)

	store.fail = true
	_, _, err = r.Mint(admin, alice)
	assert.ErrorContains(t, err, "disk full")
	assert.False(t, reverts.IsRevertErr(err))
	_, err = r.TransferFrom(alice, alice, bob, id)
	assert.Error(t, err)
	_, err = r.SetApprovalForAll(alice, bob, true)
	assert.Error(t, err)

	assert.Equal(t, uint64(1), r.TotalSupply())
	owner, _ := r.OwnerOf(id)
	assert.Equal(t, alice, owner)
	ok, _ := r.IsApprovedForAll(alice, bob)
	assert.False(t, ok)

	store.fail = false
	id, ev, err := r.Mint(admin, alice)
	require.NoError(t, err)
	assert.Equal(t, thor.TokenID(1), id)
	assert.Equal(t, uint64(2), ev.Seq)
}
