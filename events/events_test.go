// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/thor"
)

func TestKind(t *testing.T) {
	for _, k := range []Kind{KindStaked, KindUnstaked, KindTransfer, KindApprovalForAll} {
		parsed, err := ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)
	}

	_, err := ParseKind("Burned")
	assert.Error(t, err)
	assert.Equal(t, "Kind(9)", Kind(9).String())

	_, err = Kind(0).MarshalText()
	assert.Error(t, err)
}

func TestEventJSON(t *testing.T) {
	staker := thor.BytesToAddress([]byte("staker"))
	ev := NewStaked(thor.BytesToAddress([]byte("ledger")), 3, staker, 5)

	data, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"Staked"`)
	assert.Contains(t, string(data), `"owner":"`+staker.String()+`"`)

	var decoded Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, *ev, decoded)
	assert.Equal(t, "Staked("+staker.String()+", 5)", ev.String())
}

func TestEmitterOrder(t *testing.T) {
	em := NewEmitter(thor.BytesToAddress([]byte("ledger")))
	defer em.Close()

	ch := make(chan *Event, 100)
	sub := em.Subscribe(ch)
	defer sub.Unsubscribe()

	// nothing is sent before flush
	em.Queue(NewStaked(em.Address(), 1, thor.Address{}, 1))
	assert.Len(t, ch, 0)

	var wg sync.WaitGroup
	for i := range 10 {
		wg.Go(func() {
			em.Queue(NewStaked(em.Address(), uint64(i+2), thor.Address{}, thor.TokenID(i)))
			em.Flush()
		})
	}
	wg.Wait()
	em.Flush()

	require.Len(t, ch, 11)
	first := <-ch
	assert.Equal(t, uint64(1), first.Seq)
}

func TestEmitterClose(t *testing.T) {
	em := NewEmitter(thor.Address{})
	ch := make(chan *Event, 1)
	sub := em.Subscribe(ch)

	em.Close()
	select {
	case <-sub.Err():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}

	// sending without subscribers does not block
	em.Queue(NewUnstaked(em.Address(), 1, thor.Address{}, 1))
	em.Flush()
	assert.Len(t, ch, 0)
}
