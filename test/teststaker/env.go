// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package teststaker

import (
	"crypto/ecdsa"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/co"
	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/logdb"
	"github.com/vechain/nftstaker/lvldb"
	"github.com/vechain/nftstaker/registry"
	"github.com/vechain/nftstaker/staking"
	"github.com/vechain/nftstaker/thor"
)

var (
	LedgerAddress   = thor.BytesToAddress([]byte("staking"))
	RegistryAddress = thor.BytesToAddress([]byte("moon"))
)

// Account is a test identity able to sign requests.
type Account struct {
	Address    thor.Address
	PrivateKey *ecdsa.PrivateKey
}

// NewAccount generates a fresh account.
func NewAccount() Account {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(err)
	}
	return Account{
		Address:    thor.Address(crypto.PubkeyToAddress(key.PublicKey)),
		PrivateKey: key,
	}
}

// Env wires an in-memory registry, ledger and event log the way the daemon does.
type Env struct {
	Admin    Account
	DB       *lvldb.LevelDB
	Registry *registry.Registry
	Ledger   *staking.Ledger
	LogDB    *logdb.LogDB

	goes co.Goes
	stop func()
}

// New creates an environment whose event log follows both components.
func New() (*Env, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	admin := NewAccount()

	reg, err := registry.New(RegistryAddress, kv.Bucket("r").NewStore(db), admin.Address, nil)
	if err != nil {
		return nil, err
	}
	ledger, err := staking.New(LedgerAddress, kv.Bucket("s").NewStore(db), reg, admin.Address)
	if err != nil {
		return nil, err
	}
	reg.SetTransferGuard(ledger)

	logDB, err := logdb.NewMem()
	if err != nil {
		return nil, err
	}

	env := &Env{
		Admin:    admin,
		DB:       db,
		Registry: reg,
		Ledger:   ledger,
		LogDB:    logDB,
	}
	env.stop = env.goes.Loop(logDB.Follow(reg.Emitter(), ledger.Emitter()))
	return env, nil
}

// Close stops following events and releases the stores.
func (e *Env) Close() {
	e.stop()
	e.LogDB.Close()
	e.DB.Close()
}

// Holder returns a whitelisted account that approved the ledger and owns n new tokens.
func (e *Env) Holder(n int) (Account, []thor.TokenID, error) {
	acc := NewAccount()
	if _, err := e.Ledger.AddOnWhitelist(e.Admin.Address, acc.Address); err != nil {
		return Account{}, nil, err
	}
	if _, err := e.Registry.SetApprovalForAll(acc.Address, LedgerAddress, true); err != nil {
		return Account{}, nil, err
	}
	ids := make([]thor.TokenID, 0, n)
	for range n {
		id, _, err := e.Registry.Mint(e.Admin.Address, acc.Address)
		if err != nil {
			return Account{}, nil, err
		}
		ids = append(ids, id)
	}
	return acc, ids, nil
}

var nonce atomic.Uint64

// Sign signs req by acc for contract. A request without expiration gets one a
// minute ahead, offset by a counter so repeated identical calls are not replays.
func Sign(acc Account, contract thor.Address, req *auth.Request) (*auth.Request, error) {
	if req.Expiration == 0 {
		req.Expiration = uint64(time.Now().Add(time.Minute).Unix()) + nonce.Add(1)
	}
	if err := req.Sign(contract, acc.PrivateKey); err != nil {
		return nil, errors.WithMessage(err, "sign")
	}
	return req, nil
}
