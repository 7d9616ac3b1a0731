// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package auth

import (
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/cache"
	"github.com/vechain/nftstaker/thor"
)

const (
	DefaultMaxTTL    = time.Hour
	defaultSeenLimit = 65536
)

var (
	ErrExpired  = errors.New("request expired")
	ErrTooLong  = errors.New("request expiration too far in the future")
	ErrReplayed = errors.New("request already processed")
	ErrBusy     = errors.New("too many pending requests, retry later")
)

// Verifier authenticates signed requests and rejects the ones seen before.
// A request hash is remembered until the request expires, and requests must
// expire within maxTTL. When the replay set is full of live hashes new
// requests are refused with ErrBusy.
type Verifier struct {
	maxTTL time.Duration
	seen   *cache.LRU
	now    func() time.Time
}

// NewVerifier creates a verifier. A non-positive maxTTL selects DefaultMaxTTL.
func NewVerifier(maxTTL time.Duration) *Verifier {
	return newVerifier(maxTTL, defaultSeenLimit)
}

func newVerifier(maxTTL time.Duration, seenLimit int) *Verifier {
	if maxTTL <= 0 {
		maxTTL = DefaultMaxTTL
	}
	seen, err := cache.NewLRU(seenLimit)
	if err != nil {
		panic(err)
	}
	return &Verifier{
		maxTTL: maxTTL,
		seen:   seen,
		now:    time.Now,
	}
}

// Verify returns the caller of req against the component at contract.
func (v *Verifier) Verify(contract thor.Address, req *Request) (thor.Address, error) {
	now := v.now()
	if req.Expiration <= uint64(now.Unix()) {
		return thor.Address{}, ErrExpired
	}
	if req.Expiration > uint64(now.Add(v.maxTTL).Unix()) {
		return thor.Address{}, ErrTooLong
	}

	caller, err := req.Signer(contract)
	if err != nil {
		return thor.Address{}, err
	}
	added, err := v.seen.AddUntil(req.SigningHash(contract), req.Expiration, uint64(now.Unix()))
	if err != nil {
		return thor.Address{}, ErrBusy
	}
	if !added {
		return thor.Address{}, ErrReplayed
	}
	return caller, nil
}
