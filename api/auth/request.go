// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auth authenticates requests that mutate the ledger or the registry.
// The caller signs the request body together with the address of the component
// it targets, and its identity is recovered from the signature.
package auth

import (
	"crypto/ecdsa"
	"io"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/thor"
)

// Request is a signed call. Which of the arguments are read depends on the action.
type Request struct {
	Action     string        `json:"action"`
	Target     *thor.Address `json:"target,omitempty"`
	From       *thor.Address `json:"from,omitempty"`
	To         *thor.Address `json:"to,omitempty"`
	TokenID    *thor.TokenID `json:"tokenId,omitempty"`
	Approved   bool          `json:"approved,omitempty"`
	Expiration uint64        `json:"expiration"`
	Signature  hexutil.Bytes `json:"signature"`
}

// SigningHash returns the hash the caller signs. It binds the request to the
// component at contract.
func (r *Request) SigningHash(contract thor.Address) thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			contract,
			r.Action,
			orZero(r.Target),
			orZero(r.From),
			orZero(r.To),
			tokenOrZero(r.TokenID),
			r.Approved,
			r.Expiration,
		})
	})
}

// Sign fills the signature of the request.
func (r *Request) Sign(contract thor.Address, key *ecdsa.PrivateKey) error {
	hash := r.SigningHash(contract)
	sig, err := crypto.Sign(hash.Bytes(), key)
	if err != nil {
		return errors.Wrap(err, "sign request")
	}
	r.Signature = sig
	return nil
}

// Signer recovers the address that signed the request.
func (r *Request) Signer(contract thor.Address) (thor.Address, error) {
	if len(r.Signature) != crypto.SignatureLength {
		return thor.Address{}, errors.New("invalid signature length")
	}
	hash := r.SigningHash(contract)
	pub, err := crypto.SigToPub(hash.Bytes(), r.Signature)
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "recover signer")
	}
	return thor.Address(crypto.PubkeyToAddress(*pub)), nil
}

// RequireTarget returns the target argument or an error naming it.
func (r *Request) RequireTarget() (thor.Address, error) {
	return requireAddr(r.Target, "target")
}

// RequireFrom returns the from argument or an error naming it.
func (r *Request) RequireFrom() (thor.Address, error) {
	return requireAddr(r.From, "from")
}

// RequireTo returns the to argument or an error naming it.
func (r *Request) RequireTo() (thor.Address, error) {
	return requireAddr(r.To, "to")
}

// RequireTokenID returns the token argument or an error naming it.
func (r *Request) RequireTokenID() (thor.TokenID, error) {
	if r.TokenID == nil {
		return 0, errors.New("tokenId: required")
	}
	return *r.TokenID, nil
}

func requireAddr(addr *thor.Address, name string) (thor.Address, error) {
	if addr == nil {
		return thor.Address{}, errors.Errorf("%s: required", name)
	}
	return *addr, nil
}

func orZero(addr *thor.Address) thor.Address {
	if addr == nil {
		return thor.Address{}
	}
	return *addr
}

func tokenOrZero(id *thor.TokenID) uint64 {
	if id == nil {
		return 0
	}
	return uint64(*id)
}
