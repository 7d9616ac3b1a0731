// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// Rejections raised by the token registry and the staking ledger.
// They are expected outcomes of a call and never leave partial state behind.
var (
	ErrUnauthorized          = New("caller is not the admin")
	ErrNotWhitelisted        = New("member must be on the whitelist")
	ErrPoolClosed            = New("staking pool is closed")
	ErrNotTokenOwner         = New("caller is not the token owner")
	ErrAlreadyStaked         = New("token is already staked")
	ErrNotStakedByCaller     = New("token is not staked by caller")
	ErrNotOwnerOfStakedToken = New("member must be the owner of the staked nft")
	ErrUnknownToken          = New("token does not exist")
	ErrOperatorNotApproved   = New("staking ledger is not approved as operator")
	ErrTokenStaked           = New("token is staked and cannot be transferred")
	ErrInvalidAddress        = New("invalid address")
)

type ErrRevert struct {
	message string
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// IsAuthErr reports whether err rejects the caller's identity rather than the call arguments.
func IsAuthErr(err error) bool {
	return errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrNotWhitelisted) ||
		errors.Is(err, ErrNotTokenOwner) ||
		errors.Is(err, ErrOperatorNotApproved)
}
