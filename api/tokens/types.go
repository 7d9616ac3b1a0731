// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/thor"
)

const (
	ActionMint              = "mint"
	ActionSetApprovalForAll = "setApprovalForAll"
	ActionTransferFrom      = "transferFrom"
)

type Collection struct {
	Address     thor.Address `json:"address"`
	Name        string       `json:"name"`
	Symbol      string       `json:"symbol"`
	TotalSupply uint64       `json:"totalSupply"`
}

type Token struct {
	ID    thor.TokenID `json:"id"`
	Owner thor.Address `json:"owner"`
}

type Balance struct {
	Balance uint64 `json:"balance"`
}

type Approval struct {
	Approved bool `json:"approved"`
}

type ActionResult struct {
	Caller  thor.Address    `json:"caller"`
	TokenID *thor.TokenID   `json:"tokenId,omitempty"`
	Events  []*events.Event `json:"events"`
}
