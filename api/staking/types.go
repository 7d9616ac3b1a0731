// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/staking"
	"github.com/vechain/nftstaker/thor"
)

const (
	ActionInitStaking           = "initStaking"
	ActionStopStaking           = "stopStaking"
	ActionAddOnWhitelist        = "addOnWhitelist"
	ActionRemoveFromWhitelist   = "removeFromWhitelist"
	ActionStake                 = "stake"
	ActionUnstake               = "unstake"
	ActionStopStakingUnstake    = "stopStakingUnstake"
	ActionStopStakingUnstakeAll = "stopStakingUnstakeAll"
	ActionTransferAdmin         = "transferAdmin"
)

type Pool struct {
	Address     thor.Address      `json:"address"`
	Admin       thor.Address      `json:"admin"`
	Pool        staking.PoolState `json:"pool"`
	TotalStaked int               `json:"totalStaked"`
	Stakers     []thor.Address    `json:"stakers"`
}

type Whitelist struct {
	Members []thor.Address `json:"members"`
}

type Membership struct {
	Whitelisted bool `json:"whitelisted"`
}

type Stakes struct {
	Tokens []thor.TokenID `json:"tokens"`
}

type TokenStake struct {
	Staked bool          `json:"staked"`
	Staker *thor.Address `json:"staker,omitempty"`
}

// ActionResult is the outcome of an accepted signed action.
type ActionResult struct {
	Caller  thor.Address    `json:"caller"`
	Changed *bool           `json:"changed,omitempty"`
	Events  []*events.Event `json:"events"`
}
