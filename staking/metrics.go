// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/nftstaker/metrics"

var (
	metricCalls        = metrics.LazyLoadCounterVec("staking_calls_count", []string{"op"})
	metricReverts      = metrics.LazyLoadCounterVec("staking_reverts_count", []string{"op"})
	metricStakedTokens = metrics.LazyLoadGauge("staking_staked_tokens")
	metricStakers      = metrics.LazyLoadGauge("staking_active_stakers")
	metricWhitelist    = metrics.LazyLoadGauge("staking_whitelist_members")
	metricPoolOpen     = metrics.LazyLoadGauge("staking_pool_open")
)
