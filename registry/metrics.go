// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package registry

import "github.com/vechain/nftstaker/metrics"

var (
	metricMints     = metrics.LazyLoadCounter("registry_mints_count")
	metricTransfers = metrics.LazyLoadCounter("registry_transfers_count")
	metricSupply    = metrics.LazyLoadGauge("registry_supply")
)
