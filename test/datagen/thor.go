// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"crypto/rand"
	mathrand "math/rand/v2"

	"github.com/vechain/nftstaker/thor"
)

func RandAddress() (addr thor.Address) {
	rand.Read(addr[:])
	return
}

// RandAddresses returns n distinct random addresses.
func RandAddresses(n int) []thor.Address {
	seen := make(map[thor.Address]struct{}, n)
	addrs := make([]thor.Address, 0, n)
	for len(addrs) < n {
		addr := RandAddress()
		if _, ok := seen[addr]; ok {
			continue
		}
		seen[addr] = struct{}{}
		addrs = append(addrs, addr)
	}
	return addrs
}

func RandTokenID() thor.TokenID {
	return thor.TokenID(mathrand.N(1 << 30)) //#nosec G404
}
