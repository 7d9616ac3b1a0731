// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"encoding/binary"
	"strconv"
)

// TokenID identifies one minted token. Ids are assigned sequentially from zero and never reused.
type TokenID uint64

// String implements the stringer interface.
func (id TokenID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Bytes returns the big-endian encoding, which keeps byte-wise key order equal to numeric order.
func (id TokenID) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return b[:]
}

// ParseTokenID parses the decimal form of a token id.
func ParseTokenID(s string) (TokenID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return TokenID(v), nil
}

// BytesToTokenID decodes a big-endian token id. Short input is left padded.
func BytesToTokenID(b []byte) TokenID {
	if len(b) > 8 {
		b = b[len(b)-8:]
	}
	var buf [8]byte
	copy(buf[8-len(b):], b)
	return TokenID(binary.BigEndian.Uint64(buf[:]))
}
