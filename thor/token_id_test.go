// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenIDBytes(t *testing.T) {
	for _, id := range []TokenID{0, 1, 255, 256, 1 << 40} {
		assert.Equal(t, id, BytesToTokenID(id.Bytes()))
	}
	// big-endian keeps numeric order
	assert.Equal(t, -1, bytes.Compare(TokenID(255).Bytes(), TokenID(256).Bytes()))
	assert.Equal(t, TokenID(258), BytesToTokenID([]byte{1, 2}))
}

func TestParseTokenID(t *testing.T) {
	id, err := ParseTokenID("42")
	assert.NoError(t, err)
	assert.Equal(t, TokenID(42), id)
	assert.Equal(t, "42", id.String())

	_, err = ParseTokenID("-1")
	assert.Error(t, err)
	_, err = ParseTokenID("abc")
	assert.Error(t, err)
}
