// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU(0)
	assert.Error(t, err)

	c, err := NewLRU(2)
	assert.NoError(t, err)

	c.Add(1, 2)
	v, ok := c.Get(1)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.False(t, c.Contains(3))
}

func TestLRUAddUntil(t *testing.T) {
	c, _ := NewLRU(2)

	added, err := c.AddUntil("a", 10, 0)
	assert.NoError(t, err)
	assert.True(t, added)
	added, err = c.AddUntil("a", 10, 5)
	assert.NoError(t, err)
	assert.False(t, added)

	added, err = c.AddUntil("b", 20, 5)
	assert.NoError(t, err)
	assert.True(t, added)

	// full of live entries, nothing is evicted
	_, err = c.AddUntil("c", 20, 5)
	assert.ErrorIs(t, err, ErrFull)
	assert.True(t, c.Contains("a"))
	assert.True(t, c.Contains("b"))

	// "a" expired, its slot is reused
	added, err = c.AddUntil("c", 30, 10)
	assert.NoError(t, err)
	assert.True(t, added)
	assert.False(t, c.Contains("a"))

	_, err = c.AddUntil("d", 30, 15)
	assert.ErrorIs(t, err, ErrFull)

	// an expired key can be added again
	added, err = c.AddUntil("b", 40, 25)
	assert.NoError(t, err)
	assert.True(t, added)
}
