// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerminalHandler(t *testing.T) {
	var out bytes.Buffer
	var level slog.LevelVar
	level.Set(LevelInfo)

	l := NewLogger(NewTerminalHandlerWithLevel(&out, &level, false))
	l.Debug("hidden")
	assert.Empty(t, out.String())

	l.Info("token staked", "owner", "0xabc", "token", 5, "amount", big.NewInt(1234567))
	line := out.String()
	assert.Contains(t, line, "INFO ")
	assert.Contains(t, line, "token staked")
	assert.Contains(t, line, "owner=0xabc")
	assert.Contains(t, line, "token=5")
	assert.Contains(t, line, "amount=1,234,567")
}

func TestJSONHandler(t *testing.T) {
	var out bytes.Buffer
	var level slog.LevelVar
	level.Set(LevelDebug)

	l := NewLogger(JSONHandlerWithLevel(&out, &level))
	l.Debug("pool opened", "value", uint256.NewInt(7))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &rec))
	assert.Equal(t, "pool opened", rec["msg"])
	assert.Equal(t, "debug", rec["lvl"])
	assert.Equal(t, "7", rec["value"])
}

func TestWithContextFollowsRoot(t *testing.T) {
	prev := Root()
	defer SetDefault(prev)

	pkgLogger := WithContext("pkg", "staking")

	var out bytes.Buffer
	SetDefault(NewLogger(NewTerminalHandler(&out, false)))
	pkgLogger.Info("hello")
	assert.Contains(t, out.String(), "pkg=staking")

	out.Reset()
	pkgLogger.With("op", "stake").Warn("rejected")
	assert.Contains(t, out.String(), "pkg=staking")
	assert.Contains(t, out.String(), "op=stake")
}

func TestFromLegacyLevel(t *testing.T) {
	assert.Equal(t, LevelCrit, FromLegacyLevel(LegacyLevelCrit))
	assert.Equal(t, LevelInfo, FromLegacyLevel(LegacyLevelInfo))
	assert.Equal(t, LevelTrace, FromLegacyLevel(9))
	assert.Equal(t, LevelCrit, FromLegacyLevel(-1))
}

func TestAppendUint64(t *testing.T) {
	assert.Equal(t, "99999", string(appendUint64(nil, 99999, false)))
	assert.Equal(t, "100,000", string(appendUint64(nil, 100000, false)))
	assert.Equal(t, "-1,000,000", string(appendInt64(nil, -1000000)))
}
