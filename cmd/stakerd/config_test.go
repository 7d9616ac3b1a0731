// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/nftstaker/lvldb"
	"github.com/vechain/nftstaker/registry"
	"github.com/vechain/nftstaker/thor"
)

const (
	adminHex  = "0x7567d83b7b8d80addcb281a71d54fc7b3364ffed"
	memberHex = "0xd3ae78222beadb038203be21ed5ce7c9b1bff602"
)

func TestParseConfig(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, cfg *config)
	}{
		{
			name: "defaults",
			yaml: "admin: \"" + adminHex + "\"\n",
			check: func(t *testing.T, cfg *config) {
				assert.Equal(t, thor.MustParseAddress(adminHex), cfg.Admin)
				assert.Equal(t, defaultLedgerAddress, cfg.LedgerAddress)
				assert.Equal(t, defaultRegistryAddress, cfg.RegistryAddress)
				assert.Empty(t, cfg.Name)
				assert.Empty(t, cfg.Whitelist)
			},
		},
		{
			name: "full",
			yaml: `
admin: "` + adminHex + `"
ledger:
  address: "0x0000000000000000000000000000000000000a01"
registry:
  address: "0x0000000000000000000000000000000000000a02"
  name: Moon
  symbol: MOON
whitelist:
  - "` + memberHex + `"
`,
			check: func(t *testing.T, cfg *config) {
				assert.Equal(t, thor.BytesToAddress([]byte{0x0a, 0x01}), cfg.LedgerAddress)
				assert.Equal(t, thor.BytesToAddress([]byte{0x0a, 0x02}), cfg.RegistryAddress)
				assert.Equal(t, "Moon", cfg.Name)
				assert.Equal(t, "MOON", cfg.Symbol)
				assert.Equal(t, []thor.Address{thor.MustParseAddress(memberHex)}, cfg.Whitelist)
			},
		},
		{
			name:    "missing admin",
			yaml:    "registry:\n  name: Moon\n",
			wantErr: "admin: required",
		},
		{
			name:    "zero admin",
			yaml:    "admin: \"0x0000000000000000000000000000000000000000\"\n",
			wantErr: "admin: zero address",
		},
		{
			name:    "bad whitelist entry",
			yaml:    "admin: \"" + adminHex + "\"\nwhitelist:\n  - \"0x1234\"\n",
			wantErr: "entry 0: whitelist: invalid length",
		},
		{
			name: "same addresses",
			yaml: `
admin: "` + adminHex + `"
ledger:
  address: "` + memberHex + `"
registry:
  address: "` + memberHex + `"
`,
			wantErr: "ledger and registry must have distinct addresses",
		},
		{
			name:    "not yaml",
			yaml:    "admin: [",
			wantErr: "decode config",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := parseConfig([]byte(tt.yaml))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	_, err := loadConfig("")
	assert.EqualError(t, err, "config file required")

	path := filepath.Join(t.TempDir(), "staker.yaml")
	_, err = loadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("admin: \""+adminHex+"\"\n"), 0o600))
	cfg, err := loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, thor.MustParseAddress(adminHex), cfg.Admin)
}

func TestNewComponents(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	cfg, err := parseConfig([]byte("admin: \"" + adminHex + "\"\nwhitelist:\n  - \"" + memberHex + "\"\n"))
	require.NoError(t, err)

	reg, ledger, err := newComponents(cfg, db)
	require.NoError(t, err)
	assert.Equal(t, registry.DefaultName, reg.Name())
	assert.Equal(t, cfg.Admin, ledger.Admin())
	assert.True(t, ledger.IsOnWhitelist(thor.MustParseAddress(memberHex)))

	// the guard is installed, a staked token cannot leave its owner
	member := thor.MustParseAddress(memberHex)
	id, _, err := reg.Mint(cfg.Admin, member)
	require.NoError(t, err)
	_, err = reg.SetApprovalForAll(member, cfg.LedgerAddress, true)
	require.NoError(t, err)
	require.NoError(t, ledger.InitStaking(cfg.Admin))
	_, err = ledger.Stake(member, id)
	require.NoError(t, err)
	_, err = reg.TransferFrom(member, member, cfg.Admin, id)
	assert.Error(t, err)

	// reopening the same store keeps the state and reapplying the whitelist is harmless
	reg, ledger, err = newComponents(cfg, db)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), reg.TotalSupply())
	staker, ok := ledger.StakerOf(id)
	assert.True(t, ok)
	assert.Equal(t, member, staker)
}
