// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/nftstaker/kv"
	"github.com/vechain/nftstaker/registry"
	"github.com/vechain/nftstaker/staking"
	"github.com/vechain/nftstaker/thor"
)

var (
	defaultLedgerAddress   = thor.BytesToAddress([]byte("staking"))
	defaultRegistryAddress = thor.BytesToAddress([]byte("moon"))

	registryBucket = kv.Bucket("r")
	ledgerBucket   = kv.Bucket("s")
)

// configFile is the yaml layout of the --config file. Addresses are hex strings.
//
//	admin: "0x..."
//	ledger:
//	  address: "0x..."
//	registry:
//	  address: "0x..."
//	  name: 2 THE MOON
//	  symbol: M00N
//	whitelist:
//	  - "0x..."
type configFile struct {
	Admin  string `yaml:"admin"`
	Ledger struct {
		Address string `yaml:"address"`
	} `yaml:"ledger"`
	Registry struct {
		Address string `yaml:"address"`
		Name    string `yaml:"name"`
		Symbol  string `yaml:"symbol"`
	} `yaml:"registry"`
	Whitelist []string `yaml:"whitelist"`
}

type config struct {
	Admin           thor.Address
	LedgerAddress   thor.Address
	RegistryAddress thor.Address
	Name            string
	Symbol          string
	Whitelist       []thor.Address
}

func loadConfig(path string) (*config, error) {
	if path == "" {
		return nil, errors.New("config file required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	var file configFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}

	cfg := &config{
		LedgerAddress:   defaultLedgerAddress,
		RegistryAddress: defaultRegistryAddress,
		Name:            file.Registry.Name,
		Symbol:          file.Registry.Symbol,
	}

	if file.Admin == "" {
		return nil, errors.New("admin: required")
	}
	admin, err := parseAddress(file.Admin, "admin")
	if err != nil {
		return nil, err
	}
	cfg.Admin = admin

	if file.Ledger.Address != "" {
		if cfg.LedgerAddress, err = parseAddress(file.Ledger.Address, "ledger.address"); err != nil {
			return nil, err
		}
	}
	if file.Registry.Address != "" {
		if cfg.RegistryAddress, err = parseAddress(file.Registry.Address, "registry.address"); err != nil {
			return nil, err
		}
	}
	if cfg.LedgerAddress == cfg.RegistryAddress {
		return nil, errors.New("ledger and registry must have distinct addresses")
	}

	for i, s := range file.Whitelist {
		addr, err := parseAddress(s, "whitelist")
		if err != nil {
			return nil, errors.WithMessagef(err, "entry %d", i)
		}
		cfg.Whitelist = append(cfg.Whitelist, addr)
	}
	return cfg, nil
}

func parseAddress(s, name string) (thor.Address, error) {
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return thor.Address{}, errors.WithMessage(err, name)
	}
	if addr.IsZero() {
		return thor.Address{}, errors.Errorf("%s: zero address", name)
	}
	return *addr, nil
}

// newComponents builds the registry and the ledger on top of store and applies the
// configured whitelist. The ledger admin comes from store once persisted.
func newComponents(cfg *config, store kv.Store) (*registry.Registry, *staking.Ledger, error) {
	reg, err := registry.New(
		cfg.RegistryAddress,
		registryBucket.NewStore(store),
		cfg.Admin,
		&registry.Options{Name: cfg.Name, Symbol: cfg.Symbol},
	)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "registry")
	}
	ledger, err := staking.New(cfg.LedgerAddress, ledgerBucket.NewStore(store), reg, cfg.Admin)
	if err != nil {
		return nil, nil, errors.WithMessage(err, "ledger")
	}
	reg.SetTransferGuard(ledger)

	added := 0
	for _, addr := range cfg.Whitelist {
		changed, err := ledger.AddOnWhitelist(ledger.Admin(), addr)
		if err != nil {
			return nil, nil, errors.WithMessage(err, "whitelist")
		}
		if changed {
			added++
		}
	}
	if added > 0 {
		logger.Info("whitelist updated from config", "added", added)
	}
	return reg, ledger, nil
}
