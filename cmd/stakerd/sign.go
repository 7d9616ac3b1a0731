// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/thor"
)

// requestArgs are the textual arguments of a request to sign. Empty strings are omitted.
type requestArgs struct {
	Contract string
	Action   string
	Target   string
	From     string
	To       string
	Token    string
	Approved bool
	TTL      time.Duration
}

func (a *requestArgs) build(now time.Time) (thor.Address, *auth.Request, error) {
	if a.Action == "" {
		return thor.Address{}, nil, errors.New("action: required")
	}
	if a.Contract == "" {
		return thor.Address{}, nil, errors.New("contract: required")
	}
	contract, err := thor.ParseAddress(a.Contract)
	if err != nil {
		return thor.Address{}, nil, errors.WithMessage(err, "contract")
	}
	if a.TTL <= 0 {
		return thor.Address{}, nil, errors.New("ttl: must be positive")
	}

	req := &auth.Request{
		Action:     a.Action,
		Approved:   a.Approved,
		Expiration: uint64(now.Add(a.TTL).Unix()),
	}
	if req.Target, err = optionalAddress(a.Target, "target"); err != nil {
		return thor.Address{}, nil, err
	}
	if req.From, err = optionalAddress(a.From, "from"); err != nil {
		return thor.Address{}, nil, err
	}
	if req.To, err = optionalAddress(a.To, "to"); err != nil {
		return thor.Address{}, nil, err
	}
	if a.Token != "" {
		id, err := thor.ParseTokenID(a.Token)
		if err != nil {
			return thor.Address{}, nil, errors.WithMessage(err, "token")
		}
		req.TokenID = &id
	}
	return *contract, req, nil
}

func optionalAddress(s, name string) (*thor.Address, error) {
	if s == "" {
		return nil, nil
	}
	addr, err := thor.ParseAddress(s)
	if err != nil {
		return nil, errors.WithMessage(err, name)
	}
	return addr, nil
}

func signAction(ctx *cli.Context) error {
	keyFile := ctx.String(keyFileFlag.Name)
	if keyFile == "" {
		return errors.Errorf("-%s: required", keyFileFlag.Name)
	}
	key, err := crypto.LoadECDSA(keyFile)
	if err != nil {
		return errors.Wrap(err, "load key")
	}

	args := requestArgs{
		Contract: ctx.String(contractFlag.Name),
		Action:   ctx.String(actionFlag.Name),
		Target:   ctx.String(targetFlag.Name),
		From:     ctx.String(fromFlag.Name),
		To:       ctx.String(toFlag.Name),
		Token:    ctx.String(tokenFlag.Name),
		Approved: ctx.Bool(approvedFlag.Name),
		TTL:      ctx.Duration(ttlFlag.Name),
	}
	req, err := signRequest(&args, key, time.Now())
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(req)
}

func signRequest(args *requestArgs, key *ecdsa.PrivateKey, now time.Time) (*auth.Request, error) {
	contract, req, err := args.build(now)
	if err != nil {
		return nil, err
	}
	if err := req.Sign(contract, key); err != nil {
		return nil, err
	}
	return req, nil
}

func keygenAction(ctx *cli.Context) error {
	out := ctx.String(outFlag.Name)
	if out == "" {
		return errors.Errorf("-%s: required", outFlag.Name)
	}
	addr, err := generateKeyFile(out)
	if err != nil {
		return err
	}
	fmt.Println(addr)
	return nil
}

// generateKeyFile writes a new key to path, refusing to replace an existing file.
func generateKeyFile(path string) (thor.Address, error) {
	if _, err := os.Stat(path); err == nil {
		return thor.Address{}, errors.Errorf("key file [%v] already exists", path)
	} else if !os.IsNotExist(err) {
		return thor.Address{}, errors.Wrap(err, "stat key file")
	}

	key, err := crypto.GenerateKey()
	if err != nil {
		return thor.Address{}, errors.Wrap(err, "generate key")
	}
	if err := crypto.SaveECDSA(path, key); err != nil {
		return thor.Address{}, errors.Wrap(err, "save key")
	}
	return thor.Address(crypto.PubkeyToAddress(key.PublicKey)), nil
}
