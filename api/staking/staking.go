// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/api/utils"
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/staking"
	"github.com/vechain/nftstaker/thor"
)

type Staking struct {
	ledger   *staking.Ledger
	verifier *auth.Verifier
}

func New(ledger *staking.Ledger, verifier *auth.Verifier) *Staking {
	return &Staking{
		ledger,
		verifier,
	}
}

func (s *Staking) handleGetPool(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Pool{
		Address:     s.ledger.Address(),
		Admin:       s.ledger.Admin(),
		Pool:        s.ledger.PoolState(),
		TotalStaked: s.ledger.TotalStaked(),
		Stakers:     s.ledger.Stakers(),
	})
}

func (s *Staking) handleGetWhitelist(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Whitelist{Members: s.ledger.Whitelist()})
}

func (s *Staking) handleGetMembership(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return utils.WriteJSON(w, &Membership{Whitelisted: s.ledger.IsOnWhitelist(*addr)})
}

func (s *Staking) handleGetStakes(w http.ResponseWriter, req *http.Request) error {
	addr, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return utils.WriteJSON(w, &Stakes{Tokens: s.ledger.GetStakedTokens(*addr)})
}

func (s *Staking) handleGetTokenStake(w http.ResponseWriter, req *http.Request) error {
	id, err := thor.ParseTokenID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	staker, ok := s.ledger.StakerOf(id)
	if !ok {
		return utils.WriteJSON(w, &TokenStake{})
	}
	return utils.WriteJSON(w, &TokenStake{Staked: true, Staker: &staker})
}

type call func(caller thor.Address) (*ActionResult, error)

// bind checks the arguments of the action before the signature is verified,
// so malformed requests never consume their hash.
func (s *Staking) bind(req *auth.Request) (call, error) {
	switch req.Action {
	case ActionInitStaking:
		return func(caller thor.Address) (*ActionResult, error) {
			return &ActionResult{}, s.ledger.InitStaking(caller)
		}, nil
	case ActionStopStaking:
		return func(caller thor.Address) (*ActionResult, error) {
			return &ActionResult{}, s.ledger.StopStaking(caller)
		}, nil
	case ActionAddOnWhitelist, ActionRemoveFromWhitelist:
		target, err := req.RequireTarget()
		if err != nil {
			return nil, err
		}
		update := s.ledger.AddOnWhitelist
		if req.Action == ActionRemoveFromWhitelist {
			update = s.ledger.RemoveFromWhitelist
		}
		return func(caller thor.Address) (*ActionResult, error) {
			changed, err := update(caller, target)
			return &ActionResult{Changed: &changed}, err
		}, nil
	case ActionStake, ActionUnstake:
		id, err := req.RequireTokenID()
		if err != nil {
			return nil, err
		}
		do := s.ledger.Stake
		if req.Action == ActionUnstake {
			do = s.ledger.Unstake
		}
		return func(caller thor.Address) (*ActionResult, error) {
			ev, err := do(caller, id)
			return single(ev), err
		}, nil
	case ActionStopStakingUnstake:
		target, err := req.RequireTarget()
		if err != nil {
			return nil, err
		}
		id, err := req.RequireTokenID()
		if err != nil {
			return nil, err
		}
		return func(caller thor.Address) (*ActionResult, error) {
			ev, err := s.ledger.StopStakingUnstake(caller, target, id)
			return single(ev), err
		}, nil
	case ActionStopStakingUnstakeAll:
		return func(caller thor.Address) (*ActionResult, error) {
			evs, err := s.ledger.StopStakingUnstakeAll(caller)
			return &ActionResult{Events: evs}, err
		}, nil
	case ActionTransferAdmin:
		target, err := req.RequireTarget()
		if err != nil {
			return nil, err
		}
		return func(caller thor.Address) (*ActionResult, error) {
			return &ActionResult{}, s.ledger.TransferAdmin(caller, target)
		}, nil
	default:
		return nil, errors.Errorf("unknown action %q", req.Action)
	}
}

func single(ev *events.Event) *ActionResult {
	if ev == nil {
		return &ActionResult{}
	}
	return &ActionResult{Events: []*events.Event{ev}}
}

func (s *Staking) handleAction(w http.ResponseWriter, req *http.Request) error {
	var body auth.Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	do, err := s.bind(&body)
	if err != nil {
		return utils.BadRequest(err)
	}
	caller, err := s.verifier.Verify(s.ledger.Address(), &body)
	if err != nil {
		if errors.Is(err, auth.ErrBusy) {
			return utils.HTTPError(err, http.StatusServiceUnavailable)
		}
		return utils.Forbidden(err)
	}

	result, err := do(caller)
	if err != nil {
		return utils.RevertError(err)
	}
	result.Caller = caller
	if result.Events == nil {
		result.Events = []*events.Event{}
	}
	return utils.WriteJSON(w, result)
}

func (s *Staking) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /staking").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetPool))
	sub.Path("/whitelist").
		Methods(http.MethodGet).
		Name("GET /staking/whitelist").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetWhitelist))
	sub.Path("/whitelist/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/whitelist/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetMembership))
	sub.Path("/stakes/{address}").
		Methods(http.MethodGet).
		Name("GET /staking/stakes/{address}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetStakes))
	sub.Path("/tokens/{id}").
		Methods(http.MethodGet).
		Name("GET /staking/tokens/{id}").
		HandlerFunc(utils.WrapHandlerFunc(s.handleGetTokenStake))
	sub.Path("/actions").
		Methods(http.MethodPost).
		Name("POST /staking/actions").
		HandlerFunc(utils.WrapHandlerFunc(s.handleAction))
}
