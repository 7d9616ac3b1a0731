// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tokens

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/api/auth"
	"github.com/vechain/nftstaker/api/utils"
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/registry"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

type Tokens struct {
	registry *registry.Registry
	verifier *auth.Verifier
}

func New(registry *registry.Registry, verifier *auth.Verifier) *Tokens {
	return &Tokens{
		registry,
		verifier,
	}
}

func (t *Tokens) handleGetCollection(w http.ResponseWriter, _ *http.Request) error {
	return utils.WriteJSON(w, &Collection{
		Address:     t.registry.Address(),
		Name:        t.registry.Name(),
		Symbol:      t.registry.Symbol(),
		TotalSupply: t.registry.TotalSupply(),
	})
}

func (t *Tokens) handleGetToken(w http.ResponseWriter, req *http.Request) error {
	id, err := thor.ParseTokenID(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	owner, err := t.registry.OwnerOf(id)
	if err != nil {
		if errors.Is(err, reverts.ErrUnknownToken) {
			return utils.NotFound(err)
		}
		return err
	}
	return utils.WriteJSON(w, &Token{ID: id, Owner: owner})
}

func (t *Tokens) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	owner, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	return utils.WriteJSON(w, &Balance{Balance: t.registry.BalanceOf(*owner)})
}

func (t *Tokens) handleGetApproval(w http.ResponseWriter, req *http.Request) error {
	owner, err := thor.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	operator, err := thor.ParseAddress(mux.Vars(req)["operator"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "operator"))
	}
	approved, err := t.registry.IsApprovedForAll(*owner, *operator)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, &Approval{Approved: approved})
}

type call func(caller thor.Address) (*ActionResult, error)

func (t *Tokens) bind(req *auth.Request) (call, error) {
	switch req.Action {
	case ActionMint:
		to, err := req.RequireTo()
		if err != nil {
			return nil, err
		}
		return func(caller thor.Address) (*ActionResult, error) {
			id, ev, err := t.registry.Mint(caller, to)
			if err != nil {
				return nil, err
			}
			return &ActionResult{TokenID: &id, Events: []*events.Event{ev}}, nil
		}, nil
	case ActionSetApprovalForAll:
		operator, err := req.RequireTarget()
		if err != nil {
			return nil, err
		}
		return func(caller thor.Address) (*ActionResult, error) {
			ev, err := t.registry.SetApprovalForAll(caller, operator, req.Approved)
			if err != nil {
				return nil, err
			}
			return &ActionResult{Events: []*events.Event{ev}}, nil
		}, nil
	case ActionTransferFrom:
		from, err := req.RequireFrom()
		if err != nil {
			return nil, err
		}
		to, err := req.RequireTo()
		if err != nil {
			return nil, err
		}
		id, err := req.RequireTokenID()
		if err != nil {
			return nil, err
		}
		return func(caller thor.Address) (*ActionResult, error) {
			ev, err := t.registry.TransferFrom(caller, from, to, id)
			if err != nil {
				return nil, err
			}
			return &ActionResult{TokenID: &id, Events: []*events.Event{ev}}, nil
		}, nil
	default:
		return nil, errors.Errorf("unknown action %q", req.Action)
	}
}

func (t *Tokens) handleAction(w http.ResponseWriter, req *http.Request) error {
	var body auth.Request
	if err := utils.ParseJSON(req.Body, &body); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	do, err := t.bind(&body)
	if err != nil {
		return utils.BadRequest(err)
	}
	caller, err := t.verifier.Verify(t.registry.Address(), &body)
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
	return utils.WriteJSON(w, result)
}

func (t *Tokens) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /tokens").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetCollection))
	sub.Path("/owners/{address}").
		Methods(http.MethodGet).
		Name("GET /tokens/owners/{address}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetBalance))
	sub.Path("/owners/{address}/operators/{operator}").
		Methods(http.MethodGet).
		Name("GET /tokens/owners/{address}/operators/{operator}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetApproval))
	sub.Path("/actions").
		Methods(http.MethodPost).
		Name("POST /tokens/actions").
		HandlerFunc(utils.WrapHandlerFunc(t.handleAction))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /tokens/{id}").
		HandlerFunc(utils.WrapHandlerFunc(t.handleGetToken))
}
