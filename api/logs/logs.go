// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"fmt"
	"math"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/api/utils"
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

func New(db *logdb.LogDB, logsLimit uint64) *Logs {
	return &Logs{
		db,
		logsLimit,
	}
}

func (l *Logs) handleFilter(w http.ResponseWriter, req *http.Request) error {
	var filter EventFilter
	if err := utils.ParseJSON(req.Body, &filter); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if filter.Options != nil && filter.Options.Limit > l.limit {
		return utils.Forbidden(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	if filter.Options != nil && filter.Options.Offset > math.MaxInt64 {
		return utils.BadRequest(fmt.Errorf("options.offset exceeds the maximum allowed value of %d", math.MaxInt64))
	}
	if r := filter.Range; r != nil {
		if r.From != nil && *r.From > math.MaxInt64 || r.To != nil && *r.To > math.MaxInt64 {
			return utils.BadRequest(fmt.Errorf("range exceeds the maximum allowed value of %d", math.MaxInt64))
		}
		if r.From != nil && r.To != nil && *r.From > *r.To {
			return utils.BadRequest(errors.New("range.to must be greater than or equal to range.from"))
		}
	}
	switch filter.Order {
	case "":
		filter.Order = logdb.ASC
	case logdb.ASC, logdb.DESC:
	default:
		return utils.BadRequest(fmt.Errorf("order: invalid value %q", filter.Order))
	}
	for i, criterion := range filter.CriteriaSet {
		if criterion == nil {
			return utils.BadRequest(fmt.Errorf("criteriaSet[%d]: null not allowed", i))
		}
	}
	if filter.Options == nil {
		// one more than the limit to detect overflow
		filter.Options = &Options{Limit: l.limit + 1}
	}

	evs, err := l.db.FilterEvents(req.Context(), convertEventFilter(&filter))
	if err != nil {
		return err
	}
	if len(evs) > int(l.limit) {
		return utils.Forbidden(fmt.Errorf("the number of filtered events exceeds the maximum allowed value of %d, please use pagination", l.limit))
	}
	if evs == nil {
		evs = []*events.Event{}
	}
	return utils.WriteJSON(w, evs)
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /logs/event").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilter))
}
