// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/logdb"
	"github.com/vechain/nftstaker/thor"
)

type EventCriteria struct {
	Emitter *thor.Address `json:"emitter"`
	Kind    *events.Kind  `json:"kind"`
	Owner   *thor.Address `json:"owner"`
	Target  *thor.Address `json:"target"`
	TokenID *thor.TokenID `json:"tokenId"`
}

// Range bounds the sequence numbers of matched events, both ends inclusive.
type Range struct {
	From *uint64 `json:"from,omitempty"`
	To   *uint64 `json:"to,omitempty"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       logdb.Order      `json:"order"`
}

func convertRange(r *Range) *logdb.Range {
	if r == nil || (r.From == nil && r.To == nil) {
		return nil
	}
	var from uint64
	if r.From != nil {
		from = *r.From
	}
	if r.To == nil {
		if from == 0 {
			return nil
		}
		// open ended
		return &logdb.Range{From: from}
	}
	return &logdb.Range{From: from, To: *r.To}
}

func convertEventFilter(filter *EventFilter) *logdb.EventFilter {
	f := &logdb.EventFilter{
		CriteriaSet: make([]*logdb.EventCriteria, 0, len(filter.CriteriaSet)),
		Range:       convertRange(filter.Range),
		Order:       filter.Order,
	}
	for _, c := range filter.CriteriaSet {
		f.CriteriaSet = append(f.CriteriaSet, &logdb.EventCriteria{
			Emitter: c.Emitter,
			Kind:    c.Kind,
			Owner:   c.Owner,
			Target:  c.Target,
			TokenID: c.TokenID,
		})
	}
	if filter.Options != nil {
		f.Options = &logdb.Options{
			Offset: filter.Options.Offset,
			Limit:  filter.Options.Limit,
		}
	}
	return f
}
