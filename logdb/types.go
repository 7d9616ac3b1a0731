// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/thor"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range bounds the sequence numbers of matched events, both ends included.
// To smaller than From means no upper bound.
type Range struct {
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// EventCriteria matches events on every non-nil field.
type EventCriteria struct {
	Emitter *thor.Address
	Kind    *events.Kind
	Owner   *thor.Address
	Target  *thor.Address
	TokenID *thor.TokenID
}

// EventFilter matches events satisfying any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
