// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"

	"github.com/vechain/nftstaker/thor"
)

// Kind is the kind of an event.
type Kind uint8

const (
	KindStaked Kind = iota + 1
	KindUnstaked
	KindTransfer
	KindApprovalForAll
)

var kindNames = map[Kind]string{
	KindStaked:         "Staked",
	KindUnstaked:       "Unstaked",
	KindTransfer:       "Transfer",
	KindApprovalForAll: "ApprovalForAll",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// MarshalText encodes the kind by its name.
func (k Kind) MarshalText() ([]byte, error) {
	if _, ok := kindNames[k]; !ok {
		return nil, fmt.Errorf("unknown event kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes the kind from its name.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind converts the name of a kind back into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

// Event is the record of one committed state change, emitted for external observers.
//
// Field usage per kind:
//
//	Staked / Unstaked: Owner is the staker
//	Transfer:          Owner is the sender (zero on mint), Target the receiver
//	ApprovalForAll:    Owner is the holder, Target the operator, Approved the new flag
type Event struct {
	Kind     Kind         `json:"kind"`
	Emitter  thor.Address `json:"emitter"`
	Seq      uint64       `json:"seq"`
	Owner    thor.Address `json:"owner"`
	Target   thor.Address `json:"target"`
	TokenID  thor.TokenID `json:"tokenId"`
	Approved bool         `json:"approved"`
}

func (e *Event) String() string {
	switch e.Kind {
	case KindStaked, KindUnstaked:
		return fmt.Sprintf("%v(%v, %v)", e.Kind, e.Owner, e.TokenID)
	case KindTransfer:
		return fmt.Sprintf("%v(%v, %v, %v)", e.Kind, e.Owner, e.Target, e.TokenID)
	default:
		return fmt.Sprintf("%v(%v, %v, %v)", e.Kind, e.Owner, e.Target, e.Approved)
	}
}

// NewStaked creates a Staked event.
func NewStaked(emitter thor.Address, seq uint64, staker thor.Address, id thor.TokenID) *Event {
	return &Event{Kind: KindStaked, Emitter: emitter, Seq: seq, Owner: staker, TokenID: id}
}

// NewUnstaked creates an Unstaked event.
func NewUnstaked(emitter thor.Address, seq uint64, staker thor.Address, id thor.TokenID) *Event {
	return &Event{Kind: KindUnstaked, Emitter: emitter, Seq: seq, Owner: staker, TokenID: id}
}

// NewTransfer creates a Transfer event.
func NewTransfer(emitter thor.Address, seq uint64, from, to thor.Address, id thor.TokenID) *Event {
	return &Event{Kind: KindTransfer, Emitter: emitter, Seq: seq, Owner: from, Target: to, TokenID: id}
}

// NewApprovalForAll creates an ApprovalForAll event.
func NewApprovalForAll(emitter thor.Address, seq uint64, owner, operator thor.Address, approved bool) *Event {
	return &Event{Kind: KindApprovalForAll, Emitter: emitter, Seq: seq, Owner: owner, Target: operator, Approved: approved}
}
