// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import "github.com/vechain/nftstaker/thor"

// addToken stakes id for staker, linking staker at the tail of the active list
// on its first token.
func (s *state) addToken(staker thor.Address, id thor.TokenID) {
	s.setStakerOf(id, &staker)

	e := s.entry(staker)
	if e == nil {
		e = s.link(staker)
	}
	e.Count++
	s.setEntry(staker, e)
}

// removeToken unstakes id of staker, unlinking staker with its last token.
func (s *state) removeToken(staker thor.Address, id thor.TokenID) {
	s.setStakerOf(id, nil)

	e := s.entry(staker)
	if e.Count--; e.Count == 0 {
		s.unlink(e)
		s.setEntry(staker, nil)
		return
	}
	s.setEntry(staker, e)
}

// link appends staker to the list and returns its new node, not yet stored.
func (s *state) link(staker thor.Address) *entry {
	e := &entry{Prev: s.tail()}
	if e.Prev == nil {
		s.setHead(&staker)
	} else {
		prev := s.entry(*e.Prev)
		prev.Next = &staker
		s.setEntry(*e.Prev, prev)
	}
	s.setTail(&staker)
	return e
}

// unlink detaches the node from its neighbours.
func (s *state) unlink(e *entry) {
	if e.Prev == nil {
		s.setHead(e.Next)
	} else {
		prev := s.entry(*e.Prev)
		prev.Next = e.Next
		s.setEntry(*e.Prev, prev)
	}

	if e.Next == nil {
		s.setTail(e.Prev)
	} else {
		next := s.entry(*e.Next)
		next.Prev = e.Prev
		s.setEntry(*e.Next, next)
	}
}
