// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

// AddOnWhitelist admits target. It reports whether target was not a member yet.
func (l *Ledger) AddOnWhitelist(admin, target thor.Address) (bool, error) {
	return l.updateWhitelist("addOnWhitelist", admin, target, true)
}

// RemoveFromWhitelist revokes target. Tokens it already staked stay staked and can be
// unstaked, new stakes are rejected. It reports whether target was a member.
func (l *Ledger) RemoveFromWhitelist(admin, target thor.Address) (bool, error) {
	return l.updateWhitelist("removeFromWhitelist", admin, target, false)
}

func (l *Ledger) updateWhitelist(op string, admin, target thor.Address, member bool) (bool, error) {
	var changed bool
	_, err := l.mutate(op, func(s *state) ([]*events.Event, error) {
		if err := s.requireAdmin(admin); err != nil {
			return nil, err
		}
		if target.IsZero() {
			return nil, reverts.ErrInvalidAddress
		}
		if s.isWhitelisted(target) == member {
			return nil, nil
		}
		s.setWhitelisted(target, member)
		changed = true
		return nil, nil
	})
	if err != nil {
		return false, err
	}
	if changed {
		logger.Info("whitelist updated", "member", target, "listed", member)
	}
	return changed, nil
}
