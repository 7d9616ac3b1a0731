// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/reverts"
	"github.com/vechain/nftstaker/thor"
)

// InitStaking opens the pool. Opening an open pool does nothing.
func (l *Ledger) InitStaking(admin thor.Address) error {
	return l.setPool("initStaking", admin, PoolOpen)
}

// StopStaking closes the pool. Staked tokens are left in place.
func (l *Ledger) StopStaking(admin thor.Address) error {
	return l.setPool("stopStaking", admin, PoolClosed)
}

func (l *Ledger) setPool(op string, admin thor.Address, pool PoolState) error {
	var changed bool
	_, err := l.mutate(op, func(s *state) ([]*events.Event, error) {
		if err := s.requireAdmin(admin); err != nil {
			return nil, err
		}
		if m := s.meta(); m.Pool != pool {
			m.Pool = pool
			s.setMeta(m)
			changed = true
		}
		return nil, nil
	})
	if err != nil {
		return err
	}
	if changed {
		logger.Info("pool state changed", "pool", pool)
	}
	return nil
}

// TransferAdmin hands the admin role over to newAdmin.
func (l *Ledger) TransferAdmin(admin, newAdmin thor.Address) error {
	_, err := l.mutate("transferAdmin", func(s *state) ([]*events.Event, error) {
		if err := s.requireAdmin(admin); err != nil {
			return nil, err
		}
		if newAdmin.IsZero() {
			return nil, reverts.ErrInvalidAddress
		}
		m := s.meta()
		m.Admin = newAdmin
		s.setMeta(m)
		return nil, nil
	})
	if err != nil {
		return err
	}
	logger.Info("admin transferred", "from", admin, "to", newAdmin)
	return nil
}
