// Copyright (c) 2020 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"sync"
)

// stmtCache keeps prepared statements of the fixed queries.
type stmtCache struct {
	db *sql.DB
	mu sync.Mutex
	m  map[string]*sql.Stmt
}

func newStmtCache(db *sql.DB) *stmtCache {
	return &stmtCache{db: db, m: make(map[string]*sql.Stmt)}
}

func (sc *stmtCache) Prepare(ctx context.Context, query string) (*sql.Stmt, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if stmt, ok := sc.m[query]; ok {
		return stmt, nil
	}
	stmt, err := sc.db.PrepareContext(ctx, query)
	if err != nil {
		return nil, err
	}
	sc.m[query] = stmt
	return stmt, nil
}

func (sc *stmtCache) Clear() {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	for query, stmt := range sc.m {
		_ = stmt.Close()
		delete(sc.m, query)
	}
}
