// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb indexes the events of the registry and the ledger in sqlite, so that
// observers can query the history.
package logdb

import (
	"context"
	"database/sql"

	"github.com/ethereum/go-ethereum/event"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/nftstaker/events"
	"github.com/vechain/nftstaker/log"
	"github.com/vechain/nftstaker/thor"
)

const (
	insertEventQuery = "INSERT OR IGNORE INTO event(emitter, seq, kind, owner, target, tokenID, approved) VALUES (?, ?, ?, ?, ?, ?, ?)"

	followBatchSize = 256
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmts         *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single connection, so that an in-memory database is shared by all queries
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmts:         newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmts.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Write stores events in one transaction. Events already stored are skipped.
func (db *LogDB) Write(evs []*events.Event) error {
	if len(evs) == 0 {
		return nil
	}
	insert, err := db.stmts.Prepare(context.Background(), insertEventQuery)
	if err != nil {
		return err
	}

	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(insert)
	for _, ev := range evs {
		if _, err := stmt.Exec(
			ev.Emitter.Bytes(),
			int64(ev.Seq),
			int64(ev.Kind),
			ev.Owner.Bytes(),
			ev.Target.Bytes(),
			int64(ev.TokenID),
			ev.Approved,
		); err != nil {
			_ = tx.Rollback()
			return errors.Wrapf(err, "insert %v", ev)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWrittenEvents().Add(int64(len(evs)))
	return nil
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*events.Event, error) {
	const selection = "SELECT emitter, seq, kind, owner, target, tokenID, approved FROM event"
	if filter == nil {
		return db.queryEvents(ctx, selection+" ORDER BY id ASC")
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := selection + " WHERE 1"
	if filter.Range != nil {
		args = append(args, int64(filter.Range.From))
		stmt += " AND seq >= ? "
		if filter.Range.To >= filter.Range.From {
			args = append(args, int64(filter.Range.To))
			stmt += " AND seq <= ? "
		}
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Emitter != nil {
			args = append(args, criteria.Emitter.Bytes())
			stmt += " AND emitter = ? "
		}
		if criteria.Kind != nil {
			args = append(args, int64(*criteria.Kind))
			stmt += " AND kind = ? "
		}
		if criteria.Owner != nil {
			args = append(args, criteria.Owner.Bytes())
			stmt += " AND owner = ? "
		}
		if criteria.Target != nil {
			args = append(args, criteria.Target.Bytes())
			stmt += " AND target = ? "
		}
		if criteria.TokenID != nil {
			args = append(args, int64(*criteria.TokenID))
			stmt += " AND tokenID = ? "
		}
		stmt += ")"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY id DESC "
	} else {
		stmt += " ORDER BY id ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*events.Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	evs := make([]*events.Event, 0)
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			emitter  []byte
			seq      int64
			kind     int64
			owner    []byte
			target   []byte
			tokenID  int64
			approved bool
		)
		if err := rows.Scan(&emitter, &seq, &kind, &owner, &target, &tokenID, &approved); err != nil {
			return nil, err
		}
		evs = append(evs, &events.Event{
			Kind:     events.Kind(kind),
			Emitter:  thor.BytesToAddress(emitter),
			Seq:      uint64(seq),
			Owner:    thor.BytesToAddress(owner),
			Target:   thor.BytesToAddress(target),
			TokenID:  thor.TokenID(tokenID),
			Approved: approved,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return evs, nil
}

// Follow subscribes to the emitters right away and returns the loop that stores
// their events until done is closed. The loop fits co.Goes.Loop.
func (db *LogDB) Follow(emitters ...*events.Emitter) func(done <-chan struct{}) {
	ch := make(chan *events.Event, followBatchSize*4)
	subs := make([]event.Subscription, 0, len(emitters))
	for _, em := range emitters {
		subs = append(subs, em.Subscribe(ch))
	}

	return func(done <-chan struct{}) {
		defer func() {
			for _, sub := range subs {
				sub.Unsubscribe()
			}
		}()

		batch := make([]*events.Event, 0, followBatchSize)
		flush := func() {
			if err := db.Write(batch); err != nil {
				logger.Warn("failed to write events", "count", len(batch), "err", err)
			}
			batch = batch[:0]
		}

		for {
			select {
			case <-done:
				// keep what was already received
				for {
					select {
					case ev := <-ch:
						batch = append(batch, ev)
					default:
						flush()
						return
					}
				}
			case ev := <-ch:
				batch = append(batch, ev)
			drain:
				for len(batch) < followBatchSize {
					select {
					case ev := <-ch:
						batch = append(batch, ev)
					default:
						break drain
					}
				}
				flush()
			}
		}
	}
}
