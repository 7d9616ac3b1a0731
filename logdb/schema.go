// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

// the id column keeps the global write order, (emitter, seq) makes writes idempotent.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	emitter BLOB(20) NOT NULL,
	seq INTEGER NOT NULL,
	kind INTEGER NOT NULL,
	owner BLOB(20) NOT NULL,
	target BLOB(20) NOT NULL,
	tokenID INTEGER NOT NULL,
	approved INTEGER NOT NULL,
	UNIQUE (emitter, seq)
);

CREATE INDEX IF NOT EXISTS event_i0 ON event(owner);
CREATE INDEX IF NOT EXISTS event_i1 ON event(target);
CREATE INDEX IF NOT EXISTS event_i2 ON event(tokenID);
CREATE INDEX IF NOT EXISTS event_i3 ON event(kind);
`
