// Copyright 2026 The unisencoder Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dispatch

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/periscope-ps/unisencoder/private/storage/db"
)

// Ledger remembers the modification time of every successfully dispatched
// file.
type Ledger interface {
	// Changed reports whether path has not been recorded with modification
	// time mtime.
	Changed(ctx context.Context, path string, mtime time.Time) (bool, error)
	// Record stores mtime as the dispatched modification time of path.
	Record(ctx context.Context, path string, mtime time.Time) error
}

const (
	// LedgerSchemaVersion is the version of the ledger schema.
	LedgerSchemaVersion = 1
	// LedgerSchema is the sqlite schema of the ledger.
	LedgerSchema = `
	CREATE TABLE Dispatched(
		Path TEXT NOT NULL PRIMARY KEY,
		ModTime INTEGER NOT NULL,
		RecordedAt INTEGER NOT NULL
	);`
)

var _ Ledger = (*SqliteLedger)(nil)

// SqliteLedger is a Ledger backed by a sqlite database.
type SqliteLedger struct {
	db  *db.Sqlite
	now func() time.Time
}

// NewSqliteLedger opens or creates the ledger at path.
func NewSqliteLedger(ctx context.Context, path string) (*SqliteLedger, error) {
	d, err := db.NewSqlite(path, nil)
	if err != nil {
		return nil, err
	}
	if err := d.Setup(ctx, LedgerSchema, LedgerSchemaVersion); err != nil {
		d.Close()
		return nil, err
	}
	return &SqliteLedger{db: d, now: time.Now}, nil
}

// Changed implements Ledger.
func (l *SqliteLedger) Changed(ctx context.Context, path string,
	mtime time.Time) (bool, error) {

	var recorded int64
	err := l.db.ReadOnly.QueryRowContext(ctx,
		`SELECT ModTime FROM Dispatched WHERE Path = ?`, path).Scan(&recorded)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return true, nil
	case err != nil:
		return false, db.NewReadError("looking up file", err, "path", path)
	}
	return recorded != mtime.UnixNano(), nil
}

// Record implements Ledger.
func (l *SqliteLedger) Record(ctx context.Context, path string, mtime time.Time) error {
	_, err := l.db.Full.ExecContext(ctx,
		`INSERT INTO Dispatched (Path, ModTime, RecordedAt) VALUES (?, ?, ?)
		ON CONFLICT(Path) DO UPDATE SET ModTime = excluded.ModTime,
		RecordedAt = excluded.RecordedAt`,
		path, mtime.UnixNano(), l.now().UnixNano())
	if err != nil {
		return db.NewWriteError("recording file", err, "path", path)
	}
	return nil
}

// Close closes the underlying database.
func (l *SqliteLedger) Close() error {
	return l.db.Close()
}
