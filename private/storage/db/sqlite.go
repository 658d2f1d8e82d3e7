// Copyright 2025 ETH Zurich, Anapaya Systems
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

// Package db contains the sqlite plumbing shared by the local stores of the
// encoder tools.
package db

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"strconv"
	"strings"
	"sync"

	_ "modernc.org/sqlite" // sqlite driver

	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
)

// Reader is the read-only subset of *sql.DB.
type Reader interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SqliteConfig configures the sqlite database instance.
type SqliteConfig struct {
	// MaxOpenReadConns limits the read pool. Zero means 4.
	MaxOpenReadConns int
	// InMemory opens a named, shared-cache in-memory database.
	InMemory bool
}

// Sqlite is a sqlite database with a single-connection write pool and a
// read pool.
type Sqlite struct {
	Full     *sql.DB
	ReadOnly Reader

	read     *sql.DB
	memoryID string
}

// NewSqlite opens the sqlite database at path. The write pool is limited to
// one open connection. Writes start transactions with BEGIN IMMEDIATE so that
// the busy timeout applies.
func NewSqlite(path string, cfg *SqliteConfig) (*Sqlite, error) {
	var c SqliteConfig
	if cfg != nil {
		c = *cfg
	}
	if path == "" {
		return nil, serrors.New("empty database path")
	}
	// :memory: would give every connection its own database.
	if strings.Contains(path, ":memory:") {
		return nil, serrors.New("use explicitly named memory database", "path", path)
	}
	name, hasScheme := strings.CutPrefix(path, "file:")

	params := make(url.Values)
	params.Add("_txlock", "immediate")
	params.Add("_pragma", "journal_mode(WAL)")
	params.Add("_pragma", "busy_timeout(1000)")
	params.Add("_pragma", "synchronous(NORMAL)")
	if c.InMemory {
		if err := registerMemoryDB(name); err != nil {
			return nil, err
		}
		params.Add("mode", "memory")
		params.Add("cache", "shared")
	}
	dsn := path + "?" + params.Encode()
	if !hasScheme {
		dsn = "file:" + dsn
	}

	write, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, serrors.Wrap("opening write database", err, "path", path)
	}
	write.SetMaxOpenConns(1)
	read, err := sql.Open("sqlite", dsn)
	if err != nil {
		write.Close()
		return nil, serrors.Wrap("opening read database", err, "path", path)
	}
	if c.MaxOpenReadConns == 0 {
		c.MaxOpenReadConns = 4
	}
	read.SetMaxOpenConns(c.MaxOpenReadConns)

	db := &Sqlite{
		Full:     write,
		ReadOnly: read,
		read:     read,
	}
	if c.InMemory {
		db.memoryID = name
	}
	return db, nil
}

// Setup applies schema to a fresh database and stamps it with version. An
// existing database must carry the same version.
func (db *Sqlite) Setup(ctx context.Context, schema string, version int) error {
	var existing int
	if err := db.Full.QueryRowContext(ctx, "PRAGMA user_version;").Scan(&existing); err != nil {
		return NewReadError("checking schema version", err)
	}
	switch existing {
	case 0:
		if _, err := db.Full.ExecContext(ctx, schema); err != nil {
			return NewWriteError("applying schema", err)
		}
		// PRAGMA does not take bound parameters.
		stamp := "PRAGMA user_version = " + strconv.Itoa(version)
		if _, err := db.Full.ExecContext(ctx, stamp); err != nil {
			return NewWriteError("writing schema version", err)
		}
		return nil
	case version:
		return nil
	default:
		return serrors.JoinNoStack(ErrDataInvalid, nil,
			"detailMsg", "schema version mismatch", "expected", version, "actual", existing)
	}
}

// Close closes both connection pools.
func (db *Sqlite) Close() error {
	var errs []error
	if err := db.Full.Close(); err != nil {
		errs = append(errs, serrors.Wrap("closing write db", err))
	}
	if err := db.read.Close(); err != nil {
		errs = append(errs, serrors.Wrap("closing read db", err))
	}
	if db.memoryID != "" {
		unregisterMemoryDB(db.memoryID)
	}
	return errors.Join(errs...)
}

// memoryDBs guards against two in-memory databases with the same name, they
// would silently share their content.
var memoryDBs = struct {
	mtx   sync.Mutex
	names map[string]struct{}
}{
	names: make(map[string]struct{}),
}

func registerMemoryDB(name string) error {
	memoryDBs.mtx.Lock()
	defer memoryDBs.mtx.Unlock()
	if _, ok := memoryDBs.names[name]; ok {
		return serrors.New("memory database already open", "name", name)
	}
	memoryDBs.names[name] = struct{}{}
	return nil
}

func unregisterMemoryDB(name string) {
	memoryDBs.mtx.Lock()
	defer memoryDBs.mtx.Unlock()
	delete(memoryDBs.names, name)
}
