/*
 * Copyright (c) 2025 Adrián Gómez Morales
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy of
 * this software and associated documentation files (the "Software"), to deal in
 * the Software without restriction, including without limitation the rights to
 * use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies of
 * the Software, and to permit persons to whom the Software is furnished to do so,
 * subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY, FITNESS
 * FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE AUTHORS OR
 * COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER
 * IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN
 * CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 *
 * Author(s): Adrián Gómez Morales
 */

// Package cachedb streams rows out of a Telegram cache4.db file as
// telegommor.RawRecord values. It is the input boundary of the pipeline:
// everything that touches the database file lives here, the core only
// consumes the Source interface.
package cachedb

import (
	"os"

	"crawshaw.io/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/adriangomezmorales/telegommor"
)

// tableSpec maps one known cache table to the record kind its rows carry
// and the columns the decoder expects.
type tableSpec struct {
	table   string
	kind    string
	columns []column
}

type column struct {
	name string
	typ  columnType
}

type columnType int

const (
	colInt columnType = iota
	colText
	colBlob
)

// knownTables lists the cache tables in the deterministic order they are
// read. The record version is part of the table name, which is why the
// table name doubles as the discriminator value.
var knownTables = []tableSpec{
	{"messages_v2", "message_v2", []column{
		{"mid", colInt}, {"uid", colInt}, {"date", colInt}, {"out", colInt}, {"data", colBlob},
	}},
	{"messages_v4", "message_v4", []column{
		{"mid", colInt}, {"uid", colInt}, {"date", colInt}, {"out", colInt}, {"data", colBlob},
	}},
	{"users", "user", []column{
		{"uid", colInt}, {"name", colText}, {"data", colBlob},
	}},
	{"chats", "chat", []column{
		{"uid", colInt}, {"name", colText},
	}},
	{"enc_chats", "enc_chat", []column{
		{"uid", colInt}, {"name", colText},
	}},
	{"user_contacts_v7", "contact_v7", []column{
		{"uid", colInt}, {"fname", colText}, {"sname", colText},
	}},
	{"params", "session", []column{
		{"seq", colInt}, {"pts", colInt}, {"date", colInt}, {"qts", colInt},
	}},
}

// Reader streams raw records from a cache database, table by table. It
// implements telegommor.Source.
type Reader struct {
	conn    *sqlite.Conn
	log     *zap.Logger
	pending []tableSpec
	current *tableSpec
	stmt    *sqlite.Stmt
}

// Open opens an existing cache database for reading. Only tables present in
// the file are read; a cache created by an older application version simply
// yields fewer record kinds.
func Open(path string, logger *zap.Logger) (*Reader, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrap(err, "cache database not found")
	}

	// Evidence is never written; any write through this connection fails
	// with SQLITE_READONLY.
	conn, err := sqlite.OpenConn(path, sqlite.SQLITE_OPEN_READONLY)
	if err != nil {
		return nil, errors.Wrap(err, "could not open cache database")
	}

	present, err := tableNames(conn)
	if err != nil {
		conn.Close() // nolint:errcheck
		return nil, err
	}

	r := &Reader{conn: conn, log: logger}
	for _, spec := range knownTables {
		if present[spec.table] {
			r.pending = append(r.pending, spec)
		} else {
			logger.Debug("table not present in cache", zap.String("table", spec.table))
		}
	}
	for name := range present {
		if !knownKind(name) {
			logger.Debug("skipping unknown table", zap.String("table", name))
		}
	}

	return r, nil
}

func tableNames(conn *sqlite.Conn) (map[string]bool, error) {
	stmt, err := conn.Prepare("SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, errors.Wrap(err, "could not read sqlite_master")
	}

	names := map[string]bool{}
	for {
		hasRow, err := stmt.Step()
		if err != nil {
			return nil, err
		}
		if !hasRow {
			break
		}
		names[stmt.GetText("name")] = true
	}
	return names, stmt.Finalize()
}

func knownKind(table string) bool {
	for _, spec := range knownTables {
		if spec.table == table {
			return true
		}
	}
	return false
}

// Next returns the next raw record, or false once all tables are drained.
func (r *Reader) Next() (telegommor.RawRecord, bool, error) {
	for {
		if r.stmt == nil {
			if len(r.pending) == 0 {
				return nil, false, nil
			}
			spec := r.pending[0]
			r.pending = r.pending[1:]
			r.current = &spec

			stmt, err := r.conn.Prepare(selectQuery(spec))
			if err != nil {
				return nil, false, errors.Wrapf(err, "could not read table %s", spec.table)
			}
			r.stmt = stmt
			r.log.Debug("reading table", zap.String("table", spec.table))
		}

		hasRow, err := r.stmt.Step()
		if err != nil {
			return nil, false, errors.Wrapf(err, "could not step table %s", r.current.table)
		}
		if !hasRow {
			if err := r.stmt.Finalize(); err != nil {
				return nil, false, err
			}
			r.stmt = nil
			continue
		}

		return r.row(), true, nil
	}
}

func selectQuery(spec tableSpec) string {
	query := "SELECT "
	for i, col := range spec.columns {
		if i > 0 {
			query += ", "
		}
		query += col.name
	}
	return query + " FROM " + spec.table
}

func (r *Reader) row() telegommor.RawRecord {
	record := telegommor.RawRecord{"kind": r.current.kind}
	for _, col := range r.current.columns {
		switch col.typ {
		case colInt:
			record[col.name] = r.stmt.GetInt64(col.name)
		case colText:
			record[col.name] = r.stmt.GetText(col.name)
		case colBlob:
			n := r.stmt.GetLen(col.name)
			if n == 0 {
				record[col.name] = []byte{}
				continue
			}
			buf := make([]byte, n)
			r.stmt.GetBytes(col.name, buf)
			record[col.name] = buf
		}
	}
	return record
}

// Close finalizes any outstanding statement and closes the connection.
func (r *Reader) Close() error {
	if r.stmt != nil {
		_ = r.stmt.Finalize()
		r.stmt = nil
	}
	return r.conn.Close()
}
