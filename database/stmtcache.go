/*
Package database carries the sql helpers shared by the sqlite-backed
stores.
*/
package database

import (
	"database/sql"
	"sync"
)

// StmtCache prepares each query once and reuses the statement on every
// later call. The deposit store runs the same handful of queries on each
// lifecycle tick, so preparing per call would be pure overhead.
type StmtCache struct {
	db    *sql.DB
	stmts sync.Map // query string -> *sql.Stmt
}

func NewStmtCache(db *sql.DB) *StmtCache {
	return &StmtCache{db: db}
}

// Prepare returns the cached statement for query, preparing it on first
// use. Safe for concurrent callers.
func (sc *StmtCache) Prepare(query string) (*sql.Stmt, error) {
	if cached, ok := sc.stmts.Load(query); ok {
		return cached.(*sql.Stmt), nil
	}
	stmt, err := sc.db.Prepare(query)
	if err != nil {
		return nil, err
	}
	actual, loaded := sc.stmts.LoadOrStore(query, stmt)
	if loaded {
		// another goroutine prepared the same query first
		_ = stmt.Close()
	}
	return actual.(*sql.Stmt), nil
}

// Clear closes every cached statement. Called when the owning store shuts
// down.
func (sc *StmtCache) Clear() {
	sc.stmts.Range(func(k, v interface{}) bool {
		_ = v.(*sql.Stmt).Close()
		sc.stmts.Delete(k)
		return true
	})
}
