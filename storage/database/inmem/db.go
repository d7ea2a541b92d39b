// Package inmemdb implements the repositories on top of plain maps.
// It mirrors the constraints of the SQL schema: unique keys, foreign keys & cascades.
package inmemdb

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/section"
	"github.com/trezcool/ratiba/core/staff"
	"github.com/trezcool/ratiba/core/timetable"
)

// DB is an in-memory database; safe for concurrent use.
type DB struct {
	// txMu serializes WithinTx calls; mu guards the maps.
	txMu      sync.Mutex
	mu        sync.RWMutex
	sections  map[string]section.Section
	members   map[string]staff.Member
	timeSlots map[string]timetable.TimeSlot
}

func NewDB() *DB {
	db := &DB{}
	db.Reset()
	return db
}

// Reset drops all the records.
func (db *DB) Reset() {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.sections = make(map[string]section.Section)
	db.members = make(map[string]staff.Member)
	db.timeSlots = make(map[string]timetable.TimeSlot)
}

var _ core.Transactor = (*DB)(nil) // interface compliance check

// WithinTx runs fn while holding the transaction lock, so reads & writes made by fn are not
// interleaved with another WithinTx. Changes are not rolled back when fn fails.
func (db *DB) WithinTx(_ context.Context, fn func(exec core.DBExecutor) error) error {
	db.txMu.Lock()
	defer db.txMu.Unlock()
	return fn(nil)
}

func newID() string {
	return uuid.New().String()
}

// lessFunc compares the i-th & j-th records on one field.
type lessFunc func(i, j int) bool

// sortBy sorts n records by the first ordering whose field has a lessFunc, or by defaultLess.
func sortBy(n int, swap func(i, j int), ordering []core.DBOrdering, fields map[string]lessFunc, defaultLess lessFunc) {
	less := defaultLess
	for _, ord := range ordering {
		if fieldLess, ok := fields[ord.Field]; ok {
			if ord.Ascending {
				less = fieldLess
			} else {
				less = func(i, j int) bool { return fieldLess(j, i) }
			}
			break
		}
	}
	sort.Stable(sorter{n: n, swap: swap, less: less})
}

type sorter struct {
	n    int
	swap func(i, j int)
	less lessFunc
}

func (s sorter) Len() int           { return s.n }
func (s sorter) Swap(i, j int)      { s.swap(i, j) }
func (s sorter) Less(i, j int) bool { return s.less(i, j) }
