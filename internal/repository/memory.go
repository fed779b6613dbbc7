package repository

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var errReadOnly = errors.New("write in read-only transaction")

// MemoryStore keeps every table in process memory. A transaction holds
// the store lock from start to finish, so transactions are serialized;
// writes are undone when the transaction function returns an error.
// Used by tests and by the server when no database is configured.
type MemoryStore struct {
	mu     sync.Mutex
	tables map[string]map[string]memRow
}

type memRow struct {
	keys map[string][]any
	body []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tables: make(map[string]map[string]memRow)}
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, false, fn)
}

func (s *MemoryStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, true, fn)
}

func (s *MemoryStore) run(ctx context.Context, readOnly bool, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, readOnly: readOnly}
	committed := false
	defer func() {
		if !committed {
			tx.rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	committed = true
	return nil
}

type undo struct {
	table  string
	id     string
	prev   memRow
	exists bool
}

type memTx struct {
	store    *MemoryStore
	readOnly bool
	log      []undo
}

func (t *memTx) backend() backend { return t }

func (t *memTx) rollback() {
	for i := len(t.log) - 1; i >= 0; i-- {
		u := t.log[i]
		rows := t.store.tables[u.table]
		if u.exists {
			rows[u.id] = u.prev
		} else {
			delete(rows, u.id)
		}
	}
	t.log = nil
}

func (t *memTx) rows(table string) map[string]memRow {
	rows, ok := t.store.tables[table]
	if !ok {
		rows = make(map[string]memRow)
		t.store.tables[table] = rows
	}
	return rows
}

func (t *memTx) remember(table, id string) {
	prev, ok := t.rows(table)[id]
	t.log = append(t.log, undo{table: table, id: id, prev: prev, exists: ok})
}

func (t *memTx) get(_ context.Context, table, id string) ([]byte, error) {
	row, ok := t.rows(table)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(row.body), nil
}

func (t *memTx) list(_ context.Context, table string, ix indexDef, key []any, limit int) ([][]byte, error) {
	rows := t.rows(table)
	var ids []string
	for id, row := range rows {
		if keyEqual(row.keys[ix.name], key) {
			ids = append(ids, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(ids)))
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([][]byte, len(ids))
	for i, id := range ids {
		out[i] = clone(rows[id].body)
	}
	return out, nil
}

func (t *memTx) insert(_ context.Context, table string, idx []indexDef, r record) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.rows(table)[r.id]; ok {
		return ErrDuplicate
	}
	if err := t.checkUnique(table, idx, r); err != nil {
		return err
	}
	t.put(table, r)
	return nil
}

func (t *memTx) update(_ context.Context, table string, idx []indexDef, r record) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.rows(table)[r.id]; !ok {
		return ErrNotFound
	}
	if err := t.checkUnique(table, idx, r); err != nil {
		return err
	}
	t.put(table, r)
	return nil
}

func (t *memTx) upsert(_ context.Context, table string, idx []indexDef, r record) error {
	if t.readOnly {
		return errReadOnly
	}
	if err := t.checkUnique(table, idx, r); err != nil {
		return err
	}
	t.put(table, r)
	return nil
}

func (t *memTx) delete(_ context.Context, table, id string) error {
	if t.readOnly {
		return errReadOnly
	}
	if _, ok := t.rows(table)[id]; !ok {
		return nil
	}
	t.remember(table, id)
	delete(t.rows(table), id)
	return nil
}

func (t *memTx) put(table string, r record) {
	t.remember(table, r.id)
	t.rows(table)[r.id] = memRow{keys: r.keys, body: clone(r.body)}
}

func (t *memTx) checkUnique(table string, idx []indexDef, r record) error {
	for _, ix := range idx {
		if !ix.unique {
			continue
		}
		for id, row := range t.rows(table) {
			if id != r.id && keyEqual(row.keys[ix.name], r.keys[ix.name]) {
				return ErrDuplicate
			}
		}
	}
	return nil
}

func keyEqual(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
