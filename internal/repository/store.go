// Package repository stores the domain records. Each entity lives in its
// own table, addressed by id and by a small set of declared indexes; the
// record itself is kept as a JSON document. All access happens inside a
// transaction obtained from a Store so that reads, writes, rate-limit
// counters and audit rows of one operation commit or roll back together.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
)

// Store opens transactions. InTx is for operations that write; View runs
// a read-only transaction.
type Store interface {
	InTx(ctx context.Context, fn func(tx Tx) error) error
	View(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is an open transaction. Tables are bound to it with the accessor
// functions in schemas.go.
type Tx interface {
	backend() backend
}

type indexDef struct {
	name    string
	columns []string
	unique  bool
}

type record struct {
	id   string
	keys map[string][]any
	body []byte
}

// backend is the storage-specific half of a transaction. Bodies are
// opaque JSON documents at this level.
type backend interface {
	get(ctx context.Context, table, id string) ([]byte, error)
	list(ctx context.Context, table string, ix indexDef, key []any, limit int) ([][]byte, error)
	insert(ctx context.Context, table string, idx []indexDef, r record) error
	update(ctx context.Context, table string, idx []indexDef, r record) error
	upsert(ctx context.Context, table string, idx []indexDef, r record) error
	delete(ctx context.Context, table, id string) error
}

// Index declares a lookup path. Key returns the values for Columns, in
// order, for a record. Only string and bool key values are supported.
type Index[T any] struct {
	Name    string
	Columns []string
	Unique  bool
	Key     func(T) []any
}

// Schema describes how a record type is stored.
type Schema[T any] struct {
	Table   string
	ID      func(T) string
	Indexes []Index[T]
}

func (s Schema[T]) defs() []indexDef {
	out := make([]indexDef, len(s.Indexes))
	for i, ix := range s.Indexes {
		out[i] = indexDef{name: ix.Name, columns: ix.Columns, unique: ix.Unique}
	}
	return out
}

func (s Schema[T]) index(name string) (indexDef, error) {
	for _, ix := range s.Indexes {
		if ix.Name == name {
			return indexDef{name: ix.Name, columns: ix.Columns, unique: ix.Unique}, nil
		}
	}
	return indexDef{}, fmt.Errorf("%s: unknown index %q", s.Table, name)
}

func (s Schema[T]) record(v T) (record, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return record{}, fmt.Errorf("%s: encode: %w", s.Table, err)
	}
	keys := make(map[string][]any, len(s.Indexes))
	for _, ix := range s.Indexes {
		keys[ix.Name] = ix.Key(v)
	}
	return record{id: s.ID(v), keys: keys, body: body}, nil
}

// Table is a typed view of one table inside a transaction.
type Table[T any] struct {
	b      backend
	schema Schema[T]
}

// Bind returns the table described by s inside tx.
func Bind[T any](tx Tx, s Schema[T]) Table[T] {
	return Table[T]{b: tx.backend(), schema: s}
}

func (t Table[T]) decode(body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("%s: decode: %w", t.schema.Table, err)
	}
	return v, nil
}

// Get loads a record by id.
func (t Table[T]) Get(ctx context.Context, id string) (T, error) {
	body, err := t.b.get(ctx, t.schema.Table, id)
	if err != nil {
		var zero T
		return zero, err
	}
	return t.decode(body)
}

// Find returns the newest record matching the index key.
func (t Table[T]) Find(ctx context.Context, index string, key ...any) (T, error) {
	var zero T
	ix, err := t.schema.index(index)
	if err != nil {
		return zero, err
	}
	bodies, err := t.b.list(ctx, t.schema.Table, ix, key, 1)
	if err != nil {
		return zero, err
	}
	if len(bodies) == 0 {
		return zero, ErrNotFound
	}
	return t.decode(bodies[0])
}

// List returns every record matching the index key, newest first.
func (t Table[T]) List(ctx context.Context, index string, key ...any) ([]T, error) {
	ix, err := t.schema.index(index)
	if err != nil {
		return nil, err
	}
	bodies, err := t.b.list(ctx, t.schema.Table, ix, key, 0)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(bodies))
	for _, b := range bodies {
		v, err := t.decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Insert adds a new record. A taken id or unique key yields ErrDuplicate.
func (t Table[T]) Insert(ctx context.Context, v T) error {
	r, err := t.schema.record(v)
	if err != nil {
		return err
	}
	return t.b.insert(ctx, t.schema.Table, t.schema.defs(), r)
}

// Update replaces an existing record.
func (t Table[T]) Update(ctx context.Context, v T) error {
	r, err := t.schema.record(v)
	if err != nil {
		return err
	}
	return t.b.update(ctx, t.schema.Table, t.schema.defs(), r)
}

// Upsert inserts the record or replaces the one with the same id.
func (t Table[T]) Upsert(ctx context.Context, v T) error {
	r, err := t.schema.record(v)
	if err != nil {
		return err
	}
	return t.b.upsert(ctx, t.schema.Table, t.schema.defs(), r)
}

// Delete removes a record by id. Deleting a missing id is not an error.
func (t Table[T]) Delete(ctx context.Context, id string) error {
	return t.b.delete(ctx, t.schema.Table, id)
}
