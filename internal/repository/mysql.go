package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQLStore runs transactions against MySQL. Every table has an id
// primary key, one column per index column and a JSON body column (see
// internal/database/schema.sql). Reads inside InTx lock the rows they
// return with FOR UPDATE so read-modify-write sequences are serialized
// per row.
type MySQLStore struct {
	db *sql.DB
}

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

func (s *MySQLStore) InTx(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, nil, true, fn)
}

func (s *MySQLStore) View(ctx context.Context, fn func(tx Tx) error) error {
	return s.run(ctx, &sql.TxOptions{ReadOnly: true}, false, fn)
}

func (s *MySQLStore) run(ctx context.Context, opts *sql.TxOptions, lock bool, fn func(tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx, lock: lock}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type sqlTx struct {
	tx   *sql.Tx
	lock bool
}

func (t *sqlTx) backend() backend { return t }

func (t *sqlTx) suffix() string {
	if t.lock {
		return " FOR UPDATE"
	}
	return ""
}

func (t *sqlTx) get(ctx context.Context, table, id string) ([]byte, error) {
	var body []byte
	err := t.tx.QueryRowContext(ctx, "SELECT body FROM "+table+" WHERE id = ?"+t.suffix(), id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return body, err
}

func (t *sqlTx) list(ctx context.Context, table string, ix indexDef, key []any, limit int) ([][]byte, error) {
	conds := make([]string, len(ix.columns))
	for i, c := range ix.columns {
		conds[i] = c + " = ?"
	}
	q := "SELECT body FROM " + table + " WHERE " + strings.Join(conds, " AND ") + " ORDER BY id DESC"
	if limit > 0 {
		q += " LIMIT " + strconv.Itoa(limit)
	}
	q += t.suffix()

	rows, err := t.tx.QueryContext(ctx, q, key...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]byte
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, err
		}
		out = append(out, body)
	}
	return out, rows.Err()
}

// columns flattens the index keys of r into distinct column/value pairs
// in declaration order.
func columns(idx []indexDef, r record) ([]string, []any) {
	seen := map[string]bool{}
	var cols []string
	var vals []any
	for _, ix := range idx {
		key := r.keys[ix.name]
		for i, c := range ix.columns {
			if seen[c] {
				continue
			}
			seen[c] = true
			cols = append(cols, c)
			vals = append(vals, key[i])
		}
	}
	return cols, vals
}

func (t *sqlTx) insertSQL(table string, idx []indexDef, r record) (string, []any, []string) {
	cols, vals := columns(idx, r)
	all := append([]string{"id"}, cols...)
	all = append(all, "body")
	args := append([]any{r.id}, vals...)
	args = append(args, r.body)
	q := "INSERT INTO " + table + " (" + strings.Join(all, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ") + ")"
	return q, args, cols
}

func (t *sqlTx) insert(ctx context.Context, table string, idx []indexDef, r record) error {
	q, args, _ := t.insertSQL(table, idx, r)
	_, err := t.tx.ExecContext(ctx, q, args...)
	return mapWriteErr(err)
}

func (t *sqlTx) update(ctx context.Context, table string, idx []indexDef, r record) error {
	cols, vals := columns(idx, r)
	sets := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}
	sets = append(sets, "body = ?")
	args := append(vals, r.body, r.id)
	_, err := t.tx.ExecContext(ctx, "UPDATE "+table+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	return mapWriteErr(err)
}

func (t *sqlTx) upsert(ctx context.Context, table string, idx []indexDef, r record) error {
	q, args, cols := t.insertSQL(table, idx, r)
	sets := make([]string, 0, len(cols)+1)
	for _, c := range append(cols, "body") {
		sets = append(sets, c+" = VALUES("+c+")")
	}
	q += " ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	_, err := t.tx.ExecContext(ctx, q, args...)
	return mapWriteErr(err)
}

func (t *sqlTx) delete(ctx context.Context, table, id string) error {
	_, err := t.tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	return err
}

// mapWriteErr turns MySQL duplicate-entry errors (1062) into ErrDuplicate.
func mapWriteErr(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrDuplicate
	}
	return err
}
