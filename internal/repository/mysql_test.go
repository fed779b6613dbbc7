package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/stylehub/internal/model"
)

func newMock(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db), mock
}

func TestMySQLGetLocksRowInWriteTx(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT body FROM tenants WHERE id = ? FOR UPDATE").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"id":"t1","slug":"ada","name":"Ada"}`)))
	mock.ExpectCommit()

	err := s.InTx(ctx, func(tx Tx) error {
		tn, err := Tenants(tx).Get(ctx, "t1")
		require.NoError(t, err)
		assert.Equal(t, "Ada", tn.Name)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLListInViewHasNoLock(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT body FROM saved_styles WHERE user_id = ? AND style_id = ? ORDER BY id DESC LIMIT 1").
		WithArgs("u1", "s1").
		WillReturnRows(sqlmock.NewRows([]string{"body"}))
	mock.ExpectCommit()

	err := s.View(ctx, func(tx Tx) error {
		_, err := SavedStyles(tx).Find(ctx, ByUserStyle, "u1", "s1")
		assert.ErrorIs(t, err, ErrNotFound)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLInsertMapsDuplicateAndRollsBack(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO tenants (id, slug, is_active, body) VALUES (?, ?, ?, ?)").
		WithArgs("t2", "ada", true, sqlmock.AnyArg()).
		WillReturnError(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectRollback()

	err := s.InTx(ctx, func(tx Tx) error {
		return Tenants(tx).Insert(ctx, model.Tenant{ID: "t2", Slug: "ada", IsActive: true})
	})
	assert.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLUpdateAndUpsert(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE rate_limit_counters SET actor_id = ?, key_name = ?, body = ? WHERE id = ?").
		WithArgs("u1", "review.create", sqlmock.AnyArg(), "u1|review.create").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO rate_limit_counters (id, actor_id, key_name, body) VALUES (?, ?, ?, ?) " +
		"ON DUPLICATE KEY UPDATE actor_id = VALUES(actor_id), key_name = VALUES(key_name), body = VALUES(body)").
		WithArgs("u1|review.create", "u1", "review.create", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	c := model.RateLimitCounter{ID: model.CounterID("u1", "review.create"), ActorID: "u1", Key: "review.create", WindowStart: 60000, Count: 1}
	err := s.InTx(ctx, func(tx Tx) error {
		if err := RateLimitCounters(tx).Update(ctx, c); err != nil {
			return err
		}
		return RateLimitCounters(tx).Upsert(ctx, c)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLCommitFailureIsReturned(t *testing.T) {
	s, mock := newMock(t)
	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM styles WHERE id = ?").WithArgs("s1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit().WillReturnError(errors.New("connection reset"))

	err := s.InTx(ctx, func(tx Tx) error { return Styles(tx).Delete(ctx, "s1") })
	assert.EqualError(t, err, "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}
