package store

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
)

func TestConvertDBError(t *testing.T) {
	t.Run("nil passes through", func(t *testing.T) {
		assert.Nil(t, ConvertDBError(nil))
	})

	t.Run("no rows becomes not found", func(t *testing.T) {
		assert.True(t, IsNotFound(ConvertDBError(sql.ErrNoRows)))
	})

	t.Run("postgres unique violation", func(t *testing.T) {
		err := ConvertDBError(&pgconn.PgError{Code: "23505", Detail: "Key (_path)=(/x/) already exists."})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("other postgres errors pass through", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42P01"}
		err := ConvertDBError(pgErr)
		assert.False(t, IsUniqueViolation(err))
		var out *pgconn.PgError
		assert.True(t, errors.As(err, &out))
	})

	t.Run("sqlite unique violation", func(t *testing.T) {
		err := ConvertDBError(sqlite3.Error{
			Code:         sqlite3.ErrConstraint,
			ExtendedCode: sqlite3.ErrConstraintUnique,
		})
		assert.True(t, IsUniqueViolation(err))
	})

	t.Run("unrelated error passes through", func(t *testing.T) {
		in := errors.New("boom")
		assert.Equal(t, in, ConvertDBError(in))
	})
}
