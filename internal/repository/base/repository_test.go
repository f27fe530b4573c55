package base

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify("op", nil))

	err := Classify("get doctor", pgx.ErrNoRows)
	assert.ErrorIs(t, err, ErrNotFound)

	err = Classify("create appointment", &pgconn.PgError{Code: "23505", ConstraintName: "appointments_active_slot"})
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "appointments_active_slot")

	cause := errors.New("connection reset")
	err = Classify("list", cause)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
}
