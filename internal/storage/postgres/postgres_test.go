package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolConfig(t *testing.T) {
	cfg, err := poolConfig("postgres://u:p@localhost:5432/db?pool_max_conns=20")
	require.NoError(t, err)
	assert.Equal(t, int32(maxPoolConns), cfg.MaxConns)
	assert.Equal(t, applicationName, cfg.ConnConfig.RuntimeParams["application_name"])

	cfg, err = poolConfig("postgres://u:p@localhost:5432/db?pool_max_conns=2&application_name=etl")
	require.NoError(t, err)
	assert.Equal(t, int32(2), cfg.MaxConns)
	assert.Equal(t, "etl", cfg.ConnConfig.RuntimeParams["application_name"])

	_, err = poolConfig("postgres://u:p@localhost:notaport/db")
	assert.Error(t, err)
}

func TestErrorClassification(t *testing.T) {
	dup := fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgErrUniqueViolation})
	assert.True(t, isDuplicateKeyError(dup))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))

	assert.True(t, isNotFoundError(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, isNotFoundError(errors.New("boom")))
}
