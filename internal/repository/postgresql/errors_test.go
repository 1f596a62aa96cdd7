package postgresql

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsNoRows(t *testing.T) {
	tests := map[string]struct {
		err  error
		want bool
	}{
		"no rows":           {err: pgx.ErrNoRows, want: true},
		"wrapped no rows":   {err: fmt.Errorf("scan: %w", pgx.ErrNoRows), want: true},
		"malformed uuid":    {err: fmt.Errorf("query: %w", &pgconn.PgError{Code: "22P02"}), want: true},
		"unique violation":  {err: &pgconn.PgError{Code: "23505"}, want: false},
		"connection failed": {err: errors.New("connection reset by peer"), want: false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.want, isNoRows(tt.err))
		})
	}
}

func TestConstraintErrors(t *testing.T) {
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
}
