package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "unique_violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, want: true},
		{name: "envuelto", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: pgerrcode.UniqueViolation}), want: true},
		{name: "foreign_key", err: &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation}},
		{name: "error_generico", err: errors.New("boom")},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isUniqueViolation(tc.err))
		})
	}
}

func TestIsConstraint(t *testing.T) {
	err := fmt.Errorf("insert link: %w", &pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraintShipmentLinkUnique,
	})
	assert.True(t, isConstraint(err, constraintShipmentLinkUnique))
	assert.False(t, isConstraint(err, constraintFiscalFolioUnique))
}

func TestMapLinkError(t *testing.T) {
	assert.Nil(t, mapLinkError(nil))
	assert.Contains(t, mapLinkError(&pgconn.PgError{
		Code:           pgerrcode.UniqueViolation,
		ConstraintName: constraintShipmentLinkUnique,
	}).Error(), "vinculado")
}
