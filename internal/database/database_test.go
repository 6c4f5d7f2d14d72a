package database

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func Test_mapError(t *testing.T) {
	other := errors.New("connection reset")

	tcases := []struct {
		name string
		err  error
		want error
	}{
		{name: "nil", err: nil, want: nil},
		{name: "no rows", err: sql.ErrNoRows, want: ErrNotFound},
		{name: "wrapped no rows", err: fmt.Errorf("scan: %w", sql.ErrNoRows), want: ErrNotFound},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: ErrConflict},
		{name: "foreign key violation", err: &pq.Error{Code: "23503"}},
		{name: "other", err: other, want: other},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			got := mapError(tc.err)
			if tc.want == nil && tc.err != nil {
				assert.Equal(t, tc.err, got, "expected error to pass through")
				return
			}
			assert.Equal(t, tc.want, got)
		})
	}
}
