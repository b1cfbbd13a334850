package data

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", sql.ErrNoRows, ErrNotFound},
		{"unique violation", &pq.Error{Code: "23505", Constraint: "cameras_camera_id_key"}, ErrConflict},
		{"fk violation", &pq.Error{Code: "23503", Constraint: "events_camera_id_fkey"}, ErrConstraint},
		{"not null", &pq.Error{Code: "23502"}, ErrConstraint},
		{"check", &pq.Error{Code: "23514"}, ErrConstraint},
		{"too many connections", &pq.Error{Code: "53300"}, ErrUnavailable},
		{"cannot connect now", &pq.Error{Code: "57P03"}, ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.in)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func TestClassifyWrapped(t *testing.T) {
	err := classify(fmt.Errorf("insert camera: %w", &pq.Error{Code: "23505"}))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestClassifyPassthrough(t *testing.T) {
	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))
}
