package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestIsUniqueViolation(t *testing.T) {
	pgDup := fmt.Errorf("create: %w", &pgconn.PgError{Code: "23505", ConstraintName: "ux_active_assignment"})
	pgFK := &pgconn.PgError{Code: "23503", ConstraintName: "ux_active_assignment"}

	cases := []struct {
		name       string
		err        error
		constraint string
		want       bool
	}{
		{"nil", nil, "", false},
		{"postgres matching constraint", pgDup, "ux_active_assignment", true},
		{"postgres any constraint", pgDup, "", true},
		{"postgres other constraint", pgDup, "ux_other", false},
		{"postgres non unique code", pgFK, "ux_active_assignment", false},
		{"sqlite unique", errors.New("UNIQUE constraint failed: order_assignments.order_id"), "ux_active_assignment", true},
		{"unrelated", errors.New("connection reset"), "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsUniqueViolation(tc.err, tc.constraint); got != tc.want {
				t.Fatalf("IsUniqueViolation = %v want %v", got, tc.want)
			}
		})
	}
}
