package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

func TestDumpCollectsChainAndPGXDetails(t *testing.T) {
	pgErr := &pgconn.PgError{Code: PGUniqueViolation, ConstraintName: "ux_active_assignment", TableName: "order_assignments"}
	err := Wrap(CodeConflict, fmt.Errorf("insert: %w", pgErr), "duplicate")

	d := Dump(err)
	if d.Code != CodeConflict {
		t.Fatalf("expected CONFLICT got %s", d.Code)
	}
	if len(d.Chain) < 2 {
		t.Fatalf("expected wrapped chain got %v", d.Chain)
	}
	if d.PGCode != PGUniqueViolation || d.PGTable != "order_assignments" {
		t.Fatalf("unexpected pg fields %+v", d)
	}
}

func TestPostgresCodeReadsLibPQ(t *testing.T) {
	err := fmt.Errorf("exec: %w", &pq.Error{Code: "23503", Constraint: "fk_supplier"})
	code, constraint := PostgresCode(err)
	if code != "23503" || constraint != "fk_supplier" {
		t.Fatalf("unexpected %q %q", code, constraint)
	}

	code, constraint = PostgresCode(stdErrors.New("plain"))
	if code != "" || constraint != "" {
		t.Fatalf("expected empty for non-postgres error")
	}
}
