package converters

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/darianmavgo/mktransfer/converters/common"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`CREATE TABLE people (id INTEGER, name VARCHAR(20), photo BLOB)`); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return db
}

func countRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("failed to count rows: %v", err)
	}
	return n
}

func TestLoad(t *testing.T) {
	db := openTestDB(t)
	plan := &common.BatchPlan{
		Table:   "people",
		Columns: []string{"id", "name", "photo"},
		Rows: []common.Row{
			{common.TextCell("1"), common.TextCell("O'Brien"), common.TextCell("0xDEAD")},
			{common.TextCell("2"), common.NullCell(), common.NullCell()},
			{common.TextCell("3"), common.TextCell("Ana"), common.NullCell()},
		},
	}

	n, err := NewLoader(db, common.DialectMySQL, zerolog.Nop()).Load(context.Background(), plan)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 rows affected, got %d", n)
	}
	if got := countRows(t, db, "people"); got != 3 {
		t.Errorf("expected 3 persisted rows, got %d", got)
	}

	var name string
	var photo []byte
	if err := db.QueryRow("SELECT name, photo FROM people WHERE id = 1").Scan(&name, &photo); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if name != "O'Brien" {
		t.Errorf("name = %q, want O'Brien", name)
	}
	if !bytes.Equal(photo, []byte{0xDE, 0xAD}) {
		t.Errorf("photo = %X, want DEAD", photo)
	}

	var null sql.NullString
	if err := db.QueryRow("SELECT name FROM people WHERE id = 2").Scan(&null); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if null.Valid {
		t.Errorf("expected NULL name, got %q", null.String)
	}
}

func TestLoadSkipsRaggedRows(t *testing.T) {
	db := openTestDB(t)
	plan := &common.BatchPlan{
		Table:   "people",
		Columns: []string{"id", "name"},
		Rows: []common.Row{
			{common.TextCell("1"), common.TextCell("Ana")},
			{common.TextCell("2")},
			{common.TextCell("3"), common.TextCell("Rui")},
			{common.TextCell("4"), common.TextCell("Eva"), common.TextCell("extra")},
		},
	}

	n, err := NewLoader(db, common.DialectMySQL, zerolog.Nop()).Load(context.Background(), plan)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 rows affected, got %d", n)
	}
	if got := countRows(t, db, "people"); got != 2 {
		t.Errorf("expected 2 persisted rows, got %d", got)
	}
}

func TestLoadRollsBackOnFailure(t *testing.T) {
	db := openTestDB(t)
	plan := &common.BatchPlan{
		Table: "people",
		Statements: []string{
			"INSERT INTO people (id, name) VALUES (1, 'Ana')",
			"INSERT INTO people (id, name) VALUES (2, 'Rui')",
			"INSERT INTO missing (id) VALUES (3)",
		},
	}

	n, err := NewLoader(db, common.DialectMySQL, zerolog.Nop()).Load(context.Background(), plan)
	if !errors.Is(err, common.ErrTransaction) {
		t.Fatalf("expected transaction error, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows affected, got %d", n)
	}
	if got := countRows(t, db, "people"); got != 0 {
		t.Errorf("expected rollback to leave 0 rows, got %d", got)
	}
}

func TestLoadRejectsUnsafeColumnNames(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Exec("INSERT INTO people (id, name) VALUES (1, 'Ana')"); err != nil {
		t.Fatal(err)
	}
	plan := &common.BatchPlan{
		Table:   "people",
		Columns: []string{"id) VALUES (99); DELETE FROM people; INSERT INTO people (id"},
		Rows:    []common.Row{{common.TextCell("1")}},
	}

	n, err := NewLoader(db, common.DialectMySQL, zerolog.Nop()).Load(context.Background(), plan)
	if !errors.Is(err, common.ErrMalformedInput) {
		t.Fatalf("expected malformed input, got %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows affected, got %d", n)
	}
	if got := countRows(t, db, "people"); got != 1 {
		t.Errorf("expected the existing row to survive, got %d rows", got)
	}
}

func TestLoadEmptyPlan(t *testing.T) {
	db := openTestDB(t)
	n, err := NewLoader(db, common.DialectMySQL, zerolog.Nop()).Load(context.Background(), &common.BatchPlan{Table: "people"})
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 rows, got %d", n)
	}
}

func TestStatements(t *testing.T) {
	plan := &common.BatchPlan{
		Table:   "people",
		Columns: []string{"id", "photo"},
		Rows:    []common.Row{{common.TextCell("7"), common.TextCell("X'00FF'")}},
	}
	stmts, err := NewLoader(nil, common.DialectSQLServer, zerolog.Nop()).Statements(plan)
	if err != nil {
		t.Fatalf("Statements failed: %v", err)
	}
	want := "INSERT INTO people (id, photo) VALUES ('7', 0x00FF)"
	if len(stmts) != 1 || stmts[0] != want {
		t.Errorf("Statements = %q, want [%q]", stmts, want)
	}
}
