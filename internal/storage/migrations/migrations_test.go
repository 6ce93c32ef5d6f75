package migrations

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestSplitStatements(t *testing.T) {
	input := `-- header comment
CREATE TABLE a (x UInt8) ENGINE = Memory;

-- second
CREATE TABLE b (y String)
ENGINE = Memory;
`
	stmts := splitStatements(input)
	if len(stmts) != 2 {
		t.Fatalf("Expected 2 statements, got %d: %q", len(stmts), stmts)
	}
	if !strings.HasPrefix(stmts[0], "CREATE TABLE a") {
		t.Errorf("Unexpected first statement: %q", stmts[0])
	}
	if !strings.Contains(stmts[1], "ENGINE = Memory") {
		t.Errorf("Second statement lost its continuation line: %q", stmts[1])
	}
}

func TestValidateNoSemicolonInStrings(t *testing.T) {
	if err := validateNoSemicolonInStrings(`SELECT 'it''s'; SELECT 1;`); err != nil {
		t.Errorf("Escaped quote should be accepted, got %v", err)
	}
	err := validateNoSemicolonInStrings(`SELECT 'a;b';`)
	if !errors.Is(err, errSemicolonInString) {
		t.Errorf("Expected errSemicolonInString, got %v", err)
	}
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://default@localhost:9000/football")
	if err != nil {
		t.Fatalf("databaseFromDSN failed: %v", err)
	}
	if db != "football" {
		t.Errorf("Expected football, got %s", db)
	}

	if _, err := databaseFromDSN("clickhouse://localhost:9000"); err == nil {
		t.Error("Expected error for DSN without database")
	}
}

func TestEmbeddedMigrations(t *testing.T) {
	for _, tc := range []struct {
		fsys  fs.FS
		dir   string
		table string
	}{
		{PostgresFS, "postgres", "team_matches"},
		{ClickhouseFS, "clickhouse", "team_features"},
	} {
		files, err := sqlFiles(tc.fsys, tc.dir)
		if err != nil {
			t.Fatalf("%s: sqlFiles failed: %v", tc.dir, err)
		}
		if len(files) == 0 {
			t.Fatalf("%s: no embedded migrations", tc.dir)
		}

		data, err := fs.ReadFile(tc.fsys, tc.dir+"/"+files[0])
		if err != nil {
			t.Fatalf("%s: read failed: %v", tc.dir, err)
		}
		if !strings.Contains(string(data), tc.table) {
			t.Errorf("%s: expected table %s in %s", tc.dir, tc.table, files[0])
		}
		if err := validateNoSemicolonInStrings(string(data)); err != nil {
			t.Errorf("%s: %v", tc.dir, err)
		}
	}
}
