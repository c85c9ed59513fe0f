package database

import (
	"testing"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url         string
		wantDialect Dialect
		wantDSN     string
		wantErr     bool
	}{
		{"postgres://u:p@localhost:5432/db?sslmode=disable", DialectPostgres, "postgres://u:p@localhost:5432/db?sslmode=disable", false},
		{"postgresql://localhost/db", DialectPostgres, "postgresql://localhost/db", false},
		{"sqlite://./reminders.db", DialectSQLite, "./reminders.db", false},
		{"sqlite3://:memory:", DialectSQLite, ":memory:", false},
		{"", "", "", true},
		{"mysql://localhost/db", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			dialect, dsn, err := parseURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if dialect != tt.wantDialect || dsn != tt.wantDSN {
				t.Errorf("parseURL() = (%q, %q), want (%q, %q)", dialect, dsn, tt.wantDialect, tt.wantDSN)
			}
		})
	}
}

func TestRebind(t *testing.T) {
	t.Parallel()

	q := "SELECT 1 FROM reminders WHERE id = $1 AND user_id = $2 LIMIT $10"

	pg := &DB{dialect: DialectPostgres}
	if got := pg.rebind(q); got != q {
		t.Errorf("postgres rebind() = %q, want unchanged", got)
	}

	lite := &DB{dialect: DialectSQLite}
	want := "SELECT 1 FROM reminders WHERE id = ?1 AND user_id = ?2 LIMIT ?10"
	if got := lite.rebind(q); got != want {
		t.Errorf("sqlite rebind() = %q, want %q", got, want)
	}
}
