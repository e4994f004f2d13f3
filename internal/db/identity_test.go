package db

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/agora-sh/agora/internal/types"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agora.db")
	conn, err := Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestIdentityRoundTrip(t *testing.T) {
	conn := openTestDB(t)

	got, err := LoadIdentity(conn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Fatalf("fresh db returned identity %+v, want nil", got)
	}

	want := types.Identity{Name: "ada", Password: "hunter2"}
	if err := SaveIdentity(conn, want, 1234); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err = LoadIdentity(conn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil || *got != want {
		t.Errorf("load = %+v, want %+v", got, want)
	}
}

func TestIdentityReplace(t *testing.T) {
	conn := openTestDB(t)

	if err := SaveIdentity(conn, types.Identity{Name: "ada", Password: "one"}, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := SaveIdentity(conn, types.Identity{Name: "grace", Password: "two"}, 2); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := LoadIdentity(conn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Name != "grace" || got.Password != "two" {
		t.Errorf("load = %+v, want replaced identity", got)
	}
}

func TestIdentityClear(t *testing.T) {
	conn := openTestDB(t)
	if err := SaveIdentity(conn, types.Identity{Name: "ada", Password: "x"}, 1); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := ClearIdentity(conn); err != nil {
		t.Fatalf("clear: %v", err)
	}
	got, err := LoadIdentity(conn)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("load after clear = %+v, want nil", got)
	}
}
