package sources

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ilkoid/sommelier-ai/pkg/prompts"
)

// newTestDB создает sqlite базу во временной директории со схемой prompts.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "prompts.db")
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	schema := `CREATE TABLE prompts (
		id TEXT PRIMARY KEY,
		system TEXT,
		template TEXT,
		variables TEXT,
		metadata TEXT
	)`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestDatabaseSourceRoundTrip(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Exec(
		`INSERT INTO prompts (id, system, template, variables, metadata) VALUES (?, ?, ?, ?, ?)`,
		"compose_stock",
		"You are a sommelier.",
		"Q: {{query}}\nD: {{data}}",
		`{"tone": "friendly"}`,
		`{"version": 2}`,
	)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	s := NewDatabaseSource(db, "")

	file, err := s.Load("compose_stock")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if file.System != "You are a sommelier." {
		t.Errorf("System = %q", file.System)
	}
	if file.Template != "Q: {{query}}\nD: {{data}}" {
		t.Errorf("Template = %q", file.Template)
	}
	if file.Variables["tone"] != "friendly" {
		t.Errorf("Variables = %v", file.Variables)
	}
	if file.Metadata["version"] != float64(2) {
		t.Errorf("Metadata = %v", file.Metadata)
	}
}

func TestDatabaseSourceMissingRowIsNotFound(t *testing.T) {
	s := NewDatabaseSource(newTestDB(t), "")

	_, err := s.Load("compose_absent")
	if !errors.Is(err, prompts.ErrNotFound) {
		t.Errorf("err = %v, want wrapped ErrNotFound so the chain continues", err)
	}
}

func TestDatabaseSourceBrokenVariablesJSON(t *testing.T) {
	db := newTestDB(t)

	if _, err := db.Exec(
		`INSERT INTO prompts (id, variables) VALUES (?, ?)`,
		"compose_stock", `{broken`,
	); err != nil {
		t.Fatal(err)
	}

	s := NewDatabaseSource(db, "")

	_, err := s.Load("compose_stock")
	if err == nil {
		t.Fatal("Load() should fail on undecodable variables")
	}
	if errors.Is(err, prompts.ErrNotFound) {
		t.Error("broken row must be a real error, not a fall-through")
	}
}

// База переопределяет файл, файл переопределяет встроенный дефолт.
func TestRegistryDatabaseOverridesFileAndDefault(t *testing.T) {
	db := newTestDB(t)
	if _, err := db.Exec(
		`INSERT INTO prompts (id, template) VALUES (?, ?)`,
		"compose_stock", "db: {{query}} {{data}}",
	); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	for _, id := range []string{"compose_stock", "compose_image"} {
		content := "template: |\n  file: {{query}} {{data}}\n"
		if err := os.WriteFile(filepath.Join(dir, id+".yaml"), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	r := prompts.NewRegistry(
		NewDatabaseSource(db, ""),
		NewFileSource(dir),
		NewDefaultSource(),
	)

	tests := []struct {
		id   string
		want string // Префикс шаблона указывает на выигравший источник
	}{
		{"compose_stock", "db:"},
		{"compose_image", "file:"},
		{"compose_general", "User asked:"},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			file, err := r.Load(tt.id)
			if err != nil {
				t.Fatalf("Load(%q) error: %v", tt.id, err)
			}
			if len(file.Template) < len(tt.want) || file.Template[:len(tt.want)] != tt.want {
				t.Errorf("Template = %q, want prefix %q", file.Template, tt.want)
			}
		})
	}
}
