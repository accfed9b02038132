package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

const failedToInitDB = "Failed to initialize database: %v"

func TestMain(m *testing.M) {
	SetLogger(zerolog.New(os.Stdout).Level(zerolog.ErrorLevel))
	os.Exit(m.Run())
}

func TestNewSQLite(t *testing.T) {
	db := NewSQLite(":memory:")

	if db == nil {
		t.Fatal("Expected non-nil SQLite instance")
	}
	if db.conn != nil {
		t.Error("Expected connection to be nil initially")
	}
}

func TestSQLiteBasicOperations(t *testing.T) {
	ctx := context.Background()
	db := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	defer db.Close()

	t.Run("InitDB creates tables", func(t *testing.T) {
		if err := db.InitDB(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
		if err := db.Get().Ping(); err != nil {
			t.Errorf("Failed to ping database: %v", err)
		}
	})

	t.Run("InitDB is idempotent", func(t *testing.T) {
		if err := db.InitDB(); err != nil {
			t.Fatalf(failedToInitDB, err)
		}
	})

	t.Run("Verify articles schema", func(t *testing.T) {
		rows, err := db.Query(ctx, "PRAGMA table_info(articles)")
		if err != nil {
			t.Fatalf("Failed to get articles table info: %v", err)
		}
		defer rows.Close()

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, dataType string
			var notNull, pk int
			var defaultValue sql.NullString

			if err := rows.Scan(&cid, &name, &dataType, &notNull, &defaultValue, &pk); err != nil {
				t.Fatalf("Failed to scan column info: %v", err)
			}
			columns[name] = true
		}

		for _, col := range []string{"id", "title", "subtitle", "content", "content_hash", "bibliography", "main_image_url", "user_id", "created_at"} {
			if !columns[col] {
				t.Errorf("Expected articles table to have column %s", col)
			}
		}
	})

	t.Run("Exec and QueryRow", func(t *testing.T) {
		_, err := db.Exec(ctx,
			`INSERT INTO articles (id, title, subtitle, content, user_id) VALUES (?, ?, ?, ?, ?)`,
			"a1", "Title", "Subtitle", []byte("<p>x</p>"), "u1",
		)
		if err != nil {
			t.Fatalf("Exec: %v", err)
		}

		var title string
		if err := db.QueryRow(ctx, `SELECT title FROM articles WHERE id = ?`, "a1").Scan(&title); err != nil {
			t.Fatalf("QueryRow: %v", err)
		}
		if title != "Title" {
			t.Errorf("Expected title 'Title', got %q", title)
		}
	})

	t.Run("Primary key is enforced", func(t *testing.T) {
		_, err := db.Exec(ctx,
			`INSERT INTO articles (id, title, subtitle, content, user_id) VALUES (?, ?, ?, ?, ?)`,
			"a1", "Again", "Subtitle", []byte("<p>y</p>"), "u1",
		)
		if err == nil {
			t.Error("Expected duplicate id to fail")
		}
	})
}

func TestSQLiteErrorHandling(t *testing.T) {
	db := NewSQLite(":memory:")

	if _, err := db.Query(context.Background(), "SELECT 1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Query, got %v", err)
	}
	if _, err := db.Exec(context.Background(), "SELECT 1"); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized from Exec, got %v", err)
	}
	if err := db.Close(); err != nil {
		t.Errorf("Expected Close on unopened db to be a no-op, got %v", err)
	}
}
