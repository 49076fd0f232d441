package storage_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-press/internal/adapters/storage"
	"github.com/goliatone/go-press/pkg/interfaces"
)

func TestFilesystemProviderWriteAndRead(t *testing.T) {
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "dist")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, "generator.ensure_dir", "dist/2024/01/hello"); err != nil {
		t.Fatalf("ensure dir: %v", err)
	}

	content := []byte("<html>hello</html>")
	if _, err := provider.Exec(ctx, "generator.write", "dist/2024/01/hello/index.html", bytes.NewReader(content)); err != nil {
		t.Fatalf("write: %v", err)
	}

	// The base prefix is trimmed so files land directly under root.
	onDisk := filepath.Join(root, "2024", "01", "hello", "index.html")
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if !bytes.Equal(data, content) {
		t.Fatalf("unexpected file content %q", data)
	}

	rows, err := provider.Query(ctx, "generator.read", "dist/2024/01/hello/index.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows == nil || !rows.Next() {
		t.Fatal("expected one row for existing file")
	}
	var loaded []byte
	if err := rows.Scan(&loaded); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !bytes.Equal(loaded, content) {
		t.Fatalf("unexpected read content %q", loaded)
	}
	if rows.Next() {
		t.Fatal("expected a single row")
	}
	if err := rows.Close(); err != nil {
		t.Fatalf("close rows: %v", err)
	}
}

func TestFilesystemProviderReadMissingFile(t *testing.T) {
	provider := storage.NewFilesystemProvider(t.TempDir(), "dist")
	rows, err := provider.Query(context.Background(), "generator.read", "dist/missing.html")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if rows != nil {
		t.Fatal("expected nil rows for missing file")
	}
}

func TestFilesystemProviderRemove(t *testing.T) {
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "dist")
	ctx := context.Background()

	if _, err := provider.Exec(ctx, "generator.write", "dist/tags/go/index.html", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := provider.Exec(ctx, "generator.remove", "dist/tags"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "tags")); !os.IsNotExist(err) {
		t.Fatalf("expected tags directory removed, got %v", err)
	}

	// Removing a path twice stays quiet.
	if _, err := provider.Exec(ctx, "generator.remove", "dist/tags"); err != nil {
		t.Fatalf("second remove: %v", err)
	}
}

func TestFilesystemProviderTransactionDelegates(t *testing.T) {
	root := t.TempDir()
	provider := storage.NewFilesystemProvider(root, "")
	ctx := context.Background()

	err := provider.Transaction(ctx, func(tx interfaces.Transaction) error {
		if _, err := tx.Exec(ctx, "generator.write", "pages/index.html", bytes.NewReader([]byte("ok"))); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "pages", "index.html")); err != nil {
		t.Fatalf("expected file written inside transaction: %v", err)
	}
}
