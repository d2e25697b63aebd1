package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	ctx := context.Background()
	exportID := uuid.New()
	content := "created_at,platform\n2026-08-29T00:00:00Z,upwork\n"

	path, err := store.Upload(ctx, exportID, "proposals.csv", strings.NewReader(content))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if !strings.Contains(path, exportID.String()) {
		t.Errorf("storage path should contain the export id, got %q", path)
	}

	reader, err := store.Download(ctx, path)
	if err != nil {
		t.Fatalf("download failed: %v", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != content {
		t.Errorf("content mismatch: got %q", string(data))
	}

	if err := store.Delete(ctx, path); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Download(ctx, path); err == nil {
		t.Error("expected download to fail after delete")
	}
}

func TestLocalStorageDeleteMissingIsNoop(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create local storage: %v", err)
	}

	if err := store.Delete(context.Background(), "ab/missing.csv"); err != nil {
		t.Errorf("deleting a missing object should not error: %v", err)
	}
}
